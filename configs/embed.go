// Package configs provides embedded configuration templates for layer.
//
// Templates are embedded at build time so every distribution carries them.
// They are written by 'layer config init':
//   - user-config.example.yaml: settings for every repository on this machine,
//     written to ~/.config/layer/config.yaml
//   - project-config.example.yaml: settings for one repository, written to
//     .layer.yaml at the repository root with --project
//
// Precedence (see internal/config Load):
//  1. Hardcoded defaults
//  2. User config
//  3. Project config
//  4. Environment variables (LAYER_*)
package configs

import _ "embed"

// UserConfigTemplate is the template for the user configuration file.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string

// ProjectConfigTemplate is the template for a repository's .layer.yaml.
//
//go:embed project-config.example.yaml
var ProjectConfigTemplate string
