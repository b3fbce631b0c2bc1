// Package main provides the entry point for the layer CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/layer/cmd/layer/cmd"
)

func main() {
	os.Exit(cmd.ExitCode(cmd.Execute()))
}
