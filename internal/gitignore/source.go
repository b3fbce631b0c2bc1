package gitignore

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Tier is the precedence class of an ignore file.
// Higher tiers outrank lower ones.
type Tier int

const (
	// TierGlobal is the user's core.excludesFile.
	TierGlobal Tier = iota
	// TierGitignore is any .gitignore inside the work tree.
	TierGitignore
	// TierLocalExclude is .git/info/exclude.
	TierLocalExclude
)

// String returns the tier name used in traces and JSON output.
func (t Tier) String() string {
	switch t {
	case TierGlobal:
		return "global"
	case TierGitignore:
		return "gitignore"
	case TierLocalExclude:
		return "local-exclude"
	default:
		return "unknown"
	}
}

// RuleSource is one parsed ignore file.
type RuleSource struct {
	// Path is the display path of the file (repo-relative where possible).
	Path string
	// Scope is the repo-relative directory the rules apply beneath.
	// Empty for the repository root, the global file and info/exclude.
	Scope string
	Tier  Tier
	// Patterns are kept in file order, malformed lines included.
	Patterns []*Pattern
}

// ParseSource reads ignore rules from r.
func ParseSource(r io.Reader, path, scope string, tier Tier) (*RuleSource, error) {
	src := &RuleSource{Path: path, Scope: cleanScope(scope), Tier: tier}

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		p, ok := Compile(scanner.Text(), lineNo)
		if !ok {
			continue
		}
		p.Source = src
		src.Patterns = append(src.Patterns, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return src, nil
}

// NewSource builds a RuleSource from in-memory lines.
func NewSource(path, scope string, tier Tier, lines ...string) *RuleSource {
	src, _ := ParseSource(strings.NewReader(strings.Join(lines, "\n")), path, scope, tier)
	return src
}

// LoadSource parses the file at file. A missing or unreadable file yields an
// empty source, since most directories have no ignore file at all.
func LoadSource(file, path, scope string, tier Tier) *RuleSource {
	empty := &RuleSource{Path: path, Scope: cleanScope(scope), Tier: tier}

	f, err := os.Open(file)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Debug("ignore file unreadable, treating as empty",
				slog.String("path", file),
				slog.String("error", err.Error()))
		}
		return empty
	}
	defer func() { _ = f.Close() }()

	src, err := ParseSource(f, path, scope, tier)
	if err != nil {
		slog.Debug("ignore file read failed, treating as empty",
			slog.String("path", file),
			slog.String("error", err.Error()))
		return empty
	}
	return src
}

// Depth is the number of directory levels between the root and Scope.
func (s *RuleSource) Depth() int {
	if s.Scope == "" {
		return 0
	}
	return strings.Count(s.Scope, "/") + 1
}

// Rel returns path relative to the source scope and whether the source
// applies to it at all. A source applies only to paths strictly beneath its
// scope directory.
func (s *RuleSource) Rel(path string) (string, bool) {
	if s.Scope == "" {
		return path, path != ""
	}
	if !strings.HasPrefix(path, s.Scope+"/") {
		return "", false
	}
	return path[len(s.Scope)+1:], true
}

// Applies reports whether the source governs paths beneath dir: its scope
// is the root or an ancestor-or-self of dir.
func (s *RuleSource) Applies(dir string) bool {
	dir = cleanScope(dir)
	if s.Scope == "" || s.Scope == dir {
		return true
	}
	return strings.HasPrefix(dir, s.Scope+"/")
}

// Len returns the number of patterns, malformed ones included.
func (s *RuleSource) Len() int {
	return len(s.Patterns)
}

func cleanScope(scope string) string {
	scope = strings.ReplaceAll(scope, "\\", "/")
	scope = strings.TrimPrefix(scope, "./")
	scope = strings.Trim(scope, "/")
	if scope == "." {
		return ""
	}
	return scope
}

// ParsePatterns extracts the rule lines from ignore-file content.
// Returns the non-empty, non-comment lines cut by TrimRule.
func ParsePatterns(content string) []string {
	var patterns []string
	for _, line := range strings.Split(content, "\n") {
		line = TrimRule(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// TrimRule strips leading whitespace and unescaped trailing whitespace from
// a line. An escaped trailing space, as in `name\ `, is kept.
func TrimRule(line string) string {
	line = trimTrailingSpace(strings.TrimRight(line, "\r\n"))
	return strings.TrimLeft(line, " \t")
}
