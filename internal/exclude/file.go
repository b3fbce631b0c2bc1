// Package exclude edits ignore files that layer shares with the user.
//
// layer owns only the block between its markers:
//
//	# managed by layer
//	CLAUDE.md
//	.claude/
//	# end layer
//
// A disabled entry stays in the block as a comment ("# off: CLAUDE.md") so
// it can be switched back on. Everything before and after the block belongs to the user and is written
// back verbatim.
package exclude

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/lo"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/gitignore"
)

const (
	// StartMarker opens the managed block.
	StartMarker = "# managed by layer"
	// EndMarker closes the managed block.
	EndMarker = "# end layer"
	// DisabledPrefix marks a managed entry that is switched off.
	DisabledPrefix = "# off: "
)

// File is an ignore file split into user-owned and managed lines.
type File struct {
	path    string
	prefix  []string
	managed []string
	suffix  []string
}

// Load reads the file at path. A missing file is an empty File.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &File{path: path}, nil
		}
		return nil, lerrors.New(lerrors.ErrCodeFilePermission,
			fmt.Sprintf("cannot read %s", path), err)
	}
	return Parse(path, string(data)), nil
}

// Parse splits content into prefix, managed block and suffix. Without an
// end marker everything after the start marker is managed.
func Parse(path, content string) *File {
	f := &File{path: path}
	content = strings.TrimSuffix(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	if content == "" {
		return f
	}

	const (
		inPrefix = iota
		inManaged
		inSuffix
	)
	state := inPrefix
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		switch {
		case state == inPrefix && trimmed == StartMarker:
			state = inManaged
		case state == inPrefix:
			f.prefix = append(f.prefix, line)
		case state == inManaged && trimmed == EndMarker:
			state = inSuffix
		case state == inManaged:
			f.managed = append(f.managed, line)
		default:
			f.suffix = append(f.suffix, line)
		}
	}
	return f
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Entries returns the rules inside the managed block.
func (f *File) Entries() []string {
	return ruleLines(f.managed)
}

// UserEntries returns the rules outside the managed block.
func (f *File) UserEntries() []string {
	return append(ruleLines(f.prefix), ruleLines(f.suffix)...)
}

// AllEntries returns every rule in file order.
func (f *File) AllEntries() []string {
	out := ruleLines(f.prefix)
	out = append(out, f.Entries()...)
	return append(out, ruleLines(f.suffix)...)
}

// Disabled returns the switched-off entries of the managed block.
func (f *File) Disabled() []string {
	var out []string
	for _, line := range f.managed {
		if e, ok := disabledEntry(line); ok {
			out = append(out, e)
		}
	}
	return out
}

// Has reports whether entry is in the managed block.
func (f *File) Has(entry string) bool {
	return lo.Contains(f.Entries(), entry)
}

// HasUser reports whether entry is a user-owned rule.
func (f *File) HasUser(entry string) bool {
	return lo.Contains(f.UserEntries(), entry)
}

// Add appends entries to the managed block and returns those that were not
// already active anywhere in the file. A disabled entry is switched back on
// in place.
func (f *File) Add(entries ...string) []string {
	existing := lo.SliceToMap(f.AllEntries(), func(e string) (string, struct{}) { return e, struct{}{} })
	disabled := f.Disabled()

	var added []string
	for _, e := range lo.Uniq(entries) {
		if _, ok := existing[e]; ok || e == "" {
			continue
		}
		if lo.Contains(disabled, e) {
			f.Enable(e)
		} else {
			f.managed = append(f.managed, e)
		}
		added = append(added, e)
	}
	return added
}

// Disable comments out managed entries and returns those switched off.
func (f *File) Disable(entries ...string) []string {
	var changed []string
	for i, line := range f.managed {
		t := gitignore.TrimRule(line)
		if lo.Contains(entries, t) && !lo.Contains(changed, t) {
			f.managed[i] = DisabledPrefix + t
			changed = append(changed, t)
		}
	}
	return changed
}

// Enable restores disabled entries and returns those switched on.
func (f *File) Enable(entries ...string) []string {
	var changed []string
	for i, line := range f.managed {
		e, ok := disabledEntry(line)
		if ok && lo.Contains(entries, e) && !lo.Contains(changed, e) {
			f.managed[i] = e
			changed = append(changed, e)
		}
	}
	return changed
}

// Remove deletes entries from the managed block, active or disabled, and
// returns those removed.
func (f *File) Remove(entries ...string) []string {
	var removed []string
	f.managed = lo.Filter(f.managed, func(line string, _ int) bool {
		t := gitignore.TrimRule(line)
		if e, ok := disabledEntry(line); ok {
			t = e
		}
		if lo.Contains(entries, t) {
			removed = append(removed, t)
			return false
		}
		return true
	})
	return lo.Uniq(removed)
}

// RemoveUser deletes a user-owned rule outside the managed block.
func (f *File) RemoveUser(entry string) bool {
	found := false
	drop := func(line string, _ int) bool {
		if gitignore.TrimRule(line) == entry {
			found = true
			return false
		}
		return true
	}
	f.prefix = lo.Filter(f.prefix, drop)
	f.suffix = lo.Filter(f.suffix, drop)
	return found
}

// Clear empties the managed block and returns the number of active and
// disabled rules dropped.
func (f *File) Clear() int {
	n := len(f.Entries()) + len(f.Disabled())
	f.managed = nil
	return n
}

// String renders the file. The managed block is omitted when it holds no
// rules, active or disabled. Non-empty output always ends with a newline.
func (f *File) String() string {
	lines := make([]string, 0, len(f.prefix)+len(f.managed)+len(f.suffix)+2)
	lines = append(lines, f.prefix...)
	if len(f.Entries()) > 0 || len(f.Disabled()) > 0 {
		lines = append(lines, StartMarker)
		lines = append(lines, f.managed...)
		lines = append(lines, EndMarker)
	}
	lines = append(lines, f.suffix...)

	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// Source parses the whole file as a rule source of the given tier.
func (f *File) Source(display string, tier gitignore.Tier) *gitignore.RuleSource {
	src, _ := gitignore.ParseSource(strings.NewReader(f.String()), display, "", tier)
	return src
}

// LineOf returns the 1-based line of entry in the rendered file, or 0.
func (f *File) LineOf(entry string) int {
	for i, line := range strings.Split(f.String(), "\n") {
		if gitignore.TrimRule(line) == entry {
			return i + 1
		}
	}
	return 0
}

// Save writes the file atomically, creating its directory if needed.
func (f *File) Save() error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot create %s", dir), err)
	}

	tmp, err := os.CreateTemp(dir, ".layer-*.tmp")
	if err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot write %s", f.path), err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.WriteString(f.String()); err != nil {
		_ = tmp.Close()
		return lerrors.IOError(fmt.Sprintf("cannot write %s", f.path), err)
	}
	if err := tmp.Close(); err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot write %s", f.path), err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot write %s", f.path), err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return lerrors.IOError(fmt.Sprintf("cannot replace %s", f.path), err)
	}

	slog.Debug("exclude file saved",
		slog.String("path", f.path),
		slog.Int("managed", len(f.Entries())))
	return nil
}

// Update loads the file under its lock, applies fn and saves the result if
// fn reports a change.
func Update(ctx context.Context, path string, fn func(*File) (bool, error)) (*File, error) {
	lock := NewFileLock(filepath.Dir(path))
	if err := lock.Lock(ctx); err != nil {
		return nil, err
	}
	defer func() { _ = lock.Unlock() }()

	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	changed, err := fn(f)
	if err != nil {
		return nil, err
	}
	if changed {
		if err := f.Save(); err != nil {
			return nil, err
		}
	}
	return f, nil
}

func disabledEntry(line string) (string, bool) {
	e, ok := strings.CutPrefix(gitignore.TrimRule(line), DisabledPrefix)
	e = gitignore.TrimRule(e)
	return e, ok && e != ""
}

// ruleLines returns the rules among lines as git reads them: an escaped
// trailing space stays part of the rule.
func ruleLines(lines []string) []string {
	return gitignore.ParsePatterns(strings.Join(lines, "\n"))
}
