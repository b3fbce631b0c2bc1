// Package backup saves the managed exclude entries of a repository outside
// the repository, so they survive a fresh clone.
//
// One plain-text file per repository lives in the backup directory:
//
//	# layer backup
//	# repo: widgets
//	# source: git@github.com:acme/widgets.git
//	# date: 2026-02-08T12:00:00Z
//	# entries: 2
//	CLAUDE.md
//	.claude/
package backup

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/dustin/go-humanize"
	"github.com/samber/lo"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
)

const (
	// Ext is the backup file extension.
	Ext = ".txt"
	// Header is the first line of every backup file.
	Header = "# layer backup"
	// NoSource is recorded when the repository has no origin remote.
	NoSource = "(no origin remote)"
)

// Backup is one saved set of entries.
type Backup struct {
	Repo    string    `json:"repo"`
	Source  string    `json:"source"`
	Date    time.Time `json:"date"`
	Entries []string  `json:"entries"`
	// Path is the file the backup was read from or written to.
	Path string `json:"path"`
}

// Age describes how long ago the backup was taken, e.g. "3 days ago".
func (b *Backup) Age() string {
	if b.Date.IsZero() {
		return "unknown date"
	}
	return humanize.Time(b.Date)
}

// Missing returns the backup entries not present in current, in backup
// order.
func (b *Backup) Missing(current []string) []string {
	return lo.Without(b.Entries, current...)
}

// String renders the backup file content.
func (b *Backup) String() string {
	var sb strings.Builder
	source := b.Source
	if source == "" {
		source = NoSource
	}
	fmt.Fprintln(&sb, Header)
	fmt.Fprintf(&sb, "# repo: %s\n", b.Repo)
	fmt.Fprintf(&sb, "# source: %s\n", source)
	fmt.Fprintf(&sb, "# date: %s\n", b.Date.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "# entries: %d\n", len(b.Entries))
	for _, e := range b.Entries {
		sb.WriteString(e)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Parse reads backup content. The repository name defaults to the file
// name without extension; an unparseable date is left zero.
func Parse(path, content string) *Backup {
	b := &Backup{
		Repo: strings.TrimSuffix(filepath.Base(path), Ext),
		Path: path,
	}

	sc := bufio.NewScanner(strings.NewReader(content))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		switch {
		case strings.HasPrefix(line, "# repo:"):
			b.Repo = strings.TrimSpace(strings.TrimPrefix(line, "# repo:"))
		case strings.HasPrefix(line, "# source:"):
			if s := strings.TrimSpace(strings.TrimPrefix(line, "# source:")); s != NoSource {
				b.Source = s
			}
		case strings.HasPrefix(line, "# date:"):
			if t, err := time.Parse(time.RFC3339, strings.TrimSpace(strings.TrimPrefix(line, "# date:"))); err == nil {
				b.Date = t
			}
		case line == "" || strings.HasPrefix(line, "#"):
		default:
			b.Entries = append(b.Entries, line)
		}
	}
	return b
}

// SanitizeName makes a repository name safe to use as a file name.
func SanitizeName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':':
			return '-'
		case unicode.IsControl(r):
			return '-'
		}
		return r
	}, name)
	mapped = strings.Trim(mapped, "-")
	if mapped == "" {
		return "repo"
	}
	return mapped
}

// Store is a directory of backups.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir. The directory is created on the
// first Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the backup directory.
func (s *Store) Dir() string {
	return s.dir
}

// PathFor returns the backup file for a repository name.
func (s *Store) PathFor(repo string) string {
	return filepath.Join(s.dir, SanitizeName(repo)+Ext)
}

// Save writes b, replacing any earlier backup of the same repository.
// It reports whether a backup already existed.
func (s *Store) Save(b *Backup) (existed bool, err error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return false, lerrors.IOError(fmt.Sprintf("cannot create %s", s.dir), err)
	}

	b.Repo = SanitizeName(b.Repo)
	b.Path = s.PathFor(b.Repo)
	if b.Date.IsZero() {
		b.Date = time.Now().UTC()
	}
	_, statErr := os.Stat(b.Path)
	existed = statErr == nil

	if err := os.WriteFile(b.Path, []byte(b.String()), 0o644); err != nil {
		return existed, lerrors.IOError(fmt.Sprintf("cannot write %s", b.Path), err)
	}

	slog.Debug("backup written",
		slog.String("path", b.Path),
		slog.Int("entries", len(b.Entries)),
		slog.String("size", humanize.Bytes(uint64(len(b.String())))))
	return existed, nil
}

// Load reads the backup of a repository.
func (s *Store) Load(repo string) (*Backup, error) {
	path := s.PathFor(repo)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, lerrors.New(lerrors.ErrCodeBackupNotFound,
				fmt.Sprintf("no backup found for '%s'", SanitizeName(repo)), err).
				WithSuggestion("Run 'layer backup' to create one")
		}
		return nil, lerrors.New(lerrors.ErrCodeFilePermission,
			fmt.Sprintf("cannot read %s", path), err)
	}
	return Parse(path, string(data)), nil
}

// List returns every backup in the store sorted by repository name. A
// missing directory holds no backups.
func (s *Store) List() ([]*Backup, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, lerrors.New(lerrors.ErrCodeFilePermission,
			fmt.Sprintf("cannot list %s", s.dir), err)
	}

	var out []*Backup
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != Ext {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			slog.Debug("skipping unreadable backup",
				slog.String("path", path),
				slog.String("error", err.Error()))
			continue
		}
		out = append(out, Parse(path, string(data)))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Repo < out[j].Repo })
	return out, nil
}

// Summary is a one-line description used by listings.
func (b *Backup) Summary() string {
	return fmt.Sprintf("%-20s %3d entries    %s", b.Repo, len(b.Entries), b.Age())
}
