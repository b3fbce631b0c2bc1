package exclude

import (
	"os"
	"path/filepath"
	"strings"

	lerrors "github.com/Aman-CERP/layer/internal/errors"
	"github.com/Aman-CERP/layer/internal/resolve"
)

// NormalizeEntry turns user input into an exclude rule relative to root.
//
// Separators become '/', a leading "./" is dropped and an existing
// directory gets a trailing '/'. Globs and negations are kept as typed.
// Literal paths that leave the repository are rejected with a ScopeError.
func NormalizeEntry(root, raw string) (string, error) {
	entry := strings.TrimSpace(strings.ReplaceAll(raw, `\`, "/"))
	for strings.HasPrefix(entry, "./") {
		entry = strings.TrimPrefix(entry, "./")
	}
	if entry == "" || entry == "." || entry == "/" {
		return "", lerrors.ValidationError("empty entry", nil).WithDetail("input", raw)
	}

	if strings.HasPrefix(entry, "!") || strings.ContainsAny(entry, "*?[") {
		return entry, nil
	}

	wantDir := strings.HasSuffix(entry, "/")
	rel, err := resolve.RelPath(root, filepath.FromSlash(strings.TrimSuffix(entry, "/")))
	if err != nil {
		return "", err
	}

	if !wantDir {
		if info, err := os.Stat(filepath.Join(root, filepath.FromSlash(rel))); err == nil && info.IsDir() {
			wantDir = true
		}
	}
	if wantDir {
		rel += "/"
	}
	return rel, nil
}
