package registry

import (
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/roach88/outliner/internal/model"
)

// FileExt is appended to sanitized database names.
const FileExt = ".db"

// unsafeSequences are replaced by "_" in file names derived from database
// names. "?" would otherwise start the driver's DSN query string.
var unsafeSequences = strings.NewReplacer(
	" ", "_",
	"/", "_",
	`\`, "_",
	"..", "_",
	"?", "_",
)

var lower = cases.Lower(language.Und)

// FileName derives the store file name for a database name: lowercased,
// with spaces, slashes, backslashes and ".." replaced by "_", plus FileExt.
func FileName(name string) string {
	return unsafeSequences.Replace(lower.String(model.NormalizeName(name))) + FileExt
}

// withinRoot reports whether path names a file strictly inside root.
// Both must be absolute and clean.
func withinRoot(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || filepath.IsAbs(rel) {
		return false
	}
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	return true
}

// resolve turns a caller-supplied path into an absolute path under root.
// Relative paths are taken relative to root.
func (r *Registry) resolve(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return "", model.InvalidArgument("database path must not be blank")
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.root, path)
	}
	path = filepath.Clean(path)
	if !withinRoot(r.root, path) {
		return "", model.InvalidArgumentf("database path %q is outside the managed root %q", path, r.root)
	}
	if strings.ContainsRune(path, '?') {
		return "", model.InvalidArgumentf("database path %q must not contain '?'", path)
	}
	return path, nil
}
