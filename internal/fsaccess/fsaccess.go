package fsaccess

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	doublestar "github.com/bmatcuk/doublestar/v4"
)

// FileInfo describes one accessible file under the root.
type FileInfo struct {
	Path string // relative to root, forward slashes
	Size int64
}

// ErrDenied is returned when a read targets a path excluded by deny rules.
var ErrDenied = errors.New("path denied by access rules")

// Accessor is a read-only view of a target tree. Deny rules are always
// evaluated before allow rules; content for a denied path is never returned.
// Merely-unreadable files are reported, not raised.
type Accessor struct {
	Root         string
	IncludeGlobs []string
	ExcludeGlobs []string
	DenyGlobs    []string
	MaxFileBytes int64
}

// New builds an accessor with the built-in sensitive-path deny list applied
// on top of the caller's exclusions.
func New(root string, include, exclude []string, maxBytes int64) *Accessor {
	return &Accessor{
		Root:         root,
		IncludeGlobs: include,
		ExcludeGlobs: exclude,
		DenyGlobs:    defaultDenyGlobs(),
		MaxFileBytes: maxBytes,
	}
}

// ListAccessibleFiles walks the root and returns every file the access rules
// admit, together with a count of files that exist but could not be read.
// Walk errors on individual entries never abort the listing.
func (a *Accessor) ListAccessibleFiles() (files []FileInfo, inaccessible int, err error) {
	if _, statErr := os.Stat(a.Root); statErr != nil {
		return nil, 0, statErr
	}
	walkErr := filepath.WalkDir(a.Root, func(p string, d fs.DirEntry, werr error) error {
		if werr != nil {
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			inaccessible++
			return nil
		}
		if d.IsDir() {
			if isExcludedDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(a.Root, p)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if !a.Allowed(rel) {
			return nil
		}
		info, infoErr := d.Info()
		if infoErr != nil {
			inaccessible++
			return nil
		}
		if a.MaxFileBytes > 0 && info.Size() > a.MaxFileBytes {
			return nil
		}
		if isExcludedFile(strings.ToLower(rel)) {
			return nil
		}
		files = append(files, FileInfo{Path: rel, Size: info.Size()})
		return nil
	})
	if walkErr != nil {
		return files, inaccessible, walkErr
	}
	return files, inaccessible, nil
}

// ReadFile returns the content of a relative path admitted by the access
// rules. Denied paths return ErrDenied before any filesystem access.
func (a *Accessor) ReadFile(rel string) ([]byte, error) {
	rel = filepath.ToSlash(rel)
	if a.denied(rel) {
		return nil, ErrDenied
	}
	b, err := os.ReadFile(filepath.Join(a.Root, filepath.FromSlash(rel)))
	if err != nil {
		return nil, err
	}
	return b, nil
}

// Allowed reports whether the relative path passes deny, include, and exclude
// rules, in that order.
func (a *Accessor) Allowed(rel string) bool {
	if a.denied(rel) {
		return false
	}
	if len(a.IncludeGlobs) > 0 && !matchAny(rel, a.IncludeGlobs) {
		return false
	}
	if matchAny(rel, a.ExcludeGlobs) {
		return false
	}
	return true
}

func (a *Accessor) denied(rel string) bool {
	return matchAny(rel, a.DenyGlobs)
}

func matchAny(rel string, globs []string) bool {
	for _, g := range globs {
		if ok, _ := doublestar.Match(g, rel); ok {
			return true
		}
		if ok, _ := doublestar.Match(g, filepath.Base(rel)); ok {
			return true
		}
	}
	return false
}

// ParseGlobs splits a comma-separated glob list, trimming blanks and
// normalizing leading ./ and **/ prefixes the way basename matching expects.
func ParseGlobs(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
		if t := trimGlobPrefix(p); t != p {
			out = append(out, t)
		}
	}
	return out
}

func trimGlobPrefix(g string) string {
	s := strings.TrimPrefix(g, "./")
	for strings.HasPrefix(s, "**/") {
		s = strings.TrimPrefix(s, "**/")
	}
	return s
}
