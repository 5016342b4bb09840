package fsaccess

import "strings"

var excludedDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"node_modules": true,
	"vendor":       true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"out":          true,
	".venv":        true,
	"venv":         true,
	"__pycache__":  true,
	"coverage":     true,
	"bin":          true,
	"obj":          true,
}

// suffixes for binary or generated artifacts not worth pattern matching
var excludedFileSuffixes = []string{
	".min.js", ".map",
	".png", ".jpg", ".jpeg", ".gif", ".webp", ".ico",
	".pdf", ".zip", ".gz", ".tar", ".tgz", ".7z",
	".jar", ".class", ".exe", ".dll", ".so",
	".wasm", ".pyc",
	".pb.go", ".gen.go",
}

func isExcludedDir(name string) bool {
	return excludedDirs[name] || strings.HasPrefix(name, ".git")
}

func isExcludedFile(lowerRel string) bool {
	for _, s := range excludedFileSuffixes {
		if strings.HasSuffix(lowerRel, s) {
			return true
		}
	}
	return false
}

// defaultDenyGlobs lists sensitive paths whose content must never surface in
// scanner output, regardless of include rules.
func defaultDenyGlobs() []string {
	return []string{
		"**/.ssh/**",
		"**/id_rsa*",
		"**/*.pem",
		"**/*.key",
		"**/.gnupg/**",
		"**/shadow",
	}
}

// LooksBinary sniffs a prefix of the content for NUL bytes.
func LooksBinary(b []byte) bool {
	const sniff = 800
	n := len(b)
	if n > sniff {
		n = sniff
	}
	for i := 0; i < n; i++ {
		if b[i] == 0 {
			return true
		}
	}
	return false
}
