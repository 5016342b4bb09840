package fsaccess

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func write(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestListAccessibleFiles_SkipsExcludedDirs(t *testing.T) {
	root := t.TempDir()
	write(t, root, "src/app.py", "print('x')\n")
	write(t, root, "node_modules/pkg/index.js", "x\n")
	write(t, root, ".git/config", "x\n")

	a := New(root, nil, nil, 0)
	files, inaccessible, err := a.ListAccessibleFiles()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if inaccessible != 0 {
		t.Fatalf("inaccessible = %d", inaccessible)
	}
	if len(files) != 1 || files[0].Path != "src/app.py" {
		t.Fatalf("expected only src/app.py; got %+v", files)
	}
}

func TestListAccessibleFiles_MaxBytes(t *testing.T) {
	root := t.TempDir()
	write(t, root, "small.py", "x\n")
	write(t, root, "big.py", string(make([]byte, 100)))

	a := New(root, nil, nil, 10)
	files, _, err := a.ListAccessibleFiles()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 1 || files[0].Path != "small.py" {
		t.Fatalf("size gate should drop big.py; got %+v", files)
	}
}

func TestListAccessibleFiles_MissingRoot(t *testing.T) {
	a := New(filepath.Join(t.TempDir(), "nope"), nil, nil, 0)
	if _, _, err := a.ListAccessibleFiles(); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestAllowed_Order(t *testing.T) {
	a := &Accessor{
		IncludeGlobs: []string{"**/*.py"},
		ExcludeGlobs: []string{"vendor/**"},
		DenyGlobs:    defaultDenyGlobs(),
	}
	tests := []struct {
		rel  string
		want bool
	}{
		{"src/app.py", true},
		{"src/app.js", false},       // not included
		{"vendor/dep.py", false},    // excluded
		{".ssh/id_rsa.py", false},   // denied wins over include
		{"keys/server.pem", false},  // deny list applies without include match too
	}
	for _, tt := range tests {
		if got := a.Allowed(tt.rel); got != tt.want {
			t.Errorf("Allowed(%q) = %v, want %v", tt.rel, got, tt.want)
		}
	}
}

func TestReadFile_DeniedBeforeDisk(t *testing.T) {
	root := t.TempDir()
	write(t, root, "id_rsa", "PRIVATE KEY\n")

	a := New(root, nil, nil, 0)
	if _, err := a.ReadFile("id_rsa"); !errors.Is(err, ErrDenied) {
		t.Fatalf("expected ErrDenied, got %v", err)
	}
}

func TestReadFile_Roundtrip(t *testing.T) {
	root := t.TempDir()
	write(t, root, "a/b.py", "import os\n")
	a := New(root, nil, nil, 0)
	b, err := a.ReadFile("a/b.py")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "import os\n" {
		t.Fatalf("content = %q", b)
	}
}

func TestParseGlobs(t *testing.T) {
	got := ParseGlobs(" **/*.py , ./cmd/*.go ,, ")
	want := map[string]bool{"**/*.py": true, "*.py": true, "./cmd/*.go": true, "cmd/*.go": true}
	if len(got) != len(want) {
		t.Fatalf("globs = %v", got)
	}
	for _, g := range got {
		if !want[g] {
			t.Fatalf("unexpected glob %q in %v", g, got)
		}
	}
}

func TestLooksBinary(t *testing.T) {
	if LooksBinary([]byte("plain text\n")) {
		t.Fatal("text misclassified as binary")
	}
	if !LooksBinary([]byte{'E', 'L', 'F', 0x00, 0x01}) {
		t.Fatal("NUL byte should classify as binary")
	}
}
