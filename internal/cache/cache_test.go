package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadSave(t *testing.T) {
	dir := t.TempDir()
	// initial load should return empty DB and error
	db, _ := Load(dir)
	if db.Entries == nil {
		t.Fatalf("expected entries map initialized")
	}
	db.Entries["a.py"] = "deadbeef"
	if err := Save(dir, db); err != nil {
		t.Fatalf("save: %v", err)
	}
	// file should exist
	if _, err := os.Stat(filepath.Join(dir, ".codesweepcache.json")); err != nil {
		t.Fatalf("cache file not written: %v", err)
	}
	// load again and verify
	db2, err := Load(dir)
	if err != nil {
		t.Fatalf("load after save: %v", err)
	}
	if got := db2.Entries["a.py"]; got != "deadbeef" {
		t.Fatalf("unexpected entry: %q", got)
	}
}

func TestDefaultPath_PrefersGitDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	db := DB{Entries: map[string]string{"a.py": "x"}}
	if err := Save(dir, db); err != nil {
		t.Fatalf("save: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ".git", "codesweepcache.json")); err != nil {
		t.Fatalf("expected cache inside .git: %v", err)
	}
}

func TestUnchangedUpdate(t *testing.T) {
	db := DB{Entries: map[string]string{}}
	content := []byte("import os\n")
	if db.Unchanged("a.py", content) {
		t.Fatal("unknown file should not be unchanged")
	}
	db.Update("a.py", content)
	if !db.Unchanged("a.py", content) {
		t.Fatal("same content should be unchanged after update")
	}
	if db.Unchanged("a.py", []byte("import sys\n")) {
		t.Fatal("modified content should not be unchanged")
	}
}

func TestHash_StableHex(t *testing.T) {
	a := Hash([]byte("x"))
	b := Hash([]byte("x"))
	if a != b || len(a) == 0 {
		t.Fatalf("hash should be stable and non-empty: %q %q", a, b)
	}
	if a == Hash([]byte("y")) {
		t.Fatal("different content should hash differently")
	}
}
