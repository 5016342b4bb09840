// Package cache persists per-file content hashes between runs so scanners can
// skip unchanged files when incremental mode is enabled.
package cache

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	xxhash "github.com/cespare/xxhash/v2"
)

// DB maps relative path -> xxhash of the content at last scan.
type DB struct {
	Entries map[string]string `json:"entries"`
}

func defaultPath(root string) string {
	// Prefer .git so the cache never lands in commits; fall back to root.
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "codesweepcache.json")
	}
	return filepath.Join(root, ".codesweepcache.json")
}

// Load reads the cache for a target root, returning an empty DB on any error.
func Load(root string) (DB, error) {
	var db DB
	b, err := os.ReadFile(defaultPath(root))
	if err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if err := json.Unmarshal(b, &db); err != nil {
		return DB{Entries: map[string]string{}}, err
	}
	if db.Entries == nil {
		db.Entries = map[string]string{}
	}
	return db, nil
}

// Save writes the cache for a target root.
func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	b, _ := json.MarshalIndent(db, "", "  ")
	return os.WriteFile(defaultPath(root), b, 0644)
}

// Hash returns the cache key for file content.
func Hash(b []byte) string {
	if len(b) == 0 {
		return "0000000000000000"
	}
	sum := xxhash.Sum64(b)
	var buf [16]byte
	const hex = "0123456789abcdef"
	for i := 15; i >= 0; i-- {
		buf[i] = hex[sum&0xF]
		sum >>= 4
	}
	return string(buf[:])
}

// Unchanged reports whether the content at rel matches the cached hash.
func (db DB) Unchanged(rel string, content []byte) bool {
	if db.Entries == nil {
		return false
	}
	return db.Entries[rel] == Hash(content)
}

// Update records the content hash for rel.
func (db DB) Update(rel string, content []byte) {
	if db.Entries != nil {
		db.Entries[rel] = Hash(content)
	}
}
