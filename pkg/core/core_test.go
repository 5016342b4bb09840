package core

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestScan_Smoke(t *testing.T) {
	root := t.TempDir()
	src := []byte("import subprocess\n\n\ndef run(cmd):\n    return subprocess.run(cmd)\n")
	if err := os.WriteFile(filepath.Join(root, "app.py"), src, 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Config{
		TargetPath: root,
		// keep defaults: all scanners enabled
	}
	res, err := Scan(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}
	if !res.Success {
		t.Fatalf("expected a successful run; errors: %+v", res.Errors)
	}
	names := ScannerNames()
	if len(names) == 0 {
		t.Fatal("expected non-empty scanner names")
	}
}
