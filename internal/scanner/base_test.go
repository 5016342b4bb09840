package scanner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/codesweep/codesweep/internal/rules"
	"github.com/codesweep/codesweep/internal/types"
)

func writeFile(t *testing.T, root, rel, body string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestConfigure_RequiresRoot(t *testing.T) {
	s := NewServerScanner()
	if err := s.Configure(Config{}); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestConfigure_RejectsBadCustomRule(t *testing.T) {
	s := NewServerScanner()
	err := s.Configure(Config{
		Root: t.TempDir(),
		CustomRules: []rules.Rule{{
			ID: "bad", Pattern: "x",
			Severity: "urgent", Category: types.CatInjection,
		}},
	})
	if err == nil {
		t.Fatal("expected error for invalid custom rule severity")
	}
}

func TestScan_Unconfigured(t *testing.T) {
	s := NewServerScanner()
	if _, err := s.Scan(context.Background(), nil); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
	if v := s.ValidateAccess(); v.OK {
		t.Fatal("unconfigured scanner must not validate")
	}
}

func TestScan_FindsAndEnriches(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "import os\n\nos.system(\"ls \" + user_input)\n")
	writeFile(t, root, "clean.py", "print('hello')\n")

	s := NewServerScanner()
	if err := s.Configure(Config{Root: root}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	if v := s.ValidateAccess(); !v.OK || v.AccessibleFiles != 2 {
		t.Fatalf("validation = %+v", v)
	}

	var progressCalls int
	res, err := s.Scan(context.Background(), func(p Progress) {
		progressCalls++
		if p.Percent < 0 || p.Percent > 100 {
			t.Errorf("percent out of range: %v", p.Percent)
		}
	})
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if res.FilesScanned != 2 {
		t.Fatalf("files scanned = %d", res.FilesScanned)
	}
	if progressCalls != 2 {
		t.Fatalf("progress calls = %d", progressCalls)
	}
	if len(res.Findings) != 1 || res.Findings[0].Category != types.CatCommandInjection {
		t.Fatalf("findings = %+v", res.Findings)
	}
	if len(res.Risks) == 0 {
		t.Fatal("expected risk scores on a result with findings")
	}
	if len(res.Compliance) == 0 {
		t.Fatal("expected compliance mappings")
	}
	if res.Metadata.RulesApplied == 0 || res.Metadata.Duration <= 0 {
		t.Fatalf("metadata = %+v", res.Metadata)
	}
	if res.Metadata.Confidence <= 0 || res.Metadata.Confidence > 1 {
		t.Fatalf("confidence = %v", res.Metadata.Confidence)
	}
}

func TestScan_ReInvocableAfterCleanup(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "os.system(cmd)\n")

	s := NewServerScanner()
	if err := s.Configure(Config{Root: root}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	first, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	if err := s.Cleanup(); err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	second, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("scan after cleanup: %v", err)
	}
	if len(first.Findings) != len(second.Findings) {
		t.Fatalf("runs differ: %d vs %d findings", len(first.Findings), len(second.Findings))
	}
	// identifiers and timestamps are fresh per run
	if first.Findings[0].ID == second.Findings[0].ID {
		t.Fatal("finding IDs must not be reused across runs")
	}
}

func TestScan_ContextCanceled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "app.py", "print('x')\n")

	s := NewServerScanner()
	if err := s.Configure(Config{Root: root}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Scan(ctx, nil); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestScan_AnalyzerErrorBecomesScanError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "broken.py", "x\n")

	s := NewRuleScanner("probe", "0.0.1", nil,
		WithAnalyzer(func(path string, data []byte) ([]types.Finding, error) {
			return nil, fmt.Errorf("parse %s: bad syntax", path)
		}))
	if err := s.Configure(Config{Root: root}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	res, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(res.Errors) != 1 || res.Errors[0].Kind != types.ScanErrParse {
		t.Fatalf("errors = %+v", res.Errors)
	}
	if res.FilesScanned != 1 {
		t.Fatalf("per-file failure must not abort the scan; scanned = %d", res.FilesScanned)
	}
}

func TestScan_SkipsBinary(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "blob.py", "os.system(x)\x00\x01")

	s := NewServerScanner()
	if err := s.Configure(Config{Root: root}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	res, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(res.Findings) != 0 {
		t.Fatalf("binary content must not be matched: %+v", res.Findings)
	}
}

func TestScan_RedactsSecretEvidence(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "settings.py", "password = \"hunter2secret\"\n")

	s := NewServerScanner()
	if err := s.Configure(Config{Root: root}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	res, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(res.Findings) == 0 {
		t.Fatal("expected a hardcoded-credential finding")
	}
	for _, f := range res.Findings {
		for _, e := range f.Evidence {
			if strings.Contains(e, "hunter2secret") {
				t.Fatalf("evidence leaks the secret: %q", e)
			}
		}
		if strings.Contains(f.Location.Snippet, "hunter2secret") {
			t.Fatalf("snippet leaks the secret: %q", f.Location.Snippet)
		}
	}
}

func TestScan_IncrementalKeepsDirtyFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "dirty.py", "os.system(cmd)\n")
	writeFile(t, root, "clean.py", "print('x')\n")

	s := NewServerScanner()
	if err := s.Configure(Config{Root: root, Incremental: true}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	first, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("first scan: %v", err)
	}
	second, err := s.Scan(context.Background(), nil)
	if err != nil {
		t.Fatalf("second scan: %v", err)
	}
	// clean files are cached away; files with findings are re-reported
	if len(first.Findings) != 1 || len(second.Findings) != 1 {
		t.Fatalf("findings: first=%d second=%d", len(first.Findings), len(second.Findings))
	}
}

func TestHealth_SafeDuringConcurrentScan(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 50; i++ {
		writeFile(t, root, fmt.Sprintf("f%d.py", i), "print(\"ok\")\n")
	}
	s := NewServerScanner()
	if err := s.Configure(Config{Root: root}); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 10; i++ {
			if _, err := s.Scan(context.Background(), nil); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	for i := 0; i < 200; i++ {
		s.Health()
	}
	<-done

	// snapshot from the last completed scan survives intact
	h := s.Health()
	if h.Performance.LastFilesScanned != 50 {
		t.Fatalf("got %d files in perf snapshot, want 50", h.Performance.LastFilesScanned)
	}
}

func TestHealth(t *testing.T) {
	s := NewServerScanner()
	if h := s.Health(); h.Healthy {
		t.Fatal("unconfigured scanner must report unhealthy")
	}
	if err := s.Configure(Config{Root: t.TempDir()}); err != nil {
		t.Fatalf("configure: %v", err)
	}
	h := s.Health()
	if !h.Healthy {
		t.Fatalf("health = %+v", h)
	}
	if !h.Dependencies["configured"] || !h.Dependencies["target-readable"] {
		t.Fatalf("dependencies = %+v", h.Dependencies)
	}
}
