package codesweep

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codesweep/codesweep/internal/config"
	"github.com/codesweep/codesweep/internal/logging"
	"github.com/codesweep/codesweep/internal/orchestrator"
	"github.com/codesweep/codesweep/internal/report"
	"github.com/codesweep/codesweep/internal/scanner"
	"github.com/codesweep/codesweep/internal/types"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	flagPath            string
	flagProject         string
	flagScanners        string
	flagInclude         string
	flagExclude         string
	flagMaxBytes        int64
	flagTimeout         time.Duration
	flagSequential      bool
	flagMaxConcurrent   int
	flagNoHealthCheck   bool
	flagMaxMemory       uint64
	flagRetries         int
	flagBreakerFailures int
	flagBreakerRecovery time.Duration
	flagNoCache         bool
	flagNoBaseline      bool
	flagShowErrors      bool
	flagMaxFindings     int
)

func init() {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run security scanners over a target tree",
		RunE:  runScan,
	}
	rootCmd.AddCommand(cmd)

	cmd.Flags().StringVarP(&flagPath, "path", "p", ".", "path to scan")
	cmd.Flags().StringVar(&flagProject, "project", "", "project name for reports")
	cmd.Flags().StringVar(&flagScanners, "scanners", "", "comma-separated scanner names (default: all registered)")
	cmd.Flags().StringVar(&flagInclude, "include", "", "comma-separated include globs")
	cmd.Flags().StringVar(&flagExclude, "exclude", "", "comma-separated exclude globs")
	cmd.Flags().Int64Var(&flagMaxBytes, "max-bytes", 1<<20, "skip files larger than this")
	cmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "per-scanner timeout (0 = 5m default)")
	cmd.Flags().BoolVar(&flagSequential, "sequential", false, "run scanners one at a time")
	cmd.Flags().IntVar(&flagMaxConcurrent, "max-concurrent", 0, "max scanners running at once (0 = default 3)")
	cmd.Flags().BoolVar(&flagNoHealthCheck, "no-health-check", false, "skip scanner health checks before scanning")
	cmd.Flags().Uint64Var(&flagMaxMemory, "max-memory", 0, "defer scanner launches above this heap size in bytes (0 = off)")
	cmd.Flags().IntVar(&flagRetries, "retries", 0, "retry budget for recoverable scanner failures")
	cmd.Flags().IntVar(&flagBreakerFailures, "breaker-failures", 0, "consecutive failed runs before the breaker opens (0 = default)")
	cmd.Flags().DurationVar(&flagBreakerRecovery, "breaker-recovery", 0, "breaker recovery window (0 = default)")
	cmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "disable incremental scan cache")
	cmd.Flags().BoolVar(&flagNoBaseline, "no-baseline", false, "do not suppress baselined findings")
	cmd.Flags().BoolVar(&flagShowErrors, "show-errors", true, "print scanner errors after the table")
	cmd.Flags().IntVar(&flagMaxFindings, "max-findings", 0, "truncate the table to the top N findings (0 = all)")
}

func runScan(cmd *cobra.Command, _ []string) error {
	logging.Setup(flagVerbose)
	abs, _ := filepath.Abs(flagPath)

	// Load configs: CLI > local > global
	var gcfg, lcfg config.FileConfig
	if c, err := config.LoadGlobal(); err == nil {
		gcfg = c
	}
	if c, err := config.LoadLocal(abs); err == nil {
		lcfg = c
	}

	custom, err := lcfg.Rules()
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if len(custom) == 0 {
		if custom, err = gcfg.Rules(); err != nil {
			return fmt.Errorf("config error: %w", err)
		}
	}

	registry := scanner.NewDefaultRegistry()
	enabled := registry.Names()
	if names := pickList(flagScanners, lcfg.Scanners, gcfg.Scanners); len(names) > 0 {
		enabled = names
	}

	ocfg := orchestrator.Config{
		ProjectName:      pickString(flagProject, lcfg.Project, gcfg.Project),
		TargetPath:       abs,
		OutputDir:        pickString("", lcfg.OutputDir, gcfg.OutputDir),
		EnabledScanners:  enabled,
		Parallel:         !flagSequential && pickBoolDefault(lcfg.Parallel, gcfg.Parallel, true),
		MaxConcurrent:    pickInt(flagMaxConcurrent, lcfg.MaxConcurrent, gcfg.MaxConcurrent),
		ScannerTimeout:   pickDuration(flagTimeout, lcfg.TimeoutMillis, gcfg.TimeoutMillis),
		HealthCheck:      !flagNoHealthCheck && pickBoolDefault(lcfg.HealthCheck, gcfg.HealthCheck, true),
		MaxMemoryBytes:   pickUint64(flagMaxMemory, lcfg.MaxMemoryBytes, gcfg.MaxMemoryBytes),
		MaxRetries:       pickInt(flagRetries, lcfg.MaxRetries, gcfg.MaxRetries),
		BreakerThreshold: pickInt(flagBreakerFailures, lcfg.BreakerFailures, gcfg.BreakerFailures),
		BreakerRecovery:  pickRecovery(flagBreakerRecovery, lcfg.BreakerRecovery, gcfg.BreakerRecovery),
		Scanner: scanner.Config{
			Root:         abs,
			IncludeGlobs: pickString(flagInclude, lcfg.Include, gcfg.Include),
			ExcludeGlobs: pickString(flagExclude, lcfg.Exclude, gcfg.Exclude),
			MaxFileBytes: pickInt64(flagMaxBytes, lcfg.MaxFileBytes, gcfg.MaxFileBytes),
			Verbose:      flagVerbose || pickBoolDefault(lcfg.Verbose, gcfg.Verbose, false),
			Incremental:  !flagNoCache,
			CustomRules:  custom,
		},
	}

	// Progress bar only when a human is reading the output.
	if !flagJSON && !flagSARIF {
		fmt.Fprintf(os.Stderr, "Scanning %s with %d scanners...\n", abs, len(enabled))
		bar := progressbar.NewOptions(100,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionSetDescription("scanning"),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)
		ocfg.OnProgress = func(_ orchestrator.Phase, percent float64, _ string) {
			_ = bar.Set(int(percent))
		}
	}

	orch := orchestrator.New(registry, ocfg)
	res, err := orch.RunWithRetry(cmd.Context())
	if err != nil {
		return fmt.Errorf("scan error: %w", err)
	}
	if !flagJSON && !flagSARIF {
		fmt.Fprintln(os.Stderr)
	}

	if !flagNoBaseline {
		if base, berr := report.LoadBaseline(baselinePath(abs)); berr == nil {
			res.Consolidated.Findings = report.FilterNewFindings(res.Consolidated.Findings, base)
		}
	}
	if res.Consolidated.Findings == nil {
		res.Consolidated.Findings = []types.Finding{} // no `null` in JSON
	}

	switch {
	case flagSARIF:
		if err := report.WriteSARIF(os.Stdout, res, version); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case flagJSON:
		if err := report.WriteJSON(os.Stdout, res); err != nil {
			return err
		}
	default:
		report.PrintTable(os.Stdout, res, report.PrintOptions{
			NoColor:     flagNoColor,
			ShowErrors:  flagShowErrors,
			MaxFindings: flagMaxFindings,
		})
	}

	if report.ShouldFail(res.Consolidated.Findings, flagFailOn) {
		os.Exit(1)
	}
	return nil
}

func baselinePath(root string) string {
	return filepath.Join(root, "codesweep.baseline.json")
}

func pickList(cli string, local, global []string) []string {
	if cli != "" {
		var out []string
		for _, s := range strings.Split(cli, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
		return out
	}
	if len(local) > 0 {
		return local
	}
	return global
}

func pickDuration(cli time.Duration, local, global *int64) time.Duration {
	if cli > 0 {
		return cli
	}
	if local != nil && *local > 0 {
		return time.Duration(*local) * time.Millisecond
	}
	if global != nil && *global > 0 {
		return time.Duration(*global) * time.Millisecond
	}
	return 0
}

func pickRecovery(cli time.Duration, local, global *string) time.Duration {
	if cli > 0 {
		return cli
	}
	for _, p := range []*string{local, global} {
		if p == nil {
			continue
		}
		if d, err := time.ParseDuration(*p); err == nil && d > 0 {
			return d
		}
	}
	return 0
}
