// Package orchestrator schedules the registered scanners, governs their
// concurrency and timeouts, and aggregates their results into one run.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/codesweep/codesweep/internal/consolidate"
	"github.com/codesweep/codesweep/internal/risk"
	"github.com/codesweep/codesweep/internal/scanner"
	"github.com/codesweep/codesweep/internal/types"
)

// Phase names the orchestrator's state machine states.
type Phase string

const (
	PhaseInit      Phase = "initialization"
	PhaseScanning  Phase = "scanning"
	PhaseAnalysis  Phase = "analysis"
	PhaseReporting Phase = "reporting"
	PhaseComplete  Phase = "complete"
	PhaseError     Phase = "error"
)

// Progress bands per phase, in percent.
const (
	bandInitEnd     = 10.0
	bandScanEnd     = 70.0
	bandReportEnd   = 85.0
	bandCompleteEnd = 100.0
)

var (
	// ErrBreakerOpen rejects run attempts while the circuit breaker is open.
	ErrBreakerOpen = errors.New("circuit breaker open; run attempts temporarily rejected")
	// ErrNoScanners means configuration resolved zero runnable scanners.
	ErrNoScanners = errors.New("no valid scanners resolved")
)

// Config is the orchestration configuration, independent of any CLI surface.
type Config struct {
	ProjectName     string
	TargetPath      string
	OutputDir       string // owned by the external report layer, forwarded only
	EnabledScanners []string
	Parallel        bool
	MaxConcurrent   int
	ScannerTimeout  time.Duration
	HealthCheck     bool
	MaxMemoryBytes  uint64 // 0 disables the memory governor

	// forwarded, not interpreted
	IndividualReports   bool
	ComprehensiveReport bool

	// retry and breaker tuning
	MaxRetries       int
	RetryBaseDelay   time.Duration
	BreakerThreshold int
	BreakerRecovery  time.Duration

	// per-scanner configuration forwarded to Configure
	Scanner scanner.Config

	OnProgress func(phase Phase, percent float64, message string)
	OnError    func(types.OrchestrationError)
}

func (c *Config) defaults() {
	if c.MaxConcurrent <= 0 {
		c.MaxConcurrent = 3
	}
	if c.ScannerTimeout <= 0 {
		c.ScannerTimeout = 5 * time.Minute
	}
	if c.RetryBaseDelay <= 0 {
		c.RetryBaseDelay = 500 * time.Millisecond
	}
	if c.Scanner.Root == "" {
		c.Scanner.Root = c.TargetPath
	}
}

// Orchestrator owns the registry, the breaker, and the lifecycle of one or
// more runs. Construct one per process or per test; there is no hidden
// shared state.
type Orchestrator struct {
	registry *scanner.Registry
	cfg      Config
	breaker  *Breaker
	log      *slog.Logger

	mu       sync.Mutex
	lastPct  float64
	memCheck func() uint64 // overridable in tests
}

// New builds an orchestrator over a registry.
func New(registry *scanner.Registry, cfg Config) *Orchestrator {
	cfg.defaults()
	return &Orchestrator{
		registry: registry,
		cfg:      cfg,
		breaker:  NewBreaker(cfg.BreakerThreshold, cfg.BreakerRecovery),
		log:      slog.Default().With("component", "orchestrator"),
		memCheck: heapInUse,
	}
}

// Run executes one orchestrated scan over the enabled scanner set.
// A run with some failed scanners is still successful with partial coverage;
// only orchestration-level conditions produce Success=false.
func (o *Orchestrator) Run(ctx context.Context) (*types.OrchestrationResult, error) {
	if !o.breaker.Allow() {
		res := o.failedResult(types.OrchestrationError{
			Scanner: "", Kind: types.OrchErrConfiguration,
			Message: ErrBreakerOpen.Error(), At: time.Now().UTC(),
		})
		return res, ErrBreakerOpen
	}
	res, err := o.run(ctx, o.cfg.EnabledScanners)
	if res.Success {
		o.breaker.RecordSuccess()
	} else {
		o.breaker.RecordFailure()
	}
	return res, err
}

// RunWithRetry wraps Run with exponential backoff, re-running only the
// scanners whose previous attempt failed recoverably. It returns the latest
// merged result once no recoverable failures remain or the budget runs out.
func (o *Orchestrator) RunWithRetry(ctx context.Context) (*types.OrchestrationResult, error) {
	res, err := o.Run(ctx)
	if err != nil {
		return res, err
	}
	latest := map[string]types.ScanResult{}
	for _, sr := range res.ScanResults {
		latest[sr.Scanner] = sr
	}

	for attempt := 1; attempt <= o.cfg.MaxRetries; attempt++ {
		retryable := recoverableScanners(res.Errors, latest)
		if len(retryable) == 0 {
			break
		}
		delay := backoff(o.cfg.RetryBaseDelay, attempt)
		o.log.Info("retrying recoverable failures", "scanners", retryable, "attempt", attempt, "delay", delay)
		select {
		case <-ctx.Done():
			return res, ctx.Err()
		case <-time.After(delay):
		}

		retryRes, retryErr := o.run(ctx, retryable)
		if retryErr != nil {
			return res, retryErr
		}
		for _, sr := range retryRes.ScanResults {
			latest[sr.Scanner] = sr
		}
		res = o.mergeRetry(res, retryRes, latest)
	}
	return res, nil
}

func (o *Orchestrator) run(ctx context.Context, enabled []string) (*types.OrchestrationResult, error) {
	started := time.Now()
	o.resetProgress()
	o.progress(PhaseInit, 0, "resolving scanners")

	var orchErrors []types.OrchestrationError
	record := func(e types.OrchestrationError) {
		orchErrors = append(orchErrors, e)
		if o.cfg.OnError != nil {
			o.cfg.OnError(e)
		}
	}

	jobs := o.resolve(enabled, record)
	o.progress(PhaseInit, bandInitEnd, fmt.Sprintf("%d scanners ready", len(jobs)))

	if len(jobs) == 0 {
		o.progress(PhaseError, o.currentPct(), ErrNoScanners.Error())
		res := o.failedResult(orchErrors...)
		res.Duration = time.Since(started)
		return res, nil
	}

	var results []types.ScanResult
	if o.cfg.Parallel {
		results = o.runParallel(ctx, jobs, record)
	} else {
		results = o.runSequential(ctx, jobs, record)
	}
	o.progress(PhaseScanning, bandScanEnd, "scanning complete")

	// individual report generation is external; the band is still reported
	o.progress(PhaseReporting, bandReportEnd, "per-scanner results ready")

	o.progress(PhaseAnalysis, bandReportEnd, "consolidating findings")
	consolidated := consolidate.Consolidate(results)
	summary := buildSummary(consolidated, results, orchErrors, len(jobs))
	o.progress(PhaseComplete, bandCompleteEnd, "run complete")

	return &types.OrchestrationResult{
		Success:      true,
		Consolidated: consolidated,
		ScanResults:  results,
		Errors:       orchErrors,
		Duration:     time.Since(started),
		Summary:      summary,
	}, nil
}

type job struct {
	name string
	scn  scanner.Scanner
}

// resolve turns enabled names into runnable jobs, recording errors for
// unknown names, failed configuration, unhealthy scanners, and empty targets.
func (o *Orchestrator) resolve(enabled []string, record func(types.OrchestrationError)) []job {
	var jobs []job
	for _, name := range enabled {
		scn, ok := o.registry.Get(name)
		if !ok {
			record(types.OrchestrationError{
				Scanner: name, Kind: types.OrchErrConfiguration,
				Message: fmt.Sprintf("scanner %q is not registered", name),
				At:      time.Now().UTC(), Recoverable: false,
			})
			continue
		}
		cfg := o.cfg.Scanner
		cfg.Timeout = o.cfg.ScannerTimeout
		if err := scn.Configure(cfg); err != nil {
			record(types.OrchestrationError{
				Scanner: name, Kind: types.OrchErrConfiguration,
				Message: err.Error(), At: time.Now().UTC(), Recoverable: false,
			})
			continue
		}
		if o.cfg.HealthCheck {
			if h := scn.Health(); !h.Healthy {
				record(types.OrchestrationError{
					Scanner: name, Kind: types.OrchErrUnknown,
					Message: "health check failed", At: time.Now().UTC(), Recoverable: true,
				})
				continue
			}
		}
		if v := scn.ValidateAccess(); !v.OK {
			record(types.OrchestrationError{
				Scanner: name, Kind: types.OrchErrAccess,
				Message: fmt.Sprintf("access validation failed: %v", v.Errors),
				At:      time.Now().UTC(), Recoverable: true,
			})
			continue
		}
		jobs = append(jobs, job{name: name, scn: scn})
	}
	return jobs
}

// runParallel executes jobs under the permit pool. Permit release is
// guaranteed by defer on every exit path.
func (o *Orchestrator) runParallel(ctx context.Context, jobs []job, record func(types.OrchestrationError)) []types.ScanResult {
	permits := make(chan struct{}, o.cfg.MaxConcurrent)
	type outcome struct {
		res *types.ScanResult
		err *types.OrchestrationError
	}
	out := make(chan outcome, len(jobs))
	var completed int

	for _, j := range jobs {
		j := j
		go func() {
			permits <- struct{}{}
			defer func() { <-permits }()

			if oerr := o.memoryGate(j.name); oerr != nil {
				out <- outcome{err: oerr}
				return
			}
			res, oerr := o.executeOne(ctx, j)
			out <- outcome{res: res, err: oerr}
		}()
	}

	var results []types.ScanResult
	for range jobs {
		oc := <-out
		completed++
		if oc.err != nil {
			record(*oc.err)
		}
		if oc.res != nil {
			results = append(results, *oc.res)
		}
		pct := bandInitEnd + (bandScanEnd-bandInitEnd)*float64(completed)/float64(len(jobs))
		o.progress(PhaseScanning, pct, fmt.Sprintf("%d/%d scanners complete", completed, len(jobs)))
	}
	return results
}

func (o *Orchestrator) runSequential(ctx context.Context, jobs []job, record func(types.OrchestrationError)) []types.ScanResult {
	var results []types.ScanResult
	for i, j := range jobs {
		if oerr := o.memoryGate(j.name); oerr != nil {
			record(*oerr)
			continue
		}
		res, oerr := o.executeOne(ctx, j)
		if oerr != nil {
			record(*oerr)
		}
		if res != nil {
			results = append(results, *res)
		}
		pct := bandInitEnd + (bandScanEnd-bandInitEnd)*float64(i+1)/float64(len(jobs))
		o.progress(PhaseScanning, pct, fmt.Sprintf("%s complete", j.name))
	}
	return results
}

// executeOne runs a single scan under the per-scanner timeout. A scan that
// exceeds the timeout is abandoned: its partial output is discarded and only
// a timeout error is recorded. Cleanup runs on every path, including after an
// abandoned scan finally returns.
func (o *Orchestrator) executeOne(ctx context.Context, j job) (*types.ScanResult, *types.OrchestrationError) {
	scanCtx, cancel := context.WithTimeout(ctx, o.cfg.ScannerTimeout)
	defer cancel()

	type scanOutcome struct {
		res *types.ScanResult
		err error
	}
	done := make(chan scanOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- scanOutcome{err: fmt.Errorf("panic: %v", r)}
			}
		}()
		defer func() { _ = j.scn.Cleanup() }()
		res, err := j.scn.Scan(scanCtx, nil)
		done <- scanOutcome{res: res, err: err}
	}()

	select {
	case <-scanCtx.Done():
		if errors.Is(scanCtx.Err(), context.DeadlineExceeded) {
			return nil, &types.OrchestrationError{
				Scanner: j.name, Kind: types.OrchErrTimeout,
				Message: fmt.Sprintf("scan exceeded %s", o.cfg.ScannerTimeout),
				At:      time.Now().UTC(), Recoverable: true,
			}
		}
		return nil, &types.OrchestrationError{
			Scanner: j.name, Kind: types.OrchErrUnknown,
			Message: scanCtx.Err().Error(), At: time.Now().UTC(), Recoverable: false,
		}
	case oc := <-done:
		if oc.err != nil {
			kind := types.OrchErrCrash
			recoverable := false
			if errors.Is(oc.err, context.DeadlineExceeded) {
				kind, recoverable = types.OrchErrTimeout, true
			}
			return nil, &types.OrchestrationError{
				Scanner: j.name, Kind: kind,
				Message: oc.err.Error(), At: time.Now().UTC(), Recoverable: recoverable,
			}
		}
		return oc.res, nil
	}
}

// memoryGate skips dispatch when heap usage already exceeds the ceiling.
func (o *Orchestrator) memoryGate(name string) *types.OrchestrationError {
	if o.cfg.MaxMemoryBytes == 0 {
		return nil
	}
	if used := o.memCheck(); used > o.cfg.MaxMemoryBytes {
		return &types.OrchestrationError{
			Scanner: name, Kind: types.OrchErrResource,
			Message: fmt.Sprintf("memory usage %d exceeds ceiling %d; scan skipped", used, o.cfg.MaxMemoryBytes),
			At:      time.Now().UTC(), Recoverable: true,
		}
	}
	return nil
}

func heapInUse() uint64 {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	return mem.HeapInuse
}

func (o *Orchestrator) failedResult(errs ...types.OrchestrationError) *types.OrchestrationResult {
	return &types.OrchestrationResult{
		Success: false,
		Errors:  errs,
		Summary: types.Summary{
			BySeverity:  map[types.Severity]int{},
			OverallRisk: types.RiskNegligible,
		},
		Consolidated: types.ConsolidatedResult{ScannerVersions: map[string]string{}},
	}
}

// recoverableScanners lists scanners whose latest attempt failed recoverably
// and that have not produced a result since.
func recoverableScanners(errs []types.OrchestrationError, latest map[string]types.ScanResult) []string {
	var names []string
	seen := map[string]bool{}
	for _, e := range errs {
		if !e.Recoverable || e.Scanner == "" || seen[e.Scanner] {
			continue
		}
		if _, ok := latest[e.Scanner]; ok {
			continue
		}
		seen[e.Scanner] = true
		names = append(names, e.Scanner)
	}
	return names
}

// mergeRetry folds a retry attempt into the prior aggregate: successful
// re-runs replace their recoverable errors, everything is re-consolidated.
func (o *Orchestrator) mergeRetry(prev, retry *types.OrchestrationResult, latest map[string]types.ScanResult) *types.OrchestrationResult {
	results := make([]types.ScanResult, 0, len(latest))
	for _, sr := range latest {
		results = append(results, sr)
	}

	var errs []types.OrchestrationError
	for _, e := range prev.Errors {
		if e.Recoverable {
			if _, ok := latest[e.Scanner]; ok {
				continue // recovered on retry
			}
		}
		errs = append(errs, e)
	}
	errs = append(errs, retry.Errors...)

	consolidated := consolidate.Consolidate(results)
	attempted := map[string]bool{}
	for _, r := range results {
		attempted[r.Scanner] = true
	}
	for _, e := range errs {
		if e.Scanner != "" {
			attempted[e.Scanner] = true
		}
	}
	return &types.OrchestrationResult{
		// a retry round must not paper over a run that never executed
		// anything: the merge is successful only if some scanner has
		// produced a result or the original run already succeeded
		Success:      len(results) > 0 || prev.Success,
		Consolidated: consolidated,
		ScanResults:  results,
		Errors:       errs,
		Duration:     prev.Duration + retry.Duration,
		Summary:      buildSummary(consolidated, results, errs, len(attempted)),
	}
}

func buildSummary(c types.ConsolidatedResult, results []types.ScanResult, errs []types.OrchestrationError, executed int) types.Summary {
	bySev := map[types.Severity]int{}
	var confSum float64
	for _, f := range c.Findings {
		bySev[f.Severity]++
		confSum += f.Confidence
	}
	avgConf := 0.0
	if len(c.Findings) > 0 {
		avgConf = confSum / float64(len(c.Findings))
	}

	failed := map[string]bool{}
	for _, e := range errs {
		if e.Scanner != "" {
			failed[e.Scanner] = true
		}
	}
	for _, r := range results {
		delete(failed, r.Scanner)
	}

	return types.Summary{
		BySeverity:        bySev,
		ScannersExecuted:  executed,
		ScannersSucceeded: len(results),
		ScannersFailed:    len(failed),
		TotalFiles:        c.TotalFiles,
		AvgConfidence:     avgConf,
		OverallRisk:       overallRisk(c.Findings),
	}
}

// overallRisk buckets the consolidated finding set using the risk engine's
// scoring of the most severe category group.
func overallRisk(findings []types.Finding) types.RiskLevel {
	assessments := risk.Assess(findings, risk.DefaultAssessor)
	if len(assessments) == 0 {
		return types.RiskNegligible
	}
	// Assess sorts by descending overall risk
	return assessments[0].Score.Level
}

func backoff(base time.Duration, attempt int) time.Duration {
	d := base
	for i := 1; i < attempt; i++ {
		d *= 2
		if d > 30*time.Second {
			return 30 * time.Second
		}
	}
	return d
}

func (o *Orchestrator) resetProgress() {
	o.mu.Lock()
	o.lastPct = 0
	o.mu.Unlock()
}

func (o *Orchestrator) currentPct() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.lastPct
}

// progress emits a monotonically increasing percentage; regressions from
// concurrent completions are clamped to the high-water mark.
func (o *Orchestrator) progress(phase Phase, pct float64, msg string) {
	o.mu.Lock()
	if pct < o.lastPct {
		pct = o.lastPct
	}
	o.lastPct = pct
	o.mu.Unlock()
	if o.cfg.OnProgress != nil {
		o.cfg.OnProgress(phase, pct, msg)
	}
}
