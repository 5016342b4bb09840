package types

import "time"

// Severity is the urgency of a finding, ordered critical > high > medium > low > info.
type Severity string

const (
	SevCritical Severity = "critical"
	SevHigh     Severity = "high"
	SevMedium   Severity = "medium"
	SevLow      Severity = "low"
	SevInfo     Severity = "info"
)

// Rank returns a numeric ordering for a severity (higher = more severe).
// Unknown severities rank below info.
func (s Severity) Rank() int {
	switch s {
	case SevCritical:
		return 5
	case SevHigh:
		return 4
	case SevMedium:
		return 3
	case SevLow:
		return 2
	case SevInfo:
		return 1
	}
	return 0
}

// Valid reports whether s is a member of the closed severity set.
func (s Severity) Valid() bool { return s.Rank() > 0 }

// Category is the closed vocabulary of vulnerability classes.
type Category string

const (
	CatInjection         Category = "injection"
	CatCommandInjection  Category = "command-injection"
	CatBrokenAccess      Category = "broken-access-control"
	CatHardcodedSecret   Category = "hardcoded-secret"
	CatCryptoFailure     Category = "cryptographic-failure"
	CatInfoDisclosure    Category = "information-disclosure"
	CatDeserialization   Category = "insecure-deserialization"
	CatLoggingFailure    Category = "logging-failure"
	CatInsecureConfig    Category = "insecure-configuration"
	CatInsecureTransport Category = "insecure-transport"
	CatPathTraversal     Category = "path-traversal"
	CatVulnerableDep     Category = "vulnerable-dependency"
)

// Categories lists every member of the closed category set.
func Categories() []Category {
	return []Category{
		CatInjection, CatCommandInjection, CatBrokenAccess, CatHardcodedSecret,
		CatCryptoFailure, CatInfoDisclosure, CatDeserialization, CatLoggingFailure,
		CatInsecureConfig, CatInsecureTransport, CatPathTraversal, CatVulnerableDep,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, k := range Categories() {
		if c == k {
			return true
		}
	}
	return false
}

// Location points at the place in the target tree where a finding was detected.
type Location struct {
	FilePath string `json:"file_path"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
	Snippet  string `json:"snippet,omitempty"`
}

// RemediationPlan describes how to fix a finding. Steps is never empty.
type RemediationPlan struct {
	Summary      string   `json:"summary"`
	Steps        []string `json:"steps"`
	Effort       string   `json:"effort"`
	Priority     int      `json:"priority"`
	Timeline     string   `json:"timeline"`
	Verification []string `json:"verification,omitempty"`
}

// Finding is one detected, located, categorized security issue.
type Finding struct {
	ID           string          `json:"id"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Severity     Severity        `json:"severity"`
	Category     Category        `json:"category"`
	CWE          string          `json:"cwe,omitempty"`
	Location     Location        `json:"location"`
	Evidence     []string        `json:"evidence,omitempty"`
	Impact       string          `json:"impact,omitempty"`
	Likelihood   string          `json:"likelihood,omitempty"`
	Remediation  RemediationPlan `json:"remediation"`
	References   []string        `json:"references,omitempty"`
	Confidence   float64         `json:"confidence"`
	DiscoveredAt time.Time       `json:"discovered_at"`
	Scanner      string          `json:"scanner"`
}

// RiskLevel is the bucket label derived from an overall risk score.
type RiskLevel string

const (
	RiskCritical   RiskLevel = "critical"
	RiskHigh       RiskLevel = "high"
	RiskMedium     RiskLevel = "medium"
	RiskLow        RiskLevel = "low"
	RiskNegligible RiskLevel = "negligible"
)

// RiskScore holds a likelihood x impact assessment on 1-5 scales.
type RiskScore struct {
	Likelihood int       `json:"likelihood"`
	Impact     int       `json:"impact"`
	Overall    int       `json:"overall"`
	Level      RiskLevel `json:"level"`
	Confidence float64   `json:"confidence"`
}

// BusinessImpact captures the business-facing consequences of a risk group.
type BusinessImpact struct {
	ImpactTypes        []string `json:"impact_types"`
	FinancialRange     string   `json:"financial_range"`
	OperationalImpact  string   `json:"operational_impact"`
	ComplianceImpact   string   `json:"compliance_impact"`
	ReputationalImpact string   `json:"reputational_impact"`
}

// ThreatModel is a minimal threat sketch for a risk group.
type ThreatModel struct {
	Actors     []string `json:"actors"`
	Vectors    []string `json:"vectors"`
	AssetValue string   `json:"asset_value"`
	Scenarios  []string `json:"scenarios"`
}

// RiskAssessment is derived from a group of findings, typically per category.
type RiskAssessment struct {
	Target       string         `json:"target"`
	Score        RiskScore      `json:"score"`
	Business     BusinessImpact `json:"business"`
	Threat       ThreatModel    `json:"threat"`
	Mitigations  []string       `json:"mitigations,omitempty"`
	ResidualRisk RiskScore      `json:"residual_risk"`
	AssessedAt   time.Time      `json:"assessed_at"`
	Assessor     string         `json:"assessor"`
}

// ComplianceStatus classifies how a mapped control group stands.
type ComplianceStatus string

const (
	StatusCompliant    ComplianceStatus = "compliant"
	StatusPartial      ComplianceStatus = "partially-compliant"
	StatusNonCompliant ComplianceStatus = "non-compliant"
)

// Control is a named requirement from an external compliance framework.
type Control struct {
	Framework      string   `json:"framework"`
	Number         string   `json:"number"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Practices      []string `json:"practices,omitempty"`
	TestProcedures []string `json:"test_procedures,omitempty"`
}

// GapAnalysis describes one identified compliance gap.
type GapAnalysis struct {
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Remediation string   `json:"remediation"`
	Timeline    string   `json:"timeline"`
	Owner       string   `json:"owner"`
}

// ComplianceMapping links a finding to the control entries its category violates.
type ComplianceMapping struct {
	FindingID string           `json:"finding_id"`
	Controls  []Control        `json:"controls"`
	Status    ComplianceStatus `json:"status"`
	Evidence  []string         `json:"evidence,omitempty"`
	Gaps      []GapAnalysis    `json:"gaps,omitempty"`
	Actions   []string         `json:"actions,omitempty"`
}

// ScanErrorKind classifies a per-file scan failure.
type ScanErrorKind string

const (
	ScanErrUnreadable  ScanErrorKind = "unreadable"
	ScanErrParse       ScanErrorKind = "parse"
	ScanErrOversize    ScanErrorKind = "oversize"
	ScanErrUnknownKind ScanErrorKind = "unknown"
)

// ScanError records a single-file failure that did not abort the scan.
type ScanError struct {
	FilePath string        `json:"file_path"`
	Kind     ScanErrorKind `json:"kind"`
	Message  string        `json:"message"`
	At       time.Time     `json:"at"`
}

// ScanMetadata carries run statistics for one scanner invocation.
type ScanMetadata struct {
	Duration     time.Duration `json:"duration"`
	PeakMemBytes uint64        `json:"peak_mem_bytes"`
	RulesApplied int           `json:"rules_applied"`
	Confidence   float64       `json:"confidence"`
}

// ScanResult is one scanner's complete output for one run.
type ScanResult struct {
	Scanner      string              `json:"scanner"`
	Version      string              `json:"version"`
	Target       string              `json:"target"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   time.Time           `json:"finished_at"`
	FilesScanned int                 `json:"files_scanned"`
	Findings     []Finding           `json:"findings"`
	Risks        []RiskAssessment    `json:"risks,omitempty"`
	Compliance   []ComplianceMapping `json:"compliance,omitempty"`
	Errors       []ScanError         `json:"errors,omitempty"`
	Metadata     ScanMetadata        `json:"metadata"`
}

// OrchErrorKind classifies a scanner-level or run-level failure.
type OrchErrorKind string

const (
	OrchErrTimeout       OrchErrorKind = "timeout"
	OrchErrCrash         OrchErrorKind = "crash"
	OrchErrConfiguration OrchErrorKind = "configuration"
	OrchErrAccess        OrchErrorKind = "access"
	OrchErrResource      OrchErrorKind = "resource"
	OrchErrUnknown       OrchErrorKind = "unknown"
)

// OrchestrationError records why a scanner (or the run) failed.
type OrchestrationError struct {
	Scanner     string        `json:"scanner"`
	Kind        OrchErrorKind `json:"kind"`
	Message     string        `json:"message"`
	At          time.Time     `json:"at"`
	Recoverable bool          `json:"recoverable"`
}

// QualityMetrics summarizes consolidation effectiveness for one run.
type QualityMetrics struct {
	RawFindings    int     `json:"raw_findings"`
	Deduplicated   int     `json:"deduplicated"`
	DedupRatio     float64 `json:"dedup_ratio"`
	AverageQuality float64 `json:"average_quality"`
}

// ConsolidatedResult is the deduplicated cross-scanner view of a run.
type ConsolidatedResult struct {
	Findings        []Finding         `json:"findings"`
	TotalFiles      int               `json:"total_files"`
	ScannerVersions map[string]string `json:"scanner_versions"`
	Quality         *QualityMetrics   `json:"quality,omitempty"`
}

// Summary is the run-level roll-up consumed by the report layer.
type Summary struct {
	BySeverity        map[Severity]int `json:"by_severity"`
	ScannersExecuted  int              `json:"scanners_executed"`
	ScannersSucceeded int              `json:"scanners_succeeded"`
	ScannersFailed    int              `json:"scanners_failed"`
	TotalFiles        int              `json:"total_files"`
	AvgConfidence     float64          `json:"avg_confidence"`
	OverallRisk       RiskLevel        `json:"overall_risk"`
}

// OrchestrationResult is the aggregate of one orchestrated run.
type OrchestrationResult struct {
	Success      bool                 `json:"success"`
	Consolidated ConsolidatedResult   `json:"consolidated"`
	ScanResults  []ScanResult         `json:"scan_results"`
	Errors       []OrchestrationError `json:"errors,omitempty"`
	Duration     time.Duration        `json:"duration"`
	Summary      Summary              `json:"summary"`
}
