package rule

// KindType represents the obligation strength of a rule.
type KindType string

const (
	// KindMust is a hard requirement. Violations block release.
	KindMust KindType = "must"

	// KindNever is a hard prohibition.
	KindNever KindType = "never"

	// KindShould is a strong recommendation.
	KindShould KindType = "should"

	// KindMay is an optional allowance.
	KindMay KindType = "may"

	// KindUnknown marks a statement whose obligation could not be
	// classified. Kept rather than dropped so no rule is silently lost.
	KindUnknown KindType = "unknown"
)

// kindRank orders kinds by obligation strength for merge conflicts.
// Stricter obligation wins; unknown always loses.
var kindRank = map[KindType]int{
	KindMust:    4,
	KindNever:   3,
	KindShould:  2,
	KindMay:     1,
	KindUnknown: 0,
}

// StricterKind returns the stronger of two obligation kinds.
// Any classified kind beats KindUnknown.
func StricterKind(a, b KindType) KindType {
	if kindRank[a] >= kindRank[b] {
		return a
	}
	return b
}

// IsValidKind reports whether s names a known obligation kind.
func IsValidKind(s string) bool {
	_, ok := kindRank[KindType(s)]
	return ok
}

// SeverityType represents rule violation severity levels.
type SeverityType string

const (
	// SeverityCritical indicates a violation that must never ship.
	SeverityCritical SeverityType = "critical"

	// SeverityHigh indicates a violation requiring prompt remediation.
	SeverityHigh SeverityType = "high"

	// SeverityMedium is the default severity when a source declares none.
	SeverityMedium SeverityType = "medium"

	// SeverityLow indicates advisory guidance.
	SeverityLow SeverityType = "low"
)

var severityRank = map[SeverityType]int{
	SeverityCritical: 4,
	SeverityHigh:     3,
	SeverityMedium:   2,
	SeverityLow:      1,
}

// MaxSeverity returns the higher of two severities.
func MaxSeverity(a, b SeverityType) SeverityType {
	if severityRank[a] >= severityRank[b] {
		return a
	}
	return b
}

// ParseSeverity maps a free-form severity string to a SeverityType.
// Unrecognized values fall back to SeverityMedium.
func ParseSeverity(s string) SeverityType {
	switch SeverityType(s) {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return SeverityType(s)
	default:
		return SeverityMedium
	}
}

// SourceKindType discriminates the document classes a rule can come from.
type SourceKindType string

const (
	// SourceDeclarativeConfig is a structured key/value document
	// (YAML or JSON) whose leaves declare expectations directly.
	SourceDeclarativeConfig SourceKindType = "declarative-config"

	// SourceNarrativeSpec is prose with headings and obligation
	// statements (must/shall/never/should/may).
	SourceNarrativeSpec SourceKindType = "narrative-spec"

	// SourceGeneratedReport is machine-produced output that already
	// carries identifiers and classifications in a tabular layout.
	SourceGeneratedReport SourceKindType = "generated-report"
)

// SourceKindOrder is the canonical ordering of source kinds used when
// concatenating origin locations during rule merging.
var SourceKindOrder = []SourceKindType{
	SourceDeclarativeConfig,
	SourceNarrativeSpec,
	SourceGeneratedReport,
}

// ArtifactCategory is one of exactly five implementation-evidence
// buckets checked for every rule. The set is closed; no stage may
// introduce a sixth category.
type ArtifactCategory string

const (
	// CategoryContractDefinition covers interface and schema artifacts.
	CategoryContractDefinition ArtifactCategory = "contract_definition"

	// CategoryCoreLogic covers the primary implementation code.
	CategoryCoreLogic ArtifactCategory = "core_logic"

	// CategoryPolicyEnforcement covers guard and validation layers.
	CategoryPolicyEnforcement ArtifactCategory = "policy_enforcement"

	// CategoryCLIValidation covers command-line input checking.
	CategoryCLIValidation ArtifactCategory = "cli_validation"

	// CategoryTestSuite covers automated test evidence.
	CategoryTestSuite ArtifactCategory = "test_suite"
)

// AllCategories returns the five artifact categories in canonical order.
func AllCategories() []ArtifactCategory {
	return []ArtifactCategory{
		CategoryContractDefinition,
		CategoryCoreLogic,
		CategoryPolicyEnforcement,
		CategoryCLIValidation,
		CategoryTestSuite,
	}
}

// IsValidCategory reports whether s names one of the five categories.
func IsValidCategory(s string) bool {
	switch ArtifactCategory(s) {
	case CategoryContractDefinition, CategoryCoreLogic,
		CategoryPolicyEnforcement, CategoryCLIValidation, CategoryTestSuite:
		return true
	default:
		return false
	}
}
