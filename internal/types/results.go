package types

import (
	"fmt"
	"math"
)

// ConflictKind categorizes a logical inconsistency between two records.
type ConflictKind string

const (
	// ConflictInconsistentLegalBasis flags the same organization declaring the
	// same purpose under different legal bases.
	ConflictInconsistentLegalBasis ConflictKind = "inconsistent_legal_basis"

	// ConflictPossibleDuplicate flags a near-identical activity.
	ConflictPossibleDuplicate ConflictKind = "possible_duplicate"
)

// IsValid checks if the conflict kind is valid
func (k ConflictKind) IsValid() bool {
	switch k {
	case ConflictInconsistentLegalBasis, ConflictPossibleDuplicate:
		return true
	}
	return false
}

// ConflictSeverity grades how serious a detected conflict is.
type ConflictSeverity string

const (
	ConflictSeverityMedium ConflictSeverity = "medium"
	ConflictSeverityHigh   ConflictSeverity = "high"
)

// IsValid checks if the severity value is valid
func (s ConflictSeverity) IsValid() bool {
	switch s {
	case ConflictSeverityMedium, ConflictSeverityHigh:
		return true
	}
	return false
}

// Conflict is a rule-based finding over one pairwise comparison.
type Conflict struct {
	Kind     ConflictKind     `json:"kind"`
	Severity ConflictSeverity `json:"severity"`
	Message  string           `json:"message"`
}

// MergeConfidence grades how confident the merge assessor is.
type MergeConfidence string

const (
	MergeConfidenceLow    MergeConfidence = "low"
	MergeConfidenceMedium MergeConfidence = "medium"
	MergeConfidenceHigh   MergeConfidence = "high"
)

// IsValid checks if the merge confidence value is valid
func (c MergeConfidence) IsValid() bool {
	switch c {
	case MergeConfidenceLow, MergeConfidenceMedium, MergeConfidenceHigh:
		return true
	}
	return false
}

// MergeOpportunity is a heuristic recommendation that two records describe
// the same real-world activity and could be consolidated.
type MergeOpportunity struct {
	Recommended bool            `json:"recommended"`
	Confidence  MergeConfidence `json:"confidence"`

	// Benefits lists qualitative outcomes of merging. Populated only when
	// Recommended is true; descriptive text, never scored.
	Benefits []string `json:"benefits,omitempty"`
}

// FieldScore is the per-field similarity result of one comparison.
type FieldScore struct {
	Field string  `json:"field"`
	Score float64 `json:"score"`
}

// Comparison is the full result of comparing two records: the weighted
// aggregate score, the per-field breakdown it was computed from, and the
// conflict and merge findings derived from that breakdown.
type Comparison struct {
	// Score is the weighted aggregate in [0,1], kept at full precision.
	// Use Rounded for the two-decimal presentation value.
	Score float64 `json:"score"`

	Fields    map[string]FieldScore `json:"fields"`
	Conflicts []Conflict            `json:"conflicts,omitempty"`
	Merge     MergeOpportunity      `json:"merge_opportunity"`
}

// Rounded returns the aggregate score rounded to two decimal places.
func (c Comparison) Rounded() float64 {
	return math.Round(c.Score*100) / 100
}

// Validate checks the comparison invariants: every score in [0,1] and every
// conflict carrying valid enum values.
func (c Comparison) Validate() error {
	if c.Score < 0.0 || c.Score > 1.0 {
		return fmt.Errorf("score must be between 0.0 and 1.0 (got %.4f)", c.Score)
	}
	for name, fs := range c.Fields {
		if fs.Score < 0.0 || fs.Score > 1.0 {
			return fmt.Errorf("field %s score must be between 0.0 and 1.0 (got %.4f)", name, fs.Score)
		}
		if fs.Field != name {
			return fmt.Errorf("field entry %s carries mismatched name %q", name, fs.Field)
		}
	}
	for _, conflict := range c.Conflicts {
		if !conflict.Kind.IsValid() {
			return fmt.Errorf("invalid conflict kind: %s", conflict.Kind)
		}
		if !conflict.Severity.IsValid() {
			return fmt.Errorf("invalid conflict severity: %s", conflict.Severity)
		}
	}
	if !c.Merge.Confidence.IsValid() {
		return fmt.Errorf("invalid merge confidence: %s", c.Merge.Confidence)
	}
	if !c.Merge.Recommended && len(c.Merge.Benefits) > 0 {
		return fmt.Errorf("benefits should only be set when merge is recommended")
	}
	return nil
}

// Action is the recommended handling of a candidate record.
type Action string

const (
	ActionCreate Action = "create"
	ActionInform Action = "inform"
	ActionWarn   Action = "warn"
	ActionBlock  Action = "block"
)

// IsValid checks if the action value is valid
func (a Action) IsValid() bool {
	switch a {
	case ActionCreate, ActionInform, ActionWarn, ActionBlock:
		return true
	}
	return false
}

// DecisionSeverity maps an action onto a presentation severity.
type DecisionSeverity string

const (
	SeveritySuccess DecisionSeverity = "success"
	SeverityInfo    DecisionSeverity = "info"
	SeverityWarning DecisionSeverity = "warning"
	SeverityError   DecisionSeverity = "error"
)

// IsValid checks if the decision severity value is valid
func (s DecisionSeverity) IsValid() bool {
	switch s {
	case SeveritySuccess, SeverityInfo, SeverityWarning, SeverityError:
		return true
	}
	return false
}

// Decision is the engine's recommendation for the candidate record.
type Decision struct {
	Action   Action           `json:"action"`
	Message  string           `json:"message"`
	Severity DecisionSeverity `json:"severity"`
}

// SimilarRecord pairs an existing record with its comparison result and a
// band-specific recommendation for the reviewer.
type SimilarRecord struct {
	Record         *Record    `json:"record"`
	Result         Comparison `json:"result"`
	Recommendation string     `json:"recommendation"`
}

// DuplicationAnalysis is the top-level output of a single-record check.
//
// When Degraded is true an internal computation failure was swallowed and
// the analysis is the safe default (no similars, create); DegradedReason
// carries the diagnostic for the caller's logging boundary.
type DuplicationAnalysis struct {
	HasSimilar     bool            `json:"has_similar"`
	SimilarRecords []SimilarRecord `json:"similar_records,omitempty"`
	Decision       Decision        `json:"decision"`

	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

// Validate checks the analysis invariants: consistent HasSimilar flag,
// descending score order, and valid decision enums.
func (a DuplicationAnalysis) Validate() error {
	if a.HasSimilar != (len(a.SimilarRecords) > 0) {
		return fmt.Errorf("has_similar (%t) does not match similar_records length (%d)",
			a.HasSimilar, len(a.SimilarRecords))
	}
	for i := 1; i < len(a.SimilarRecords); i++ {
		if a.SimilarRecords[i].Result.Score > a.SimilarRecords[i-1].Result.Score {
			return fmt.Errorf("similar_records not ordered by descending score at index %d", i)
		}
	}
	if !a.Decision.Action.IsValid() {
		return fmt.Errorf("invalid action: %s", a.Decision.Action)
	}
	if !a.Decision.Severity.IsValid() {
		return fmt.Errorf("invalid decision severity: %s", a.Decision.Severity)
	}
	for i, sr := range a.SimilarRecords {
		if err := sr.Result.Validate(); err != nil {
			return fmt.Errorf("similar_records[%d]: %w", i, err)
		}
	}
	return nil
}

// KeywordCount is one common-purpose keyword and how many records in the
// group mention it.
type KeywordCount struct {
	Token     string `json:"token"`
	Frequency int    `json:"frequency"`
}

// RiskPair is an unordered record pair scoring above the duplicate-risk
// threshold under the reduced two-factor similarity.
type RiskPair struct {
	IDA   string  `json:"id_a"`
	IDB   string  `json:"id_b"`
	Score float64 `json:"score"`
}

// PopulationReport is the output of batch analysis over one record group.
type PopulationReport struct {
	CommonKeywords []KeywordCount `json:"common_keywords,omitempty"`
	RiskPairs      []RiskPair     `json:"duplicate_risk_pairs,omitempty"`

	// ConsolidationOpportunities lists record-ID clusters of size > 1 found
	// by greedy similarity grouping.
	ConsolidationOpportunities [][]string `json:"consolidation_opportunities,omitempty"`

	Degraded       bool   `json:"degraded,omitempty"`
	DegradedReason string `json:"degraded_reason,omitempty"`
}

// Suggestion is one improvement hint for an incomplete record.
type Suggestion struct {
	Field   string `json:"field"`
	Message string `json:"message"`

	// SourceID references the sibling record the suggestion was derived
	// from, when it came from best-practice extraction.
	SourceID string `json:"source_id,omitempty"`
}
