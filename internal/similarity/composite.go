// Package similarity computes weighted multi-field similarity between two
// processing-activity records, together with the rule-based conflict and
// merge findings derived from the per-field breakdown.
//
// The Comparer is stateless: it holds only its calibration and never
// mutates or retains the records it compares. Compare is symmetric in its
// arguments.
package similarity

import (
	"fmt"

	"github.com/ropatools/dedup/internal/textnorm"
	"github.com/ropatools/dedup/internal/types"
)

// Comparer scores record pairs under a fixed calibration.
type Comparer struct {
	cfg Config
}

// NewComparer creates a comparer with the given calibration.
func NewComparer(cfg Config) (*Comparer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Comparer{cfg: cfg}, nil
}

// Config returns the comparer's calibration.
func (c *Comparer) Config() Config {
	return c.cfg
}

// Compare scores two records field by field and aggregates the weighted
// composite score, then runs conflict detection and merge assessment over
// the breakdown. Missing fields score 0 except the symmetric empty-empty
// cases handled by the individual comparators.
func (c *Comparer) Compare(a, b *types.Record) types.Comparison {
	fields := map[string]types.FieldScore{
		FieldResponsibleParty: {
			Field: FieldResponsibleParty,
			Score: compareResponsibleParty(partyOf(a), partyOf(b)),
		},
		FieldPurpose: {
			Field: FieldPurpose,
			Score: comparePurpose(purposeOf(a), purposeOf(b)),
		},
		FieldDataCategories: {
			Field: FieldDataCategories,
			Score: textnorm.Jaccard(categoriesOf(a), categoriesOf(b)),
		},
		FieldDataSubjectCategories: {
			Field: FieldDataSubjectCategories,
			Score: textnorm.Jaccard(subjectsOf(a), subjectsOf(b)),
		},
		FieldInternationalTransfer: {
			Field: FieldInternationalTransfer,
			Score: compareTransfer(transferOf(a), transferOf(b)),
		},
		FieldLegalBasis: {
			Field: FieldLegalBasis,
			Score: compareCategorical(a.LegalBasisKind(), b.LegalBasisKind()),
		},
		FieldDataSource: {
			Field: FieldDataSource,
			Score: compareCategorical(a.DataSourceKind(), b.DataSourceKind()),
		},
	}

	w := c.cfg.Weights
	score := w.ResponsibleParty*fields[FieldResponsibleParty].Score +
		w.Purpose*fields[FieldPurpose].Score +
		w.DataCategories*fields[FieldDataCategories].Score +
		w.DataSubjectCategories*fields[FieldDataSubjectCategories].Score +
		w.InternationalTransfer*fields[FieldInternationalTransfer].Score +
		w.LegalBasis*fields[FieldLegalBasis].Score +
		w.DataSource*fields[FieldDataSource].Score

	score = clamp01(score)

	return types.Comparison{
		Score:     score,
		Fields:    fields,
		Conflicts: c.detectConflicts(fields),
		Merge:     c.assessMerge(fields),
	}
}

// detectConflicts evaluates the conflict rules over a field breakdown. The
// rules are independent checks; a pair can trigger zero, one, or both.
func (c *Comparer) detectConflicts(fields map[string]types.FieldScore) []types.Conflict {
	var conflicts []types.Conflict

	party := fields[FieldResponsibleParty].Score
	purpose := fields[FieldPurpose].Score
	legalBasis := fields[FieldLegalBasis].Score
	categories := fields[FieldDataCategories].Score

	if party > c.cfg.ConflictPartyMin && purpose > c.cfg.ConflictPurposeMin && legalBasis < c.cfg.ConflictLegalBasisMax {
		conflicts = append(conflicts, types.Conflict{
			Kind:     types.ConflictInconsistentLegalBasis,
			Severity: types.ConflictSeverityHigh,
			Message:  "same organization and purpose declared under different legal bases",
		})
	}
	if categories > c.cfg.DuplicateCategoriesMin && purpose > c.cfg.DuplicatePurposeMin {
		conflicts = append(conflicts, types.Conflict{
			Kind:     types.ConflictPossibleDuplicate,
			Severity: types.ConflictSeverityMedium,
			Message:  "near-identical activity; verify whether this is a duplicate",
		})
	}
	return conflicts
}

// assessMerge decides whether the pair is a good merge candidate and at
// what confidence. Benefits are descriptive only and populated solely for
// recommended merges.
func (c *Comparer) assessMerge(fields map[string]types.FieldScore) types.MergeOpportunity {
	party := fields[FieldResponsibleParty].Score
	purpose := fields[FieldPurpose].Score
	categories := fields[FieldDataCategories].Score

	switch {
	case party > c.cfg.MergeHighPartyMin && purpose > c.cfg.MergeHighPurposeMin && categories > c.cfg.MergeHighCategoriesMin:
		return types.MergeOpportunity{
			Recommended: true,
			Confidence:  types.MergeConfidenceHigh,
			Benefits:    mergeBenefits,
		}
	case party > c.cfg.MergeHighPartyMin && purpose > c.cfg.MergeMediumPurposeMin:
		return types.MergeOpportunity{
			Recommended: true,
			Confidence:  types.MergeConfidenceMedium,
			Benefits:    mergeBenefits,
		}
	default:
		return types.MergeOpportunity{
			Recommended: false,
			Confidence:  types.MergeConfidenceLow,
		}
	}
}

// mergeBenefits are the qualitative outcomes listed for recommended merges.
var mergeBenefits = []string{
	"reduced registry complexity",
	"avoided duplicate maintenance effort",
	"improved consistency across declarations",
}

func clamp01(v float64) float64 {
	if v < 0.0 {
		return 0.0
	}
	if v > 1.0 {
		return 1.0
	}
	return v
}

// nil-safe field accessors; Compare accepts records with any subset of
// fields populated.

func partyOf(r *types.Record) *types.ResponsibleParty {
	if r == nil {
		return nil
	}
	return r.ResponsibleParty
}

func purposeOf(r *types.Record) *types.Purpose {
	if r == nil {
		return nil
	}
	return r.Purpose
}

func transferOf(r *types.Record) *types.Transfer {
	if r == nil {
		return nil
	}
	return r.InternationalTransfer
}

func categoriesOf(r *types.Record) []string {
	if r == nil {
		return nil
	}
	return r.DataCategories
}

func subjectsOf(r *types.Record) []string {
	if r == nil {
		return nil
	}
	return r.DataSubjectCategories
}
