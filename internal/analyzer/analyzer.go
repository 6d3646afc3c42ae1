// Package analyzer is the single-record entry point of the duplicate
// detection engine: it scores a candidate record against an existing
// population and recommends an action (create, inform, warn, block).
//
// Analyze is an advisory check, not a source of truth: it never panics and
// never blocks on failure. Any internal computation error degrades to the
// safe default (no similars, create) with a diagnostic flag so the caller
// can log the anomaly. Cost is O(n) comparisons against n candidates;
// callers bound work by limiting the candidate set before invocation.
package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ropatools/dedup/internal/similarity"
	"github.com/ropatools/dedup/internal/types"
)

// Analyzer runs duplicate checks under a fixed calibration. It is stateless
// and safe for concurrent use: nothing is retained between calls.
type Analyzer struct {
	comparer *similarity.Comparer
}

// New creates an analyzer with the given calibration.
func New(cfg similarity.Config) (*Analyzer, error) {
	comparer, err := similarity.NewComparer(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Analyzer{comparer: comparer}, nil
}

// Comparer exposes the underlying pairwise comparer.
func (a *Analyzer) Comparer() *similarity.Comparer {
	return a.comparer
}

// Analyze compares the candidate against every existing record and returns
// the full duplication analysis: similar records above the inclusion
// threshold ordered by descending score, plus the decision derived from the
// best match. An empty candidate pool always yields a create decision.
func (a *Analyzer) Analyze(candidate *types.Record, existing []*types.Record) (analysis types.DuplicationAnalysis) {
	defer func() {
		if r := recover(); r != nil {
			analysis = safeDefault(fmt.Sprintf("analysis failed, allowing creation: %v", r))
		}
	}()

	cfg := a.comparer.Config()

	var similar []types.SimilarRecord
	for _, record := range existing {
		if record == nil {
			continue
		}
		result := a.comparer.Compare(candidate, record)
		if result.Score < cfg.IncludeThreshold {
			continue
		}
		similar = append(similar, types.SimilarRecord{
			Record:         record,
			Result:         result,
			Recommendation: a.recommend(result),
		})
	}

	// Descending by score; ties break on record ID so output is
	// deterministic regardless of input order.
	sort.SliceStable(similar, func(i, j int) bool {
		if similar[i].Result.Score != similar[j].Result.Score {
			return similar[i].Result.Score > similar[j].Result.Score
		}
		return similar[i].Record.ID < similar[j].Record.ID
	})

	analysis = types.DuplicationAnalysis{
		HasSimilar:     len(similar) > 0,
		SimilarRecords: similar,
	}
	if len(similar) == 0 {
		analysis.Decision = types.Decision{
			Action:   types.ActionCreate,
			Message:  "no similar activities found; safe to create",
			Severity: types.SeveritySuccess,
		}
		return analysis
	}

	analysis.Decision = a.decide(similar[0].Result.Score)
	return analysis
}

// decide maps the maximum aggregate score among the reported candidates to
// an action. The block boundary is inclusive: a score of exactly the block
// threshold blocks creation.
func (a *Analyzer) decide(maxScore float64) types.Decision {
	cfg := a.comparer.Config()
	switch {
	case maxScore >= cfg.BlockThreshold:
		return types.Decision{
			Action:   types.ActionBlock,
			Message:  "near-identical activity found; review before creating",
			Severity: types.SeverityError,
		}
	case maxScore > cfg.WarnThreshold:
		return types.Decision{
			Action:   types.ActionWarn,
			Message:  "very similar activity found; verify a new one is necessary",
			Severity: types.SeverityWarning,
		}
	default:
		return types.Decision{
			Action:   types.ActionInform,
			Message:  "related activity found; consider it for consistency",
			Severity: types.SeverityInfo,
		}
	}
}

// recommend produces the per-candidate reviewer guidance, varying by score
// band. In the review band the specific low-scoring fields are listed so
// the reviewer knows where the records actually differ.
func (a *Analyzer) recommend(result types.Comparison) string {
	cfg := a.comparer.Config()
	score := result.Score
	switch {
	case score > cfg.BlockThreshold:
		return "merge with the existing activity or reject the new one"
	case score > cfg.WarnThreshold:
		low := lowFields(result, cfg.LowFieldThreshold)
		if len(low) > 0 {
			return fmt.Sprintf("review differences before creating (low similarity: %s)", strings.Join(low, ", "))
		}
		return "review differences before creating"
	case score > cfg.InformThreshold:
		return "ensure consistency with the related activity"
	default:
		return "acknowledge the related activity"
	}
}

// lowFields lists the fields scoring below the threshold, in stable order.
func lowFields(result types.Comparison, threshold float64) []string {
	ordered := []string{
		similarity.FieldResponsibleParty,
		similarity.FieldPurpose,
		similarity.FieldDataCategories,
		similarity.FieldDataSubjectCategories,
		similarity.FieldInternationalTransfer,
		similarity.FieldLegalBasis,
		similarity.FieldDataSource,
	}
	var low []string
	for _, name := range ordered {
		if fs, ok := result.Fields[name]; ok && fs.Score < threshold {
			low = append(low, name)
		}
	}
	return low
}

// safeDefault is the degraded analysis returned when scoring fails: the
// check must never block record creation.
func safeDefault(reason string) types.DuplicationAnalysis {
	return types.DuplicationAnalysis{
		HasSimilar: false,
		Decision: types.Decision{
			Action:   types.ActionCreate,
			Message:  "duplicate check unavailable; proceeding with creation",
			Severity: types.SeveritySuccess,
		},
		Degraded:       true,
		DegradedReason: reason,
	}
}
