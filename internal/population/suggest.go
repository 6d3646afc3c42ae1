package population

import (
	"fmt"

	"github.com/ropatools/dedup/internal/classify"
	"github.com/ropatools/dedup/internal/similarity"
	"github.com/ropatools/dedup/internal/textnorm"
	"github.com/ropatools/dedup/internal/types"
)

// requiredFields are the fields counted by the completeness score.
var requiredFields = []string{
	similarity.FieldResponsibleParty,
	similarity.FieldPurpose,
	similarity.FieldDataCategories,
	similarity.FieldDataSubjectCategories,
	similarity.FieldLegalBasis,
}

// Completeness scores how fully a record is filled in: the fraction of
// required fields that are non-empty, plus ObjectBonus for each structured
// field with at least two populated sub-keys. Clamped to [0,1]. The
// sub-key bonus is a carried-over heuristic; tune or zero it via Config.
func (a *Analyzer) Completeness(r *types.Record) float64 {
	if r == nil {
		return 0.0
	}

	populated := 0
	for _, field := range requiredFields {
		if fieldPopulated(r, field) {
			populated++
		}
	}
	score := float64(populated) / float64(len(requiredFields))

	for _, subkeys := range []int{
		partySubkeys(r.ResponsibleParty),
		transferSubkeys(r.InternationalTransfer),
	} {
		if subkeys >= 2 {
			score += a.cfg.ObjectBonus
		}
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

// SuggestImprovements derives improvement hints for a target record from
// its similar siblings: the most complete sibling serves as a best-practice
// source for enriching a thin purpose description, and contextual rules
// flag fields the purpose implies should exist.
func (a *Analyzer) SuggestImprovements(target *types.Record, siblings []*types.Record) []types.Suggestion {
	if target == nil {
		return nil
	}
	var suggestions []types.Suggestion

	if best := a.mostComplete(siblings); best != nil {
		purpose := best.PurposeText()
		if len([]rune(purpose)) > a.cfg.BestPracticeMinPurposeLen {
			suggestions = append(suggestions, types.Suggestion{
				Field:    similarity.FieldPurpose,
				Message:  fmt.Sprintf("a more complete sibling describes its purpose in detail; consider: %q", excerpt(purpose, a.cfg.ExcerptLength)),
				SourceID: best.ID,
			})
		}
	}

	suggestions = append(suggestions, a.contextualSuggestions(target)...)
	return suggestions
}

// mostComplete returns the sibling with the highest completeness score,
// preferring earlier records on ties so results are deterministic.
func (a *Analyzer) mostComplete(siblings []*types.Record) *types.Record {
	var best *types.Record
	bestScore := 0.0
	for _, s := range siblings {
		if s == nil {
			continue
		}
		score := a.Completeness(s)
		if best == nil || score > bestScore {
			best = s
			bestScore = score
		}
	}
	return best
}

// contextualSuggestions applies keyword-driven rules: a marketing-flavored
// purpose without transfer data should have its international transfers
// reviewed, and an HR-flavored purpose should declare a labor data
// category.
func (a *Analyzer) contextualSuggestions(target *types.Record) []types.Suggestion {
	var suggestions []types.Suggestion
	purpose := target.PurposeText()
	if purpose == "" {
		return nil
	}

	if classify.HasDomain(purpose, classify.DomainMarketing) && !transferDeclared(target.InternationalTransfer) {
		suggestions = append(suggestions, types.Suggestion{
			Field:   similarity.FieldInternationalTransfer,
			Message: "marketing activities often involve international providers; review whether transfers occur",
		})
	}
	if classify.HasDomain(purpose, classify.DomainHR) && !hasCategory(target.DataCategories, "laborales") {
		suggestions = append(suggestions, types.Suggestion{
			Field:   similarity.FieldDataCategories,
			Message: "HR activities usually process labor data; consider adding the \"laborales\" category",
		})
	}
	return suggestions
}

func fieldPopulated(r *types.Record, field string) bool {
	switch field {
	case similarity.FieldResponsibleParty:
		return r.ResponsibleParty != nil && (r.ResponsibleParty.Name != "" || r.ResponsibleParty.TaxID != "")
	case similarity.FieldPurpose:
		return r.PurposeText() != ""
	case similarity.FieldDataCategories:
		return len(r.DataCategories) > 0
	case similarity.FieldDataSubjectCategories:
		return len(r.DataSubjectCategories) > 0
	case similarity.FieldLegalBasis:
		return r.LegalBasisKind() != ""
	}
	return false
}

func partySubkeys(p *types.ResponsibleParty) int {
	if p == nil {
		return 0
	}
	n := 0
	if p.Name != "" {
		n++
	}
	if p.TaxID != "" {
		n++
	}
	return n
}

func transferSubkeys(t *types.Transfer) int {
	if t == nil {
		return 0
	}
	n := 0
	if t.Exists {
		n++
	}
	if len(t.Countries) > 0 {
		n++
	}
	return n
}

func transferDeclared(t *types.Transfer) bool {
	return t != nil && (t.Exists || len(t.Countries) > 0)
}

func hasCategory(categories []string, want string) bool {
	for _, c := range categories {
		if textnorm.Normalize(c) == want {
			return true
		}
	}
	return false
}

func excerpt(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "..."
}
