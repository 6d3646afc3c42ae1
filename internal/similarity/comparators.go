package similarity

import (
	"strings"

	"github.com/ropatools/dedup/internal/classify"
	"github.com/ropatools/dedup/internal/textnorm"
	"github.com/ropatools/dedup/internal/types"
)

// Field names used in comparison breakdowns. Downstream rules (conflicts,
// merge assessment, low-field listings) key off these.
const (
	FieldResponsibleParty      = "responsible_party"
	FieldPurpose               = "purpose"
	FieldDataCategories        = "data_categories"
	FieldDataSubjectCategories = "data_subject_categories"
	FieldInternationalTransfer = "international_transfer"
	FieldLegalBasis            = "legal_basis"
	FieldDataSource            = "data_source"
)

// Purpose comparator sub-weights: raw text similarity, business-domain tag
// overlap, and lifecycle-stage agreement.
const (
	purposeTextWeight      = 0.4
	purposeDomainWeight    = 0.4
	purposeLifecycleWeight = 0.2
)

// compareResponsibleParty scores organizational identity. A shared non-empty
// tax identifier is authoritative and short-circuits to 1.0; otherwise the
// organization names are compared by edit-distance similarity.
func compareResponsibleParty(a, b *types.ResponsibleParty) float64 {
	if a == nil || b == nil {
		return 0.0
	}
	taxA := strings.TrimSpace(strings.ToLower(a.TaxID))
	taxB := strings.TrimSpace(strings.ToLower(b.TaxID))
	if taxA != "" && taxA == taxB {
		return 1.0
	}
	return textnorm.Similarity(textnorm.Normalize(a.Name), textnorm.Normalize(b.Name))
}

// comparePurpose combines raw text similarity with the classifier signals.
func comparePurpose(a, b *types.Purpose) float64 {
	if a == nil || b == nil {
		return 0.0
	}
	textScore := textnorm.Similarity(textnorm.Normalize(a.Description), textnorm.Normalize(b.Description))
	domainScore := textnorm.Jaccard(classify.Domains(a.Description), classify.Domains(b.Description))
	lifecycleScore := classify.StageAgreement(a.Description, b.Description)

	return purposeTextWeight*textScore +
		purposeDomainWeight*domainScore +
		purposeLifecycleWeight*lifecycleScore
}

// compareTransfer scores international-transfer declarations. Two records
// that both declare no transfers agree completely; a one-sided declaration
// is a full mismatch; two declaring records are scored on country overlap.
func compareTransfer(a, b *types.Transfer) float64 {
	aExists := a != nil && a.Exists
	bExists := b != nil && b.Exists
	switch {
	case !aExists && !bExists:
		return 1.0
	case aExists != bExists:
		return 0.0
	default:
		return textnorm.Jaccard(a.Countries, b.Countries)
	}
}

// compareCategorical is the exact-match comparator for categorical kinds
// (legal basis, data source).
func compareCategorical(a, b string) float64 {
	a = strings.TrimSpace(strings.ToLower(a))
	b = strings.TrimSpace(strings.ToLower(b))
	if a == "" || b == "" {
		return 0.0
	}
	if a == b {
		return 1.0
	}
	return 0.0
}
