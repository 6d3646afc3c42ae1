package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ropatools/dedup/internal/similarity"
	"github.com/ropatools/dedup/internal/types"
)

func fullRecord(id string) *types.Record {
	return &types.Record{
		ID: id,
		ResponsibleParty: &types.ResponsibleParty{
			Name:  "Acme Ibérica S.L.",
			TaxID: "B12345678",
		},
		Purpose: &types.Purpose{
			Description: "Gestión de nóminas de los empleados y conservación de recibos",
		},
		DataCategories:        []string{"identificativos", "laborales", "economicos"},
		DataSubjectCategories: []string{"empleados"},
		InternationalTransfer: &types.Transfer{Exists: false},
		LegalBasis:            &types.LegalBasis{Kind: "contrato"},
		DataSource:            &types.DataSource{Kind: "interesado"},
	}
}

func newAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := New(similarity.DefaultConfig())
	require.NoError(t, err)
	return a
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := similarity.DefaultConfig()
	cfg.BlockThreshold = 0.1
	_, err := New(cfg)
	require.Error(t, err)
}

func TestAnalyzeEmptyPopulation(t *testing.T) {
	a := newAnalyzer(t)

	analysis := a.Analyze(fullRecord("a-1"), nil)

	assert.False(t, analysis.HasSimilar)
	assert.Empty(t, analysis.SimilarRecords)
	assert.Equal(t, types.ActionCreate, analysis.Decision.Action)
	assert.Equal(t, types.SeveritySuccess, analysis.Decision.Severity)
	require.NoError(t, analysis.Validate())
}

func TestAnalyzeSelfDuplicate(t *testing.T) {
	a := newAnalyzer(t)
	candidate := fullRecord("new")
	existing := fullRecord("existing")

	analysis := a.Analyze(candidate, []*types.Record{existing})

	require.True(t, analysis.HasSimilar)
	require.Len(t, analysis.SimilarRecords, 1)
	assert.InDelta(t, 1.0, analysis.SimilarRecords[0].Result.Score, 1e-9)
	assert.Equal(t, types.ActionBlock, analysis.Decision.Action)
	assert.Equal(t, types.SeverityError, analysis.Decision.Severity)
	assert.Contains(t, analysis.SimilarRecords[0].Recommendation, "merge")
	require.NoError(t, analysis.Validate())
}

func TestAnalyzeIgnoresDissimilarRecords(t *testing.T) {
	a := newAnalyzer(t)
	candidate := fullRecord("new")
	unrelated := &types.Record{
		ID:      "other",
		Purpose: &types.Purpose{Description: "mantenimiento de la flota de vehículos"},
	}

	analysis := a.Analyze(candidate, []*types.Record{unrelated})

	assert.False(t, analysis.HasSimilar)
	assert.Equal(t, types.ActionCreate, analysis.Decision.Action)
}

func TestAnalyzeOrdersByDescendingScore(t *testing.T) {
	a := newAnalyzer(t)
	candidate := fullRecord("new")

	exact := fullRecord("exact")
	near := fullRecord("near")
	near.DataCategories = []string{"identificativos", "laborales"}
	near.DataSource = &types.DataSource{Kind: "terceros"}

	analysis := a.Analyze(candidate, []*types.Record{near, exact})

	require.Len(t, analysis.SimilarRecords, 2)
	assert.Equal(t, "exact", analysis.SimilarRecords[0].Record.ID)
	assert.Equal(t, "near", analysis.SimilarRecords[1].Record.ID)
	require.NoError(t, analysis.Validate())
}

func TestAnalyzeSkipsNilRecords(t *testing.T) {
	a := newAnalyzer(t)
	analysis := a.Analyze(fullRecord("new"), []*types.Record{nil, fullRecord("existing"), nil})
	assert.True(t, analysis.HasSimilar)
	assert.Len(t, analysis.SimilarRecords, 1)
}

// TestThresholdBoundaries pins the inclusive boundaries with a calibration
// whose scores are exactly representable: four equal weights of 0.25, so a
// three-field match scores exactly 0.75.
func TestThresholdBoundaries(t *testing.T) {
	cfg := similarity.DefaultConfig()
	cfg.Weights = similarity.Weights{
		ResponsibleParty:      0.25,
		Purpose:               0.25,
		DataCategories:        0.25,
		DataSubjectCategories: 0.25,
	}
	cfg.InformThreshold = 0.50
	cfg.WarnThreshold = 0.60
	cfg.BlockThreshold = 0.75
	cfg.IncludeThreshold = 0.75
	a, err := New(cfg)
	require.NoError(t, err)

	candidate := fullRecord("new")
	boundary := fullRecord("boundary")
	boundary.DataSubjectCategories = []string{"clientes"} // only mismatching field

	analysis := a.Analyze(candidate, []*types.Record{boundary})

	// Score is exactly at the inclusion threshold: the record is reported.
	require.True(t, analysis.HasSimilar)
	assert.Equal(t, 0.75, analysis.SimilarRecords[0].Result.Score)

	// And exactly at the block threshold: block, not warn.
	assert.Equal(t, types.ActionBlock, analysis.Decision.Action)
}

func TestDecideBands(t *testing.T) {
	a := newAnalyzer(t)
	tests := []struct {
		score    float64
		action   types.Action
		severity types.DecisionSeverity
	}{
		{0.96, types.ActionBlock, types.SeverityError},
		{0.95, types.ActionBlock, types.SeverityError},
		{0.94, types.ActionWarn, types.SeverityWarning},
		{0.86, types.ActionWarn, types.SeverityWarning},
		{0.85, types.ActionInform, types.SeverityInfo},
		{0.80, types.ActionInform, types.SeverityInfo},
	}

	for _, tt := range tests {
		decision := a.decide(tt.score)
		assert.Equal(t, tt.action, decision.Action, "score %.2f", tt.score)
		assert.Equal(t, tt.severity, decision.Severity, "score %.2f", tt.score)
	}
}

func TestRecommendBands(t *testing.T) {
	a := newAnalyzer(t)

	mk := func(score float64) types.Comparison {
		return types.Comparison{
			Score: score,
			Fields: map[string]types.FieldScore{
				similarity.FieldLegalBasis: {Field: similarity.FieldLegalBasis, Score: 0.0},
				similarity.FieldPurpose:    {Field: similarity.FieldPurpose, Score: 0.95},
			},
		}
	}

	assert.Contains(t, a.recommend(mk(0.97)), "merge")
	assert.Contains(t, a.recommend(mk(0.90)), "review differences")
	assert.Contains(t, a.recommend(mk(0.90)), "legal_basis")
	assert.NotContains(t, a.recommend(mk(0.90)), "purpose")
	assert.Contains(t, a.recommend(mk(0.80)), "consistency")
	assert.Contains(t, a.recommend(mk(0.50)), "acknowledge")
}

func TestAnalyzeDegradesInsteadOfPanicking(t *testing.T) {
	// A zero-value analyzer has no comparer; scoring would panic. Analyze
	// must swallow it and fall back to the safe default.
	broken := &Analyzer{}

	analysis := broken.Analyze(fullRecord("a-1"), []*types.Record{fullRecord("b-1")})

	assert.True(t, analysis.Degraded)
	assert.NotEmpty(t, analysis.DegradedReason)
	assert.False(t, analysis.HasSimilar)
	assert.Equal(t, types.ActionCreate, analysis.Decision.Action)
}
