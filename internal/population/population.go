// Package population runs batch analysis across a group of records sharing
// a department or category label: common-purpose keyword extraction,
// duplicate-risk pair detection, greedy consolidation clustering, and
// improvement suggestions for incomplete records.
//
// Pair detection and clustering are O(n²) in the group size; Config.MaxGroupSize
// caps the work. Pairwise scores are independent, so the pair scan fans out
// across a bounded worker pool.
package population

import (
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/ropatools/dedup/internal/textnorm"
	"github.com/ropatools/dedup/internal/types"
)

// Config holds the calibration of the population analyzer.
type Config struct {
	// RiskPairThreshold is the reduced two-factor score above which a pair
	// is reported as a duplicate risk (exclusive). Default: 0.80.
	RiskPairThreshold float64 `yaml:"risk_pair_threshold"`

	// ClusterThreshold is the two-factor score above which two records are
	// grouped into the same consolidation cluster (exclusive). Default: 0.70.
	ClusterThreshold float64 `yaml:"cluster_threshold"`

	// KeywordQuorum is the fraction of the group's records a purpose token
	// must appear in (ceiling-rounded) to count as a common keyword.
	// Default: 0.5.
	KeywordQuorum float64 `yaml:"keyword_quorum"`

	// MinKeywordLength is the minimum rune length of a purpose token
	// considered for keyword extraction. Default: 4.
	MinKeywordLength int `yaml:"min_keyword_length"`

	// MaxGroupSize caps the number of records analyzed per group; larger
	// groups are truncated and the report flagged as degraded. 0 means
	// unlimited. Default: 500.
	MaxGroupSize int `yaml:"max_group_size"`

	// Workers bounds the pairwise scan's worker pool. 0 means one worker
	// per CPU. Default: 0.
	Workers int `yaml:"workers"`

	// BestPracticeMinPurposeLen is the purpose-description length a sibling
	// must exceed before its purpose is offered as a best-practice excerpt.
	// Default: 100.
	BestPracticeMinPurposeLen int `yaml:"best_practice_min_purpose_len"`

	// ExcerptLength is where best-practice purpose excerpts are truncated.
	// Default: 100.
	ExcerptLength int `yaml:"excerpt_length"`

	// ObjectBonus is the completeness bonus granted per structured field
	// with at least two populated sub-keys. This is a tunable heuristic
	// carried over from the original calibration, not a normative rule.
	// Default: 0.05.
	ObjectBonus float64 `yaml:"object_bonus"`
}

// DefaultConfig returns the calibration the analyzer ships with.
func DefaultConfig() Config {
	return Config{
		RiskPairThreshold:         0.80,
		ClusterThreshold:          0.70,
		KeywordQuorum:             0.5,
		MinKeywordLength:          4,
		MaxGroupSize:              500,
		Workers:                   0,
		BestPracticeMinPurposeLen: 100,
		ExcerptLength:             100,
		ObjectBonus:               0.05,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if c.RiskPairThreshold < 0.0 || c.RiskPairThreshold > 1.0 {
		return fmt.Errorf("risk_pair_threshold must be between 0.0 and 1.0 (got %.2f)", c.RiskPairThreshold)
	}
	if c.ClusterThreshold < 0.0 || c.ClusterThreshold > 1.0 {
		return fmt.Errorf("cluster_threshold must be between 0.0 and 1.0 (got %.2f)", c.ClusterThreshold)
	}
	if c.KeywordQuorum <= 0.0 || c.KeywordQuorum > 1.0 {
		return fmt.Errorf("keyword_quorum must be in (0.0, 1.0] (got %.2f)", c.KeywordQuorum)
	}
	if c.MinKeywordLength < 1 {
		return fmt.Errorf("min_keyword_length must be positive (got %d)", c.MinKeywordLength)
	}
	if c.MaxGroupSize < 0 {
		return fmt.Errorf("max_group_size cannot be negative (got %d)", c.MaxGroupSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers cannot be negative (got %d)", c.Workers)
	}
	if c.ObjectBonus < 0.0 || c.ObjectBonus > 1.0 {
		return fmt.Errorf("object_bonus must be between 0.0 and 1.0 (got %.2f)", c.ObjectBonus)
	}
	return nil
}

// Analyzer runs batch analysis under a fixed calibration. Stateless; safe
// for concurrent use.
type Analyzer struct {
	cfg Config
}

// New creates a population analyzer with the given calibration.
func New(cfg Config) (*Analyzer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Analyzer{cfg: cfg}, nil
}

// Analyze produces the full batch report for one record group. It never
// panics: internal failures degrade to an empty report with a diagnostic.
func (a *Analyzer) Analyze(records []*types.Record) (report types.PopulationReport) {
	defer func() {
		if r := recover(); r != nil {
			report = types.PopulationReport{
				Degraded:       true,
				DegradedReason: fmt.Sprintf("population analysis failed: %v", r),
			}
		}
	}()

	records = compactRecords(records)
	if a.cfg.MaxGroupSize > 0 && len(records) > a.cfg.MaxGroupSize {
		report.Degraded = true
		report.DegradedReason = fmt.Sprintf("group truncated to %d of %d records", a.cfg.MaxGroupSize, len(records))
		records = records[:a.cfg.MaxGroupSize]
	}

	report.CommonKeywords = a.CommonKeywords(records)
	scores := a.pairScores(records)
	report.RiskPairs = a.riskPairs(records, scores)
	report.ConsolidationOpportunities = a.clusters(records, scores)
	return report
}

// CommonKeywords tokenizes every purpose description, counts how many
// records mention each token, and returns the tokens present in at least
// KeywordQuorum of the group (ceiling rounding). Ordered by descending
// frequency, then token.
func (a *Analyzer) CommonKeywords(records []*types.Record) []types.KeywordCount {
	if len(records) == 0 {
		return nil
	}

	counts := make(map[string]int)
	for _, r := range records {
		seen := make(map[string]bool)
		for _, token := range textnorm.Tokens(r.PurposeText()) {
			if len([]rune(token)) < a.cfg.MinKeywordLength {
				continue
			}
			if !seen[token] {
				seen[token] = true
				counts[token]++
			}
		}
	}

	quorum := int(math.Ceil(float64(len(records)) * a.cfg.KeywordQuorum))
	var keywords []types.KeywordCount
	for token, freq := range counts {
		if freq >= quorum {
			keywords = append(keywords, types.KeywordCount{Token: token, Frequency: freq})
		}
	}
	sort.Slice(keywords, func(i, j int) bool {
		if keywords[i].Frequency != keywords[j].Frequency {
			return keywords[i].Frequency > keywords[j].Frequency
		}
		return keywords[i].Token < keywords[j].Token
	})
	return keywords
}

// PairScore is the reduced two-factor similarity used for batch scans: the
// average of purpose text similarity and data-category overlap. Cheaper
// than the full composite and good enough to flag candidates for review.
func PairScore(a, b *types.Record) float64 {
	purposeScore := textnorm.Similarity(
		textnorm.Normalize(a.PurposeText()),
		textnorm.Normalize(b.PurposeText()),
	)
	categoryScore := textnorm.Jaccard(a.DataCategories, b.DataCategories)
	return (purposeScore + categoryScore) / 2.0
}

// pairScores computes the two-factor score for every unordered pair,
// fanning out over a bounded worker pool. Results are indexed so output is
// deterministic regardless of scheduling.
func (a *Analyzer) pairScores(records []*types.Record) map[[2]int]float64 {
	n := len(records)
	if n < 2 {
		return nil
	}

	type pair struct{ i, j int }
	pairs := make([]pair, 0, n*(n-1)/2)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			pairs = append(pairs, pair{i, j})
		}
	}

	workers := a.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]float64, len(pairs))
	var g errgroup.Group
	g.SetLimit(workers)
	for idx := range pairs {
		idx := idx
		g.Go(func() error {
			p := pairs[idx]
			results[idx] = PairScore(records[p.i], records[p.j])
			return nil
		})
	}
	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	scores := make(map[[2]int]float64, len(pairs))
	for idx, p := range pairs {
		scores[[2]int{p.i, p.j}] = results[idx]
	}
	return scores
}

// riskPairs reports every pair scoring above the duplicate-risk threshold,
// ordered by descending score then record IDs.
func (a *Analyzer) riskPairs(records []*types.Record, scores map[[2]int]float64) []types.RiskPair {
	var out []types.RiskPair
	for i := 0; i < len(records); i++ {
		for j := i + 1; j < len(records); j++ {
			score := scores[[2]int{i, j}]
			if score > a.cfg.RiskPairThreshold {
				out = append(out, types.RiskPair{
					IDA:   records[i].ID,
					IDB:   records[j].ID,
					Score: score,
				})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		if out[i].IDA != out[j].IDA {
			return out[i].IDA < out[j].IDA
		}
		return out[i].IDB < out[j].IDB
	})
	return out
}

// clusters greedily groups records scoring above the cluster threshold.
// Iteration follows stable input order and absorption is transitive within
// a cluster: when Y joins X's cluster, records similar to Y are pulled in
// too (breadth-first over the cluster frontier). This keeps the grouping
// deterministic even when similarity is not transitive. Only clusters of
// more than one record are emitted.
func (a *Analyzer) clusters(records []*types.Record, scores map[[2]int]float64) [][]string {
	n := len(records)
	if n < 2 {
		return nil
	}

	pairScore := func(i, j int) float64 {
		if i > j {
			i, j = j, i
		}
		return scores[[2]int{i, j}]
	}

	processed := make([]bool, n)
	var out [][]string
	for i := 0; i < n; i++ {
		if processed[i] {
			continue
		}
		processed[i] = true
		members := []int{i}
		for frontier := 0; frontier < len(members); frontier++ {
			k := members[frontier]
			for j := 0; j < n; j++ {
				if processed[j] {
					continue
				}
				if pairScore(k, j) > a.cfg.ClusterThreshold {
					processed[j] = true
					members = append(members, j)
				}
			}
		}
		if len(members) < 2 {
			continue
		}
		sort.Ints(members)
		ids := make([]string, len(members))
		for idx, m := range members {
			ids[idx] = records[m].ID
		}
		out = append(out, ids)
	}
	return out
}

func compactRecords(records []*types.Record) []*types.Record {
	out := make([]*types.Record, 0, len(records))
	for _, r := range records {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}
