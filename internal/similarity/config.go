package similarity

import (
	"fmt"
	"math"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Weights are the fixed per-field weights of the composite scorer.
// They must sum to exactly 1.0.
type Weights struct {
	ResponsibleParty      float64 `yaml:"responsible_party"`
	Purpose               float64 `yaml:"purpose"`
	DataCategories        float64 `yaml:"data_categories"`
	DataSubjectCategories float64 `yaml:"data_subject_categories"`
	InternationalTransfer float64 `yaml:"international_transfer"`
	LegalBasis            float64 `yaml:"legal_basis"`
	DataSource            float64 `yaml:"data_source"`
}

// Sum returns the total of all field weights.
func (w Weights) Sum() float64 {
	return w.ResponsibleParty + w.Purpose + w.DataCategories +
		w.DataSubjectCategories + w.InternationalTransfer +
		w.LegalBasis + w.DataSource
}

// Config holds the calibration of the similarity engine. The thresholds are
// policy decisions, not algorithmic ones, so they are named and overridable
// rather than inlined.
type Config struct {
	// Weights for the composite scorer. Must sum to 1.0.
	Weights Weights `yaml:"weights"`

	// IncludeThreshold is the minimum aggregate score for a candidate to be
	// reported as similar at all (inclusive). Default: 0.80.
	IncludeThreshold float64 `yaml:"include_threshold"`

	// InformThreshold is the lower bound of the inform band (exclusive).
	// Default: 0.70.
	InformThreshold float64 `yaml:"inform_threshold"`

	// WarnThreshold is the lower bound of the warn band (exclusive).
	// Default: 0.85.
	WarnThreshold float64 `yaml:"warn_threshold"`

	// BlockThreshold is the score at which creation is blocked (inclusive).
	// Default: 0.95.
	BlockThreshold float64 `yaml:"block_threshold"`

	// LowFieldThreshold marks a field score as "low" when listing the
	// specific differences of a very similar pair. Default: 0.70.
	LowFieldThreshold float64 `yaml:"low_field_threshold"`

	// Conflict rule cutoffs.
	ConflictPartyMin       float64 `yaml:"conflict_party_min"`       // default 0.90
	ConflictPurposeMin     float64 `yaml:"conflict_purpose_min"`     // default 0.80
	ConflictLegalBasisMax  float64 `yaml:"conflict_legal_basis_max"` // default 0.50
	DuplicateCategoriesMin float64 `yaml:"duplicate_categories_min"` // default 0.90
	DuplicatePurposeMin    float64 `yaml:"duplicate_purpose_min"`    // default 0.70

	// Merge assessor cutoffs.
	MergeHighPartyMin      float64 `yaml:"merge_high_party_min"`      // default 0.90
	MergeHighPurposeMin    float64 `yaml:"merge_high_purpose_min"`    // default 0.80
	MergeHighCategoriesMin float64 `yaml:"merge_high_categories_min"` // default 0.80
	MergeMediumPurposeMin  float64 `yaml:"merge_medium_purpose_min"`  // default 0.60
}

// weightSumTolerance absorbs float accumulation error when checking that
// weights sum to 1.0.
const weightSumTolerance = 1e-9

// DefaultConfig returns the calibration the engine ships with.
func DefaultConfig() Config {
	return Config{
		Weights: Weights{
			ResponsibleParty:      0.15,
			Purpose:               0.25,
			DataCategories:        0.20,
			DataSubjectCategories: 0.15,
			InternationalTransfer: 0.10,
			LegalBasis:            0.10,
			DataSource:            0.05,
		},
		IncludeThreshold:  0.80,
		InformThreshold:   0.70,
		WarnThreshold:     0.85,
		BlockThreshold:    0.95,
		LowFieldThreshold: 0.70,

		ConflictPartyMin:       0.90,
		ConflictPurposeMin:     0.80,
		ConflictLegalBasisMax:  0.50,
		DuplicateCategoriesMin: 0.90,
		DuplicatePurposeMin:    0.70,

		MergeHighPartyMin:      0.90,
		MergeHighPurposeMin:    0.80,
		MergeHighCategoriesMin: 0.80,
		MergeMediumPurposeMin:  0.60,
	}
}

// Validate checks if the configuration has valid values
func (c Config) Validate() error {
	if diff := math.Abs(c.Weights.Sum() - 1.0); diff > weightSumTolerance {
		return fmt.Errorf("field weights must sum to 1.0 (got %.6f)", c.Weights.Sum())
	}
	for name, w := range map[string]float64{
		"responsible_party":       c.Weights.ResponsibleParty,
		"purpose":                 c.Weights.Purpose,
		"data_categories":         c.Weights.DataCategories,
		"data_subject_categories": c.Weights.DataSubjectCategories,
		"international_transfer":  c.Weights.InternationalTransfer,
		"legal_basis":             c.Weights.LegalBasis,
		"data_source":             c.Weights.DataSource,
	} {
		if w < 0.0 || w > 1.0 {
			return fmt.Errorf("weight %s must be between 0.0 and 1.0 (got %.2f)", name, w)
		}
	}

	thresholds := map[string]float64{
		"include_threshold":         c.IncludeThreshold,
		"inform_threshold":          c.InformThreshold,
		"warn_threshold":            c.WarnThreshold,
		"block_threshold":           c.BlockThreshold,
		"low_field_threshold":       c.LowFieldThreshold,
		"conflict_party_min":        c.ConflictPartyMin,
		"conflict_purpose_min":      c.ConflictPurposeMin,
		"conflict_legal_basis_max":  c.ConflictLegalBasisMax,
		"duplicate_categories_min":  c.DuplicateCategoriesMin,
		"duplicate_purpose_min":     c.DuplicatePurposeMin,
		"merge_high_party_min":      c.MergeHighPartyMin,
		"merge_high_purpose_min":    c.MergeHighPurposeMin,
		"merge_high_categories_min": c.MergeHighCategoriesMin,
		"merge_medium_purpose_min":  c.MergeMediumPurposeMin,
	}
	for name, v := range thresholds {
		if v < 0.0 || v > 1.0 {
			return fmt.Errorf("%s must be between 0.0 and 1.0 (got %.2f)", name, v)
		}
	}

	if !(c.InformThreshold < c.WarnThreshold && c.WarnThreshold < c.BlockThreshold) {
		return fmt.Errorf("thresholds must be ordered inform < warn < block (got %.2f, %.2f, %.2f)",
			c.InformThreshold, c.WarnThreshold, c.BlockThreshold)
	}
	if c.IncludeThreshold < c.InformThreshold || c.IncludeThreshold > c.BlockThreshold {
		return fmt.Errorf("include_threshold must lie between inform and block thresholds (got %.2f)",
			c.IncludeThreshold)
	}
	return nil
}

// String returns a human-readable representation of the config
func (c Config) String() string {
	return fmt.Sprintf(
		"Config{Include: %.2f, Inform: %.2f, Warn: %.2f, Block: %.2f, WeightSum: %.2f}",
		c.IncludeThreshold, c.InformThreshold, c.WarnThreshold, c.BlockThreshold, c.Weights.Sum(),
	)
}

// ConfigFromEnv creates a Config from environment variables, falling back to
// defaults.
//
// Environment variables:
//   - ROPA_DEDUP_INCLUDE_THRESHOLD: minimum score to report a candidate (default: 0.80)
//   - ROPA_DEDUP_INFORM_THRESHOLD: lower bound of the inform band (default: 0.70)
//   - ROPA_DEDUP_WARN_THRESHOLD: lower bound of the warn band (default: 0.85)
//   - ROPA_DEDUP_BLOCK_THRESHOLD: score at which creation is blocked (default: 0.95)
//
// Returns an error if any variable has an invalid value.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	if err := parseEnvFloat("ROPA_DEDUP_INCLUDE_THRESHOLD", &cfg.IncludeThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("ROPA_DEDUP_INFORM_THRESHOLD", &cfg.InformThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("ROPA_DEDUP_WARN_THRESHOLD", &cfg.WarnThreshold); err != nil {
		return cfg, err
	}
	if err := parseEnvFloat("ROPA_DEDUP_BLOCK_THRESHOLD", &cfg.BlockThreshold); err != nil {
		return cfg, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration from environment: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads a YAML calibration file and overlays it on the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration in %s: %w", path, err)
	}
	return cfg, nil
}

// parseEnvFloat parses a float64 from an environment variable
func parseEnvFloat(key string, dest *float64) error {
	value := os.Getenv(key)
	if value == "" {
		return nil // Use default
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	*dest = parsed
	return nil
}
