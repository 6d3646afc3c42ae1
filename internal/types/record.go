package types

// Record describes one personal-data processing activity as registered by an
// organization. All fields except ID are optional: comparators treat missing
// values as "no value" rather than errors.
//
// The engine never generates, mutates, or persists records. The ID is an
// opaque caller-owned identifier used only to reference records in results.
type Record struct {
	ID string `json:"id,omitempty" yaml:"id,omitempty"`

	// Department is an optional grouping label (e.g. "marketing", "rrhh")
	// used by the population analyzer and the CLI to select record groups.
	Department string `json:"department,omitempty" yaml:"department,omitempty"`

	ResponsibleParty      *ResponsibleParty `json:"responsible_party,omitempty" yaml:"responsible_party,omitempty"`
	Purpose               *Purpose          `json:"purpose,omitempty" yaml:"purpose,omitempty"`
	DataCategories        []string          `json:"data_categories,omitempty" yaml:"data_categories,omitempty"`
	DataSubjectCategories []string          `json:"data_subject_categories,omitempty" yaml:"data_subject_categories,omitempty"`
	InternationalTransfer *Transfer         `json:"international_transfer,omitempty" yaml:"international_transfer,omitempty"`
	LegalBasis            *LegalBasis       `json:"legal_basis,omitempty" yaml:"legal_basis,omitempty"`
	DataSource            *DataSource       `json:"data_source,omitempty" yaml:"data_source,omitempty"`
}

// ResponsibleParty identifies the organization accountable for the activity.
type ResponsibleParty struct {
	Name  string `json:"name,omitempty" yaml:"name,omitempty"`
	TaxID string `json:"tax_id,omitempty" yaml:"tax_id,omitempty"`
}

// Purpose holds the free-text explanation of why data is processed.
type Purpose struct {
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Transfer describes international data transfers declared by the activity.
type Transfer struct {
	Exists    bool     `json:"exists" yaml:"exists"`
	Countries []string `json:"countries,omitempty" yaml:"countries,omitempty"`
}

// LegalBasis is the declared legal justification for processing (categorical).
type LegalBasis struct {
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// DataSource describes where the personal data originates (categorical).
type DataSource struct {
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// PurposeText returns the purpose description, or "" when absent.
func (r *Record) PurposeText() string {
	if r == nil || r.Purpose == nil {
		return ""
	}
	return r.Purpose.Description
}

// LegalBasisKind returns the legal basis kind, or "" when absent.
func (r *Record) LegalBasisKind() string {
	if r == nil || r.LegalBasis == nil {
		return ""
	}
	return r.LegalBasis.Kind
}

// DataSourceKind returns the data source kind, or "" when absent.
func (r *Record) DataSourceKind() string {
	if r == nil || r.DataSource == nil {
		return ""
	}
	return r.DataSource.Kind
}
