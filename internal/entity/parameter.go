package entity

import "github.com/healthfolio/labingest/constants"

// ValueKind says how a parameter's values are validated.
type ValueKind string

const (
	ValueKindNumeric     ValueKind = "NUMERIC"
	ValueKindQualitative ValueKind = "QUALITATIVE"
)

// StandardParameter is one entry of the canonical lab parameter catalog.
type StandardParameter struct {
	Key            string                      `json:"key"`
	DisplayName    string                      `json:"display_name"`
	Unit           string                      `json:"unit,omitempty"`
	ReferenceRange string                      `json:"reference_range,omitempty"`
	Category       constants.ParameterCategory `json:"category"`
	Kind           ValueKind                   `json:"kind"`
	AllowNegative  bool                        `json:"allow_negative,omitempty"`
}

// IsUrine reports whether the parameter belongs to the urine namespace.
func (p *StandardParameter) IsUrine() bool {
	return p.Category.IsUrine()
}

// TestType returns the specimen type this parameter is measured on.
func (p *StandardParameter) TestType() constants.TestType {
	return p.Category.TestType()
}
