package entity

import "github.com/healthfolio/labingest/constants"

// RawExtractedValue is a single test result as read off a document,
// before any catalog mapping. Kept verbatim for the audit trail.
type RawExtractedValue struct {
	TestName       string             `json:"test_name"`
	TestType       constants.TestType `json:"test_type"`
	Value          string             `json:"value"`
	Unit           string             `json:"unit,omitempty"`
	ReferenceRange string             `json:"reference_range,omitempty"`
	AbnormalFlag   string             `json:"abnormal_flag,omitempty"`
	IsAbnormal     bool               `json:"is_abnormal"`
	Confidence     float32            `json:"confidence"`
}

// StandardizedValue is a raw value resolved against the catalog.
type StandardizedValue struct {
	Key               string                      `json:"key"`
	DisplayName       string                      `json:"display_name"`
	Category          constants.ParameterCategory `json:"category"`
	Value             string                      `json:"value"`
	Unit              string                      `json:"unit,omitempty"`
	ReferenceRange    string                      `json:"reference_range,omitempty"`
	IsAbnormal        bool                        `json:"is_abnormal"`
	MappingConfidence float32                     `json:"mapping_confidence"`
	OriginalName      string                      `json:"original_name"`
}
