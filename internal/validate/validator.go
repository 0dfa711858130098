// Package validate classifies extracted lab values before import. It
// never rejects a document: every value gets a verdict and the review
// step decides what to do with it.
package validate

import (
	"fmt"
	"strings"

	"github.com/healthfolio/labingest/internal/entity"
)

// qualitativeTokens are the recognized non-numeric results.
var qualitativeTokens = map[string]struct{}{
	"negative": {},
	"positive": {},
	"trace":    {},
	"normal":   {},
}

// implausibleFactor flags numeric values this many times above the upper
// reference bound as extraction artifacts (shifted decimal points,
// merged columns).
const implausibleFactor = 100

// Result is the outcome of validating a single value.
type Result struct {
	Verdict entity.Verdict
	Reason  string
}

// Validator classifies values against their parameter definition.
type Validator struct{}

func New() *Validator {
	return &Validator{}
}

// Validate classifies a value. docRange is the reference range printed
// on the document; when it does not parse, the parameter's catalog range
// is used instead. param may be nil for unmapped values. Validate is
// total: it always returns a verdict, never an error.
func (v *Validator) Validate(value, docRange string, param *entity.StandardParameter) Result {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" || strings.EqualFold(trimmed, "unknown") {
		return Result{Verdict: entity.VerdictMissingData, Reason: "no value was extracted"}
	}

	if IsQualitativeToken(trimmed) {
		return Result{Verdict: entity.VerdictValid}
	}

	num, numeric := ParseNumericValue(trimmed)
	if !numeric {
		if param != nil && param.Kind == entity.ValueKindQualitative {
			// Free-text result for a qualitative assay, e.g. "Pale Yellow".
			return Result{Verdict: entity.VerdictValid}
		}
		return Result{
			Verdict: entity.VerdictInvalidType,
			Reason:  fmt.Sprintf("value %q is not numeric and matches no known qualitative result", trimmed),
		}
	}

	if num < 0 && (param == nil || !param.AllowNegative) {
		return Result{
			Verdict: entity.VerdictOutOfRange,
			Reason:  fmt.Sprintf("negative value %s for a result that cannot be negative", trimmed),
		}
	}

	rng, ok := ParseReferenceRange(docRange)
	if !ok && param != nil {
		rng, ok = ParseReferenceRange(param.ReferenceRange)
	}
	if ok && rng.High != nil && num > *rng.High*implausibleFactor {
		return Result{
			Verdict: entity.VerdictOutOfRange,
			Reason:  fmt.Sprintf("value %s exceeds %dx the upper reference bound %g", trimmed, implausibleFactor, *rng.High),
		}
	}

	return Result{Verdict: entity.VerdictValid}
}

// IsQualitativeToken reports whether the value is one of the recognized
// non-numeric results (Negative, Positive, Trace, Normal).
func IsQualitativeToken(value string) bool {
	_, ok := qualitativeTokens[strings.ToLower(strings.TrimSpace(value))]
	return ok
}
