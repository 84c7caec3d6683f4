// Package service implements the cardiovascular risk scoring engine: input
// validation, method applicability gating, the three published calculators
// and the result aggregation that merges them into one response.
package service

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/cvd-risk-server/internal/domain"
)

// fieldRange is the clinical plausibility bound for one numeric field.
type fieldRange struct {
	min, max float64
}

// Plausibility bounds per field. Values outside these are hard validation
// errors; values exactly at a bound produce an advisory warning. Age gets a
// broad human range so that the method age windows stay the applicability
// gate's responsibility.
var fieldRanges = map[string]fieldRange{
	"age":               {20, 120},
	"systolic_bp":       {90, 200},
	"total_cholesterol": {100, 400},
	"hdl":               {20, 100},
	"ldl":               {50, 200},
	"diastolic_bp":      {60, 120},
	"weight_kg":         {30, 200},
	"height_cm":         {100, 250},
}

// Validator normalizes raw patient records and collects every rule
// violation instead of failing on the first one.
type Validator struct{}

// NewValidator creates a new input validator.
func NewValidator() *Validator {
	return &Validator{}
}

// Validate checks a raw record against the required-field and plausibility
// rules. On success it returns the normalized record plus any advisory
// warnings; on failure it returns every violated rule at once.
func (v *Validator) Validate(raw *domain.RawPatientRecord) (*domain.PatientRecord, []string, domain.ValidationErrors) {
	var (
		errs     domain.ValidationErrors
		warnings []string
	)

	rec := &domain.PatientRecord{}
	if name, ok := raw.Name.(string); ok {
		rec.Name = name
	}

	// Required numeric fields.
	age, ageOK := v.requireNumber(&errs, &warnings, "age", raw.Age)
	tc, tcOK := v.requireNumber(&errs, &warnings, "total_cholesterol", raw.TotalCholesterol)
	hdl, hdlOK := v.requireNumber(&errs, &warnings, "hdl", raw.HDL)
	sbp, sbpOK := v.requireNumber(&errs, &warnings, "systolic_bp", raw.SystolicBP)

	if ageOK {
		if age != math.Trunc(age) {
			errs = append(errs, domain.ValidationError{
				Field: "age", Message: "must be a whole number of years", Value: raw.Age,
			})
			ageOK = false
		} else {
			rec.Age = int(age)
		}
	}
	if tcOK {
		rec.TotalCholesterol = tc
	}
	if hdlOK {
		rec.HDL = hdl
	}
	if sbpOK {
		rec.SystolicBP = sbp
	}

	// Sex is required and categorical.
	sex, sexErr := parseSex(raw.Sex)
	if sexErr != nil {
		errs = append(errs, *sexErr)
	} else {
		rec.Sex = sex
	}

	// Optional numeric fields.
	rec.LDL = v.optionalNumber(&errs, &warnings, "ldl", raw.LDL)
	rec.DiastolicBP = v.optionalNumber(&errs, &warnings, "diastolic_bp", raw.DiastolicBP)
	rec.WeightKg = v.optionalNumber(&errs, &warnings, "weight_kg", raw.WeightKg)
	rec.HeightCm = v.optionalNumber(&errs, &warnings, "height_cm", raw.HeightCm)

	// Risk factor flags default to false when absent, as in the clinical
	// intake forms this record originates from.
	rec.Smoker = v.flag(&errs, "smoker", raw.Smoker)
	rec.Diabetic = v.flag(&errs, "diabetic", raw.Diabetic)
	rec.HypertensionTreatment = v.flag(&errs, "hypertension_treatment", raw.HypertensionTreatment)
	rec.OnStatins = v.flag(&errs, "on_statins", raw.OnStatins)

	// Cross-field advisories only make sense on parseable values.
	if ageOK && sbpOK {
		if rec.Age < 40 && sbp > 140 {
			warnings = append(warnings, "systolic pressure elevated for age")
		}
		if rec.Age > 65 && sbp > 130 {
			warnings = append(warnings, "systolic pressure elevated for age")
		}
	}
	if tcOK && hdlOK && hdl > 0 && tc/hdl > 5 {
		warnings = append(warnings, "total/HDL cholesterol ratio elevated (>5)")
	}

	if len(errs) > 0 {
		return nil, nil, errs
	}
	return rec, warnings, nil
}

// requireNumber parses a required numeric field, recording missing-field,
// parse and range violations.
func (v *Validator) requireNumber(errs *domain.ValidationErrors, warnings *[]string, field string, value any) (float64, bool) {
	if isAbsent(value) {
		*errs = append(*errs, domain.ValidationError{
			Field: field, Message: "required field is missing",
		})
		return 0, false
	}
	return v.parseAndBound(errs, warnings, field, value)
}

// optionalNumber parses an optional numeric field; absence is fine, but a
// present value must still parse and fall within its bounds.
func (v *Validator) optionalNumber(errs *domain.ValidationErrors, warnings *[]string, field string, value any) *float64 {
	if isAbsent(value) {
		return nil
	}
	n, ok := v.parseAndBound(errs, warnings, field, value)
	if !ok {
		return nil
	}
	return &n
}

func (v *Validator) parseAndBound(errs *domain.ValidationErrors, warnings *[]string, field string, value any) (float64, bool) {
	n, ok := toFloat(value)
	if !ok {
		*errs = append(*errs, domain.ValidationError{
			Field: field, Message: "value is not numeric", Value: value,
		})
		return 0, false
	}

	bounds, bounded := fieldRanges[field]
	if !bounded {
		return n, true
	}
	if n < bounds.min || n > bounds.max {
		*errs = append(*errs, domain.ValidationError{
			Field:   field,
			Message: fmt.Sprintf("value %v outside plausible range %g-%g", value, bounds.min, bounds.max),
			Value:   value,
		})
		return 0, false
	}
	if n == bounds.min || n == bounds.max {
		*warnings = append(*warnings, fmt.Sprintf("%s is at the plausibility limit: %g", field, n))
	}
	return n, true
}

// flag parses a boolean risk factor, defaulting absent values to false.
func (v *Validator) flag(errs *domain.ValidationErrors, field string, value any) bool {
	if isAbsent(value) {
		return false
	}
	b, ok := toBool(value)
	if !ok {
		*errs = append(*errs, domain.ValidationError{
			Field: field, Message: "value is not a boolean", Value: value,
		})
		return false
	}
	return b
}

func parseSex(value any) (domain.Sex, *domain.ValidationError) {
	if isAbsent(value) {
		return "", &domain.ValidationError{Field: "sex", Message: "required field is missing"}
	}
	s, ok := value.(string)
	if !ok {
		return "", &domain.ValidationError{Field: "sex", Message: "must be \"male\" or \"female\"", Value: value}
	}
	sex := domain.Sex(strings.ToLower(strings.TrimSpace(s)))
	if !sex.IsValid() {
		return "", &domain.ValidationError{Field: "sex", Message: "must be \"male\" or \"female\"", Value: value}
	}
	return sex, nil
}

// isAbsent reports whether a raw field value should be treated as missing.
func isAbsent(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok && strings.TrimSpace(s) == "" {
		return true
	}
	return false
}

// toFloat accepts the numeric encodings a JSON body can carry: float64,
// json.Number, integer types and numeric strings.
func toFloat(value any) (float64, bool) {
	switch n := value.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func toBool(value any) (bool, bool) {
	switch b := value.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return parsed, err == nil
	case float64:
		// JSON numbers 0/1 from checkbox-style clients.
		if b == 0 || b == 1 {
			return b == 1, true
		}
		return false, false
	default:
		return false, false
	}
}
