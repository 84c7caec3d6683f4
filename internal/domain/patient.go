// Package domain contains the core entities and types for cardiovascular
// risk estimation using the Framingham 2008, SCORE2 2021 and ACC/AHA 2013
// pooled cohort scoring methods.
//
// References:
//   - D'Agostino et al. (2008) General cardiovascular risk profile for use
//     in primary care: the Framingham Heart Study. Circulation 117(6):743-53.
//   - SCORE2 working group and ESC Cardiovascular risk collaboration (2021).
//     European Heart Journal 42:2439-2454.
//   - Goff DC Jr et al. (2014) 2013 ACC/AHA guideline on the assessment of
//     cardiovascular risk. Circulation 129(25 Suppl 2):S49-73.
package domain

// Sex is the biological sex category used by the published risk equations.
// All three scoring methods define sex-specific coefficient tables, so only
// the two published categories are supported.
type Sex string

const (
	Male   Sex = "male"
	Female Sex = "female"
)

// IsValid validates the sex value against the supported categories.
func (s Sex) IsValid() bool {
	switch s {
	case Male, Female:
		return true
	default:
		return false
	}
}

// String returns the string representation of the sex value.
func (s Sex) String() string {
	return string(s)
}

// RawPatientRecord is the loosely-typed record as received from the request
// layer. Field values may be JSON numbers, numeric strings, booleans or
// absent; the validator is responsible for parsing and collecting every
// violation before anything reaches a calculator.
type RawPatientRecord struct {
	Name                  any `json:"name,omitempty"`
	Age                   any `json:"age"`
	Sex                   any `json:"sex"`
	WeightKg              any `json:"weight_kg,omitempty"`
	HeightCm              any `json:"height_cm,omitempty"`
	TotalCholesterol      any `json:"total_cholesterol"`
	HDL                   any `json:"hdl"`
	LDL                   any `json:"ldl,omitempty"`
	SystolicBP            any `json:"systolic_bp"`
	DiastolicBP           any `json:"diastolic_bp,omitempty"`
	Smoker                any `json:"smoker,omitempty"`
	Diabetic              any `json:"diabetic,omitempty"`
	HypertensionTreatment any `json:"hypertension_treatment,omitempty"`
	OnStatins             any `json:"on_statins,omitempty"`
}

// PatientRecord is the normalized, strongly-typed record produced by the
// validator. Required fields are plain values; fields not required by every
// calculator are pointers so their absence is explicit rather than signaled
// by zero values.
//
// Units: cholesterol fractions in mg/dL, blood pressure in mmHg, weight in
// kg, height in cm.
type PatientRecord struct {
	Name                  string   `json:"name,omitempty"`
	Age                   int      `json:"age"`
	Sex                   Sex      `json:"sex"`
	WeightKg              *float64 `json:"weight_kg,omitempty"`
	HeightCm              *float64 `json:"height_cm,omitempty"`
	TotalCholesterol      float64  `json:"total_cholesterol"`
	HDL                   float64  `json:"hdl"`
	LDL                   *float64 `json:"ldl,omitempty"`
	SystolicBP            float64  `json:"systolic_bp"`
	DiastolicBP           *float64 `json:"diastolic_bp,omitempty"`
	Smoker                bool     `json:"smoker"`
	Diabetic              bool     `json:"diabetic"`
	HypertensionTreatment bool     `json:"hypertension_treatment"`
	OnStatins             bool     `json:"on_statins"`
}

// CholesterolRatio returns the total/HDL cholesterol ratio used for the
// advisory ratio warning. HDL is a required, range-checked field so the
// divisor is never zero on a validated record.
func (p *PatientRecord) CholesterolRatio() float64 {
	return p.TotalCholesterol / p.HDL
}
