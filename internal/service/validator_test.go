package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvd-risk-server/internal/domain"
)

func validRawRecord() *domain.RawPatientRecord {
	return &domain.RawPatientRecord{
		Age:              float64(45),
		Sex:              "male",
		TotalCholesterol: float64(220),
		HDL:              float64(50),
		SystolicBP:       float64(130),
	}
}

func TestValidator_ValidRecord(t *testing.T) {
	v := NewValidator()

	raw := validRawRecord()
	raw.Name = "example patient"
	raw.LDL = float64(140)
	raw.Smoker = true

	rec, warnings, errs := v.Validate(raw)
	require.Empty(t, errs)
	require.NotNil(t, rec)

	assert.Equal(t, 45, rec.Age)
	assert.Equal(t, domain.Male, rec.Sex)
	assert.Equal(t, 220.0, rec.TotalCholesterol)
	assert.Equal(t, 50.0, rec.HDL)
	assert.Equal(t, 130.0, rec.SystolicBP)
	require.NotNil(t, rec.LDL)
	assert.Equal(t, 140.0, *rec.LDL)
	assert.True(t, rec.Smoker)
	assert.False(t, rec.Diabetic)
	assert.Empty(t, warnings)
}

func TestValidator_CollectsAllErrors(t *testing.T) {
	v := NewValidator()

	// Missing HDL and a non-numeric age must both be reported in one pass.
	raw := validRawRecord()
	raw.Age = "forty-five"
	raw.HDL = nil

	rec, _, errs := v.Validate(raw)
	require.Nil(t, rec)
	require.Len(t, errs, 2)

	fields := []string{errs[0].Field, errs[1].Field}
	assert.Contains(t, fields, "age")
	assert.Contains(t, fields, "hdl")
}

func TestValidator_FieldRules(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(raw *domain.RawPatientRecord)
		wantField string
	}{
		{
			name:      "missing age",
			mutate:    func(raw *domain.RawPatientRecord) { raw.Age = nil },
			wantField: "age",
		},
		{
			name:      "fractional age",
			mutate:    func(raw *domain.RawPatientRecord) { raw.Age = 45.5 },
			wantField: "age",
		},
		{
			name:      "age below plausible range",
			mutate:    func(raw *domain.RawPatientRecord) { raw.Age = float64(12) },
			wantField: "age",
		},
		{
			name:      "missing sex",
			mutate:    func(raw *domain.RawPatientRecord) { raw.Sex = nil },
			wantField: "sex",
		},
		{
			name:      "unknown sex value",
			mutate:    func(raw *domain.RawPatientRecord) { raw.Sex = "other" },
			wantField: "sex",
		},
		{
			name:      "cholesterol above plausible range",
			mutate:    func(raw *domain.RawPatientRecord) { raw.TotalCholesterol = float64(450) },
			wantField: "total_cholesterol",
		},
		{
			name:      "hdl below plausible range",
			mutate:    func(raw *domain.RawPatientRecord) { raw.HDL = float64(10) },
			wantField: "hdl",
		},
		{
			name:      "systolic above plausible range",
			mutate:    func(raw *domain.RawPatientRecord) { raw.SystolicBP = float64(240) },
			wantField: "systolic_bp",
		},
		{
			name:      "optional ldl out of range",
			mutate:    func(raw *domain.RawPatientRecord) { raw.LDL = float64(300) },
			wantField: "ldl",
		},
		{
			name:      "non-boolean smoker flag",
			mutate:    func(raw *domain.RawPatientRecord) { raw.Smoker = "maybe" },
			wantField: "smoker",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			raw := validRawRecord()
			tt.mutate(raw)

			rec, _, errs := v.Validate(raw)
			assert.Nil(t, rec)
			require.Len(t, errs, 1)
			assert.Equal(t, tt.wantField, errs[0].Field)
		})
	}
}

func TestValidator_AcceptsStringNumbers(t *testing.T) {
	v := NewValidator()

	raw := validRawRecord()
	raw.Age = "45"
	raw.TotalCholesterol = "220"
	raw.Smoker = "true"

	rec, _, errs := v.Validate(raw)
	require.Empty(t, errs)
	assert.Equal(t, 45, rec.Age)
	assert.Equal(t, 220.0, rec.TotalCholesterol)
	assert.True(t, rec.Smoker)
}

func TestValidator_BoundaryWarning(t *testing.T) {
	v := NewValidator()

	raw := validRawRecord()
	raw.SystolicBP = float64(200)

	rec, warnings, errs := v.Validate(raw)
	require.Empty(t, errs)
	require.NotNil(t, rec)
	assert.Contains(t, warnings, "systolic_bp is at the plausibility limit: 200")
}

func TestValidator_CrossFieldAdvisories(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(raw *domain.RawPatientRecord)
		wantWarning string
	}{
		{
			name: "young patient with elevated systolic",
			mutate: func(raw *domain.RawPatientRecord) {
				raw.Age = float64(32)
				raw.SystolicBP = float64(150)
			},
			wantWarning: "systolic pressure elevated for age",
		},
		{
			name: "older patient with elevated systolic",
			mutate: func(raw *domain.RawPatientRecord) {
				raw.Age = float64(70)
				raw.SystolicBP = float64(135)
			},
			wantWarning: "systolic pressure elevated for age",
		},
		{
			name: "high cholesterol ratio",
			mutate: func(raw *domain.RawPatientRecord) {
				raw.TotalCholesterol = float64(300)
				raw.HDL = float64(40)
			},
			wantWarning: "total/HDL cholesterol ratio elevated (>5)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewValidator()
			raw := validRawRecord()
			tt.mutate(raw)

			rec, warnings, errs := v.Validate(raw)
			require.Empty(t, errs)
			require.NotNil(t, rec)
			assert.Contains(t, warnings, tt.wantWarning)
		})
	}
}
