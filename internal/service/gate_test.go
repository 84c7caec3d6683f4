package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvd-risk-server/internal/domain"
)

func patientAged(age int) *domain.PatientRecord {
	return &domain.PatientRecord{
		Age:              age,
		Sex:              domain.Male,
		TotalCholesterol: 220,
		HDL:              50,
		SystolicBP:       130,
	}
}

func allCalculators() []domain.RiskCalculator {
	return []domain.RiskCalculator{
		NewFraminghamCalculator(),
		NewSCORE2Calculator(),
		NewPooledCohortCalculator(),
	}
}

func TestApplicabilityGate_AgeWindows(t *testing.T) {
	tests := []struct {
		name        string
		age         int
		wantMethods []domain.Method
	}{
		{
			name: "age 39 qualifies for nothing",
			age:  39,
		},
		{
			name:        "age 40 qualifies for all three",
			age:         40,
			wantMethods: []domain.Method{domain.MethodFramingham, domain.MethodSCORE, domain.MethodACCAHA},
		},
		{
			name:        "age 69 is the last SCORE2 year",
			age:         69,
			wantMethods: []domain.Method{domain.MethodFramingham, domain.MethodSCORE, domain.MethodACCAHA},
		},
		{
			name:        "age 70 drops SCORE2",
			age:         70,
			wantMethods: []domain.Method{domain.MethodFramingham, domain.MethodACCAHA},
		},
		{
			name:        "age 79 keeps framingham and pooled cohort",
			age:         79,
			wantMethods: []domain.Method{domain.MethodFramingham, domain.MethodACCAHA},
		},
		{
			name: "age 80 qualifies for nothing",
			age:  80,
		},
	}

	gate := NewApplicabilityGate()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			applicable, warnings := gate.Filter(allCalculators(), patientAged(tt.age))

			var got []domain.Method
			for _, calc := range applicable {
				got = append(got, calc.Method())
			}
			assert.Equal(t, tt.wantMethods, got)
			assert.Len(t, warnings, 3-len(tt.wantMethods))
		})
	}
}

func TestApplicabilityGate_WarningsNameTheMethod(t *testing.T) {
	gate := NewApplicabilityGate()

	applicable, warnings := gate.Filter(allCalculators(), patientAged(25))
	assert.Empty(t, applicable)
	require.Len(t, warnings, 3)

	assert.Contains(t, warnings[0], "Framingham 2008")
	assert.Contains(t, warnings[1], "SCORE2 2021")
	assert.Contains(t, warnings[2], "ACC/AHA 2013 Pooled Cohort")
	for _, w := range warnings {
		assert.Contains(t, w, "age 25 outside supported range")
	}
}

func TestApplicabilityGate_Check(t *testing.T) {
	gate := NewApplicabilityGate()
	calc := NewSCORE2Calculator()

	ok, warning := gate.Check(calc, patientAged(55))
	assert.True(t, ok)
	assert.Empty(t, warning)

	ok, warning = gate.Check(calc, patientAged(80))
	assert.False(t, ok)
	assert.Equal(t, "SCORE2 2021 skipped: age 80 outside supported range 40-69", warning)
}
