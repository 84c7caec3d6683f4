package service

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cvd-risk-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestAggregator_OverallIsMaximum(t *testing.T) {
	agg := NewAggregator(NewApplicabilityGate())

	result := agg.Aggregate(allCalculators(), patientAged(55))
	require.Len(t, result.Available(), 3)
	require.NotNil(t, result.Overall)

	max := 0.0
	for _, r := range result.Available() {
		if r.Percent > max {
			max = r.Percent
		}
	}
	assert.Equal(t, max, result.Overall.Percent)
	assert.Equal(t, domain.Categorize(max), result.Overall.Category)
}

func TestAggregator_NoApplicableMethods(t *testing.T) {
	agg := NewAggregator(NewApplicabilityGate())

	result := agg.Aggregate(allCalculators(), patientAged(25))
	assert.Empty(t, result.Available())
	assert.Nil(t, result.Overall)
	assert.Len(t, result.Warnings, 3)
}

func TestAggregator_PartialApplicability(t *testing.T) {
	agg := NewAggregator(NewApplicabilityGate())

	// Age 75 is past the SCORE2 window but inside the other two.
	result := agg.Aggregate(allCalculators(), patientAged(75))
	require.Len(t, result.Available(), 2)
	assert.NotNil(t, result.Framingham)
	assert.Nil(t, result.SCORE)
	assert.NotNil(t, result.ACCAHA)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "SCORE2 2021")
	require.NotNil(t, result.Overall)
}

func TestRiskEngine_Assess(t *testing.T) {
	engine := NewRiskEngine(testLogger())

	result, err := engine.Assess(&AssessParams{
		Method: domain.MethodAll,
		Record: validRawRecord(),
	})
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Len(t, result.Results.Available(), 3)
	require.NotNil(t, result.Results.Overall)
	assert.Less(t, result.Results.Overall.Percent, 10.0)
	assert.Equal(t, 45, result.Record.Age)
}

func TestRiskEngine_SingleMethod(t *testing.T) {
	engine := NewRiskEngine(testLogger())

	for _, method := range []domain.Method{domain.MethodFramingham, domain.MethodSCORE, domain.MethodACCAHA} {
		t.Run(method.String(), func(t *testing.T) {
			result, err := engine.Assess(&AssessParams{Method: method, Record: validRawRecord()})
			require.NoError(t, err)

			available := result.Results.Available()
			require.Len(t, available, 1)
			assert.Equal(t, method, available[0].Method)
			require.NotNil(t, result.Results.Overall)
			assert.Equal(t, available[0].Percent, result.Results.Overall.Percent)
		})
	}
}

func TestRiskEngine_InvalidMethod(t *testing.T) {
	engine := NewRiskEngine(testLogger())

	_, err := engine.Assess(&AssessParams{Method: domain.Method("quetelet"), Record: validRawRecord()})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidMethod)
}

func TestRiskEngine_ValidationFailure(t *testing.T) {
	engine := NewRiskEngine(testLogger())

	raw := validRawRecord()
	raw.Age = "unknown"
	raw.HDL = nil

	_, err := engine.Assess(&AssessParams{Method: domain.MethodAll, Record: raw})
	require.Error(t, err)

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 2)
}

func TestRiskEngine_AdvisoriesPrecedeGateWarnings(t *testing.T) {
	engine := NewRiskEngine(testLogger())

	// A 35 year old with elevated pressure gets the advisory plus three
	// method exclusions, and no scores.
	raw := validRawRecord()
	raw.Age = float64(35)
	raw.SystolicBP = float64(150)

	result, err := engine.Assess(&AssessParams{Method: domain.MethodAll, Record: raw})
	require.NoError(t, err)

	assert.Empty(t, result.Results.Available())
	assert.Nil(t, result.Results.Overall)
	require.Len(t, result.Results.Warnings, 4)
	assert.Equal(t, "systolic pressure elevated for age", result.Results.Warnings[0])
}
