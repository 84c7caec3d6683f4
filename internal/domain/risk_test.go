package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	tests := []struct {
		name    string
		percent float64
		want    RiskCategory
	}{
		{"Zero", 0, RiskLow},
		{"Just below moderate", 4.9, RiskLow},
		{"Moderate boundary", 5.0, RiskModerate},
		{"Just below high", 9.9, RiskModerate},
		{"High boundary", 10.0, RiskHigh},
		{"Just below very high", 19.9, RiskHigh},
		{"Very high boundary", 20.0, RiskVeryHigh},
		{"Maximum", 100, RiskVeryHigh},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Categorize(tt.percent))
		})
	}
}

func TestCategorizeTotalAndMonotonic(t *testing.T) {
	order := map[RiskCategory]int{
		RiskLow:      0,
		RiskModerate: 1,
		RiskHigh:     2,
		RiskVeryHigh: 3,
	}

	prev := RiskLow
	for p := 0.0; p <= 100.0; p += 0.1 {
		c := Categorize(p)
		assert.True(t, c.IsValid(), "percent %.1f produced invalid category", p)
		assert.GreaterOrEqual(t, order[c], order[prev],
			"category decreased at percent %.1f", p)
		prev = c
	}
}

func TestClampPercent(t *testing.T) {
	assert.Equal(t, 0.0, ClampPercent(-3.5))
	assert.Equal(t, 100.0, ClampPercent(150))
	assert.Equal(t, 42.5, ClampPercent(42.5))
}

func TestNewRiskResultInvariants(t *testing.T) {
	r := NewRiskResult(MethodFramingham, 120)
	assert.Equal(t, 100.0, r.Percent)
	assert.Equal(t, RiskVeryHigh, r.Category)

	r = NewRiskResult(MethodSCORE, -1)
	assert.Equal(t, 0.0, r.Percent)
	assert.Equal(t, RiskLow, r.Category)
}

func TestAggregatedResultMapping(t *testing.T) {
	agg := &AggregatedResult{}
	assert.Empty(t, agg.Available())

	agg.SetResult(NewRiskResult(MethodSCORE, 7.2))
	agg.SetResult(NewRiskResult(MethodFramingham, 3.1))

	available := agg.Available()
	require.Len(t, available, 2)
	assert.Equal(t, MethodFramingham, available[0].Method)
	assert.Equal(t, MethodSCORE, available[1].Method)
	assert.Nil(t, agg.Result(MethodACCAHA))
	assert.Equal(t, 7.2, agg.Result(MethodSCORE).Percent)
}

func TestMethodIsValid(t *testing.T) {
	assert.True(t, MethodFramingham.IsValid())
	assert.True(t, MethodAll.IsValid())
	assert.False(t, Method("cha2ds2").IsValid())
}

func TestSexIsValid(t *testing.T) {
	assert.True(t, Male.IsValid())
	assert.True(t, Female.IsValid())
	assert.False(t, Sex("other").IsValid())
}
