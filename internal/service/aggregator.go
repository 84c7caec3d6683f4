package service

import (
	"sync"

	"github.com/cvd-risk-server/internal/domain"
)

// Aggregator runs a set of risk calculators against a patient record and
// combines their results. Calculators are independent, so they run
// concurrently; the overall risk is the maximum across the methods that
// produced a result.
type Aggregator struct {
	gate *ApplicabilityGate
}

// NewAggregator creates an aggregator with the given applicability gate.
func NewAggregator(gate *ApplicabilityGate) *Aggregator {
	return &Aggregator{gate: gate}
}

// Aggregate filters the calculators through the applicability gate, runs the
// remaining ones concurrently, and merges results. When no calculator
// applies, the result carries no scores and at least one warning explaining
// the exclusions.
func (a *Aggregator) Aggregate(calcs []domain.RiskCalculator, rec *domain.PatientRecord) *domain.AggregatedResult {
	agg := &domain.AggregatedResult{}

	applicable, warnings := a.gate.Filter(calcs, rec)
	agg.Warnings = append(agg.Warnings, warnings...)

	if len(applicable) == 0 {
		return agg
	}

	results := make([]domain.RiskResult, len(applicable))
	var wg sync.WaitGroup
	for i, calc := range applicable {
		wg.Add(1)
		go func(i int, calc domain.RiskCalculator) {
			defer wg.Done()
			results[i] = calc.Calculate(rec)
		}(i, calc)
	}
	wg.Wait()

	for i := range results {
		agg.SetResult(results[i])
	}

	overall := results[0].Percent
	for _, r := range results[1:] {
		if r.Percent > overall {
			overall = r.Percent
		}
	}
	agg.Overall = &domain.OverallRisk{
		Percent:  overall,
		Category: domain.Categorize(overall),
	}
	return agg
}
