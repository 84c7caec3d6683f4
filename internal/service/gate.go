package service

import (
	"fmt"

	"github.com/cvd-risk-server/internal/domain"
)

// ApplicabilityGate decides, per scoring method, whether a validated record
// falls inside the method's supported demographic window. A failing
// precondition excludes the method and produces an advisory warning; it is
// never a hard error, since the remaining methods may still be computable.
type ApplicabilityGate struct{}

// NewApplicabilityGate creates a new applicability gate.
func NewApplicabilityGate() *ApplicabilityGate {
	return &ApplicabilityGate{}
}

// Check reports whether the record qualifies for the calculator. When it
// does not, the returned warning names the method and the violated
// precondition.
func (g *ApplicabilityGate) Check(calc domain.RiskCalculator, rec *domain.PatientRecord) (bool, string) {
	min, max := calc.AgeRange()
	if rec.Age < min || rec.Age > max {
		return false, fmt.Sprintf("%s skipped: age %d outside supported range %d-%d",
			calc.Method().DisplayName(), rec.Age, min, max)
	}
	return true, ""
}

// Filter partitions the calculators into those applicable to the record and
// the warnings for those that are not. Warning order follows calculator
// order, so responses stay deterministic.
func (g *ApplicabilityGate) Filter(calcs []domain.RiskCalculator, rec *domain.PatientRecord) ([]domain.RiskCalculator, []string) {
	applicable := make([]domain.RiskCalculator, 0, len(calcs))
	var warnings []string

	for _, calc := range calcs {
		ok, warning := g.Check(calc, rec)
		if !ok {
			warnings = append(warnings, warning)
			continue
		}
		applicable = append(applicable, calc)
	}
	return applicable, warnings
}
