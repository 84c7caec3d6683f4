package service

import (
	"math"

	"github.com/cvd-risk-server/internal/domain"
)

// pooledCohortCoefficients holds one sex's coefficient set for the 2013
// ACC/AHA Pooled Cohort Equations.
//
// Source: Goff DC Jr et al., Circulation 2014;129(25 Suppl 2):S49-73,
// Appendix 7. The patient record carries no race field, so the White/Other
// coefficient tables are used for all records.
type pooledCohortCoefficients struct {
	LnAge        float64
	LnAgeSquared float64
	LnTotalChol  float64
	LnAgeTotChol float64
	LnHDL        float64
	LnAgeHDL     float64
	LnSBPTreated float64
	LnSBPUntreat float64
	Smoker       float64
	LnAgeSmoker  float64
	Diabetic     float64

	MeanSum          float64
	BaselineSurvival float64
}

var pooledCohortMale = pooledCohortCoefficients{
	LnAge:        12.344,
	LnTotalChol:  11.853,
	LnAgeTotChol: -2.664,
	LnHDL:        -7.990,
	LnAgeHDL:     1.769,
	LnSBPTreated: 1.797,
	LnSBPUntreat: 1.764,
	Smoker:       7.837,
	LnAgeSmoker:  -1.795,
	Diabetic:     0.658,

	MeanSum:          61.18,
	BaselineSurvival: 0.9144,
}

var pooledCohortFemale = pooledCohortCoefficients{
	LnAge:        -29.799,
	LnAgeSquared: 4.884,
	LnTotalChol:  13.540,
	LnAgeTotChol: -3.114,
	LnHDL:        -13.578,
	LnAgeHDL:     3.149,
	LnSBPTreated: 2.019,
	LnSBPUntreat: 1.957,
	Smoker:       7.574,
	LnAgeSmoker:  -1.665,
	Diabetic:     0.661,

	MeanSum:          -29.18,
	BaselineSurvival: 0.9665,
}

// PooledCohortCalculator implements the ACC/AHA 2013 Pooled Cohort
// Equations for 10-year ASCVD risk, including the blood pressure treatment
// interaction terms.
type PooledCohortCalculator struct{}

// NewPooledCohortCalculator creates a new ACC/AHA calculator.
func NewPooledCohortCalculator() *PooledCohortCalculator {
	return &PooledCohortCalculator{}
}

// Method identifies this calculator.
func (c *PooledCohortCalculator) Method() domain.Method {
	return domain.MethodACCAHA
}

// AgeRange returns the supported age window.
func (c *PooledCohortCalculator) AgeRange() (int, int) {
	return 40, 79
}

// Calculate computes the 10-year ASCVD risk.
func (c *PooledCohortCalculator) Calculate(rec *domain.PatientRecord) domain.RiskResult {
	coef := pooledCohortMale
	if rec.Sex == domain.Female {
		coef = pooledCohortFemale
	}

	lnAge := math.Log(float64(rec.Age))
	lnTC := math.Log(rec.TotalCholesterol)
	lnHDL := math.Log(rec.HDL)
	lnSBP := math.Log(rec.SystolicBP)

	sbpBeta := coef.LnSBPUntreat
	if rec.HypertensionTreatment {
		sbpBeta = coef.LnSBPTreated
	}

	sum := coef.LnAge*lnAge +
		coef.LnAgeSquared*lnAge*lnAge +
		coef.LnTotalChol*lnTC +
		coef.LnAgeTotChol*lnAge*lnTC +
		coef.LnHDL*lnHDL +
		coef.LnAgeHDL*lnAge*lnHDL +
		sbpBeta*lnSBP
	if rec.Smoker {
		sum += coef.Smoker + coef.LnAgeSmoker*lnAge
	}
	if rec.Diabetic {
		sum += coef.Diabetic
	}

	risk := 1 - math.Pow(coef.BaselineSurvival, math.Exp(sum-coef.MeanSum))
	return domain.NewRiskResult(domain.MethodACCAHA, risk*100)
}
