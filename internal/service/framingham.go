package service

import (
	"math"

	"github.com/cvd-risk-server/internal/domain"
)

// framinghamCoefficients holds one sex's beta set for the Framingham 2008
// general cardiovascular disease model.
//
// Source: D'Agostino et al., Circulation 2008;117(6):743-53, Table 2
// ("General CVD", Cox model over log-transformed risk factors).
type framinghamCoefficients struct {
	LnAge          float64
	LnTotalChol    float64
	LnHDL          float64
	LnSBPUntreated float64
	LnSBPTreated   float64
	Smoker         float64
	Diabetic       float64

	// MeanSum is the regression sum evaluated at the cohort means;
	// BaselineSurvival is the 10-year baseline survival S0(10).
	MeanSum          float64
	BaselineSurvival float64
}

var framinghamMale = framinghamCoefficients{
	LnAge:            3.06117,
	LnTotalChol:      1.12370,
	LnHDL:            -0.93263,
	LnSBPUntreated:   1.93303,
	LnSBPTreated:     1.99881,
	Smoker:           0.65451,
	Diabetic:         0.57367,
	MeanSum:          23.9802,
	BaselineSurvival: 0.88936,
}

var framinghamFemale = framinghamCoefficients{
	LnAge:            2.32888,
	LnTotalChol:      1.20904,
	LnHDL:            -0.70833,
	LnSBPUntreated:   2.76157,
	LnSBPTreated:     2.82263,
	Smoker:           0.52873,
	Diabetic:         0.69154,
	MeanSum:          26.1931,
	BaselineSurvival: 0.95012,
}

// FraminghamCalculator implements the Framingham 2008 general CVD equation.
type FraminghamCalculator struct{}

// NewFraminghamCalculator creates a new Framingham calculator.
func NewFraminghamCalculator() *FraminghamCalculator {
	return &FraminghamCalculator{}
}

// Method identifies this calculator.
func (c *FraminghamCalculator) Method() domain.Method {
	return domain.MethodFramingham
}

// AgeRange returns the supported age window.
func (c *FraminghamCalculator) AgeRange() (int, int) {
	return 40, 79
}

// Calculate computes the 10-year general CVD risk. Inputs are assumed to be
// validated and inside the applicability window; the log transforms below
// are therefore always in-domain.
func (c *FraminghamCalculator) Calculate(rec *domain.PatientRecord) domain.RiskResult {
	coef := framinghamMale
	if rec.Sex == domain.Female {
		coef = framinghamFemale
	}

	sbpBeta := coef.LnSBPUntreated
	if rec.HypertensionTreatment {
		sbpBeta = coef.LnSBPTreated
	}

	sum := coef.LnAge*math.Log(float64(rec.Age)) +
		coef.LnTotalChol*math.Log(rec.TotalCholesterol) +
		coef.LnHDL*math.Log(rec.HDL) +
		sbpBeta*math.Log(rec.SystolicBP)
	if rec.Smoker {
		sum += coef.Smoker
	}
	if rec.Diabetic {
		sum += coef.Diabetic
	}

	risk := 1 - math.Pow(coef.BaselineSurvival, math.Exp(sum-coef.MeanSum))
	return domain.NewRiskResult(domain.MethodFramingham, risk*100)
}
