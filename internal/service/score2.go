package service

import (
	"math"

	"github.com/cvd-risk-server/internal/domain"
)

// mgdlToMmol converts cholesterol from mg/dL (the record's unit) to mmol/L,
// the unit the SCORE2 model was fitted in.
const mgdlToMmol = 0.02586

// score2Coefficients holds one sex's log hazard ratios and calibration for
// the SCORE2 model.
//
// Source: SCORE2 working group and ESC Cardiovascular risk collaboration,
// European Heart Journal 2021;42:2439-2454, supplementary tables. The model
// uses centred, scaled risk factors with age interaction terms, a baseline
// survival transform and region-specific recalibration; this implementation
// carries the low-risk-region scales.
type score2Coefficients struct {
	Age      float64
	Smoker   float64
	SBP      float64
	Diabetic float64
	TotChol  float64
	HDL      float64

	SmokerAge   float64
	SBPAge      float64
	DiabeticAge float64
	TotCholAge  float64
	HDLAge      float64

	BaselineSurvival float64
	Scale1           float64
	Scale2           float64
}

var score2Male = score2Coefficients{
	Age:      0.3742,
	Smoker:   0.6012,
	SBP:      0.2777,
	Diabetic: 0.6457,
	TotChol:  0.1458,
	HDL:      -0.2698,

	SmokerAge:   -0.0755,
	SBPAge:      -0.0255,
	DiabeticAge: -0.0983,
	TotCholAge:  -0.0281,
	HDLAge:      0.0426,

	BaselineSurvival: 0.9605,
	Scale1:           -0.5699,
	Scale2:           0.7476,
}

var score2Female = score2Coefficients{
	Age:      0.4648,
	Smoker:   0.7744,
	SBP:      0.3131,
	Diabetic: 0.8096,
	TotChol:  0.1002,
	HDL:      -0.2606,

	SmokerAge:   -0.1088,
	SBPAge:      -0.0277,
	DiabeticAge: -0.1272,
	TotCholAge:  -0.0226,
	HDLAge:      0.0613,

	BaselineSurvival: 0.9776,
	Scale1:           -0.7380,
	Scale2:           0.7019,
}

// SCORE2Calculator implements the SCORE2 2021 European risk model.
type SCORE2Calculator struct{}

// NewSCORE2Calculator creates a new SCORE2 calculator.
func NewSCORE2Calculator() *SCORE2Calculator {
	return &SCORE2Calculator{}
}

// Method identifies this calculator.
func (c *SCORE2Calculator) Method() domain.Method {
	return domain.MethodSCORE
}

// AgeRange returns the supported age window. SCORE2 covers 40-69; older
// patients belong to the separate SCORE2-OP model, which is not implemented.
func (c *SCORE2Calculator) AgeRange() (int, int) {
	return 40, 69
}

// Calculate computes the calibrated 10-year CVD risk for a low-risk-region
// population.
func (c *SCORE2Calculator) Calculate(rec *domain.PatientRecord) domain.RiskResult {
	coef := score2Male
	if rec.Sex == domain.Female {
		coef = score2Female
	}

	cage := (float64(rec.Age) - 60) / 5
	csbp := (rec.SystolicBP - 120) / 20
	ctchol := rec.TotalCholesterol*mgdlToMmol - 6
	chdl := (rec.HDL*mgdlToMmol - 1.3) / 0.5

	smoker := indicator(rec.Smoker)
	diabetic := indicator(rec.Diabetic)

	x := coef.Age*cage +
		coef.Smoker*smoker +
		coef.SBP*csbp +
		coef.Diabetic*diabetic +
		coef.TotChol*ctchol +
		coef.HDL*chdl +
		coef.SmokerAge*smoker*cage +
		coef.SBPAge*csbp*cage +
		coef.DiabeticAge*diabetic*cage +
		coef.TotCholAge*ctchol*cage +
		coef.HDLAge*chdl*cage

	uncalibrated := 1 - math.Pow(coef.BaselineSurvival, math.Exp(x))

	// Region recalibration on the complementary log-log scale.
	calibrated := 1 - math.Exp(-math.Exp(coef.Scale1+coef.Scale2*math.Log(-math.Log(1-uncalibrated))))

	return domain.NewRiskResult(domain.MethodSCORE, calibrated*100)
}

func indicator(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
