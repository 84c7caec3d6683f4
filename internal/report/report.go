// Package report renders a completed assessment session as a structured
// clinical summary for the report retrieval endpoint.
package report

import (
	"fmt"
	"math"
	"time"

	"github.com/cvd-risk-server/internal/domain"
	"github.com/cvd-risk-server/internal/session"
)

// Report is the structured clinical summary of one assessment session.
type Report struct {
	SessionID       string         `json:"session_id"`
	GeneratedAt     time.Time      `json:"generated_at"`
	AssessedAt      time.Time      `json:"assessed_at"`
	Patient         PatientSummary `json:"patient"`
	Methods         []MethodResult `json:"methods"`
	Overall         *Overall       `json:"overall,omitempty"`
	Warnings        []string       `json:"warnings,omitempty"`
	Recommendations []string       `json:"recommendations"`
}

// PatientSummary restates the assessed record with derived quantities.
type PatientSummary struct {
	Name             string   `json:"name,omitempty"`
	Age              int      `json:"age"`
	Sex              string   `json:"sex"`
	TotalCholesterol float64  `json:"total_cholesterol"`
	HDL              float64  `json:"hdl"`
	LDL              *float64 `json:"ldl,omitempty"`
	SystolicBP       float64  `json:"systolic_bp"`
	DiastolicBP      *float64 `json:"diastolic_bp,omitempty"`
	CholesterolRatio float64  `json:"cholesterol_ratio"`
	BMI              *float64 `json:"bmi,omitempty"`
	RiskFactors      []string `json:"risk_factors"`
}

// MethodResult is one scoring method's outcome with its clinical name.
type MethodResult struct {
	Method      string  `json:"method"`
	DisplayName string  `json:"display_name"`
	Percent     float64 `json:"percent"`
	Category    string  `json:"category"`
}

// Overall is the aggregated estimate.
type Overall struct {
	Percent  float64 `json:"percent"`
	Category string  `json:"category"`
}

// Builder renders sessions into reports.
type Builder struct{}

// NewBuilder creates a report builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build renders the session into a report.
func (b *Builder) Build(sess *session.Session) *Report {
	rep := &Report{
		SessionID:   sess.ID,
		GeneratedAt: time.Now().UTC(),
		AssessedAt:  sess.CreatedAt,
		Patient:     summarizePatient(sess.Record),
	}

	if sess.Results != nil {
		for _, r := range sess.Results.Available() {
			rep.Methods = append(rep.Methods, MethodResult{
				Method:      r.Method.String(),
				DisplayName: r.Method.DisplayName(),
				Percent:     round1(r.Percent),
				Category:    r.Category.String(),
			})
		}
		if sess.Results.Overall != nil {
			rep.Overall = &Overall{
				Percent:  round1(sess.Results.Overall.Percent),
				Category: sess.Results.Overall.Category.String(),
			}
		}
		rep.Warnings = sess.Results.Warnings
	}

	rep.Recommendations = b.recommendations(sess.Record, rep.Overall)
	return rep
}

// summarizePatient restates the record and derives ratio and BMI.
func summarizePatient(rec *domain.PatientRecord) PatientSummary {
	summary := PatientSummary{
		Name:             rec.Name,
		Age:              rec.Age,
		Sex:              rec.Sex.String(),
		TotalCholesterol: rec.TotalCholesterol,
		HDL:              rec.HDL,
		LDL:              rec.LDL,
		SystolicBP:       rec.SystolicBP,
		DiastolicBP:      rec.DiastolicBP,
		CholesterolRatio: round1(rec.CholesterolRatio()),
		RiskFactors:      riskFactorList(rec),
	}

	if rec.WeightKg != nil && rec.HeightCm != nil && *rec.HeightCm > 0 {
		heightM := *rec.HeightCm / 100
		bmi := round1(*rec.WeightKg / (heightM * heightM))
		summary.BMI = &bmi
	}
	return summary
}

func riskFactorList(rec *domain.PatientRecord) []string {
	factors := make([]string, 0, 4)
	if rec.Smoker {
		factors = append(factors, "current smoker")
	}
	if rec.Diabetic {
		factors = append(factors, "diabetes")
	}
	if rec.HypertensionTreatment {
		factors = append(factors, "treated hypertension")
	}
	if rec.OnStatins {
		factors = append(factors, "statin therapy")
	}
	return factors
}

// recommendations creates actionable follow-up guidance based on the overall
// category and the recorded risk factors.
func (b *Builder) recommendations(rec *domain.PatientRecord, overall *Overall) []string {
	recommendations := make([]string, 0)

	if overall == nil {
		recommendations = append(recommendations, "No scoring method applies to this patient; assess risk clinically")
		return recommendations
	}

	switch domain.RiskCategory(overall.Category) {
	case domain.RiskLow:
		recommendations = append(recommendations, "Maintain current lifestyle; reassess in 5 years")

	case domain.RiskModerate:
		recommendations = append(recommendations, "Discuss lifestyle modification: diet, exercise and weight management")
		recommendations = append(recommendations, "Reassess risk in 1-2 years")

	case domain.RiskHigh:
		recommendations = append(recommendations, "Consider lipid-lowering therapy per local guidelines")
		recommendations = append(recommendations, "Target blood pressure below 140/90 mmHg")
		recommendations = append(recommendations, "Reassess risk annually")

	case domain.RiskVeryHigh:
		recommendations = append(recommendations, "Refer for cardiovascular specialist evaluation")
		recommendations = append(recommendations, "Initiate intensive risk factor management")
	}

	if rec.Smoker {
		recommendations = append(recommendations, "Offer smoking cessation support")
	}
	if rec.Diabetic {
		recommendations = append(recommendations, "Ensure glycaemic control is reviewed alongside cardiovascular risk")
	}
	if rec.CholesterolRatio() > 5 && !rec.OnStatins {
		recommendations = append(recommendations, fmt.Sprintf("Total/HDL ratio is %.1f; consider lipid panel follow-up", rec.CholesterolRatio()))
	}

	return recommendations
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
