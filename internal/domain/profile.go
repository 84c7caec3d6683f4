package domain

import (
	"time"
)

// Profile is a named patient profile stored for repeat evaluation.
type Profile struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Patient holds the demographic data of a profile's patient.
type Patient struct {
	ID        int64     `json:"id"`
	ProfileID int64     `json:"profile_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Sex       Sex       `json:"sex"`
	WeightKg  *float64  `json:"weight_kg,omitempty"`
	HeightCm  *float64  `json:"height_cm,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClinicalMeasurement is one dated set of laboratory and blood pressure
// values for a patient.
type ClinicalMeasurement struct {
	ID               int64     `json:"id"`
	PatientID        int64     `json:"patient_id"`
	MeasuredAt       time.Time `json:"measured_at"`
	TotalCholesterol float64   `json:"total_cholesterol"`
	HDL              float64   `json:"hdl"`
	LDL              *float64  `json:"ldl,omitempty"`
	SystolicBP       float64   `json:"systolic_bp"`
	DiastolicBP      *float64  `json:"diastolic_bp,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// RiskFactors is one dated set of risk factor flags for a patient.
type RiskFactors struct {
	ID                    int64     `json:"id"`
	PatientID             int64     `json:"patient_id"`
	RecordedAt            time.Time `json:"recorded_at"`
	Smoker                bool      `json:"smoker"`
	Diabetic              bool      `json:"diabetic"`
	HypertensionTreatment bool      `json:"hypertension_treatment"`
	OnStatins             bool      `json:"on_statins"`
	CreatedAt             time.Time `json:"created_at"`
}

// HistoryEntry pairs a clinical measurement with the risk factors in effect
// on that date.
type HistoryEntry struct {
	Date        time.Time            `json:"date"`
	Clinical    *ClinicalMeasurement `json:"clinical"`
	RiskFactors *RiskFactors         `json:"risk_factors,omitempty"`
}

// ProfileHistory is the combined measurement history for one profile.
type ProfileHistory struct {
	ProfileName string         `json:"profile_name"`
	PatientName string         `json:"patient_name"`
	Patient     *Patient       `json:"current_data"`
	Entries     []HistoryEntry `json:"history"`
}

// ProfileRecord ties a stored profile to the patient record reconstructed
// from its most recent measurement and risk factors.
type ProfileRecord struct {
	Profile *Profile      `json:"profile"`
	Record  PatientRecord `json:"record"`
}
