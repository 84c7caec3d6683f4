package domain

import (
	"context"
)

// RiskCalculator is the shared contract of the three scoring methods. A
// calculator is pure and stateless: Calculate must only be called with a
// validated record inside the method's applicability window, and calling it
// twice with the same record yields identical results.
type RiskCalculator interface {
	// Method identifies the scoring method implemented by this calculator.
	Method() Method

	// AgeRange returns the inclusive age interval in which the method's
	// published coefficients are valid.
	AgeRange() (min, max int)

	// Calculate computes the 10-year event probability for the record.
	Calculate(rec *PatientRecord) RiskResult
}

// ProfileRepository persists named patient profiles and their measurement
// history. Implementations are external collaborators of the risk engine;
// the engine itself never touches storage.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, name, description string, rec *PatientRecord) (*Profile, error)
	GetProfile(ctx context.Context, name string) (*ProfileRecord, error)
	ListProfiles(ctx context.Context) ([]*ProfileRecord, error)
	DeleteProfile(ctx context.Context, id int64) error
	AddMeasurement(ctx context.Context, profileName string, rec *PatientRecord) error
	GetHistory(ctx context.Context, profileName string) (*ProfileHistory, error)
	Close()
}
