// Package repository persists named patient profiles in PostgreSQL. The
// schema keeps demographics, clinical measurements and risk factor flags in
// separate tables so every measurement a profile ever recorded stays
// queryable as history.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/cvd-risk-server/internal/domain"
)

// ProfileRepository handles profile data persistence on a pgx pool.
type ProfileRepository struct {
	db  *pgxpool.Pool
	log *logrus.Logger
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db *pgxpool.Pool, logger *logrus.Logger) *ProfileRepository {
	return &ProfileRepository{
		db:  db,
		log: logger,
	}
}

// CreateProfile stores a new named profile with its initial measurement and
// risk factors in one transaction.
func (r *ProfileRepository) CreateProfile(ctx context.Context, name, description string, rec *domain.PatientRecord) (*domain.Profile, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	profile := &domain.Profile{
		Name:        name,
		Description: description,
		IsActive:    true,
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO profiles (name, description, is_active)
		VALUES ($1, $2, TRUE)
		RETURNING id, created_at, updated_at`,
		name, description,
	).Scan(&profile.ID, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, fmt.Errorf("profile %q: %w", name, domain.ErrAlreadyExists)
		}
		r.log.WithFields(logrus.Fields{
			"profile_name": name,
			"error":        err,
		}).Error("Failed to create profile")
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	var patientID int64
	err = tx.QueryRow(ctx, `
		INSERT INTO patients (profile_id, name, age, sex, weight_kg, height_cm)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`,
		profile.ID, rec.Name, rec.Age, rec.Sex.String(), rec.WeightKg, rec.HeightCm,
	).Scan(&patientID)
	if err != nil {
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	if err := insertMeasurement(ctx, tx, patientID, rec); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing profile: %w", err)
	}

	r.log.WithFields(logrus.Fields{
		"profile_id":   profile.ID,
		"profile_name": name,
	}).Info("Profile created successfully")

	return profile, nil
}

// insertMeasurement appends one clinical measurement and its risk factor
// snapshot for a patient.
func insertMeasurement(ctx context.Context, tx pgx.Tx, patientID int64, rec *domain.PatientRecord) error {
	now := time.Now().UTC()

	_, err := tx.Exec(ctx, `
		INSERT INTO clinical_measurements (
			patient_id, measured_at, total_cholesterol, hdl, ldl,
			systolic_bp, diastolic_bp
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		patientID, now, rec.TotalCholesterol, rec.HDL, rec.LDL,
		rec.SystolicBP, rec.DiastolicBP,
	)
	if err != nil {
		return fmt.Errorf("creating clinical measurement: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO risk_factors_history (
			patient_id, recorded_at, smoker, diabetic,
			hypertension_treatment, on_statins
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		patientID, now, rec.Smoker, rec.Diabetic,
		rec.HypertensionTreatment, rec.OnStatins,
	)
	if err != nil {
		return fmt.Errorf("creating risk factors: %w", err)
	}
	return nil
}

// profileRecordQuery joins a profile with its patient and the most recent
// measurement and risk factor rows.
const profileRecordQuery = `
	SELECT p.id, p.name, p.description, p.is_active, p.created_at, p.updated_at,
		   pt.name, pt.age, pt.sex, pt.weight_kg, pt.height_cm,
		   cm.total_cholesterol, cm.hdl, cm.ldl, cm.systolic_bp, cm.diastolic_bp,
		   rf.smoker, rf.diabetic, rf.hypertension_treatment, rf.on_statins
	FROM profiles p
	JOIN patients pt ON pt.profile_id = p.id
	JOIN LATERAL (
		SELECT total_cholesterol, hdl, ldl, systolic_bp, diastolic_bp
		FROM clinical_measurements
		WHERE patient_id = pt.id
		ORDER BY measured_at DESC, id DESC
		LIMIT 1
	) cm ON TRUE
	JOIN LATERAL (
		SELECT smoker, diabetic, hypertension_treatment, on_statins
		FROM risk_factors_history
		WHERE patient_id = pt.id
		ORDER BY recorded_at DESC, id DESC
		LIMIT 1
	) rf ON TRUE
	WHERE p.is_active = TRUE`

func scanProfileRecord(row pgx.Row) (*domain.ProfileRecord, error) {
	var (
		profile domain.Profile
		rec     domain.PatientRecord
		sex     string
	)

	err := row.Scan(
		&profile.ID, &profile.Name, &profile.Description, &profile.IsActive,
		&profile.CreatedAt, &profile.UpdatedAt,
		&rec.Name, &rec.Age, &sex, &rec.WeightKg, &rec.HeightCm,
		&rec.TotalCholesterol, &rec.HDL, &rec.LDL, &rec.SystolicBP, &rec.DiastolicBP,
		&rec.Smoker, &rec.Diabetic, &rec.HypertensionTreatment, &rec.OnStatins,
	)
	if err != nil {
		return nil, err
	}

	rec.Sex = domain.Sex(sex)
	return &domain.ProfileRecord{Profile: &profile, Record: rec}, nil
}

// GetProfile retrieves an active profile by name with its latest record.
func (r *ProfileRepository) GetProfile(ctx context.Context, name string) (*domain.ProfileRecord, error) {
	row := r.db.QueryRow(ctx, profileRecordQuery+" AND p.name = $1", name)

	pr, err := scanProfileRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %q: %w", name, domain.ErrNotFound)
		}
		r.log.WithFields(logrus.Fields{
			"profile_name": name,
			"error":        err,
		}).Error("Failed to get profile")
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	return pr, nil
}

// ListProfiles returns all active profiles with their latest records.
func (r *ProfileRepository) ListProfiles(ctx context.Context) ([]*domain.ProfileRecord, error) {
	rows, err := r.db.Query(ctx, profileRecordQuery+" ORDER BY p.name")
	if err != nil {
		r.log.WithError(err).Error("Failed to list profiles")
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	var records []*domain.ProfileRecord
	for rows.Next() {
		pr, err := scanProfileRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile row: %w", err)
		}
		records = append(records, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile rows: %w", err)
	}
	return records, nil
}

// DeleteProfile soft-deletes a profile by ID. History rows stay in place for
// audit purposes.
func (r *ProfileRepository) DeleteProfile(ctx context.Context, id int64) error {
	result, err := r.db.Exec(ctx, `
		UPDATE profiles SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active = TRUE`, id)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"profile_id": id,
			"error":      err,
		}).Error("Failed to delete profile")
		return fmt.Errorf("deleting profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("profile %d: %w", id, domain.ErrNotFound)
	}

	r.log.WithField("profile_id", id).Info("Profile deleted successfully")
	return nil
}

// AddMeasurement appends a new measurement to an existing profile and
// refreshes the stored demographics.
func (r *ProfileRepository) AddMeasurement(ctx context.Context, profileName string, rec *domain.PatientRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var patientID int64
	err = tx.QueryRow(ctx, `
		SELECT pt.id FROM patients pt
		JOIN profiles p ON p.id = pt.profile_id
		WHERE p.name = $1 AND p.is_active = TRUE`,
		profileName,
	).Scan(&patientID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("profile %q: %w", profileName, domain.ErrNotFound)
		}
		return fmt.Errorf("looking up profile: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE patients SET age = $2, sex = $3, weight_kg = $4, height_cm = $5, updated_at = NOW()
		WHERE id = $1`,
		patientID, rec.Age, rec.Sex.String(), rec.WeightKg, rec.HeightCm,
	)
	if err != nil {
		return fmt.Errorf("updating patient: %w", err)
	}

	if err := insertMeasurement(ctx, tx, patientID, rec); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing measurement: %w", err)
	}

	r.log.WithField("profile_name", profileName).Info("Measurement added successfully")
	return nil
}

// GetHistory returns every dated measurement for a profile, newest first,
// each paired with the risk factors recorded on the same date.
func (r *ProfileRepository) GetHistory(ctx context.Context, profileName string) (*domain.ProfileHistory, error) {
	var (
		history domain.ProfileHistory
		patient domain.Patient
		sex     string
	)

	err := r.db.QueryRow(ctx, `
		SELECT p.name, pt.id, pt.profile_id, pt.name, pt.age, pt.sex,
			   pt.weight_kg, pt.height_cm, pt.created_at, pt.updated_at
		FROM profiles p
		JOIN patients pt ON pt.profile_id = p.id
		WHERE p.name = $1 AND p.is_active = TRUE`,
		profileName,
	).Scan(
		&history.ProfileName, &patient.ID, &patient.ProfileID, &patient.Name,
		&patient.Age, &sex, &patient.WeightKg, &patient.HeightCm,
		&patient.CreatedAt, &patient.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("profile %q: %w", profileName, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("looking up profile: %w", err)
	}
	patient.Sex = domain.Sex(sex)
	history.PatientName = patient.Name
	history.Patient = &patient

	rows, err := r.db.Query(ctx, `
		SELECT cm.id, cm.patient_id, cm.measured_at, cm.total_cholesterol,
			   cm.hdl, cm.ldl, cm.systolic_bp, cm.diastolic_bp, cm.created_at,
			   rf.id, rf.recorded_at, rf.smoker, rf.diabetic,
			   rf.hypertension_treatment, rf.on_statins, rf.created_at
		FROM clinical_measurements cm
		LEFT JOIN risk_factors_history rf
			ON rf.patient_id = cm.patient_id AND rf.recorded_at = cm.measured_at
		WHERE cm.patient_id = $1
		ORDER BY cm.measured_at DESC, cm.id DESC`,
		patient.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cm         domain.ClinicalMeasurement
			rfID       *int64
			recordedAt *time.Time
			smoker     *bool
			diabetic   *bool
			htn        *bool
			statins    *bool
			rfCreated  *time.Time
		)

		err := rows.Scan(
			&cm.ID, &cm.PatientID, &cm.MeasuredAt, &cm.TotalCholesterol,
			&cm.HDL, &cm.LDL, &cm.SystolicBP, &cm.DiastolicBP, &cm.CreatedAt,
			&rfID, &recordedAt, &smoker, &diabetic, &htn, &statins, &rfCreated,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning history row: %w", err)
		}

		entry := HistoryEntryFromMeasurement(&cm)
		if rfID != nil {
			entry.RiskFactors = &domain.RiskFactors{
				ID:                    *rfID,
				PatientID:             cm.PatientID,
				RecordedAt:            *recordedAt,
				Smoker:                *smoker,
				Diabetic:              *diabetic,
				HypertensionTreatment: *htn,
				OnStatins:             *statins,
				CreatedAt:             *rfCreated,
			}
		}
		history.Entries = append(history.Entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history rows: %w", err)
	}

	return &history, nil
}

// HistoryEntryFromMeasurement builds the history entry wrapper for one
// measurement.
func HistoryEntryFromMeasurement(cm *domain.ClinicalMeasurement) domain.HistoryEntry {
	return domain.HistoryEntry{
		Date:     cm.MeasuredAt,
		Clinical: cm,
	}
}

// Close releases the underlying connection pool.
func (r *ProfileRepository) Close() {
	r.db.Close()
}
