package domain

// SeedProfile is one entry of the built-in profile table: a named sample
// patient used to pre-populate the database and to serve profile lookups in
// lite mode.
type SeedProfile struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Record      PatientRecord `json:"record"`
}

// DefaultProfiles returns the predefined sample patients. The table is
// assembled on every call so callers always receive their own copy; nothing
// here is mutable process-wide state.
func DefaultProfiles() []SeedProfile {
	return []SeedProfile{
		{
			Name:        "healthy_young",
			Description: "Young adult without risk factors",
			Record: PatientRecord{
				Name:             "Healthy Young Adult",
				Age:              30,
				Sex:              Male,
				WeightKg:         f64(70),
				HeightCm:         f64(175),
				TotalCholesterol: 180,
				HDL:              55,
				LDL:              f64(110),
				SystolicBP:       120,
				DiastolicBP:      f64(80),
			},
		},
		{
			Name:        "moderate_risk_adult",
			Description: "Middle-aged smoker with borderline values",
			Record: PatientRecord{
				Name:             "Moderate Risk Adult",
				Age:              55,
				Sex:              Male,
				WeightKg:         f64(85),
				HeightCm:         f64(170),
				TotalCholesterol: 220,
				HDL:              45,
				LDL:              f64(140),
				SystolicBP:       145,
				DiastolicBP:      f64(90),
				Smoker:           true,
			},
		},
		{
			Name:        "diabetic_adult_female",
			Description: "Older diabetic woman on treatment",
			Record: PatientRecord{
				Name:                  "Diabetic Adult Female",
				Age:                   65,
				Sex:                   Female,
				WeightKg:              f64(75),
				HeightCm:              f64(160),
				TotalCholesterol:      200,
				HDL:                   40,
				LDL:                   f64(130),
				SystolicBP:            150,
				DiastolicBP:           f64(85),
				Diabetic:              true,
				HypertensionTreatment: true,
				OnStatins:             true,
			},
		},
		{
			Name:        "high_risk_adult",
			Description: "Older diabetic smoker with high cholesterol",
			Record: PatientRecord{
				Name:                  "High Risk Adult",
				Age:                   70,
				Sex:                   Male,
				WeightKg:              f64(90),
				HeightCm:              f64(175),
				TotalCholesterol:      250,
				HDL:                   35,
				LDL:                   f64(180),
				SystolicBP:            160,
				DiastolicBP:           f64(95),
				Smoker:                true,
				Diabetic:              true,
				HypertensionTreatment: true,
				OnStatins:             true,
			},
		},
	}
}

func f64(v float64) *float64 {
	return &v
}
