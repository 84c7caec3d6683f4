package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/cvd-risk-server/internal/domain"
)

// RiskEngine implements the full risk assessment workflow
type RiskEngine struct {
	logger      *logrus.Logger
	validator   *Validator
	gate        *ApplicabilityGate
	aggregator  *Aggregator
	calculators []domain.RiskCalculator
}

// NewRiskEngine creates a risk engine with the three standard calculators
func NewRiskEngine(logger *logrus.Logger) *RiskEngine {
	gate := NewApplicabilityGate()
	return &RiskEngine{
		logger:     logger,
		validator:  NewValidator(),
		gate:       gate,
		aggregator: NewAggregator(gate),
		calculators: []domain.RiskCalculator{
			NewFraminghamCalculator(),
			NewSCORE2Calculator(),
			NewPooledCohortCalculator(),
		},
	}
}

// AssessParams parameters for a risk assessment
type AssessParams struct {
	Method domain.Method
	Record *domain.RawPatientRecord
}

// AssessResult result of a complete risk assessment
type AssessResult struct {
	Record         *domain.PatientRecord    `json:"-"`
	Results        *domain.AggregatedResult `json:"results"`
	ProcessingTime time.Duration            `json:"processing_time"`
}

// Assess performs the complete assessment workflow: validate the raw record,
// filter calculators by applicability, and aggregate the scores. Validation
// failures are returned as domain.ValidationErrors carrying every problem
// found, not just the first.
func (e *RiskEngine) Assess(params *AssessParams) (*AssessResult, error) {
	startTime := time.Now()

	if !params.Method.IsValid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidMethod, string(params.Method))
	}

	e.logger.WithFields(logrus.Fields{
		"method": params.Method.String(),
	}).Info("Starting risk assessment")

	record, advisories, errs := e.validator.Validate(params.Record)
	if len(errs) > 0 {
		e.logger.WithFields(logrus.Fields{
			"error_count": len(errs),
			"errors":      errs.Messages(),
		}).Warn("Patient record failed validation")
		return nil, errs
	}

	calcs := e.selectCalculators(params.Method)
	aggregated := e.aggregator.Aggregate(calcs, record)
	aggregated.Warnings = append(advisories, aggregated.Warnings...)

	result := &AssessResult{
		Record:         record,
		Results:        aggregated,
		ProcessingTime: time.Since(startTime),
	}

	fields := logrus.Fields{
		"method":          params.Method.String(),
		"methods_applied": len(aggregated.Available()),
		"warnings":        len(aggregated.Warnings),
		"processing_time": result.ProcessingTime,
	}
	if aggregated.Overall != nil {
		fields["overall_percent"] = aggregated.Overall.Percent
		fields["overall_category"] = aggregated.Overall.Category.String()
	}
	e.logger.WithFields(fields).Info("Risk assessment completed")

	return result, nil
}

// ValidateRecord runs only the validation stage. Profile writes use it to
// normalize records without scoring them.
func (e *RiskEngine) ValidateRecord(raw *domain.RawPatientRecord) (*domain.PatientRecord, []string, error) {
	record, advisories, errs := e.validator.Validate(raw)
	if len(errs) > 0 {
		return nil, nil, errs
	}
	return record, advisories, nil
}

// selectCalculators returns the calculators matching the requested method,
// preserving the standard ordering for MethodAll.
func (e *RiskEngine) selectCalculators(method domain.Method) []domain.RiskCalculator {
	if method == domain.MethodAll {
		return e.calculators
	}
	for _, calc := range e.calculators {
		if calc.Method() == method {
			return []domain.RiskCalculator{calc}
		}
	}
	return nil
}
