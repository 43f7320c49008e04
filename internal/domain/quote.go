/**
 * @description
 * This file defines the core domain models for the quotation side of the
 * insurance pipeline: the Quote entity, the risk assessment value type, and
 * the incoming quotation request with its validation rules.
 *
 * @notes
 * - Monetary values (car value, premium) are float64 end to end because the
 *   external contracts exchange them as doubles; this service keeps no ledger.
 * - A Quote is immutable once persisted; only the orchestrator creates them.
 */

package domain

import (
	"errors"
	"regexp"
	"time"
)

// RiskLevel is the categorical risk band returned by the scoring service.
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "LOW"
	RiskLevelMedium RiskLevel = "MEDIUM"
	RiskLevelHigh   RiskLevel = "HIGH"
)

// QuoteStatus represents the lifecycle state of a quotation.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "PENDING"
	QuoteStatusApproved QuoteStatus = "APPROVED"
	QuoteStatusRejected QuoteStatus = "REJECTED"
)

// Quote represents an insurance quotation and its associated risk assessment.
// This struct maps directly to the `quotes` table in the database.
type Quote struct {
	ID               int64       `json:"id"`
	DNI              string      `json:"dni"`
	Age              int         `json:"age"`
	CarValue         float64     `json:"car_value"`
	ProbabilityScore float64     `json:"probability_score"`
	RiskLevel        RiskLevel   `json:"risk_level"`
	Status           QuoteStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
}

// RiskAssessment is the value type produced by the risk scorer and cached in
// Redis. The JSON field names are part of the cache entry contract.
type RiskAssessment struct {
	ProbabilityScore float64   `json:"probabilityScore"`
	RiskLevel        RiskLevel `json:"riskLevel"`
}

// RiskRejection carries the offending probability when a quotation is turned
// down by the risk gate. It is an expected business outcome, not a fault.
type RiskRejection struct {
	ProbabilityScore float64 `json:"probability_score"`
}

// QuotationRequest is the DTO for incoming quote creation API requests.
type QuotationRequest struct {
	DNI      string  `json:"dni"`
	Age      int     `json:"age"`
	CarValue float64 `json:"carValue"`
}

var dniPattern = regexp.MustCompile(`^[0-9]{8}$`)

var (
	ErrDNIRequired     = errors.New("DNI is required")
	ErrDNIFormat       = errors.New("DNI must be 8 digits")
	ErrAgeTooLow       = errors.New("age must be at least 18")
	ErrAgeTooHigh      = errors.New("age must be less than 100")
	ErrCarValueInvalid = errors.New("car value must be positive")
)

// Validate enforces the request boundary rules before orchestration begins.
func (r QuotationRequest) Validate() error {
	if r.DNI == "" {
		return ErrDNIRequired
	}
	if !dniPattern.MatchString(r.DNI) {
		return ErrDNIFormat
	}
	if r.Age < 18 {
		return ErrAgeTooLow
	}
	if r.Age > 99 {
		return ErrAgeTooHigh
	}
	if r.CarValue <= 0 {
		return ErrCarValueInvalid
	}
	return nil
}
