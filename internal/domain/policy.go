package domain

import "time"

// Policy represents a formally issued insurance policy. The human-facing
// policy number is distinct from the store-assigned numeric id and must be
// unique across all issued policies.
type Policy struct {
	ID           int64     `json:"id"`
	QuoteID      int64     `json:"quote_id"`
	PolicyNumber string    `json:"policy_number"`
	DNI          string    `json:"dni"`
	FinalPremium float64   `json:"final_premium"`
	IssuedAt     time.Time `json:"issued_at"`
}
