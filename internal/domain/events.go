/**
 * @description
 * Event and notification payloads exchanged over the message broker and the
 * websocket push channel. JSON field names are part of the wire contracts and
 * must not change independently of the consumers.
 */

package domain

// PolicyIssuanceEvent is published once per approved quote and consumed
// at-least-once by the issuance consumer, which must be idempotent on QuoteID.
type PolicyIssuanceEvent struct {
	QuoteID           int64   `json:"quoteId"`
	DNI               string  `json:"dni"`
	ApprovedRiskScore float64 `json:"approvedRiskScore"`
	FinalPremium      float64 `json:"finalPremium"`
}

// IssuanceNotification is the single JSON payload pushed to a connected client
// when their policy has been issued.
type IssuanceNotification struct {
	PolicyNumber string  `json:"policyNumber"`
	DNI          string  `json:"dni"`
	FinalPremium float64 `json:"finalPremium"`
	Status       string  `json:"status"`
}

// NotificationStatusIssued is the only status an issuance notification carries.
const NotificationStatusIssued = "ISSUED"
