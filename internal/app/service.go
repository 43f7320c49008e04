/**
 * @description
 * This file contains the core business logic for the quotation side of the
 * pipeline. The `QuotationService` orchestrates a risk decision: cache-aside
 * lookup against Redis, scoring call on a miss, the risk threshold gate, quote
 * persistence, premium calculation, and issuance event publication.
 *
 * Key features:
 * - Cache-aside: cached assessments within the freshness window skip the
 *   scorer entirely; cache failures degrade to a scorer call, never an error.
 * - The rejection case is a tagged result, not an error: callers branch on
 *   Approved vs Rejected and translate at the transport boundary.
 * - Side effects are ordered: cache write before the gate decision is
 *   visible, store write before event emission. A publish failure after a
 *   successful store write is surfaced, not silently retried.
 *
 * @dependencies
 * - context, fmt, log, time: Standard Go libraries.
 * - internal/cache, internal/domain, internal/store: Cache, models, data access.
 */

package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/youlserf/pacifico-ecosystem/internal/cache"
	"github.com/youlserf/pacifico-ecosystem/internal/domain"
	"github.com/youlserf/pacifico-ecosystem/internal/store"
)

const (
	// ExchangeInsuranceEvents is the durable topic exchange all pipeline
	// events flow through.
	ExchangeInsuranceEvents = "insurance.events"
	// RoutingKeyPolicyIssuance routes approved-quote events to the issuance queue.
	RoutingKeyPolicyIssuance = "policy.issuance"

	// premiumRate is the base premium fraction of the declared asset value.
	premiumRate = 0.05
)

// RiskScorer evaluates a customer profile into a risk assessment.
type RiskScorer interface {
	EvaluateRisk(ctx context.Context, dni string, age int, carValue float64) (domain.RiskAssessment, error)
}

// EventPublisher publishes pipeline events keyed by customer identity.
type EventPublisher interface {
	PublishWithKey(ctx context.Context, exchange, routingKey, key string, body interface{}) error
}

// QuotationResult is the tagged outcome of an orchestration: exactly one of
// Approved or Rejected is set when the error is nil.
type QuotationResult struct {
	Approved *domain.Quote
	Rejected *domain.RiskRejection
}

// QuotationService provides the core business logic for quotations.
type QuotationService struct {
	repo      store.Repository
	riskCache cache.RiskCache
	scorer    RiskScorer
	publisher EventPublisher
	threshold float64
}

// NewQuotationService creates a new quotation service instance. Probabilities
// at or above threshold are rejected.
func NewQuotationService(repo store.Repository, riskCache cache.RiskCache, scorer RiskScorer, publisher EventPublisher, threshold float64) *QuotationService {
	return &QuotationService{
		repo:      repo,
		riskCache: riskCache,
		scorer:    scorer,
		publisher: publisher,
		threshold: threshold,
	}
}

// CreateQuote orchestrates the complete quotation process for a customer.
func (s *QuotationService) CreateQuote(ctx context.Context, req domain.QuotationRequest) (QuotationResult, error) {
	log.Printf("level=info component=quotation msg=\"orchestrating quotation\" dni=%s", req.DNI)

	assessment, err := s.resolveAssessment(ctx, req)
	if err != nil {
		return QuotationResult{}, err
	}

	// Risk gate. Rejection is a terminal business outcome for this request:
	// nothing is persisted and no event is emitted.
	if assessment.ProbabilityScore >= s.threshold {
		log.Printf("level=info component=quotation msg=\"high risk detected; rejecting\" dni=%s probability=%.2f", req.DNI, assessment.ProbabilityScore)
		return QuotationResult{Rejected: &domain.RiskRejection{ProbabilityScore: assessment.ProbabilityScore}}, nil
	}

	quote := &domain.Quote{
		DNI:              req.DNI,
		Age:              req.Age,
		CarValue:         req.CarValue,
		ProbabilityScore: assessment.ProbabilityScore,
		RiskLevel:        assessment.RiskLevel,
		Status:           domain.QuoteStatusApproved,
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.repo.CreateQuote(ctx, quote); err != nil {
		return QuotationResult{}, fmt.Errorf("failed to persist quote: %w", err)
	}

	finalPremium := req.CarValue * premiumRate * (1 + assessment.ProbabilityScore)

	event := domain.PolicyIssuanceEvent{
		QuoteID:           quote.ID,
		DNI:               quote.DNI,
		ApprovedRiskScore: quote.ProbabilityScore,
		FinalPremium:      finalPremium,
	}
	if err := s.publisher.PublishWithKey(ctx, ExchangeInsuranceEvents, RoutingKeyPolicyIssuance, quote.DNI, event); err != nil {
		// The quote exists in APPROVED state without its event. Surface the
		// gap to the caller instead of pretending the pipeline completed.
		log.Printf("level=error component=quotation msg=\"issuance event publish failed after store write\" quote_id=%d dni=%s err=%v", quote.ID, quote.DNI, err)
		return QuotationResult{}, fmt.Errorf("quote %d persisted but issuance event publish failed: %w", quote.ID, err)
	}

	log.Printf("level=info component=quotation msg=\"quote approved and event published\" quote_id=%d dni=%s premium=%.2f", quote.ID, quote.DNI, finalPremium)
	return QuotationResult{Approved: quote}, nil
}

// resolveAssessment performs the cache-aside lookup: cache hit reuses the
// stored assessment; a miss (or any cache failure) falls through to the
// scorer, whose result is written back with the configured freshness window.
func (s *QuotationService) resolveAssessment(ctx context.Context, req domain.QuotationRequest) (domain.RiskAssessment, error) {
	cached, err := s.riskCache.Get(ctx, req.DNI)
	if err != nil {
		log.Printf("level=warn component=quotation msg=\"risk cache lookup failed; falling back to scorer\" dni=%s err=%v", req.DNI, err)
	}
	if cached != nil {
		log.Printf("level=info component=quotation msg=\"risk cache hit\" dni=%s", req.DNI)
		return *cached, nil
	}

	log.Printf("level=info component=quotation msg=\"risk cache miss; calling scorer\" dni=%s", req.DNI)
	assessment, err := s.scorer.EvaluateRisk(ctx, req.DNI, req.Age, req.CarValue)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("risk evaluation failed: %w", err)
	}

	if err := s.riskCache.Set(ctx, req.DNI, assessment); err != nil {
		// The cache is an optimization; the decision proceeds without it.
		log.Printf("level=warn component=quotation msg=\"risk cache write failed\" dni=%s err=%v", req.DNI, err)
	}

	return assessment, nil
}

// GetQuote retrieves a persisted quote by its store-assigned id.
func (s *QuotationService) GetQuote(ctx context.Context, quoteID int64) (*domain.Quote, error) {
	return s.repo.FindQuoteByID(ctx, quoteID)
}
