/**
 * @description
 * This file contains the consumer side of the pipeline: turning a policy
 * issuance event into a persisted policy and a real-time client notification.
 *
 * Key features:
 * - Idempotent on quote id: redelivered events find the existing policy (or
 *   hit the store's unique constraint) and are acknowledged without effect.
 * - Policy numbers are `<prefix>-<year>-<4 digit>` with a bounded
 *   retry-on-conflict against the unique constraint on the number.
 * - Delivery guarantees are deliberate: poison payloads and duplicates are
 *   acknowledged; dependency failures are re-queued for redelivery, which is
 *   safe because persistence is idempotent.
 *
 * @dependencies
 * - context, encoding/json, errors, fmt, log, math/rand, time: Standard Go libraries.
 * - internal/domain, internal/store: Domain models and data access.
 */

package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/youlserf/pacifico-ecosystem/internal/domain"
	"github.com/youlserf/pacifico-ecosystem/internal/store"
)

const (
	// policyNumberAttempts bounds retries when a generated number collides.
	policyNumberAttempts = 5

	consumerTimeout = 30 * time.Second
)

// NotificationSender pushes a payload to the client session registered for a
// DNI. Best-effort; implementations never return an error.
type NotificationSender interface {
	SendToIdentity(dni string, payload interface{})
}

// IssuanceConsumer consumes PolicyIssuanceEvent messages and produces
// policies and notifications.
type IssuanceConsumer struct {
	repo         store.Repository
	notifier     NotificationSender
	numberPrefix string

	// Injection points for tests; defaults cover production.
	now        func() time.Time
	randSuffix func() int
}

// NewIssuanceConsumer creates a consumer that persists policies with numbers
// under the given prefix (e.g. "PAC") and notifies through the sender.
func NewIssuanceConsumer(repo store.Repository, notifier NotificationSender, numberPrefix string) *IssuanceConsumer {
	return &IssuanceConsumer{
		repo:         repo,
		notifier:     notifier,
		numberPrefix: numberPrefix,
		now:          time.Now,
		randSuffix:   func() int { return 1000 + rand.Intn(9000) },
	}
}

// HandleMessage processes one delivery from the issuance queue. Returning
// true acknowledges the message; false re-queues it.
func (c *IssuanceConsumer) HandleMessage(body []byte) bool {
	var event domain.PolicyIssuanceEvent
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("level=error component=issuance_consumer msg=\"failed to unmarshal payload; dropping\" err=%v", err)
		return true
	}
	if event.QuoteID == 0 || event.DNI == "" {
		log.Printf("level=error component=issuance_consumer msg=\"event missing quote id or dni; dropping\" quote_id=%d dni=%s", event.QuoteID, event.DNI)
		return true
	}

	log.Printf("level=info component=issuance_consumer msg=\"issuance event received\" quote_id=%d dni=%s", event.QuoteID, event.DNI)

	ctx, cancel := context.WithTimeout(context.Background(), consumerTimeout)
	defer cancel()

	policy, err := c.issuePolicy(ctx, event)
	if err != nil {
		log.Printf("level=error component=issuance_consumer msg=\"issuance failed; re-queuing\" quote_id=%d err=%v", event.QuoteID, err)
		return false
	}
	if policy == nil {
		// Duplicate delivery: the policy already exists and the original
		// handling owned the notification.
		return true
	}

	c.notifier.SendToIdentity(event.DNI, domain.IssuanceNotification{
		PolicyNumber: policy.PolicyNumber,
		DNI:          policy.DNI,
		FinalPremium: policy.FinalPremium,
		Status:       domain.NotificationStatusIssued,
	})

	return true
}

// issuePolicy persists a policy for the event's quote. It returns (nil, nil)
// when the event is a duplicate of an already-handled one.
func (c *IssuanceConsumer) issuePolicy(ctx context.Context, event domain.PolicyIssuanceEvent) (*domain.Policy, error) {
	existing, err := c.repo.FindPolicyByQuoteID(ctx, event.QuoteID)
	if err == nil {
		log.Printf("level=info component=issuance_consumer msg=\"policy already issued for quote; acknowledging duplicate\" quote_id=%d policy_number=%s", event.QuoteID, existing.PolicyNumber)
		return nil, nil
	}
	if !errors.Is(err, store.ErrPolicyNotFound) {
		return nil, fmt.Errorf("policy lookup: %w", err)
	}

	for attempt := 1; attempt <= policyNumberAttempts; attempt++ {
		policy := &domain.Policy{
			QuoteID:      event.QuoteID,
			PolicyNumber: c.generatePolicyNumber(),
			DNI:          event.DNI,
			FinalPremium: event.FinalPremium,
			IssuedAt:     c.now().UTC(),
		}

		err := c.repo.CreatePolicy(ctx, policy)
		if err == nil {
			log.Printf("level=info component=issuance_consumer msg=\"policy saved\" policy_number=%s quote_id=%d dni=%s", policy.PolicyNumber, policy.QuoteID, policy.DNI)
			return policy, nil
		}
		if errors.Is(err, store.ErrDuplicatePolicy) {
			// Concurrent redelivery won the insert race.
			log.Printf("level=info component=issuance_consumer msg=\"policy inserted by concurrent delivery; acknowledging duplicate\" quote_id=%d", event.QuoteID)
			return nil, nil
		}
		if errors.Is(err, store.ErrPolicyNumberTaken) {
			log.Printf("level=warn component=issuance_consumer msg=\"policy number collision; retrying\" policy_number=%s attempt=%d", policy.PolicyNumber, attempt)
			continue
		}
		return nil, fmt.Errorf("persist policy: %w", err)
	}

	return nil, fmt.Errorf("exhausted %d policy number attempts for quote %d", policyNumberAttempts, event.QuoteID)
}

// generatePolicyNumber builds a human-facing number like PAC-2026-4821.
func (c *IssuanceConsumer) generatePolicyNumber() string {
	return fmt.Sprintf("%s-%d-%04d", c.numberPrefix, c.now().Year(), c.randSuffix())
}
