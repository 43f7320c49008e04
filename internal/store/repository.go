/**
 * @description
 * This file defines the `Repository` interface, which specifies the contract
 * for all data access operations required by the quotation and issuance flows.
 * By defining an interface, we decouple the business logic from the specific
 * database implementation (PostgreSQL), making the code easier to test.
 *
 * @dependencies
 * - context: Standard Go library.
 * - internal/domain: For the service's domain models.
 */

package store

import (
	"context"

	"github.com/youlserf/pacifico-ecosystem/internal/domain"
)

// Repository defines the set of methods for interacting with the database.
type Repository interface {
	// Quote methods
	// CreateQuote persists an approved quote and fills in the store-assigned id.
	CreateQuote(ctx context.Context, quote *domain.Quote) error
	FindQuoteByID(ctx context.Context, quoteID int64) (*domain.Quote, error)

	// Policy methods
	// CreatePolicy persists an issued policy and fills in the store-assigned id.
	// It returns ErrDuplicatePolicy when a policy already exists for the quote
	// and ErrPolicyNumberTaken when the generated number collides.
	CreatePolicy(ctx context.Context, policy *domain.Policy) error
	FindPolicyByQuoteID(ctx context.Context, quoteID int64) (*domain.Policy, error)
}
