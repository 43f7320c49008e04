/**
 * @description
 * This file provides the PostgreSQL implementation of the `Repository`
 * interface. It contains the SQL queries for the `quotes` and `policies`
 * tables (see migrations/0001_create_quotes_policies.sql for the schema).
 *
 * @dependencies
 * - context, errors: Standard Go libraries.
 * - github.com/jackc/pgx/v5: The PostgreSQL driver for database operations.
 * - internal/domain: Contains the domain models used for data transfer.
 *
 * @notes
 * - Policy idempotency rides on the `policies_quote_id_key` unique constraint
 *   so that redelivered issuance events cannot create duplicate policies even
 *   across consumer restarts.
 */

package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/youlserf/pacifico-ecosystem/internal/domain"
)

var (
	ErrQuoteNotFound     = errors.New("quote not found")
	ErrPolicyNotFound    = errors.New("policy not found")
	ErrDuplicatePolicy   = errors.New("policy already exists for quote")
	ErrPolicyNumberTaken = errors.New("policy number already taken")
)

// uniqueViolation is the PostgreSQL error code for unique constraint breaches.
const uniqueViolation = "23505"

// PostgresRepository is a concrete implementation of the Repository interface for PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository creates a new instance of PostgresRepository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateQuote inserts an approved quote and assigns its numeric id.
func (r *PostgresRepository) CreateQuote(ctx context.Context, quote *domain.Quote) error {
	query := `
		INSERT INTO quotes (dni, age, car_value, probability_score, risk_level, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	return r.db.QueryRow(ctx, query,
		quote.DNI,
		quote.Age,
		quote.CarValue,
		quote.ProbabilityScore,
		quote.RiskLevel,
		quote.Status,
		quote.CreatedAt,
	).Scan(&quote.ID)
}

// FindQuoteByID retrieves a quote from the database by its id.
func (r *PostgresRepository) FindQuoteByID(ctx context.Context, quoteID int64) (*domain.Quote, error) {
	var quote domain.Quote
	query := `
		SELECT id, dni, age, car_value, probability_score, risk_level, status, created_at
		FROM quotes
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, quoteID).Scan(
		&quote.ID,
		&quote.DNI,
		&quote.Age,
		&quote.CarValue,
		&quote.ProbabilityScore,
		&quote.RiskLevel,
		&quote.Status,
		&quote.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrQuoteNotFound
		}
		return nil, err
	}
	return &quote, nil
}

// CreatePolicy inserts an issued policy and assigns its numeric id. Unique
// constraint violations are translated into the sentinel errors the consumer
// dispatches on: one policy per quote, one policy per number.
func (r *PostgresRepository) CreatePolicy(ctx context.Context, policy *domain.Policy) error {
	query := `
		INSERT INTO policies (quote_id, policy_number, dni, final_premium, issued_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	err := r.db.QueryRow(ctx, query,
		policy.QuoteID,
		policy.PolicyNumber,
		policy.DNI,
		policy.FinalPremium,
		policy.IssuedAt,
	).Scan(&policy.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			switch pgErr.ConstraintName {
			case "policies_quote_id_key":
				return ErrDuplicatePolicy
			case "policies_policy_number_key":
				return ErrPolicyNumberTaken
			}
		}
		return err
	}
	return nil
}

// FindPolicyByQuoteID retrieves the policy issued for a given quote, if any.
func (r *PostgresRepository) FindPolicyByQuoteID(ctx context.Context, quoteID int64) (*domain.Policy, error) {
	var policy domain.Policy
	query := `
		SELECT id, quote_id, policy_number, dni, final_premium, issued_at
		FROM policies
		WHERE quote_id = $1
	`
	err := r.db.QueryRow(ctx, query, quoteID).Scan(
		&policy.ID,
		&policy.QuoteID,
		&policy.PolicyNumber,
		&policy.DNI,
		&policy.FinalPremium,
		&policy.IssuedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPolicyNotFound
		}
		return nil, err
	}
	return &policy, nil
}
