/**
 * @description
 * This package implements the risk assessment cache backing the cache-aside
 * lookup in the quotation orchestrator. Assessments are stored in Redis under
 * `risk_cache:<dni>` as JSON with a configurable freshness window so repeated
 * quotations for the same customer skip the scoring call.
 *
 * @dependencies
 * - context, encoding/json, time: Standard Go libraries.
 * - github.com/redis/go-redis/v9: The Redis client library.
 */

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/youlserf/pacifico-ecosystem/internal/domain"
)

const riskCachePrefix = "risk_cache:"

// RiskCache is the contract the orchestrator depends on. Get returns
// (nil, nil) on a cache miss; any error is treated by callers as a miss.
type RiskCache interface {
	Get(ctx context.Context, dni string) (*domain.RiskAssessment, error)
	Set(ctx context.Context, dni string, assessment domain.RiskAssessment) error
}

// RedisRiskCache implements RiskCache on top of Redis.
type RedisRiskCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisRiskCache creates a Redis-backed risk cache with the given
// freshness window. Non-positive TTLs fall back to ten minutes.
func NewRedisRiskCache(client redis.UniversalClient, ttl time.Duration) *RedisRiskCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisRiskCache{client: client, ttl: ttl}
}

// Get looks up the last-known assessment for a customer.
func (c *RedisRiskCache) Get(ctx context.Context, dni string) (*domain.RiskAssessment, error) {
	raw, err := c.client.Get(ctx, riskCachePrefix+dni).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("risk cache get: %w", err)
	}

	var assessment domain.RiskAssessment
	if err := json.Unmarshal(raw, &assessment); err != nil {
		return nil, fmt.Errorf("risk cache entry corrupt for dni %s: %w", dni, err)
	}
	return &assessment, nil
}

// Set stores a freshly computed assessment under the customer's key.
func (c *RedisRiskCache) Set(ctx context.Context, dni string, assessment domain.RiskAssessment) error {
	raw, err := json.Marshal(assessment)
	if err != nil {
		return fmt.Errorf("risk cache marshal: %w", err)
	}
	if err := c.client.Set(ctx, riskCachePrefix+dni, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("risk cache set: %w", err)
	}
	return nil
}
