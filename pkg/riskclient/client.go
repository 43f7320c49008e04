/**
 * @description
 * This package provides a client for the external ML risk scoring service.
 * It encapsulates the logic for making HTTP requests to the scorer's
 * evaluation endpoint, handling request body construction, and parsing
 * responses into domain types.
 *
 * @dependencies
 * - bytes, context, encoding/json, fmt, io, net/http, time: Standard Go libraries.
 * - internal/domain: For the RiskAssessment value type.
 *
 * @notes
 * - The scorer is stateless and idempotent per input, so callers may safely
 *   retry. Every call carries a bounded timeout; expiry surfaces as a
 *   dependency failure to the caller.
 */

package riskclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/youlserf/pacifico-ecosystem/internal/domain"
)

// Client is a client for the risk scoring service.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new risk scorer client with a bounded per-call timeout.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// evaluateRequest is the wire payload for a risk evaluation call.
type evaluateRequest struct {
	DNI      string  `json:"dni"`
	Age      int     `json:"age"`
	CarValue float64 `json:"carValue"`
}

// evaluateResponse is the wire payload returned by the scorer.
type evaluateResponse struct {
	ProbabilityScore float64 `json:"probabilityScore"`
	RiskLevel        string  `json:"riskLevel"`
}

// EvaluateRisk asks the scoring service for an assessment of the given
// customer profile. One request per call, synchronous.
func (c *Client) EvaluateRisk(ctx context.Context, dni string, age int, carValue float64) (domain.RiskAssessment, error) {
	payload, err := json.Marshal(evaluateRequest{DNI: dni, Age: age, CarValue: carValue})
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("marshal risk request: %w", err)
	}

	url := c.BaseURL + "/v1/risk/evaluate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("build risk request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("risk service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.RiskAssessment{}, fmt.Errorf("risk service returned status %d: %s", resp.StatusCode, string(body))
	}

	var result evaluateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.RiskAssessment{}, fmt.Errorf("decode risk response: %w", err)
	}
	if result.ProbabilityScore < 0 || result.ProbabilityScore > 1 {
		return domain.RiskAssessment{}, fmt.Errorf("risk service returned probability out of range: %f", result.ProbabilityScore)
	}

	return domain.RiskAssessment{
		ProbabilityScore: result.ProbabilityScore,
		RiskLevel:        domain.RiskLevel(result.RiskLevel),
	}, nil
}
