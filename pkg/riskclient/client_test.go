package riskclient

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/youlserf/pacifico-ecosystem/internal/domain"
)

// mockScorer mimics the scoring service's published behavior: young drivers
// and expensive vehicles push the probability up, capped at 1.0.
func mockScorer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/risk/evaluate" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}

		var req struct {
			DNI      string  `json:"dni"`
			Age      int     `json:"age"`
			CarValue float64 `json:"carValue"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		score := 0.1
		if req.Age < 25 {
			score = 0.4
		}
		if req.CarValue > 50000 {
			score += 0.4
		} else {
			score += 0.1
		}
		if score > 1.0 {
			score = 1.0
		}

		level := "LOW"
		switch {
		case score >= 0.7:
			level = "HIGH"
		case score >= 0.3:
			level = "MEDIUM"
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"probabilityScore": score,
			"riskLevel":        level,
		})
	}))
}

func TestEvaluateRisk(t *testing.T) {
	server := mockScorer(t)
	defer server.Close()
	client := NewClient(server.URL)

	tests := []struct {
		name      string
		dni       string
		age       int
		carValue  float64
		wantScore float64
		wantLevel domain.RiskLevel
	}{
		{
			name:      "mature driver with a modest car",
			dni:       "11223344",
			age:       30,
			carValue:  10000,
			wantScore: 0.2,
			wantLevel: domain.RiskLevelLow,
		},
		{
			name:      "young driver with an expensive car",
			dni:       "87654321",
			age:       20,
			carValue:  60000,
			wantScore: 0.8,
			wantLevel: domain.RiskLevelHigh,
		},
		{
			name:      "mature driver with an expensive car",
			dni:       "55667788",
			age:       45,
			carValue:  80000,
			wantScore: 0.5,
			wantLevel: domain.RiskLevelMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assessment, err := client.EvaluateRisk(context.Background(), tt.dni, tt.age, tt.carValue)
			if err != nil {
				t.Fatalf("EvaluateRisk returned error: %v", err)
			}
			if assessment.ProbabilityScore != tt.wantScore {
				t.Fatalf("expected probability %f, got %f", tt.wantScore, assessment.ProbabilityScore)
			}
			if assessment.RiskLevel != tt.wantLevel {
				t.Fatalf("expected level %s, got %s", tt.wantLevel, assessment.RiskLevel)
			}
		})
	}
}

func TestEvaluateRiskSurfacesServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model unavailable", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.EvaluateRisk(context.Background(), "11223344", 30, 10000); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}

func TestEvaluateRiskRejectsOutOfRangeProbability(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"probabilityScore": 1.5, "riskLevel": "HIGH"})
	}))
	defer server.Close()

	client := NewClient(server.URL)
	if _, err := client.EvaluateRisk(context.Background(), "11223344", 30, 10000); err == nil {
		t.Fatal("expected an error for a probability outside [0,1]")
	}
}

func TestEvaluateRiskHonorsContextCancellation(t *testing.T) {
	server := mockScorer(t)
	defer server.Close()
	client := NewClient(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := client.EvaluateRisk(ctx, "11223344", 30, 10000); err == nil {
		t.Fatal("expected an error for a cancelled context")
	}
}
