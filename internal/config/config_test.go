package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestLoadConfig_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	for _, key := range []string{"SERVER_PORT", "PORT", "ISSUANCE_EVENT_QUEUE", "RISK_CACHE_TTL_MINUTES", "RISK_REJECTION_THRESHOLD", "POLICY_NUMBER_PREFIX"} {
		unsetEnvWithCleanup(t, key)
	}

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "8080" {
		t.Fatalf("expected default port 8080, got %q", cfg.ServerPort)
	}
	if cfg.IssuanceEventQueue != "issuance_service.policy_issuance" {
		t.Fatalf("unexpected default queue %q", cfg.IssuanceEventQueue)
	}
	if cfg.RiskCacheTTLMinutes != 10 {
		t.Fatalf("expected default cache ttl 10, got %d", cfg.RiskCacheTTLMinutes)
	}
	if cfg.RiskRejectionThreshold != 0.80 {
		t.Fatalf("expected default threshold 0.80, got %f", cfg.RiskRejectionThreshold)
	}
	if cfg.PolicyNumberPrefix != "PAC" {
		t.Fatalf("expected default prefix PAC, got %q", cfg.PolicyNumberPrefix)
	}
}

func TestLoadConfig_PortEnvOverridesServerPort(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "SERVER_PORT", "8080")
	setEnvWithCleanup(t, "PORT", "9999")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.ServerPort != "9999" {
		t.Fatalf("expected PORT to win, got %q", cfg.ServerPort)
	}
}

func TestLoadConfig_ThresholdOutOfRangeFallsBack(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "RISK_REJECTION_THRESHOLD", "1.5")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RiskRejectionThreshold != 0.80 {
		t.Fatalf("expected the out-of-range threshold to fall back to 0.80, got %f", cfg.RiskRejectionThreshold)
	}
}

func TestLoadConfig_CacheTTLClampedToDefault(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "RISK_CACHE_TTL_MINUTES", "-5")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RiskCacheTTLMinutes != 10 {
		t.Fatalf("expected negative ttl to fall back to 10, got %d", cfg.RiskCacheTTLMinutes)
	}
}

func TestLoadConfig_RiskServiceURLTrimmed(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	setEnvWithCleanup(t, "RISK_SERVICE_URL", "http://risk.internal:8090/")

	cfg, err := LoadConfig(t.TempDir())
	if err != nil {
		t.Fatalf("LoadConfig returned error: %v", err)
	}
	if cfg.RiskServiceURL != "http://risk.internal:8090" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.RiskServiceURL)
	}
}

func setEnvWithCleanup(t *testing.T, key string, value string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			os.Setenv(key, prev)
		} else {
			os.Unsetenv(key)
		}
	})
}

func unsetEnvWithCleanup(t *testing.T, key string) {
	t.Helper()
	prev, hadPrev := os.LookupEnv(key)
	if err := os.Unsetenv(key); err != nil {
		t.Fatalf("unsetenv %s: %v", key, err)
	}
	t.Cleanup(func() {
		if hadPrev {
			os.Setenv(key, prev)
		}
	})
}
