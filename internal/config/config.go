/**
 * @description
 * This package handles the configuration management for the service. It uses
 * the Viper library to read configuration from environment variables (with an
 * optional .env file), providing a centralized way to manage settings.
 *
 * @dependencies
 * - github.com/spf13/viper: A popular library for Go application configuration.
 */

package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all the configuration variables for the service.
// These values are loaded from environment variables.
type Config struct {
	ServerPort             string  `mapstructure:"SERVER_PORT"`
	DatabaseURL            string  `mapstructure:"DATABASE_URL"`
	RedisURL               string  `mapstructure:"REDIS_URL"`
	RabbitMQURL            string  `mapstructure:"RABBITMQ_URL"`
	RiskServiceURL         string  `mapstructure:"RISK_SERVICE_URL"`
	IssuanceEventQueue     string  `mapstructure:"ISSUANCE_EVENT_QUEUE"`
	RiskCacheTTLMinutes    int     `mapstructure:"RISK_CACHE_TTL_MINUTES"`
	RiskRejectionThreshold float64 `mapstructure:"RISK_REJECTION_THRESHOLD"`
	PolicyNumberPrefix     string  `mapstructure:"POLICY_NUMBER_PREFIX"`
}

// LoadConfig reads configuration from environment variables from the given path.
// It uses Viper to automatically bind environment variables to the Config struct.
func LoadConfig(path string) (config Config, err error) {
	// Tell viper the path to look for the optional .env file.
	viper.AddConfigPath(path)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")

	// Enable automatic binding of environment variables.
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ISSUANCE_EVENT_QUEUE", "issuance_service.policy_issuance")
	viper.SetDefault("RISK_CACHE_TTL_MINUTES", 10)
	viper.SetDefault("RISK_REJECTION_THRESHOLD", 0.80)
	viper.SetDefault("POLICY_NUMBER_PREFIX", "PAC")

	// Bind environment variables explicitly to ensure they appear in Unmarshal
	_ = viper.BindEnv("SERVER_PORT")
	_ = viper.BindEnv("PORT")
	_ = viper.BindEnv("DATABASE_URL")
	_ = viper.BindEnv("REDIS_URL")
	_ = viper.BindEnv("RABBITMQ_URL")
	_ = viper.BindEnv("RISK_SERVICE_URL")
	_ = viper.BindEnv("ISSUANCE_EVENT_QUEUE")
	_ = viper.BindEnv("RISK_CACHE_TTL_MINUTES")
	_ = viper.BindEnv("RISK_REJECTION_THRESHOLD")
	_ = viper.BindEnv("POLICY_NUMBER_PREFIX")

	// Attempt to read the config file. It's okay if it doesn't exist.
	if err = viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	// Unmarshal the configuration into the Config struct.
	err = viper.Unmarshal(&config)
	if err != nil {
		return
	}

	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		config.ServerPort = port
	}

	config.RedisURL = strings.TrimSpace(config.RedisURL)
	config.RiskServiceURL = strings.TrimSpace(strings.TrimSuffix(config.RiskServiceURL, "/"))
	config.PolicyNumberPrefix = strings.TrimSpace(config.PolicyNumberPrefix)
	if config.PolicyNumberPrefix == "" {
		config.PolicyNumberPrefix = "PAC"
	}

	if config.RiskCacheTTLMinutes <= 0 {
		config.RiskCacheTTLMinutes = 10
	}
	if config.RiskRejectionThreshold <= 0 || config.RiskRejectionThreshold > 1 {
		log.Printf("level=warn component=config msg=\"risk rejection threshold out of range; using default\" threshold=%f", config.RiskRejectionThreshold)
		config.RiskRejectionThreshold = 0.80
	}

	return
}
