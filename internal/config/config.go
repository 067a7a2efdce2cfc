package config

import (
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/Netflix/go-env"
)

// SefazEnvironment holds the settings shared by the server and the CLI for building,
// signing and sending events
type SefazEnvironment struct {
	// Timezone used for dhEvento
	Timezone string `env:"TIMEZONE,default=America/Sao_Paulo"`

	// SEFAZ web service client
	SefazTimeout            time.Duration `env:"SEFAZ_TIMEOUT,default=30s"`
	SefazMaxRetries         uint64        `env:"SEFAZ_MAX_RETRIES,default=2"`
	SefazRetryBaseDelay     time.Duration `env:"SEFAZ_RETRY_BASE_DELAY,default=500ms"`
	SefazCABundle           string        `env:"SEFAZ_CA_BUNDLE"`
	SefazInsecureSkipVerify bool          `env:"SEFAZ_INSECURE_SKIP_VERIFY,default=false"`

	// AllowedCertDir restricts the certificate paths accepted in requests (empty = any path)
	AllowedCertDir string `env:"ALLOWED_CERT_DIR"`
}

// Environment variables with defaults
type ServerEnvironment struct {

	// http server settings
	Environment           string        `env:"ENVIRONMENT,default=dev"`
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=8080"`
	LogLevel              string        `env:"LOG_LEVEL,default=debug"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=90s"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	RequestTimeout        time.Duration `env:"REQUEST_TIMEOUT,default=75s"`
	MaxRequestBodyBytes   int64         `env:"MAX_REQUEST_BODY_BYTES,default=65536"`
	RateLimitRPS          int32         `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst        int32         `env:"RATE_LIMIT_BURST,default=200"`

	SefazEnvironment
}

// ClientEnvironment configures the manifestacao CLI
type ClientEnvironment struct {
	Environment string `env:"ENVIRONMENT,default=dev"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`

	SefazEnvironment
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

// NewServerConfig loads environment variables and returns a ServerEnvironment struct that contains the values
func NewServerConfig() (*ServerEnvironment, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return newServerConfig(es)
}

func newServerConfig(es env.EnvSet) (*ServerEnvironment, error) {
	var cfg ServerEnvironment

	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewClientConfig loads the CLI configuration from the environment
func NewClientConfig() (*ClientEnvironment, error) {
	es, err := env.EnvironToEnvSet(os.Environ())
	if err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return newClientConfig(es)
}

func newClientConfig(es env.EnvSet) (*ClientEnvironment, error) {
	var cfg ClientEnvironment

	if err := env.Unmarshal(es, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if !validEnvs[cfg.Environment] {
		return nil, fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if err := validateSefazConfig(&cfg.SefazEnvironment); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateConfig checks the values that go-env cannot validate
func validateConfig(cfg *ServerEnvironment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if cfg.MaxRequestBodyBytes < 1 {
		return fmt.Errorf("MAX_REQUEST_BODY_BYTES must be at least 1")
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be greater than 0")
	}

	return validateSefazConfig(&cfg.SefazEnvironment)
}

func validateSefazConfig(cfg *SefazEnvironment) error {
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	if cfg.SefazTimeout <= 0 {
		return fmt.Errorf("SEFAZ_TIMEOUT must be greater than 0")
	}
	if cfg.SefazMaxRetries > 10 {
		return fmt.Errorf("SEFAZ_MAX_RETRIES must be between 0 and 10, got %d", cfg.SefazMaxRetries)
	}
	if cfg.SefazRetryBaseDelay <= 0 {
		return fmt.Errorf("SEFAZ_RETRY_BASE_DELAY must be greater than 0")
	}
	return nil
}
