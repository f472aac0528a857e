// Package config loads the per-process configuration from the environment.
//
// The result is a plain value passed to constructors; nothing else in the
// module reads the environment after Load returns.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServiceName string `mapstructure:"OTEL_SERVICE_NAME"`
	Port        string `mapstructure:"PORT"`
	GRPCPort    string `mapstructure:"GRPC_PORT"`

	// TenantID is the tenant this process serves. Every read and write is
	// scoped by it.
	TenantID string `mapstructure:"TENANT_ID"`
	// AdminTenantID is the platform tenant admin accounts belong to. Admin
	// tokens carry it as their tenant claim.
	AdminTenantID string `mapstructure:"ADMIN_TENANT_ID"`

	JWTSecret      string        `mapstructure:"JWT_SECRET"`
	AdminJWTSecret string        `mapstructure:"ADMIN_JWT_SECRET"`
	TokenTTL       time.Duration `mapstructure:"TOKEN_TTL"`

	DatabaseURL string `mapstructure:"DATABASE_URL"`

	AuthServiceURL    string        `mapstructure:"AUTH_SERVICE_URL"`
	TenantServiceURL  string        `mapstructure:"TENANT_SERVICE_URL"`
	CatalogServiceURL string        `mapstructure:"CATALOG_SERVICE_URL"`
	CatalogGRPCAddr   string        `mapstructure:"CATALOG_GRPC_ADDR"`
	CatalogTransport  string        `mapstructure:"CATALOG_TRANSPORT"`
	UpstreamTimeout   time.Duration `mapstructure:"UPSTREAM_TIMEOUT"`

	RedisAddr    string   `mapstructure:"REDIS_ADDR"`
	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string   `mapstructure:"KAFKA_TOPIC"`
	OrderLogPath string   `mapstructure:"ORDER_LOG_PATH"`

	OTelEnabled  bool   `mapstructure:"OTEL_ENABLED"`
	OTelEndpoint string `mapstructure:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Environment  string `mapstructure:"OTEL_RESOURCE_ATTRIBUTES_ENV"`
}

var (
	ErrMissingTenant = errors.New("config: TENANT_ID is required")
	// ErrWeakSecrets is returned when tokens would be signed or checked with
	// an empty key, or with one key for both roles.
	ErrWeakSecrets = errors.New("config: JWT_SECRET and ADMIN_JWT_SECRET must be set and differ")
)

// Load reads the configuration for serviceName. defaultPort is used when
// PORT is not set.
func Load(serviceName, defaultPort string) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about, so every
	// key gets a default.
	v.SetDefault("OTEL_SERVICE_NAME", serviceName)
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("GRPC_PORT", "")
	v.SetDefault("TENANT_ID", "")
	v.SetDefault("ADMIN_TENANT_ID", "")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("AUTH_SERVICE_URL", "")
	v.SetDefault("TENANT_SERVICE_URL", "")
	v.SetDefault("CATALOG_SERVICE_URL", "http://localhost:8890")
	v.SetDefault("CATALOG_GRPC_ADDR", "localhost:9890")
	v.SetDefault("CATALOG_TRANSPORT", "http")
	v.SetDefault("UPSTREAM_TIMEOUT", 5*time.Second)
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("KAFKA_BROKERS", []string{})
	v.SetDefault("KAFKA_TOPIC", "order-events")
	v.SetDefault("ORDER_LOG_PATH", "")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	v.SetDefault("OTEL_RESOURCE_ATTRIBUTES_ENV", "local")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.TenantID == "" {
		return ErrMissingTenant
	}
	if c.UpstreamTimeout <= 0 {
		return fmt.Errorf("config: UPSTREAM_TIMEOUT must be positive, got %s", c.UpstreamTimeout)
	}
	switch c.CatalogTransport {
	case "http", "grpc":
	default:
		return fmt.Errorf("config: CATALOG_TRANSPORT must be http or grpc, got %q", c.CatalogTransport)
	}
	// Remote verification leaves the secrets to the identity service.
	if c.AuthServiceURL == "" {
		return c.ValidateSigningKeys()
	}
	return nil
}

// ValidateSigningKeys is required of every process that signs or verifies
// tokens in process.
func (c Config) ValidateSigningKeys() error {
	if c.JWTSecret == "" || c.AdminJWTSecret == "" || c.JWTSecret == c.AdminJWTSecret {
		return ErrWeakSecrets
	}
	return nil
}

// AdminTenant returns the tenant admin tokens are issued for. It falls back
// to TenantID for single-tenant deployments.
func (c Config) AdminTenant() string {
	if c.AdminTenantID != "" {
		return c.AdminTenantID
	}
	return c.TenantID
}

func (c Config) HTTPAddr() string { return ":" + c.Port }

// GRPCAddr is empty when the process does not expose gRPC.
func (c Config) GRPCAddr() string {
	if c.GRPCPort == "" {
		return ""
	}
	return ":" + c.GRPCPort
}
