package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Payment gateway validation hosts.
const (
	ProductionValidateHost = "www.payfast.co.za"
	SandboxValidateHost    = "sandbox.payfast.co.za"
	DefaultValidatePath    = "/eng/query/validate"
)

// Storage drivers.
const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// Config holds all application configuration.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Gateway       GatewayConfig       `mapstructure:"gateway"`
	Admin         AdminConfig         `mapstructure:"admin"`
	PaymentReturn PaymentReturnConfig `mapstructure:"payment_return"`
	AES           AESConfig           `mapstructure:"aes"`
	Log           LogConfig           `mapstructure:"log"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	Mode        string `mapstructure:"mode"` // debug, release, test
	MaxBodySize int64  `mapstructure:"max_body_size"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // postgres, memory
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	Table           string        `mapstructure:"table"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig describes how notifications from the payment gateway are verified.
type GatewayConfig struct {
	Passphrase     string        `mapstructure:"passphrase"`
	Sandbox        bool          `mapstructure:"sandbox"`
	ValidateHost   string        `mapstructure:"validate_host"` // overrides the sandbox/production host
	ValidatePath   string        `mapstructure:"validate_path"`
	ValidateScheme string        `mapstructure:"validate_scheme"`
	MerchantID     string        `mapstructure:"merchant_id"`     // optional strict check
	ExpectedAmount string        `mapstructure:"expected_amount"` // optional strict check, e.g. "350.00"
	AttestTimeout  time.Duration `mapstructure:"attest_timeout"`
}

// ValidateURL returns the server-to-server validation endpoint.
func (g GatewayConfig) ValidateURL() string {
	host := strings.TrimSpace(g.ValidateHost)
	if host == "" {
		host = ProductionValidateHost
		if g.Sandbox {
			host = SandboxValidateHost
		}
	}
	path := strings.TrimSpace(g.ValidatePath)
	if path == "" {
		path = DefaultValidatePath
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	scheme := strings.TrimSpace(g.ValidateScheme)
	if scheme == "" {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s%s", scheme, host, path)
}

type AdminConfig struct {
	SecretHash string `mapstructure:"secret_hash"` // argon2id encoded; empty disables admin routes
}

// Enabled reports whether the manual mark-paid route is served.
func (a AdminConfig) Enabled() bool {
	return strings.TrimSpace(a.SecretHash) != ""
}

type PaymentReturnConfig struct {
	RedirectURL string `mapstructure:"redirect_url"`
}

type AESConfig struct {
	Key string `mapstructure:"key"` // 32-byte hex-encoded key for AES-256
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: ITN_.
// Nested keys use underscore: ITN_DATABASE_HOST, ITN_GATEWAY_PASSPHRASE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.max_body_size", 64<<10)
	v.SetDefault("database.driver", DriverPostgres)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "registrations")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.table", "mentorship_applications_2026")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("gateway.passphrase", "")
	v.SetDefault("gateway.sandbox", false)
	v.SetDefault("gateway.validate_host", "")
	v.SetDefault("gateway.validate_path", DefaultValidatePath)
	v.SetDefault("gateway.validate_scheme", "https")
	v.SetDefault("gateway.merchant_id", "")
	v.SetDefault("gateway.expected_amount", "")
	v.SetDefault("gateway.attest_timeout", "5s")
	v.SetDefault("admin.secret_hash", "")
	v.SetDefault("payment_return.redirect_url", "/")
	v.SetDefault("aes.key", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// ITN_GATEWAY_PASSPHRASE -> gateway.passphrase
	v.SetEnvPrefix("ITN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// env vars alone are enough; only a broken file is fatal
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate rejects combinations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres, DriverMemory:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported server mode %q", c.Server.Mode)
	}
	if c.Gateway.AttestTimeout <= 0 {
		return fmt.Errorf("gateway.attest_timeout must be positive")
	}
	return nil
}
