package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/agendapay/agendapay/internal/shared/config"
	"github.com/agendapay/agendapay/internal/shared/constants"
)

type Config struct {
	Server    sharedConfig.ServerConfig    `mapstructure:"server"`
	Database  sharedConfig.DatabaseConfig  `mapstructure:"database"`
	Logger    sharedConfig.LoggerConfig    `mapstructure:"logger"`
	Redis     sharedConfig.RedisConfig     `mapstructure:"redis"`
	Gateway   sharedConfig.GatewayConfig   `mapstructure:"gateway"`
	Links     sharedConfig.LinksConfig     `mapstructure:"links"`
	Ledger    sharedConfig.LedgerConfig    `mapstructure:"ledger"`
	Booking   sharedConfig.BookingConfig   `mapstructure:"booking"`
	Email     sharedConfig.EmailConfig     `mapstructure:"email"`
	Alerts    sharedConfig.AlertsConfig    `mapstructure:"alerts"`
	RateLimit sharedConfig.RateLimitConfig `mapstructure:"ratelimit"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load loads configuration from file and environment variables.
// configPath overrides the default search paths when set.
func Load(env, configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath("../../configs")
	}

	v.SetEnvPrefix("AGENDAPAY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Defaults plus environment variables are enough to boot without a file.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = &config
	appConfigMu.Unlock()

	return &config, nil
}

// Get returns the loaded configuration
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

// Validate checks the settings the payment flow cannot run without.
func (c *Config) Validate() error {
	if c.Gateway.APIKey == "" {
		return fmt.Errorf("gateway.api_key is required")
	}
	if c.Gateway.SecretKey == "" {
		return fmt.Errorf("gateway.secret_key is required")
	}
	if c.Server.CallbackBaseURL == "" {
		return fmt.Errorf("server.callback_base_url is required")
	}
	switch c.Links.Backend {
	case constants.BackendMemory, constants.BackendRedis:
	default:
		return fmt.Errorf("unsupported links.backend %q", c.Links.Backend)
	}
	switch c.Ledger.Backend {
	case constants.BackendMemory, constants.BackendRedis, constants.BackendDatabase:
	default:
		return fmt.Errorf("unsupported ledger.backend %q", c.Ledger.Backend)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.timezone", "America/Santiago")
	v.SetDefault("server.callback_base_url", "")
	v.SetDefault("server.frontend_return_url", "http://localhost:3000/pago/resultado")
	v.SetDefault("server.short_link_base_url", "http://localhost:3000/p")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database defaults
	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "agendapay_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.conn_max_lifetime", 60)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	// Gateway defaults
	v.SetDefault("gateway.environment", "sandbox")
	v.SetDefault("gateway.api_key", "")
	v.SetDefault("gateway.secret_key", "")
	v.SetDefault("gateway.api_base_url", "")
	v.SetDefault("gateway.web_base_url", "")
	v.SetDefault("gateway.timeout", "8s")
	v.SetDefault("gateway.payment_method", 9)
	v.SetDefault("gateway.status_attempts", 3)
	v.SetDefault("gateway.status_backoff", "300ms")

	// Payment link defaults
	v.SetDefault("links.backend", "memory")
	v.SetDefault("links.ttl", "30m")
	v.SetDefault("links.id_length", 8)
	v.SetDefault("links.retention", "24h")

	// Ledger defaults
	v.SetDefault("ledger.backend", "memory")
	v.SetDefault("ledger.wait_timeout", "5s")
	v.SetDefault("ledger.poll_interval", "100ms")

	// Booking confirmer defaults
	v.SetDefault("booking.confirm_url", "")
	v.SetDefault("booking.api_token", "")
	v.SetDefault("booking.timeout", "5s")

	// Email defaults (empty host disables operator mail)
	v.SetDefault("email.smtp_host", "")
	v.SetDefault("email.smtp_port", 587)
	v.SetDefault("email.smtp_user", "")
	v.SetDefault("email.smtp_password", "")
	v.SetDefault("email.from_address", "")
	v.SetDefault("email.from_name", "AgendaPay")
	v.SetDefault("alerts.recipients", []string{})

	// Rate limit defaults
	v.SetDefault("ratelimit.enabled", false)
	v.SetDefault("ratelimit.limit", 60)
	v.SetDefault("ratelimit.window", "1m")
}
