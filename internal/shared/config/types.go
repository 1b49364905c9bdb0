package config

import (
	"fmt"
	"strings"
	"time"
)

type ServerConfig struct {
	Host              string   `mapstructure:"host"`
	Port              int      `mapstructure:"port"`
	Mode              string   `mapstructure:"mode"`
	Timezone          string   `mapstructure:"timezone"`
	CallbackBaseURL   string   `mapstructure:"callback_base_url"`
	FrontendReturnURL string   `mapstructure:"frontend_return_url"`
	ShortLinkBaseURL  string   `mapstructure:"short_link_base_url"`
	AllowedOrigins    []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	if d.IsSQLite() {
		return d.Database
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&collation=utf8mb4_general_ci&parseTime=true&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

func (d *DatabaseConfig) IsSQLite() bool {
	return strings.EqualFold(d.Driver, "sqlite")
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// GatewayConfig configures the external payment gateway client.
type GatewayConfig struct {
	Environment    string        `mapstructure:"environment"`
	APIKey         string        `mapstructure:"api_key"`
	SecretKey      string        `mapstructure:"secret_key"`
	APIBaseURL     string        `mapstructure:"api_base_url"`
	WebBaseURL     string        `mapstructure:"web_base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	PaymentMethod  int           `mapstructure:"payment_method"`
	StatusAttempts int           `mapstructure:"status_attempts"`
	StatusBackoff  time.Duration `mapstructure:"status_backoff"`
}

func (g *GatewayConfig) IsProduction() bool {
	return strings.EqualFold(g.Environment, "production")
}

type LinksConfig struct {
	Backend   string        `mapstructure:"backend"`
	TTL       time.Duration `mapstructure:"ttl"`
	IDLength  int           `mapstructure:"id_length"`
	Retention time.Duration `mapstructure:"retention"`
}

type LedgerConfig struct {
	Backend      string        `mapstructure:"backend"`
	WaitTimeout  time.Duration `mapstructure:"wait_timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

type BookingConfig struct {
	ConfirmURL string        `mapstructure:"confirm_url"`
	APIToken   string        `mapstructure:"api_token"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

func (e *EmailConfig) IsConfigured() bool {
	return e.SMTPHost != "" && e.FromAddress != ""
}

type AlertsConfig struct {
	Recipients []string `mapstructure:"recipients"`
}

type RateLimitConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	Limit   int           `mapstructure:"limit"`
	Window  time.Duration `mapstructure:"window"`
}
