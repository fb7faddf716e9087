package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	DatabaseURL     string        `mapstructure:"database_url"`
	TestDatabaseURL string        `mapstructure:"test_database_url"`
	DBMaxConns      int32         `mapstructure:"db_max_conns"`
	ServerPort      string        `mapstructure:"server_port"`
	AllowedOrigins  string        `mapstructure:"allowed_origins"`
	SecureCookies   bool          `mapstructure:"secure_cookies"`
	JWTSecret       string        `mapstructure:"jwt_secret"`
	JWTTTL          time.Duration `mapstructure:"jwt_ttl"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	OrderIDPrefix   string        `mapstructure:"order_id_prefix"`
	CLIUsername     string        `mapstructure:"cli_username"`
	CLIPassword     string        `mapstructure:"cli_password"`
}

// Load reads .env (if present) and then the process environment.
// Environment variables always win over .env values.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("server_port", "8080")
	v.SetDefault("secure_cookies", true)
	v.SetDefault("jwt_ttl", time.Hour)
	v.SetDefault("shutdown_timeout", 10*time.Second)
	v.SetDefault("order_id_prefix", "JIPL")
	bindEnvVariables(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func bindEnvVariables(v *viper.Viper) {
	v.BindEnv("database_url", "DATABASE_URL")
	v.BindEnv("test_database_url", "TEST_DATABASE_URL")
	v.BindEnv("db_max_conns", "DB_MAX_CONNS")
	v.BindEnv("server_port", "SERVER_PORT")
	v.BindEnv("allowed_origins", "ALLOWED_ORIGINS")
	v.BindEnv("secure_cookies", "SECURE_COOKIES")
	v.BindEnv("jwt_secret", "JWT_SECRET")
	v.BindEnv("jwt_ttl", "JWT_TTL")
	v.BindEnv("shutdown_timeout", "SHUTDOWN_TIMEOUT")
	v.BindEnv("order_id_prefix", "ORDER_ID_PREFIX")
	v.BindEnv("cli_username", "ORDER_CLI_USERNAME")
	v.BindEnv("cli_password", "ORDER_CLI_PASSWORD")
}

// Validate checks the settings every binary needs.
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL environment variable not set")
	}
	if c.DBMaxConns <= 0 {
		return fmt.Errorf("DB_MAX_CONNS must be positive, got %d", c.DBMaxConns)
	}
	return nil
}

// ValidateServer additionally checks the settings the HTTP server needs.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET environment variable not set")
	}
	if c.JWTTTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive, got %s", c.JWTTTL)
	}
	return nil
}
