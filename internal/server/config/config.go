// Package config handles configuration for the identity server,
// including defaults, environment, JSON overlay, and command-line flags.
package config

import (
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds runtime settings for the CampusHub identity server.
//
// Fields:
//   - GRPCAddr: bind address for the gRPC endpoint.
//   - DataDir: directory holding the sqlite identity database.
//   - SecretKey: HMAC secret for signing session JWTs (HS256). Do not use the default in prod.
//   - SessionTTL / OTPTTL: session token and one-time code lifetimes.
//   - LogLevel / LogFormat: slog level and "json" or "text".
type Config struct {
	GRPCAddr   string        `env:"CAMPUSHUB_GRPC_ADDR"`
	DataDir    string        `env:"CAMPUSHUB_DATA_DIR"`
	SecretKey  string        `env:"CAMPUSHUB_SECRET_KEY"`
	SessionTTL time.Duration `env:"CAMPUSHUB_SESSION_TTL"`
	OTPTTL     time.Duration `env:"CAMPUSHUB_OTP_TTL"`
	LogLevel   string        `env:"CAMPUSHUB_LOG_LEVEL"`
	LogFormat  string        `env:"CAMPUSHUB_LOG_FORMAT"`
}

// LoadDefaults populates Config with development defaults.
// NOTE: the secret is insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.GRPCAddr = ":50051"
	c.DataDir = "./data/server"
	c.SecretKey = "secretKey"
	c.SessionTTL = 1 * time.Hour
	c.OTPTTL = 10 * time.Minute
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config from the process environment and arguments.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], env.Options{})
}

// load applies defaults, then environment variables, then an optional
// JSON file, then command-line flags.
func load(args []string, opts env.Options) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
