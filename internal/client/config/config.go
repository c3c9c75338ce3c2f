package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/dmitrijs2005/campushub/internal/client/repositories/profiles"
)

// Provider modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
)

// S3Config locates the avatar bucket.
type S3Config struct {
	Endpoint      string `env:"ENDPOINT"`
	Region        string `env:"REGION"`
	Bucket        string `env:"BUCKET"`
	AccessKey     string `env:"ACCESS_KEY"`
	SecretKey     string `env:"SECRET_KEY"`
	PublicBaseURL string `env:"PUBLIC_BASE_URL"`
}

// Config holds runtime settings for the CampusHub CLI.
//
// In local mode the identity authority runs inside the client process and
// SecretKey, SessionTTL and OTPTTL apply to it. In remote mode the client
// talks to the server at ServerAddr.
type Config struct {
	Mode           string        `env:"CAMPUSHUB_MODE"`
	ServerAddr     string        `env:"CAMPUSHUB_SERVER_ADDR"`
	RequestTimeout time.Duration `env:"CAMPUSHUB_REQUEST_TIMEOUT"`
	DataDir        string        `env:"CAMPUSHUB_DATA_DIR"`

	SecretKey  string        `env:"CAMPUSHUB_SECRET_KEY"`
	SessionTTL time.Duration `env:"CAMPUSHUB_SESSION_TTL"`
	OTPTTL     time.Duration `env:"CAMPUSHUB_OTP_TTL"`

	ProfileStore string `env:"CAMPUSHUB_PROFILE_STORE"`
	PostgresDSN  string `env:"CAMPUSHUB_POSTGRES_DSN"`
	RedisAddr    string `env:"CAMPUSHUB_REDIS_ADDR"`
	RedisPrefix  string `env:"CAMPUSHUB_REDIS_PREFIX"`

	S3 S3Config `envPrefix:"CAMPUSHUB_S3_"`

	EntryPath string `env:"CAMPUSHUB_ENTRY_PATH"`
	AuthPath  string `env:"CAMPUSHUB_AUTH_PATH"`

	LogLevel  string `env:"CAMPUSHUB_LOG_LEVEL"`
	LogFormat string `env:"CAMPUSHUB_LOG_FORMAT"`
}

// LoadDefaults populates c with development defaults.
func (c *Config) LoadDefaults() {
	c.Mode = ModeLocal
	c.ServerAddr = "127.0.0.1:50051"
	c.RequestTimeout = 10 * time.Second
	c.DataDir = "./data/client"
	c.SecretKey = "secretKey"
	c.SessionTTL = 1 * time.Hour
	c.OTPTTL = 10 * time.Minute
	c.ProfileStore = profiles.KindSQLite
	c.RedisAddr = "127.0.0.1:6379"
	c.RedisPrefix = "campushub"
	c.S3 = S3Config{
		Endpoint: "http://127.0.0.1:9000",
		Region:   "us-east-1",
		Bucket:   "avatars",
	}
	c.EntryPath = "/"
	c.AuthPath = "/home"
	c.LogLevel = "warn"
	c.LogFormat = "text"
}

// Validate rejects unknown modes and store kinds.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeLocal, ModeRemote:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.ProfileStore {
	case profiles.KindSQLite, profiles.KindRedis:
	case profiles.KindPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres profile store needs a DSN")
		}
	default:
		return fmt.Errorf("unknown profile store %q", c.ProfileStore)
	}
	return nil
}

// LoadConfig builds a Config from the process environment and arguments.
// Later sources take precedence over earlier ones.
func LoadConfig() (*Config, error) {
	return load(os.Args[1:], env.Options{})
}

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
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
