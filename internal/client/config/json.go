package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/campushub/internal/flagx"
	"github.com/dmitrijs2005/campushub/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Empty
// values leave the current setting alone.
type JsonConfig struct {
	Mode           string         `json:"mode"`
	ServerAddr     string         `json:"server_addr"`
	RequestTimeout timex.Duration `json:"request_timeout"`
	DataDir        string         `json:"data_dir"`
	SecretKey      string         `json:"secret_key"`
	SessionTTL     timex.Duration `json:"session_ttl"`
	OTPTTL         timex.Duration `json:"otp_ttl"`
	ProfileStore   string         `json:"profile_store"`
	PostgresDSN    string         `json:"postgres_dsn"`
	RedisAddr      string         `json:"redis_addr"`
	RedisPrefix    string         `json:"redis_prefix"`
	S3             struct {
		Endpoint      string `json:"endpoint"`
		Region        string `json:"region"`
		Bucket        string `json:"bucket"`
		AccessKey     string `json:"access_key"`
		SecretKey     string `json:"secret_key"`
		PublicBaseURL string `json:"public_base_url"`
	} `json:"s3"`
	EntryPath string `json:"entry_path"`
	AuthPath  string `json:"auth_path"`
	LogLevel  string `json:"log_level"`
	LogFormat string `json:"log_format"`
}

// parseJson overlays cfg with the file named by -c / -config, if any.
func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.Mode, jc.Mode)
	setString(&cfg.ServerAddr, jc.ServerAddr)
	setDuration(&cfg.RequestTimeout, jc.RequestTimeout)
	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.SecretKey, jc.SecretKey)
	setDuration(&cfg.SessionTTL, jc.SessionTTL)
	setDuration(&cfg.OTPTTL, jc.OTPTTL)
	setString(&cfg.ProfileStore, jc.ProfileStore)
	setString(&cfg.PostgresDSN, jc.PostgresDSN)
	setString(&cfg.RedisAddr, jc.RedisAddr)
	setString(&cfg.RedisPrefix, jc.RedisPrefix)
	setString(&cfg.S3.Endpoint, jc.S3.Endpoint)
	setString(&cfg.S3.Region, jc.S3.Region)
	setString(&cfg.S3.Bucket, jc.S3.Bucket)
	setString(&cfg.S3.AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, jc.S3.SecretKey)
	setString(&cfg.S3.PublicBaseURL, jc.S3.PublicBaseURL)
	setString(&cfg.EntryPath, jc.EntryPath)
	setString(&cfg.AuthPath, jc.AuthPath)
	setString(&cfg.LogLevel, jc.LogLevel)
	setString(&cfg.LogFormat, jc.LogFormat)
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v timex.Duration) {
	if v.Duration > 0 {
		*dst = v.Duration
	}
}
