package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/campushub/internal/flagx"
	"github.com/dmitrijs2005/campushub/internal/timex"
)

// JsonConfig is the on-disk form of Config. Durations accept "10m" or
// integer nanoseconds. Empty values keep whatever was configured before.
type JsonConfig struct {
	GRPCAddr   string         `json:"grpc_addr"`
	DataDir    string         `json:"data_dir"`
	SecretKey  string         `json:"secret_key"`
	SessionTTL timex.Duration `json:"session_ttl"`
	OTPTTL     timex.Duration `json:"otp_ttl"`
	LogLevel   string         `json:"log_level"`
	LogFormat  string         `json:"log_format"`
}

// parseJson overlays the file named by -c / -config, if any.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigFileFlag(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DataDir, c.DataDir)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.LogLevel, c.LogLevel)
	setString(&config.LogFormat, c.LogFormat)
	if c.SessionTTL.Duration > 0 {
		config.SessionTTL = c.SessionTTL.Duration
	}
	if c.OTPTTL.Duration > 0 {
		config.OTPTTL = c.OTPTTL.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
