package config

import (
	"flag"

	"github.com/dmitrijs2005/campushub/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     gRPC bind address (e.g., ":50051")
//	-data string  data directory
//	-s string     JWT HMAC secret key
//	-t duration   session lifetime (e.g., "1h")
//	-o duration   one-time code lifetime
//	-l string     log level
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-data", "-s", "-t", "-o", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)

	fs.StringVar(&config.GRPCAddr, "a", config.GRPCAddr, "address and port to run server")
	fs.StringVar(&config.DataDir, "data", config.DataDir, "data directory")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.DurationVar(&config.SessionTTL, "t", config.SessionTTL, "session lifetime")
	fs.DurationVar(&config.OTPTTL, "o", config.OTPTTL, "one-time code lifetime")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	return fs.Parse(args)
}
