package config

import (
	"flag"

	"github.com/dmitrijs2005/campushub/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
// Arguments it does not own are filtered out with flagx.FilterArgs.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-m", "-a", "-data", "-p", "-d", "-r", "-timeout", "-l"})

	fs := flag.NewFlagSet("client", flag.ContinueOnError)

	fs.StringVar(&cfg.Mode, "m", cfg.Mode, "provider mode: local or remote")
	fs.StringVar(&cfg.ServerAddr, "a", cfg.ServerAddr, "address and port to access server")
	fs.StringVar(&cfg.DataDir, "data", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.ProfileStore, "p", cfg.ProfileStore, "profile store: sqlite, postgres or redis")
	fs.StringVar(&cfg.PostgresDSN, "d", cfg.PostgresDSN, "postgres DSN")
	fs.StringVar(&cfg.RedisAddr, "r", cfg.RedisAddr, "redis address")
	fs.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "remote call timeout")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")

	return fs.Parse(args)
}
