// Package config loads runtime configuration for the CampusHub CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Environment variables (CAMPUSHUB_*).
//  3. Optional JSON file selected via -c or -config.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-m string        provider mode: "local" or "remote"
//	-a string        address:port of the identity gRPC server (remote mode)
//	-data string     directory for the client databases
//	-p string        profile store: "sqlite", "postgres" or "redis"
//	-d string        PostgreSQL DSN for the postgres profile store
//	-r string        redis address for the redis profile store
//	-timeout dur     per-call timeout for remote calls
//	-l string        log level
//
// # JSON schema
//
// Durations accept strings like "3s" or integer nanoseconds:
//
//	{
//	  "mode": "remote",
//	  "server_addr": "127.0.0.1:50051",
//	  "request_timeout": "5s",
//	  "profile_store": "redis",
//	  "redis_addr": "127.0.0.1:6379",
//	  "s3": {"endpoint": "http://127.0.0.1:9000", "bucket": "avatars"}
//	}
package config
