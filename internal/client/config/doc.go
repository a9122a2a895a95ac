// Package config loads runtime configuration for the notesctl CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/--config or $NOTESCTL_CONFIG.
//  3. Environment: NOTESCTL_SERVER, NOTESCTL_SESSION_FILE, NOTESCTL_TIMEOUT.
//  4. Command-line flags (--server, --session), bound by the cobra root command.
//
// # JSON schema
//
// The JSON loader uses timex.Duration, so the timeout can be either a string
// like "15s" or integer nanoseconds:
//
//	{
//	  "server_url": "http://127.0.0.1:8080",
//	  "session_file": "/home/me/.notesctl/session.json",
//	  "request_timeout": "15s"
//	}
package config
