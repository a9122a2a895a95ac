package config

import "time"

// ConfigFileEnv names the variable holding the JSON config path when no
// -c/--config flag is given.
const ConfigFileEnv = "NOTESCTL_CONFIG"

// Config holds runtime settings for the notesctl CLI.
//
// Fields:
//   - ServerURL: base URL of the notes HTTP API.
//   - SessionFile: where the current session is kept; empty means
//     <user config dir>/notesctl/session.json.
//   - RequestTimeout: per-request deadline for API calls.
type Config struct {
	ServerURL      string
	SessionFile    string
	RequestTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "http://127.0.0.1:8080"
	c.SessionFile = ""
	c.RequestTimeout = 15 * time.Second
}

// LoadConfig constructs a Config from defaults, then the JSON file named in
// args (or $NOTESCTL_CONFIG), then NOTESCTL_* variables. Command-line flags
// are applied on top by the CLI itself.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	parseEnv(cfg)
	return cfg, nil
}
