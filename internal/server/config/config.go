// Package config handles configuration for the server component:
// defaults, then a JSON file, then SANOTES_* environment variables, then
// command-line flags.
package config

import "time"

// Config holds runtime settings for the notes server.
//
// Fields:
//   - EndpointAddrHTTP: bind address for the JSON API.
//   - EndpointAddrGRPC: bind address for the gRPC health service.
//   - DatabaseDriver: "sqlite" (embedded) or "pgx" (PostgreSQL).
//   - DatabaseDSN: driver-specific data source name.
//   - SecretKey: HMAC secret for signing JWTs (HS256). Do not use test defaults in prod.
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - S3*: object storage for note attachments; an empty bucket disables presigning.
//   - AdminEmail / AdminPassword: moderator account ensured at start-up; skipped when the password is empty.
//   - SeedSampleNotes / DemoNotes: fixtures loaded into an empty catalog.
type Config struct {
	EndpointAddrHTTP             string
	EndpointAddrGRPC             string
	DatabaseDriver               string
	DatabaseDSN                  string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	S3RootUser                   string
	S3RootPassword               string
	S3Bucket                     string
	S3Region                     string
	S3BaseEndpoint               string
	PresignValidityDuration      time.Duration
	MaxUploadSize                int64
	AdminEmail                   string
	AdminPassword                string
	SeedSampleNotes              bool
	DemoNotes                    int
	HealthCheckInterval          time.Duration
	LogLevel                     string
	LogFormat                    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: These values are insecure for production and should be overridden.
func (c *Config) LoadDefaults() {
	c.EndpointAddrHTTP = ":8080"
	c.EndpointAddrGRPC = ":50051"
	c.DatabaseDriver = "sqlite"
	c.DatabaseDSN = "file:sanotes.db?_pragma=busy_timeout(5000)"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.RefreshTokenValidityDuration = 7 * 24 * time.Hour
	c.S3RootUser = "admin"
	c.S3RootPassword = "secretpassword"
	c.S3Bucket = "sanotes"
	c.S3Region = "us-east-1"
	c.S3BaseEndpoint = "http://127.0.0.1:9000/"
	c.PresignValidityDuration = 15 * time.Minute
	c.MaxUploadSize = 20 << 20
	c.AdminEmail = "admin@sanotes"
	c.SeedSampleNotes = true
	c.HealthCheckInterval = 10 * time.Second
	c.LogLevel = "info"
	c.LogFormat = "json"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file, the environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
