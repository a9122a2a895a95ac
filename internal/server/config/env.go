package config

import (
	"os"
	"strconv"
	"time"
)

// parseEnv overlays SANOTES_* variables. Unparseable numbers, booleans and
// durations are ignored so a bad variable never masks the file or defaults.
func parseEnv(config *Config) {
	text := map[string]*string{
		"SANOTES_HTTP_ADDR":        &config.EndpointAddrHTTP,
		"SANOTES_GRPC_ADDR":        &config.EndpointAddrGRPC,
		"SANOTES_DATABASE_DRIVER":  &config.DatabaseDriver,
		"SANOTES_DATABASE_DSN":     &config.DatabaseDSN,
		"SANOTES_SECRET_KEY":       &config.SecretKey,
		"SANOTES_S3_ROOT_USER":     &config.S3RootUser,
		"SANOTES_S3_ROOT_PASSWORD": &config.S3RootPassword,
		"SANOTES_S3_REGION":        &config.S3Region,
		"SANOTES_S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
		"SANOTES_ADMIN_EMAIL":      &config.AdminEmail,
		"SANOTES_ADMIN_PASSWORD":   &config.AdminPassword,
		"SANOTES_LOG_LEVEL":        &config.LogLevel,
		"SANOTES_LOG_FORMAT":       &config.LogFormat,
	}
	for name, dst := range text {
		if v, ok := os.LookupEnv(name); ok && v != "" {
			*dst = v
		}
	}

	// An explicitly empty bucket turns presigning off.
	if v, ok := os.LookupEnv("SANOTES_S3_BUCKET"); ok {
		config.S3Bucket = v
	}

	durations := map[string]*time.Duration{
		"SANOTES_ACCESS_TOKEN_TTL":  &config.AccessTokenValidityDuration,
		"SANOTES_REFRESH_TOKEN_TTL": &config.RefreshTokenValidityDuration,
		"SANOTES_PRESIGN_TTL":       &config.PresignValidityDuration,
		"SANOTES_HEALTH_INTERVAL":   &config.HealthCheckInterval,
	}
	for name, dst := range durations {
		if d, err := time.ParseDuration(os.Getenv(name)); err == nil && d > 0 {
			*dst = d
		}
	}

	if v, err := strconv.ParseInt(os.Getenv("SANOTES_MAX_UPLOAD_SIZE"), 10, 64); err == nil && v > 0 {
		config.MaxUploadSize = v
	}
	if v, err := strconv.ParseBool(os.Getenv("SANOTES_SEED_SAMPLE_NOTES")); err == nil {
		config.SeedSampleNotes = v
	}
	if v, err := strconv.Atoi(os.Getenv("SANOTES_DEMO_NOTES")); err == nil && v >= 0 {
		config.DemoNotes = v
	}
}
