package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EnvPrefix namespaces every environment variable read by the server.
const EnvPrefix = "ADMISSIONS_"

// parseEnv overlays ADMISSIONS_* variables onto config. A .env file, when
// present, is loaded into the process environment by the binary before
// LoadConfig runs. Malformed values panic, like a malformed JSON file.
func parseEnv(config *Config, lookup func(string) (string, bool)) {
	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		if !ok || strings.TrimSpace(v) == "" {
			return "", false
		}
		return strings.TrimSpace(v), true
	}

	str := func(name string, dst *string) {
		if v, ok := get(name); ok {
			*dst = v
		}
	}
	boolean := func(name string, dst *bool) {
		if v, ok := get(name); ok {
			b, err := strconv.ParseBool(v)
			if err != nil {
				panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := get(name); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			}
			*dst = n
		}
	}
	duration := func(name string, dst *time.Duration) {
		if v, ok := get(name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(fmt.Errorf("%s%s: %w", EnvPrefix, name, err))
			}
			*dst = d
		}
	}

	str("HTTP_ADDR", &config.EndpointAddrHTTP)
	str("GRPC_ADDR", &config.EndpointAddrGRPC)
	str("DATABASE_DSN", &config.DatabaseDSN)
	str("SECRET_KEY", &config.SecretKey)
	duration("SESSION_VALIDITY", &config.SessionValidityDuration)
	str("SESSION_COOKIE_NAME", &config.SessionCookieName)
	boolean("SESSION_COOKIE_SECURE", &config.SessionCookieSecure)
	if v, ok := get("ALLOWED_ORIGINS"); ok {
		config.AllowedOrigins = splitList(v)
	}
	duration("REQUEST_TIMEOUT", &config.RequestTimeout)
	duration("SHUTDOWN_TIMEOUT", &config.ShutdownTimeout)
	str("BLOB_BACKEND", &config.BlobBackend)
	str("UPLOAD_DIR", &config.UploadDir)
	if v, ok := get("MAX_UPLOAD_BYTES"); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			panic(fmt.Errorf("%sMAX_UPLOAD_BYTES: %w", EnvPrefix, err))
		}
		config.MaxUploadBytes = n
	}
	str("S3_ROOT_USER", &config.S3RootUser)
	str("S3_ROOT_PASSWORD", &config.S3RootPassword)
	str("S3_BUCKET", &config.S3Bucket)
	str("S3_REGION", &config.S3Region)
	str("S3_BASE_ENDPOINT", &config.S3BaseEndpoint)
	str("S3_PREFIX", &config.S3Prefix)
	integer("LOGIN_RATE_PER_MINUTE", &config.LoginRatePerMinute)
	integer("LOGIN_BURST", &config.LoginBurst)
	boolean("SEED_USERS", &config.SeedUsers)
	boolean("DEBUG_ENDPOINTS", &config.DebugEndpoints)
	str("LOG_LEVEL", &config.LogLevel)
}

// splitList parses a comma separated list, dropping empty items.
func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
