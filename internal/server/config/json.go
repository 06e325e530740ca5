package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/admissions/internal/flagx"
	"github.com/dmitrijs2005/admissions/internal/timex"
)

// JsonConfig is the on-disk shape of the configuration file. Every field
// is optional: absent keys keep the value from the previous layer, which is
// why scalars are pointers here. Durations accept "30m" or nanoseconds.
type JsonConfig struct {
	EndpointAddrHTTP        *string         `json:"endpoint_addr_http"`
	EndpointAddrGRPC        *string         `json:"endpoint_addr_grpc"`
	DatabaseDSN             *string         `json:"database_dsn"`
	SecretKey               *string         `json:"secret_key"`
	SessionValidityDuration *timex.Duration `json:"session_validity_duration"`
	SessionCookieName       *string         `json:"session_cookie_name"`
	SessionCookieSecure     *bool           `json:"session_cookie_secure"`
	AllowedOrigins          []string        `json:"allowed_origins"`
	RequestTimeout          *timex.Duration `json:"request_timeout"`
	ShutdownTimeout         *timex.Duration `json:"shutdown_timeout"`
	BlobBackend             *string         `json:"blob_backend"`
	UploadDir               *string         `json:"upload_dir"`
	MaxUploadBytes          *int64          `json:"max_upload_bytes"`
	S3RootUser              *string         `json:"s3_root_user"`
	S3RootPassword          *string         `json:"s3_root_password"`
	S3Bucket                *string         `json:"s3_bucket"`
	S3Region                *string         `json:"s3_region"`
	S3BaseEndpoint          *string         `json:"s3_base_endpoint"`
	S3Prefix                *string         `json:"s3_prefix"`
	LoginRatePerMinute      *int            `json:"login_rate_per_minute"`
	LoginBurst              *int            `json:"login_burst"`
	SeedUsers               *bool           `json:"seed_users"`
	Seeds                   []SeedUser      `json:"seeds"`
	DebugEndpoints          *bool           `json:"debug_endpoints"`
	LogLevel                *string         `json:"log_level"`
}

// parseJson overlays the file named by -c/-config onto config. Without the
// flag nothing happens. An unreadable file or invalid JSON panics: a
// misconfigured server should not start.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	c.apply(config)
}

func (c *JsonConfig) apply(config *Config) {
	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	if c.SessionValidityDuration != nil {
		config.SessionValidityDuration = c.SessionValidityDuration.Duration
	}
	setString(&config.SessionCookieName, c.SessionCookieName)
	setBool(&config.SessionCookieSecure, c.SessionCookieSecure)
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	if c.RequestTimeout != nil {
		config.RequestTimeout = c.RequestTimeout.Duration
	}
	if c.ShutdownTimeout != nil {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	setString(&config.BlobBackend, c.BlobBackend)
	setString(&config.UploadDir, c.UploadDir)
	if c.MaxUploadBytes != nil {
		config.MaxUploadBytes = *c.MaxUploadBytes
	}
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.S3Prefix, c.S3Prefix)
	if c.LoginRatePerMinute != nil {
		config.LoginRatePerMinute = *c.LoginRatePerMinute
	}
	if c.LoginBurst != nil {
		config.LoginBurst = *c.LoginBurst
	}
	setBool(&config.SeedUsers, c.SeedUsers)
	if c.Seeds != nil {
		config.Seeds = c.Seeds
	}
	setBool(&config.DebugEndpoints, c.DebugEndpoints)
	setString(&config.LogLevel, c.LogLevel)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}
