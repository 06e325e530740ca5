package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/admissions/internal/flagx"
)

var (
	valueFlags = []string{"-a", "-g", "-d", "-s", "-t", "-o", "-f", "-u", "-p", "-b", "-r", "-e", "-l", "-origins"}
	boolFlags  = []string{"-seed", "-debug", "-secure-cookie"}
)

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string         HTTP bind address (e.g., ":5000")
//	-g string         gRPC health bind address (e.g., ":50051")
//	-d string         PostgreSQL DSN
//	-s string         session HMAC secret key
//	-t int            session validity, minutes
//	-o string         blob backend: local or s3
//	-f string         upload directory for the local backend
//	-u, -p string     S3 root user / password
//	-b, -r string     S3 bucket / region
//	-e string         S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-l string         log level
//	-origins string   comma separated CORS origins
//	-seed             create bootstrap accounts (use -seed=false to disable)
//	-debug            expose debug endpoints
//	-secure-cookie    mark the session cookie Secure
//
// Only these flags are taken from os.Args (see flagx.FilterArgsWithBools),
// so -c/-config and flags of other components pass through untouched.
func parseFlags(config *Config) {
	args := flagx.FilterArgsWithBools(os.Args[1:], valueFlags, boolFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "HTTP address and port to run server")
	fs.StringVar(&config.EndpointAddrGRPC, "g", config.EndpointAddrGRPC, "gRPC health address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionValidity := fs.Int("t", int(config.SessionValidityDuration.Minutes()), "session validity (in minutes)")

	fs.StringVar(&config.BlobBackend, "o", config.BlobBackend, "blob backend (local|s3)")
	fs.StringVar(&config.UploadDir, "f", config.UploadDir, "upload directory")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "r", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	origins := fs.String("origins", "", "comma separated CORS origins")

	fs.BoolVar(&config.SeedUsers, "seed", config.SeedUsers, "create bootstrap accounts")
	fs.BoolVar(&config.DebugEndpoints, "debug", config.DebugEndpoints, "expose debug endpoints")
	fs.BoolVar(&config.SessionCookieSecure, "secure-cookie", config.SessionCookieSecure, "mark session cookie Secure")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionValidityDuration = time.Duration(*sessionValidity) * time.Minute
	if *origins != "" {
		config.AllowedOrigins = splitList(*origins)
	}
}
