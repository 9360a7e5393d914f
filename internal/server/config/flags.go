package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/coursekeeper/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   REST bind address (e.g., ":8080")
//	-d string   PostgreSQL DSN
//	-s string   JWT HMAC secret key
//	-u string   S3 root user
//	-p string   S3 root password
//	-b string   S3 bucket name
//	-g string   S3 region
//	-e string   S3 base endpoint (e.g., "http://127.0.0.1:9000/")
//	-m string   public media base URL
//	-x int      max upload size, megabytes
//	-log string log level
//
// Only the flags listed here are parsed; everything else in os.Args is
// dropped by flagx.FilterArgs before parsing.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-d", "-s", "-u", "-p", "-b", "-g", "-e", "-m", "-x", "-log"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddr, "a", config.EndpointAddr, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")

	fs.StringVar(&config.MediaBaseURL, "m", config.MediaBaseURL, "public media base URL")
	fs.Int64Var(&config.MaxUploadMB, "x", config.MaxUploadMB, "max upload size (in megabytes)")
	fs.StringVar(&config.LogLevel, "log", config.LogLevel, "log level (debug|info|warn|error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
