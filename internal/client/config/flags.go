package config

import (
	"flag"
	"os"

	"github.com/caminho-app/caminho/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   base URL of the backend API
//	-b string   media bucket name
//	-d string   path to the local episode cache
//	-m string   metrics listen address (empty disables)
//
// os.Args is filtered through flagx.FilterArgs so flags owned by other
// components (like -c/-config) pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-b", "-d", "-m"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "base URL of the backend API")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "media bucket name")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "path to the local episode cache")
	fs.StringVar(&cfg.MetricsAddr, "m", cfg.MetricsAddr, "metrics listen address")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
