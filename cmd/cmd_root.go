// Copyright 2025 The PRC Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/spf13/cobra"
)

type logWriter struct {
	writer io.Writer
}

func (w *logWriter) Write(bytes []byte) (int, error) {
	return fmt.Fprintf(w.writer, "%s %s", time.Now().Format("2006-01-02 15:04:05"), string(bytes))
}

func init() {
	log.SetFlags(0)
	log.SetOutput(&logWriter{writer: os.Stderr})
}

var rootCmd = &cobra.Command{
	Use:   "prc",
	Short: "UK postcode coverage checker",
	Long: `
prc decides whether a UK postcode falls inside a service area, either by
matching its outward code against an allow-list or by measuring the distance
from a base address with postcodes.io and Nominatim lookups.
`,
	SilenceUsage: true,
}

var Version = "dev"

var options = &Options{}

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(
		&options.ConfigPath,
		"config",
		"",
		"JSON settings file (defaults are used for absent keys)",
	)
	flags.StringVar(
		&options.Cache,
		"cache",
		cacheMemory,
		"Geocode cache backend: memory, duckdb or redis",
	)
	flags.StringVar(
		&options.CachePath,
		"cache-path",
		"prc.duckdb",
		"DuckDB file used by the duckdb cache backend",
	)
	flags.StringVar(
		&options.RedisAddr,
		"redis-addr",
		envOr("PRC_REDIS_ADDR", "localhost:6379"),
		"Redis address used by the redis cache backend",
	)
	flags.StringVar(
		&options.ContactEmail,
		"contact-email",
		os.Getenv("PRC_CONTACT_EMAIL"),
		"Contact email sent to Nominatim in the User-Agent",
	)
	flags.StringVar(
		&options.SiteURL,
		"site-url",
		os.Getenv("PRC_SITE_URL"),
		"Public URL of the deployment, sent as Referer",
	)
	flags.StringVar(
		&options.FreeTextProvider,
		"free-text-provider",
		providerNominatim,
		"Free-text geocoder: nominatim or google",
	)
	flags.StringVar(
		&options.GoogleAPIKey,
		"google-api-key",
		os.Getenv("GOOGLE_MAPS_API_KEY"),
		"Google Maps API key; looked up with ADC when empty",
	)
	flags.StringVar(
		&options.GCPProject,
		"gcp-project",
		"",
		"Project holding the Google Maps API key when using ADC",
	)
	flags.BoolVar(
		&options.EnableHTTPTrace,
		"trace-http",
		false,
		"Display HTTP requests-responses",
	)
	flags.BoolVar(
		&options.EnableHTTPBodyTrace,
		"trace-http-body",
		false,
		"Display HTTP requests-responses bodies",
	)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}
