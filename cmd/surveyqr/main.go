package main

import (
	"fmt"
	"log"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/orafadelg/surveyqr/internal/config"
)

// Build-time variables (injected via -ldflags)
var (
	version   = "dev"     // Default for development
	commit    = "unknown" // Git commit hash
	date      = "unknown" // Build date
	goVersion = runtime.Version()
	platform  = runtime.GOOS + "/" + runtime.GOARCH

	cfg *config.Config
)

func getVersionInfo() string {
	commitHash := commit
	if len(commit) > 8 {
		commitHash = commit[:8]
	}
	return fmt.Sprintf("surveyqr %s (%s) built with %s on %s at %s",
		version, commitHash, goVersion, platform, date)
}

var rootCmd = &cobra.Command{
	Use:     "surveyqr",
	Version: version,
	Short:   "surveyqr Survey Link Signer and QR Generator",
	Long: `A service to build signed SurveyMonkey survey links for point-of-sale
receipts and render them as printable QR codes (PNG and SVG).`,
}

func init() {
	// Load configuration from environment variables
	cfg = config.Load()

	rootCmd.PersistentFlags().StringVarP(&cfg.Survey.Domain, "domain", "d", cfg.Survey.Domain, "SurveyMonkey domain used by the collector")
	rootCmd.PersistentFlags().StringVarP(&cfg.Survey.SurveyCode, "survey-code", "s", cfg.Survey.SurveyCode, "Collector (web link) code, the path segment after /r/")
	rootCmd.SetVersionTemplate(getVersionInfo() + "\n")

	rootCmd.AddCommand(apiCmd, generateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
