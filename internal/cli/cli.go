package cli

import (
	"fmt"
	"os"

	"github.com/certcast/core/internal/api/middleware"
	"github.com/certcast/core/internal/config"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// Version is set at build time.
var Version = "dev"

var (
	db            *gorm.DB
	cfg           *config.Config
	apiKeyManager *middleware.APIKeyManager
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "certcast",
	Short: "Certificate email scanner and social post pipeline",
	Long: `Certcast scans a connected mailbox for certificate and course
completion emails, extracts the certificate details, generates social
posts with an AI model, and publishes them to connected platforms.

Running without arguments starts the API server. Subcommands:
  certcast key show      # print the current API key
  certcast key reset     # generate a new API key
  certcast scan          # scan the mailbox once and print the result
  certcast version       # print the version`,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("certcast " + Version)
	},
}

// Execute runs the CLI with the provided database and config
func Execute(database *gorm.DB, config *config.Config) {
	db = database
	cfg = config

	var err error
	apiKeyManager, err = middleware.NewAPIKeyManager(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize API key manager: %v\n", err)
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(keyCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}
