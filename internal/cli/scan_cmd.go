package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/certcast/core/internal/oauth"
	"github.com/certcast/core/internal/services"
	"github.com/spf13/cobra"
)

// scanCmd runs a single mailbox scan from the terminal
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the mailbox for certificate emails once",
	Run: func(cmd *cobra.Command, args []string) {
		logService := services.NewLogServiceWithLevel(db, cfg.LogLevel)
		settingsService := services.NewSettingsService(db)
		connectionService := services.NewConnectionService(db)

		settings, err := settingsService.Get()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to load settings: %v\n", err)
			os.Exit(1)
		}

		googleMgr := oauth.NewGoogleManager(
			settings.GoogleClientID,
			settings.GoogleClientSecret,
			settings.GoogleRedirectURL,
			connectionService,
		)

		scanService := services.NewScanService(db, googleMgr, logService)
		result, err := scanService.Scan(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Scan complete: %d found, %d new, %d updated\n",
			result.Found, result.New, result.Updated)

		certs, err := scanService.ListCertificates()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to list certificates: %v\n", err)
			os.Exit(1)
		}
		for _, cert := range certs {
			fmt.Printf("  - %s (%s, %s)\n", cert.Title, cert.Issuer, cert.Date)
		}
	},
}
