package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/agendapay/agendapay/internal/interfaces/cli/migrate"
	"github.com/agendapay/agendapay/internal/interfaces/cli/server"
)

// @title			AgendaPay API
// @version		1.0
// @description	Payment orders, gateway webhooks and short payment links for appointment bookings.
// @BasePath		/
func main() {
	rootCmd := &cobra.Command{
		Use:   "agendapay",
		Short: "AgendaPay - payment orders and webhook reconciliation for bookings",
	}

	rootCmd.AddCommand(
		server.NewCommand(),
		migrate.NewCommand(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
