package main

import "github.com/spf13/cobra"

var rootCmd = &cobra.Command{
	Use:           "leadline",
	Short:         "Leadline is a multi-tenant CRM; this binary runs its authorization core and API.",
	SilenceErrors: true,
	SilenceUsage:  true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, usersCmd)
}
