// Package main is the entrypoint of the Call for Presentations portal.
//
// @title           Call for Presentations API
// @version         1.0
// @description     Backend for frontend of the Call for Presentations portal.
// @BasePath        /
//
// @securityDefinitions.apikey SessionAuth
// @in cookie
// @name cfp_session
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "cfp",
	Short:         "Call for Presentations portal",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
