package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "newsnotes",
	Short:         "News site with comments and private notes",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the selected subcommand, "serve" when none is given.
func Execute() {
	if len(os.Args) == 1 {
		rootCmd.SetArgs([]string{serveCmd.Use})
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd, importCmd)
}

func parseLogLevel(level string) log.Lvl {
	switch strings.ToLower(level) {
	case "debug":
		return log.DEBUG
	case "warn":
		return log.WARN
	case "error":
		return log.ERROR
	case "off":
		return log.OFF
	default:
		return log.INFO
	}
}
