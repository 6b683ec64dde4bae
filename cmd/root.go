/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rollcallhq/rollcall-notify/internal/colors"
	"github.com/rollcallhq/rollcall-notify/internal/config"
	"github.com/rollcallhq/rollcall-notify/internal/logging"
	"github.com/rollcallhq/rollcall-notify/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rollcall-notify",
	Short: "Keep a live window on your notification feed.",
	Long:  `Keep a live window on your notification feed.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config.Load()
		if err := logging.InitGlobal(); err != nil {
			return fmt.Errorf("initializing logging: %w", err)
		}
		colors.SetLogger(logging.GetGlobal())
		colors.SetDebug(config.GetBool("debug", false))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logging.ShutdownGlobal()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Version = version.String()

	// Hide the completion command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		printHelpText(cmd)
	})
}

func printHelpText(cmd *cobra.Command) {
	commandOrder := []string{
		"status",
		"latest",
		"list",
		"mark-read",
		"mark-all-read",
		"dismiss",
		"follow",
		"inbox",
		"serve-dev",
		"help",
		"version",
	}

	var cmdLines []string
	for _, name := range commandOrder {
		var found *cobra.Command
		for _, c := range cmd.Root().Commands() {
			if c.Name() == name {
				found = c
				break
			}
		}
		if found == nil {
			continue
		}
		cmdLines = append(cmdLines, fmt.Sprintf("    %-20s %s", found.Use, found.Short))
	}

	helpText := fmt.Sprintf(`rollcall-notify v%s

Keep a live window on your notification feed.

USAGE:
    rollcall-notify [COMMAND] [OPTIONS]

COMMANDS:
%s

OPTIONS:
    -h, --help      Show help message
`, version.String(), strings.Join(cmdLines, "\n"))
	fmt.Fprint(os.Stdout, helpText)
}
