/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/rollcallhq/rollcall-notify/internal/tui"
)

// inboxCmd represents the inbox command
var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Open the interactive inbox",
	Long: `Open the interactive terminal inbox.

The inbox stays live: push arrivals appear as they land.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := bootstrapStore(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		program := tea.NewProgram(tui.NewModel(store), tea.WithAltScreen())
		_, err = program.Run()
		return err
	},
}

func init() {
	rootCmd.AddCommand(inboxCmd)
}
