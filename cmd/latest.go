/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
)

// latestCmd represents the latest command
var latestCmd = &cobra.Command{
	Use:   "latest",
	Short: "Show the most recent notifications",
	Long:  `Fetch and print the most recent notifications, newest first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := buildStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.FetchLatest(cmd.Context()); err != nil {
			return err
		}
		snap := store.Snapshot()
		if len(snap.Latest) == 0 {
			cmd.Println("no notifications")
			return nil
		}
		for _, n := range snap.Latest {
			cmd.Println(formatRow(n))
		}
		return nil
	},
}

// formatRow renders one notification line for terminal output. Unread
// entries carry a star marker.
func formatRow(n domain.Notification) string {
	marker := "  "
	if !n.IsRead() {
		marker = "* "
	}
	line := marker + n.Title
	if n.CreatedAt != "" {
		line += "  (" + n.CreatedAt + ")"
	}
	return line
}

func init() {
	rootCmd.AddCommand(latestCmd)
}
