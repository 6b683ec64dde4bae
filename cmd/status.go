/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the unread notification count",
	Long:  `Fetch and print the current server-side unread count.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := buildStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.FetchUnreadCount(cmd.Context()); err != nil {
			return err
		}
		cmd.Printf("%d unread\n", store.Snapshot().UnreadCount)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
