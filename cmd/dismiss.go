/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// dismissCmd represents the dismiss command
var dismissCmd = &cobra.Command{
	Use:   "dismiss ID",
	Short: "Delete a notification",
	Long: `Delete a specific notification by ID.
The remote delete is confirmed before anything disappears locally.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := buildStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.Destroy(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("Notification %s dismissed\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(dismissCmd)
}
