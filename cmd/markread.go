/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"
)

// markReadCmd represents the mark-read command
var markReadCmd = &cobra.Command{
	Use:   "mark-read ID",
	Short: "Mark a notification as read",
	Long:  `Mark a specific notification as read by ID.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := buildStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.MarkAsRead(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("Notification %s marked as read\n", args[0])
		return nil
	},
}

// markAllReadCmd represents the mark-all-read command
var markAllReadCmd = &cobra.Command{
	Use:   "mark-all-read",
	Short: "Mark every notification as read",
	Long:  `Mark all notifications as read and zero the unread counter.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, cleanup, err := buildStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := store.MarkAllAsRead(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("All notifications marked as read")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(markReadCmd)
	rootCmd.AddCommand(markAllReadCmd)
}
