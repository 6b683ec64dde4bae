/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
	"github.com/rollcallhq/rollcall-notify/internal/tray"
)

var (
	listStatus  string
	listPage    int
	listPerPage int
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List notifications with filter and pagination",
	Long: `List notifications page by page.

The status filter accepts all, read, or unread.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, err := domain.ParseStatusFilter(listStatus)
		if err != nil {
			return err
		}
		store, cleanup, err := buildStore()
		if err != nil {
			return err
		}
		defer cleanup()

		store.SetStatusLocal(status)
		if listPerPage > 0 {
			store.SetPerPageLocal(listPerPage)
		}
		if err := store.FetchItems(cmd.Context(), tray.FetchOptions{Page: listPage}); err != nil {
			return err
		}

		snap := store.Snapshot()
		if len(snap.Items) == 0 {
			cmd.Println("no notifications")
			return nil
		}
		for _, n := range snap.Items {
			cmd.Println(formatRow(n))
		}
		cmd.Printf("\npage %d/%d (%d total)\n", snap.Page, snap.LastPage, snap.Total)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listStatus, "status", "all", "filter by read status (all, read, unread)")
	listCmd.Flags().IntVar(&listPage, "page", 1, "page to fetch")
	listCmd.Flags().IntVar(&listPerPage, "per-page", 0, "page size (0 uses the configured default)")
	rootCmd.AddCommand(listCmd)
}
