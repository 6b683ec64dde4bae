/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rollcallhq/rollcall-notify/internal/colors"
)

// followCmd represents the follow command
var followCmd = &cobra.Command{
	Use:   "follow",
	Short: "Stream notifications in real-time",
	Long: `Stream notifications in real-time over the push channel.

Prints each arrival as it lands until interrupted with Ctrl+C.`,
	RunE: runFollow,
}

func runFollow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, cleanup, err := bootstrapStore(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	snap := store.Snapshot()
	colors.Info("Following notifications. Press Ctrl+C to stop.")
	cmd.Printf("%d unread\n", snap.UnreadCount)

	// Everything already in the cache has been shown; only arrivals
	// newer than this point get printed.
	seen := make(map[string]bool, len(snap.Latest))
	for _, n := range snap.Latest {
		seen[n.ID] = true
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	for {
		select {
		case <-sigCh:
			return nil
		case <-ctx.Done():
			return nil
		case <-store.Updates():
			snap = store.Snapshot()
			// Latest is newest-first; walk backwards so arrivals print
			// in the order they happened.
			for i := len(snap.Latest) - 1; i >= 0; i-- {
				n := snap.Latest[i]
				if seen[n.ID] {
					continue
				}
				seen[n.ID] = true
				cmd.Println(formatRow(n))
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(followCmd)
}
