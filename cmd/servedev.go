/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/rollcallhq/rollcall-notify/internal/colors"
	"github.com/rollcallhq/rollcall-notify/internal/devserver"
	"github.com/rollcallhq/rollcall-notify/internal/logging"
)

var (
	serveAddr   string
	serveDBPath string
	serveUserID string
	serveToken  string
)

// serveDevCmd represents the serve-dev command
var serveDevCmd = &cobra.Command{
	Use:   "serve-dev",
	Short: "Run a local development feed server",
	Long: `Run a local feed server backed by SQLite.

It exposes the same API and websocket surface the client talks to in
production, plus POST /api/notifications for seeding test data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := devserver.NewStore(serveDBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		server := devserver.NewServer(store, devserver.Options{
			UserID: serveUserID,
			Token:  serveToken,
			Log:    logging.GetGlobal(),
		})
		colors.Info("Dev feed server listening on " + serveAddr)
		return http.ListenAndServe(serveAddr, server)
	},
}

func init() {
	serveDevCmd.Flags().StringVar(&serveAddr, "addr", "localhost:8787", "address to listen on")
	serveDevCmd.Flags().StringVar(&serveDBPath, "db", ":memory:", "sqlite database path")
	serveDevCmd.Flags().StringVar(&serveUserID, "user", "1", "user every feed read resolves to")
	serveDevCmd.Flags().StringVar(&serveToken, "token", "", "bearer token to require (empty disables auth)")
	rootCmd.AddCommand(serveDevCmd)
}
