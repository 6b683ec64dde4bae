/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/rollcallhq/rollcall-notify/internal/api"
	"github.com/rollcallhq/rollcall-notify/internal/config"
	"github.com/rollcallhq/rollcall-notify/internal/logging"
	"github.com/rollcallhq/rollcall-notify/internal/ports"
	"github.com/rollcallhq/rollcall-notify/internal/push"
	"github.com/rollcallhq/rollcall-notify/internal/sound"
	"github.com/rollcallhq/rollcall-notify/internal/tray"
)

// buildStore assembles the notification store from global config. Var
// indirection so command tests can substitute a store over a stub feed.
var buildStore = func() (*tray.Store, func(), error) {
	serverURL := config.Get("server_url", "")
	if serverURL == "" {
		return nil, nil, fmt.Errorf("server_url is not configured")
	}
	token := config.Get("api_token", "")
	log := logging.GetGlobal()

	client := api.NewClient(serverURL, token)
	broker := push.NewBroker(config.Get("ws_url", ""), token, log)

	var chime ports.Chime = sound.NewSilentChime()
	if config.GetBool("sound_enabled", true) {
		chime = sound.NewBellChime(os.Stdout)
	}

	store := tray.New(client, broker, chime, log)
	store.SetPerPageLocal(config.GetInt("per_page", tray.DefaultPerPage))
	cleanup := func() { _ = store.Close() }
	return store, cleanup, nil
}

// bootstrapStore builds the store and binds it to the configured
// session. Commands that need the push channel require a user_id.
func bootstrapStore(ctx context.Context) (*tray.Store, func(), error) {
	store, cleanup, err := buildStore()
	if err != nil {
		return nil, nil, err
	}
	userID := config.Get("user_id", "")
	if userID == "" {
		cleanup()
		return nil, nil, fmt.Errorf("user_id is not configured")
	}
	if err := store.Bootstrap(ctx, userID, config.Get("acting_role", "")); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("bootstrapping session: %w", err)
	}
	return store, cleanup, nil
}
