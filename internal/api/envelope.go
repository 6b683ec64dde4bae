package api

import (
	"encoding/json"
	"fmt"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
)

// envelope is the defensive shape of a feed response. The platform
// wraps payloads inconsistently: some endpoints respond flat, others
// nest everything one level under "data".
type envelope struct {
	Count    *int            `json:"count"`
	Data     json.RawMessage `json:"data"`
	Paginate *paginateMeta   `json:"paginate"`
}

// paginateMeta is the optional pagination block.
type paginateMeta struct {
	CurrentPage int `json:"current_page"`
	PerPage     int `json:"per_page"`
	Total       int `json:"total"`
	LastPage    int `json:"last_page"`
}

// decodeCount reads the unread counter from a flat "count" field or a
// nested "data.count".
func decodeCount(body []byte) (int, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return 0, fmt.Errorf("decoding count response: %w", err)
	}
	if env.Count != nil {
		return *env.Count, nil
	}
	if len(env.Data) > 0 {
		var inner envelope
		if err := json.Unmarshal(env.Data, &inner); err == nil && inner.Count != nil {
			return *inner.Count, nil
		}
	}
	return 0, nil
}

// decodeList reads a notification list from a flat "data" array or a
// nested "data.data", along with whichever paginate block is present.
func decodeList(body []byte) ([]domain.Notification, *paginateMeta, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, nil, fmt.Errorf("decoding list response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil, env.Paginate, nil
	}

	var items []domain.Notification
	if err := json.Unmarshal(env.Data, &items); err == nil {
		return items, env.Paginate, nil
	}

	var inner envelope
	if err := json.Unmarshal(env.Data, &inner); err != nil {
		return nil, nil, fmt.Errorf("decoding nested list response: %w", err)
	}
	if len(inner.Data) > 0 {
		if err := json.Unmarshal(inner.Data, &items); err != nil {
			return nil, nil, fmt.Errorf("decoding nested list items: %w", err)
		}
	}
	meta := inner.Paginate
	if meta == nil {
		meta = env.Paginate
	}
	return items, meta, nil
}
