// Package api provides the HTTP client for the platform notification feed.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
	"github.com/rollcallhq/rollcall-notify/internal/ports"
)

// ErrTransport indicates a network or HTTP-level failure. The feed
// client does not distinguish 4xx from 5xx.
var ErrTransport = errors.New("feed transport failure")

// Client is a thin HTTP client for the platform's notification feed.
// It handles Bearer token authentication, JSON marshaling, and the
// defensive envelope normalization the feed requires: counts may be
// nested or flat, lists may be nested or flat, and pagination metadata
// is optional.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new feed client. The baseURL should be the root
// URL of the platform (e.g. https://rollcall.example.com). The token
// is used for Bearer authentication and may be empty.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// UnreadCount reads the server-side unread counter.
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/notifications/unread-count", nil)
	if err != nil {
		return 0, err
	}
	return decodeCount(body)
}

// Latest reads up to limit most-recent notifications.
func (c *Client) Latest(ctx context.Context, limit int) ([]domain.Notification, error) {
	path := "/api/notifications/latest?limit=" + strconv.Itoa(limit)
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	items, _, err := decodeList(body)
	return items, err
}

// List issues a paginated, filtered read of the full feed. Pagination
// metadata reported by the server is adopted; fields the server omits
// fall back to the requested values.
func (c *Client) List(ctx context.Context, params ports.ListParams) (ports.ListResult, error) {
	q := url.Values{}
	q.Set("status", params.Status.String())
	q.Set("page", strconv.Itoa(params.Page))
	q.Set("per_page", strconv.Itoa(params.PerPage))
	body, err := c.do(ctx, http.MethodGet, "/api/notifications?"+q.Encode(), nil)
	if err != nil {
		return ports.ListResult{}, err
	}
	items, meta, err := decodeList(body)
	if err != nil {
		return ports.ListResult{}, err
	}
	res := ports.ListResult{
		Items:    items,
		Page:     params.Page,
		PerPage:  params.PerPage,
		Total:    len(items),
		LastPage: 1,
	}
	if meta != nil {
		if meta.CurrentPage > 0 {
			res.Page = meta.CurrentPage
		}
		if meta.PerPage > 0 {
			res.PerPage = meta.PerPage
		}
		if meta.Total > 0 {
			res.Total = meta.Total
		}
		if meta.LastPage > 0 {
			res.LastPage = meta.LastPage
		}
	}
	return res, nil
}

// MarkRead confirms a single read mark with the remote store.
func (c *Client) MarkRead(ctx context.Context, id string) error {
	path := "/api/notifications/" + url.PathEscape(id) + "/read"
	_, err := c.do(ctx, http.MethodPatch, path, nil)
	return err
}

// MarkAllRead confirms a mark-all with the remote store.
func (c *Client) MarkAllRead(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPatch, "/api/notifications/read-all", nil)
	return err
}

// Delete removes one notification remotely.
func (c *Client) Delete(ctx context.Context, id string) error {
	path := "/api/notifications/" + url.PathEscape(id)
	_, err := c.do(ctx, http.MethodDelete, path, nil)
	return err
}

// do builds the request, handles auth, and returns the raw response
// body. Any network error or non-2xx status wraps ErrTransport.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var bodyReader io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: reading body: %v", ErrTransport, method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s %s: status %d", ErrTransport, method, path, resp.StatusCode)
	}
	return body, nil
}
