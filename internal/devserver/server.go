package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/websocket"

	"github.com/rollcallhq/rollcall-notify/internal/domain"
	"github.com/rollcallhq/rollcall-notify/internal/logging"
)

// EventNotificationCreated is the frame name broadcast when a seeded
// notification is created.
const EventNotificationCreated = "notification.created"

// Options configures the dev server.
type Options struct {
	// UserID is the identity every feed read resolves to. The dev
	// server serves a single user.
	UserID string
	// Token, when non-empty, must match the Authorization bearer token
	// and the websocket token query parameter.
	Token string
	Log   logging.Logger
}

// Server serves the notification feed API plus the push websocket.
type Server struct {
	store    *Store
	hub      *hub
	userID   string
	token    string
	log      logging.Logger
	upgrader websocket.Upgrader
	mux      *http.ServeMux
}

// NewServer wires a Server around the given store.
func NewServer(store *Store, opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = logging.Noop()
	}
	userID := opts.UserID
	if userID == "" {
		userID = "1"
	}
	s := &Server{
		store:  store,
		hub:    newHub(log),
		userID: userID,
		token:  opts.Token,
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		mux: http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/notifications/unread-count", s.auth(s.handleUnreadCount))
	s.mux.HandleFunc("GET /api/notifications/latest", s.auth(s.handleLatest))
	s.mux.HandleFunc("GET /api/notifications", s.auth(s.handleList))
	s.mux.HandleFunc("POST /api/notifications", s.auth(s.handleSeed))
	s.mux.HandleFunc("PATCH /api/notifications/read-all", s.auth(s.handleMarkAllRead))
	s.mux.HandleFunc("PATCH /api/notifications/{id}/read", s.auth(s.handleMarkRead))
	s.mux.HandleFunc("DELETE /api/notifications/{id}", s.auth(s.handleDelete))
	s.mux.HandleFunc("GET /ws", s.handleWS)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.token != "" && r.Header.Get("Authorization") != "Bearer "+s.token {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r)
	}
}

func (s *Server) handleUnreadCount(w http.ResponseWriter, r *http.Request) {
	count, err := s.store.UnreadCount(r.Context(), s.userID)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"count": count},
	})
}

func (s *Server) handleLatest(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	items, err := s.store.Latest(r.Context(), s.userID, limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"data": emptyToSlice(items)},
	})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	statusParam := q.Get("status")
	if statusParam == "" {
		statusParam = domain.StatusAll.String()
	}
	status, err := domain.ParseStatusFilter(statusParam)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 {
		perPage = 15
	}

	items, total, err := s.store.List(r.Context(), s.userID, status, page, perPage)
	if err != nil {
		s.fail(w, err)
		return
	}
	lastPage := (total + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{
			"data": emptyToSlice(items),
			"paginate": map[string]any{
				"current_page": page,
				"per_page":     perPage,
				"total":        total,
				"last_page":    lastPage,
			},
		},
	})
}

type seedRequest struct {
	UserID   string `json:"user_id"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	RoleCode string `json:"role_code"`
}

// handleSeed creates a notification and pushes it to the owner's
// private channel, mimicking the production fan-out.
func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	var req seedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" {
		req.UserID = s.userID
	}
	if req.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "title is required")
		return
	}

	n, err := s.store.Seed(r.Context(), req.UserID, req.Title, req.Content, req.RoleCode)
	if err != nil {
		s.fail(w, err)
		return
	}
	if err := s.hub.broadcast("notify.user."+req.UserID, EventNotificationCreated, n); err != nil {
		s.log.Warn("devserver: broadcast failed", "error", err)
	}
	writeJSON(w, http.StatusCreated, map[string]any{"data": n})
}

func (s *Server) handleMarkRead(w http.ResponseWriter, r *http.Request) {
	if err := s.store.MarkRead(r.Context(), s.userID, r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"ok": true}})
}

func (s *Server) handleMarkAllRead(w http.ResponseWriter, r *http.Request) {
	if err := s.store.MarkAllRead(r.Context(), s.userID); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"ok": true}})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.store.Delete(r.Context(), s.userID, r.PathValue("id")); err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": map[string]any{"ok": true}})
}

// handleWS upgrades the connection and parks it on the requested
// channel until the peer disconnects.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if s.token != "" && q.Get("token") != s.token {
		writeError(w, http.StatusUnauthorized, "invalid token")
		return
	}
	channel := q.Get("channel")
	if channel == "" {
		writeError(w, http.StatusBadRequest, "channel is required")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("devserver: websocket upgrade failed", "error", err)
		return
	}
	client := newWSClient(channel, conn, s.log)
	s.hub.register(client)
	go client.writePump()

	// Drain the read side so close frames are processed; the dev server
	// never expects inbound payloads.
	go func() {
		defer s.hub.unregister(client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	s.log.Error("devserver: request failed", "error", err)
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"message": msg})
}

func emptyToSlice(items []domain.Notification) []domain.Notification {
	if items == nil {
		return []domain.Notification{}
	}
	return items
}
