// Package http exposes sessions over a JSON API with a server-sent event stream
// of renderer callbacks. Routes follow api/openapi.yaml.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/letluck/api"
	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/internal/presentation/graph"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
	"github.com/aretw0/letluck/pkg/recency"
	"github.com/aretw0/letluck/pkg/session"
)

// Backend is what the server needs from the application.
type Backend interface {
	Open(ctx context.Context, id string, opts ...session.Option) (*session.Session, error)
	Loader() ports.TreeLoader
	Manager() *session.Manager
	Recency() *recency.Store
}

// Server implements ServerInterface over a Backend.
type Server struct {
	Backend Backend
	Streams *StreamManager

	version    string
	apiVersion string
	logger     *slog.Logger
	metrics    http.Handler
}

var _ ServerInterface = (*Server)(nil)

// Option configures the handler.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version reported by /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// WithMetrics mounts h on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// NewHandler creates the HTTP handler for backend.
func NewHandler(backend Backend, opts ...Option) (http.Handler, error) {
	server := &Server{
		Backend: backend,
		version: "dev",
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}
	server.Streams = NewStreamManager(server.logger)

	doc, err := GetSwagger()
	if err != nil {
		return nil, err
	}
	server.apiVersion = doc.Info.Version
	validate, err := RequestValidator(doc)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)
	r.Use(validate)

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(api.Spec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(swaggerHTML))
	})
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	return HandlerFromMux(server, r), nil
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>letluck API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// session opens id with a renderer that feeds its event stream.
func (s *Server) session(ctx context.Context, id string) (*session.Session, error) {
	return s.Backend.Open(ctx, id, session.WithRenderer(s.Streams.Renderer(id)))
}

func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Info{
		App:        "letluck-http",
		Version:    strings.TrimSpace(s.version),
		APIVersion: s.apiVersion,
	})
}

func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats := s.Backend.Loader().Categories()
	if cats == nil {
		cats = []domain.Category{}
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) GetCategoryGraph(w http.ResponseWriter, r *http.Request, categoryID string, params GetCategoryGraphParams) {
	loader := s.Backend.Loader()
	rootID := loader.RootID(categoryID)
	if rootID == "" {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown category %q", categoryID))
		return
	}

	var overlay *graph.GraphOverlay
	if params.SessionID != nil {
		state, err := s.Backend.Manager().Load(r.Context(), *params.SessionID)
		if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
			s.fail(w, err)
			return
		}
		if state != nil && state.CategoryID == categoryID {
			overlay = graph.OverlayFromState(state)
		}
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(graph.GenerateMermaid(rootID, graph.Reachable(loader, categoryID), overlay)))
}

func (s *Server) GetRecent(w http.ResponseWriter, r *http.Request, params GetRecentParams) {
	history := s.Backend.Recency()
	if params.Leaf != nil {
		ids := history.Get(r.Context(), *params.Leaf)
		if ids == nil {
			ids = []string{}
		}
		writeJSON(w, http.StatusOK, map[string][]string{*params.Leaf: ids})
		return
	}
	writeJSON(w, http.StatusOK, history.Snapshot(r.Context()))
}

func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Backend.Manager().List(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, ids)
}

func (s *Server) GetSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	sess, err := s.session(r.Context(), sessionID)
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, r, sess)
}

func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request, sessionID string) {
	if err := s.Backend.Manager().Delete(r.Context(), sessionID); err != nil {
		s.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) Navigate(w http.ResponseWriter, r *http.Request, sessionID string) {
	var body NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	sess, err := s.session(r.Context(), sessionID)
	if err != nil {
		s.fail(w, err)
		return
	}

	ctx := r.Context()
	switch body.Action {
	case NavigateSelect:
		err = sess.SelectCategory(ctx, body.Target)
	case NavigateOpen:
		err = sess.Open(ctx, body.Target)
	case NavigateBack:
		err = sess.Back(ctx)
	case NavigateHome:
		err = sess.Home(ctx)
	case NavigateJump:
		if body.Index == nil {
			writeError(w, http.StatusBadRequest, errors.New("jump needs an index"))
			return
		}
		err = sess.JumpTo(ctx, *body.Index)
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown action %q", body.Action))
		return
	}
	if err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, r, sess)
}

func (s *Server) Decide(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.decide(w, r, sessionID, (*session.Session).Decide)
}

func (s *Server) Replay(w http.ResponseWriter, r *http.Request, sessionID string) {
	s.decide(w, r, sessionID, (*session.Session).Replay)
}

func (s *Server) decide(w http.ResponseWriter, r *http.Request, sessionID string, fn func(*session.Session, context.Context) (session.Decision, error)) {
	sess, err := s.session(r.Context(), sessionID)
	if err != nil {
		s.fail(w, err)
		return
	}
	decision, err := fn(sess, r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, DecisionResponse{Winner: decision.Winner, State: decision.State})
}

func (s *Server) Pick(w http.ResponseWriter, r *http.Request, sessionID string) {
	var body PickRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	sess, err := s.session(r.Context(), sessionID)
	if err != nil {
		s.fail(w, err)
		return
	}
	if _, err := sess.Pick(r.Context(), body.ItemID); err != nil {
		s.fail(w, err)
		return
	}
	s.respond(w, r, sess)
}

// SubscribeEvents streams renderer callbacks of a session as server-sent events.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, sessionID string, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, errors.New("streaming not supported"))
		return
	}
	sess, err := s.session(r.Context(), sessionID)
	if err != nil {
		s.fail(w, err)
		return
	}

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	keep := watchFilter(params.Watch)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")

	if keep(EventView) {
		if view, err := sess.View(r.Context()); err == nil {
			if data, err := json.Marshal(view); err == nil {
				writeEvent(w, Event{Name: EventView, Data: string(data)})
			}
		}
	}
	flusher.Flush()

	s.logger.Info("SSE client subscribed", "session_id", sessionID)
	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE client disconnected", "session_id", sessionID)
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if !keep(ev.Name) {
				continue
			}
			writeEvent(w, ev)
			flusher.Flush()
		}
	}
}

func watchFilter(watch *string) func(string) bool {
	if watch == nil || strings.TrimSpace(*watch) == "" {
		return func(string) bool { return true }
	}
	set := make(map[string]bool)
	for _, name := range strings.Split(*watch, ",") {
		set[strings.TrimSpace(name)] = true
	}
	return func(name string) bool { return set[name] }
}

func writeEvent(w http.ResponseWriter, ev Event) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, sess *session.Session) {
	state, err := sess.State(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	view, err := sess.View(r.Context())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		State:         state,
		View:          view,
		Revealing:     sess.Revealing(),
		Transitioning: sess.Transitioning(),
	})
}

// fail maps session errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("Request failed", "err", err)
	}
	writeError(w, status, err)
}

// StatusFor returns the HTTP status of a session error.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, session.ErrRevealInProgress), errors.Is(err, session.ErrTransitionInProgress):
		return http.StatusConflict
	case errors.Is(err, session.ErrUnknownNode), errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNoCategory), errors.Is(err, session.ErrNotAtLeaf),
		errors.Is(err, session.ErrNoResult), errors.Is(err, session.ErrNoOutcome):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, Error{Error: err.Error()})
}
