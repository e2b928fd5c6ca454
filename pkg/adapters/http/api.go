package http

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"

	"github.com/aretw0/letluck/pkg/domain"
)

// Error is the body of every rejected request.
type Error struct {
	Error string `json:"error"`
}

// Info describes the running build.
type Info struct {
	App        string `json:"app"`
	Version    string `json:"version"`
	APIVersion string `json:"api_version"`
}

// NavigateRequest moves a session through the tree.
type NavigateRequest struct {
	Action NavigateAction `json:"action"`
	Target string         `json:"target,omitempty"`
	Index  *int           `json:"index,omitempty"`
}

// NavigateAction enumerates NavigateRequest.Action.
type NavigateAction string

const (
	NavigateSelect NavigateAction = "select"
	NavigateOpen   NavigateAction = "open"
	NavigateBack   NavigateAction = "back"
	NavigateHome   NavigateAction = "home"
	NavigateJump   NavigateAction = "jump"
)

// PickRequest chooses an item by hand.
type PickRequest struct {
	ItemID string `json:"item_id"`
}

// SessionResponse is the state of a session and the view on screen.
type SessionResponse struct {
	State         *domain.NavigationState `json:"state"`
	View          domain.View             `json:"view"`
	Revealing     bool                    `json:"revealing"`
	Transitioning bool                    `json:"transitioning"`
}

// DecisionResponse carries the winner while its reveal runs.
type DecisionResponse struct {
	Winner domain.Item             `json:"winner"`
	State  *domain.NavigationState `json:"state"`
}

// GetCategoryGraphParams are the query parameters of GET /categories/{categoryId}/graph.
type GetCategoryGraphParams struct {
	SessionID *string `json:"session_id,omitempty"`
}

// GetRecentParams are the query parameters of GET /recent.
type GetRecentParams struct {
	Leaf *string `json:"leaf,omitempty"`
}

// SubscribeEventsParams are the query parameters of GET /sessions/{sessionId}/events.
type SubscribeEventsParams struct {
	Watch *string `json:"watch,omitempty"`
}

// ServerInterface lists one method per operation of api/openapi.yaml.
type ServerInterface interface {
	GetHealth(w http.ResponseWriter, r *http.Request)
	GetInfo(w http.ResponseWriter, r *http.Request)
	ListCategories(w http.ResponseWriter, r *http.Request)
	GetCategoryGraph(w http.ResponseWriter, r *http.Request, categoryID string, params GetCategoryGraphParams)
	GetRecent(w http.ResponseWriter, r *http.Request, params GetRecentParams)
	ListSessions(w http.ResponseWriter, r *http.Request)
	GetSession(w http.ResponseWriter, r *http.Request, sessionID string)
	DeleteSession(w http.ResponseWriter, r *http.Request, sessionID string)
	Navigate(w http.ResponseWriter, r *http.Request, sessionID string)
	Decide(w http.ResponseWriter, r *http.Request, sessionID string)
	Replay(w http.ResponseWriter, r *http.Request, sessionID string)
	Pick(w http.ResponseWriter, r *http.Request, sessionID string)
	SubscribeEvents(w http.ResponseWriter, r *http.Request, sessionID string, params SubscribeEventsParams)
}

// serverWrapper binds path and query parameters before calling the handler.
type serverWrapper struct {
	handler ServerInterface
}

func (sw *serverWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var value string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &value,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid format for parameter %s: %w", name, err))
		return "", false
	}
	return value, true
}

func (sw *serverWrapper) queryParam(w http.ResponseWriter, r *http.Request, name string, dest **string) bool {
	if err := runtime.BindQueryParameter("form", true, false, name, r.URL.Query(), dest); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid format for parameter %s: %w", name, err))
		return false
	}
	return true
}

func (sw *serverWrapper) withSession(fn func(w http.ResponseWriter, r *http.Request, sessionID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := sw.pathParam(w, r, "sessionId")
		if !ok {
			return
		}
		fn(w, r, id)
	}
}

func (sw *serverWrapper) GetCategoryGraph(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := sw.pathParam(w, r, "categoryId")
	if !ok {
		return
	}
	var params GetCategoryGraphParams
	if !sw.queryParam(w, r, "session_id", &params.SessionID) {
		return
	}
	sw.handler.GetCategoryGraph(w, r, categoryID, params)
}

func (sw *serverWrapper) GetRecent(w http.ResponseWriter, r *http.Request) {
	var params GetRecentParams
	if !sw.queryParam(w, r, "leaf", &params.Leaf) {
		return
	}
	sw.handler.GetRecent(w, r, params)
}

func (sw *serverWrapper) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	id, ok := sw.pathParam(w, r, "sessionId")
	if !ok {
		return
	}
	var params SubscribeEventsParams
	if !sw.queryParam(w, r, "watch", &params.Watch) {
		return
	}
	sw.handler.SubscribeEvents(w, r, id, params)
}

// HandlerFromMux registers every operation of si on r.
func HandlerFromMux(si ServerInterface, r chi.Router) http.Handler {
	sw := &serverWrapper{handler: si}

	r.Get("/health", si.GetHealth)
	r.Get("/info", si.GetInfo)
	r.Get("/categories", si.ListCategories)
	r.Get("/categories/{categoryId}/graph", sw.GetCategoryGraph)
	r.Get("/recent", sw.GetRecent)
	r.Get("/sessions", si.ListSessions)
	r.Get("/sessions/{sessionId}", sw.withSession(si.GetSession))
	r.Delete("/sessions/{sessionId}", sw.withSession(si.DeleteSession))
	r.Post("/sessions/{sessionId}/navigate", sw.withSession(si.Navigate))
	r.Post("/sessions/{sessionId}/decide", sw.withSession(si.Decide))
	r.Post("/sessions/{sessionId}/replay", sw.withSession(si.Replay))
	r.Post("/sessions/{sessionId}/pick", sw.withSession(si.Pick))
	r.Get("/sessions/{sessionId}/events", sw.SubscribeEvents)
	return r
}
