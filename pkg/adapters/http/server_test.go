package http_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpAdapter "github.com/aretw0/letluck/pkg/adapters/http"
	"github.com/aretw0/letluck/pkg/adapters/memory"
	"github.com/aretw0/letluck/pkg/clock"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
	"github.com/aretw0/letluck/pkg/recency"
	"github.com/aretw0/letluck/pkg/session"
	"github.com/aretw0/letluck/pkg/tree"
)

type backend struct {
	loader  *memory.Loader
	manager *session.Manager
	history *recency.Store
}

func (b *backend) Open(ctx context.Context, id string, opts ...session.Option) (*session.Session, error) {
	return b.manager.Open(ctx, id, opts...)
}
func (b *backend) Loader() ports.TreeLoader    { return b.loader }
func (b *backend) Manager() *session.Manager { return b.manager }
func (b *backend) Recency() *recency.Store   { return b.history }

func newBackend(t *testing.T) (*backend, *clock.Manual) {
	t.Helper()
	items := func(ids ...string) []domain.Item {
		out := make([]domain.Item, len(ids))
		for i, id := range ids {
			out[i] = domain.Item{ID: id, Label: strings.ToUpper(id[:1]) + id[1:]}
		}
		return out
	}
	loader := memory.NewLoader(tree.New().MustAddCategory(domain.Category{ID: "food", Label: "Food"},
		domain.NewBranch("food_root", "Food", "pasta", "pizza"),
		domain.NewLeaf("pasta", "Pasta", items("carbonara", "pesto", "amatriciana")...),
		domain.NewLeaf("pizza", "Pizza", items("margherita", "diavola")...),
	))
	clk := clock.NewManual(time.Unix(0, 0))
	history := recency.New(memory.NewRecency())
	manager := session.NewManager(memory.NewStore(), session.WithFactory(func(opts ...session.Option) *session.Session {
		base := []session.Option{session.WithClock(clk), session.WithReducedMotion(true)}
		return session.New(loader, history, append(base, opts...)...)
	}))
	t.Cleanup(func() { _ = manager.Close() })
	return &backend{loader: loader, manager: manager, history: history}, clk
}

func newHandler(t *testing.T, b *backend, opts ...httpAdapter.Option) http.Handler {
	t.Helper()
	h, err := httpAdapter.NewHandler(b, opts...)
	require.NoError(t, err)
	return h
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestServer_Meta(t *testing.T) {
	b, _ := newBackend(t)
	h := newHandler(t, b, httpAdapter.WithVersion("1.2.3\n"),
		httpAdapter.WithMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("letluck_decisions_total 0\n"))
		})))

	w := do(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	info := decode[httpAdapter.Info](t, do(t, h, http.MethodGet, "/info", nil))
	assert.Equal(t, "1.2.3", info.Version)
	assert.Equal(t, "1.0.0", info.APIVersion)

	cats := decode[[]domain.Category](t, do(t, h, http.MethodGet, "/categories", nil))
	require.Len(t, cats, 1)
	assert.Equal(t, "food", cats[0].ID)

	w = do(t, h, http.MethodGet, "/openapi.yaml", nil)
	assert.Contains(t, w.Body.String(), "openapi: 3.0.3")

	w = do(t, h, http.MethodGet, "/metrics", nil)
	assert.Contains(t, w.Body.String(), "letluck_decisions_total")
}

func TestServer_NavigateAndDecide(t *testing.T) {
	b, clk := newBackend(t)
	h := newHandler(t, b)

	w := do(t, h, http.MethodPost, "/sessions/alice/navigate", httpAdapter.NavigateRequest{Action: httpAdapter.NavigateSelect, Target: "food"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[httpAdapter.SessionResponse](t, w)
	assert.Equal(t, "food", resp.State.CategoryID)

	w = do(t, h, http.MethodPost, "/sessions/alice/navigate", httpAdapter.NavigateRequest{Action: httpAdapter.NavigateOpen, Target: "pasta"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = do(t, h, http.MethodPost, "/sessions/alice/decide", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decision := decode[httpAdapter.DecisionResponse](t, w)
	require.NotNil(t, decision.State.PendingResult)
	assert.Equal(t, decision.Winner.ID, decision.State.PendingResult.ID)

	w = do(t, h, http.MethodPost, "/sessions/alice/decide", nil)
	assert.Equal(t, http.StatusConflict, w.Code, "second decide while revealing")

	clk.RunAll(time.Minute)

	resp = decode[httpAdapter.SessionResponse](t, do(t, h, http.MethodGet, "/sessions/alice", nil))
	require.NotNil(t, resp.State.LastResult)
	assert.Equal(t, decision.Winner.ID, resp.State.LastResult.ID)
	assert.False(t, resp.Revealing)
	require.NotNil(t, resp.View.Result)
	assert.Equal(t, decision.Winner.ID, resp.View.Result.ItemID)

	recent := decode[map[string][]string](t, do(t, h, http.MethodGet, "/recent?leaf=pasta", nil))
	assert.Equal(t, []string{decision.Winner.ID}, recent["pasta"])

	ids := decode[[]string](t, do(t, h, http.MethodGet, "/sessions", nil))
	assert.Equal(t, []string{"alice"}, ids)

	w = do(t, h, http.MethodPost, "/sessions/alice/pick", httpAdapter.PickRequest{ItemID: "pesto"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp = decode[httpAdapter.SessionResponse](t, w)
	assert.Equal(t, "pesto", resp.State.LastResult.ID)

	w = do(t, h, http.MethodDelete, "/sessions/alice", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	ids = decode[[]string](t, do(t, h, http.MethodGet, "/sessions", nil))
	assert.Empty(t, ids)
}

func TestServer_Rejections(t *testing.T) {
	b, _ := newBackend(t)
	h := newHandler(t, b)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"OpenAtHome", http.MethodPost, "/sessions/bob/navigate", httpAdapter.NavigateRequest{Action: httpAdapter.NavigateOpen, Target: "pasta"}, http.StatusUnprocessableEntity},
		{"UnknownCategory", http.MethodPost, "/sessions/bob/navigate", httpAdapter.NavigateRequest{Action: httpAdapter.NavigateSelect, Target: "drinks"}, http.StatusNotFound},
		{"ReplayWithoutResult", http.MethodPost, "/sessions/bob/replay", nil, http.StatusUnprocessableEntity},
		{"UnknownAction", http.MethodPost, "/sessions/bob/navigate", map[string]string{"action": "fly"}, http.StatusBadRequest},
		{"MissingBody", http.MethodPost, "/sessions/bob/pick", nil, http.StatusBadRequest},
		{"BadSessionID", http.MethodGet, "/sessions/bad%20id%21", nil, http.StatusBadRequest},
		{"UnknownGraph", http.MethodGet, "/categories/drinks/graph", nil, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, h, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
			if w.Code != http.StatusOK {
				assert.NotEmpty(t, decode[httpAdapter.Error](t, w).Error)
			}
		})
	}
}

func TestServer_Graph(t *testing.T) {
	b, _ := newBackend(t)
	h := newHandler(t, b)

	do(t, h, http.MethodPost, "/sessions/carol/navigate", httpAdapter.NavigateRequest{Action: httpAdapter.NavigateSelect, Target: "food"})

	w := do(t, h, http.MethodGet, "/categories/food/graph?session_id=carol", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "graph TD\n"))
	assert.Contains(t, body, "food_root --> pasta")
	assert.Contains(t, body, "class food_root current;")
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusConflict, httpAdapter.StatusFor(session.ErrTransitionInProgress))
	assert.Equal(t, http.StatusNotFound, httpAdapter.StatusFor(domain.ErrSessionNotFound))
	assert.Equal(t, http.StatusUnprocessableEntity, httpAdapter.StatusFor(session.ErrNoOutcome))
	assert.Equal(t, http.StatusServiceUnavailable, httpAdapter.StatusFor(context.Canceled))
	assert.Equal(t, http.StatusInternalServerError, httpAdapter.StatusFor(errors.New("boom")))
}

func TestServer_SubscribeEvents(t *testing.T) {
	b, clk := newBackend(t)
	srv := httptest.NewServer(newHandler(t, b))
	defer srv.Close()

	do(t, srv.Config.Handler, http.MethodPost, "/sessions/dave/navigate", httpAdapter.NavigateRequest{Action: httpAdapter.NavigateSelect, Target: "food"})
	do(t, srv.Config.Handler, http.MethodPost, "/sessions/dave/navigate", httpAdapter.NavigateRequest{Action: httpAdapter.NavigateOpen, Target: "pizza"})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/sessions/dave/events?watch=view,collapse", nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan string, 128)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			if name, ok := strings.CutPrefix(scanner.Text(), "event: "); ok {
				events <- name
			}
		}
	}()

	next := func() string {
		select {
		case name, ok := <-events:
			require.True(t, ok, "stream closed")
			return name
		case <-ctx.Done():
			t.Fatal("timed out waiting for event")
			return ""
		}
	}
	assert.Equal(t, "ping", next())
	assert.Equal(t, httpAdapter.EventView, next())

	w := do(t, srv.Config.Handler, http.MethodPost, "/sessions/dave/decide", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	clk.RunAll(time.Minute)

	for {
		name := next()
		assert.NotEqual(t, httpAdapter.EventHighlight, name, "filtered out")
		if name == httpAdapter.EventCollapse {
			break
		}
	}
}
