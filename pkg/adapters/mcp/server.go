// Package mcp exposes sessions as Model Context Protocol tools so an agent can
// browse the tree and let luck decide.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/aretw0/letluck/internal/logging"
	"github.com/aretw0/letluck/internal/presentation/graph"
	"github.com/aretw0/letluck/pkg/domain"
	"github.com/aretw0/letluck/pkg/ports"
	"github.com/aretw0/letluck/pkg/recency"
	"github.com/aretw0/letluck/pkg/session"
)

const (
	// DefaultSessionID is used by tools called without a session_id.
	DefaultSessionID = "mcp"

	treeURI       = "letluck://tree"
	graphTemplate = "letluck://graph/{category}"
	graphPrefix   = "letluck://graph/"

	settlePoll = 20 * time.Millisecond
)

// Backend is what the MCP server needs from the application.
type Backend interface {
	Open(ctx context.Context, id string, opts ...session.Option) (*session.Session, error)
	Loader() ports.TreeLoader
	Recency() *recency.Store
}

// Snapshot is the result of every session tool.
type Snapshot struct {
	State *domain.NavigationState `json:"state" jsonschema_description:"Position, breadcrumbs and results of the session"`
	View  domain.View             `json:"view" jsonschema_description:"Tiles and controls on screen"`
}

// DecisionResult is returned by decide once the reveal has landed.
type DecisionResult struct {
	Winner domain.Item             `json:"winner" jsonschema_description:"The item luck chose"`
	State  *domain.NavigationState `json:"state" jsonschema_description:"Session state with the committed result"`
}

// SessionArgs select the session a tool acts on.
type SessionArgs struct {
	SessionID string `json:"session_id"`
}

type targetArgs struct {
	SessionID string `json:"session_id"`
	Target    string `json:"target"`
}

type jumpArgs struct {
	SessionID string `json:"session_id"`
	Index     int    `json:"index"`
}

type decideArgs struct {
	SessionID string `json:"session_id"`
	Replay    bool   `json:"replay"`
}

type recentArgs struct {
	Leaf string `json:"leaf"`
}

// Server wraps a Backend and exposes it as an MCP server.
type Server struct {
	backend   Backend
	mcpServer *server.MCPServer
	logger    *slog.Logger
	version   string
	settle    func(ctx context.Context, s *session.Session) error
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithVersion sets the version announced to clients.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// WithSettle replaces how decide waits for the reveal to land.
func WithSettle(fn func(ctx context.Context, s *session.Session) error) Option {
	return func(s *Server) {
		s.settle = fn
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(backend Backend, opts ...Option) *Server {
	s := &Server{
		backend: backend,
		logger:  logging.NewNop(),
		version: "dev",
		settle:  pollSettle,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.mcpServer = server.NewMCPServer("letluck-mcp", s.version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on addr until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func pollSettle(ctx context.Context, s *session.Session) error {
	t := time.NewTicker(settlePoll)
	defer t.Stop()
	for s.Revealing() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return nil
}

func sessionOption() mcp.ToolOption {
	return mcp.WithString("session_id", mcp.Description("Session to act on (defaults to \"mcp\")"))
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("list_categories",
		mcp.WithDescription("List the top-level categories luck can decide from."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		data, err := json.Marshal(s.backend.Loader().Categories())
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(string(data)), nil
	})

	s.mcpServer.AddTool(mcp.NewTool("get_state",
		mcp.WithDescription("Show where a session is: breadcrumbs, tiles and the last result."),
		sessionOption(),
		mcp.WithOutputSchema[Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleGetState))

	s.mcpServer.AddTool(mcp.NewTool("select_category",
		mcp.WithDescription("Enter a category at its root node."),
		sessionOption(),
		mcp.WithString("target", mcp.Required(), mcp.Description("Category id")),
		mcp.WithOutputSchema[Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleSelectCategory))

	s.mcpServer.AddTool(mcp.NewTool("open_node",
		mcp.WithDescription("Open a child of the current node."),
		sessionOption(),
		mcp.WithString("target", mcp.Required(), mcp.Description("Child node id")),
		mcp.WithOutputSchema[Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleOpenNode))

	s.mcpServer.AddTool(mcp.NewTool("go_back",
		mcp.WithDescription("Go up one level; at a category root this goes home."),
		sessionOption(),
		mcp.WithOutputSchema[Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleBack))

	s.mcpServer.AddTool(mcp.NewTool("go_home",
		mcp.WithDescription("Return to the category list."),
		sessionOption(),
		mcp.WithOutputSchema[Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleHome))

	s.mcpServer.AddTool(mcp.NewTool("jump",
		mcp.WithDescription("Jump back to a breadcrumb by its zero-based index."),
		sessionOption(),
		mcp.WithNumber("index", mcp.Required(), mcp.Description("Breadcrumb index")),
		mcp.WithOutputSchema[Snapshot](),
	), mcp.NewStructuredToolHandler(s.handleJump))

	s.mcpServer.AddTool(mcp.NewTool("decide",
		mcp.WithDescription("Let luck decide from the current position and wait for the result."),
		sessionOption(),
		mcp.WithBoolean("replay", mcp.Description("Decide again from the same leaf")),
		mcp.WithOutputSchema[DecisionResult](),
	), mcp.NewStructuredToolHandler(s.handleDecide))

	s.mcpServer.AddTool(mcp.NewTool("pick",
		mcp.WithDescription("Choose an item of the current leaf by hand."),
		sessionOption(),
		mcp.WithString("target", mcp.Required(), mcp.Description("Item id")),
		mcp.WithOutputSchema[Snapshot](),
	), mcp.NewStructuredToolHandler(s.handlePick))

	s.mcpServer.AddTool(mcp.NewTool("recent",
		mcp.WithDescription("List recent picks of a leaf, most recent first. Without a leaf, list every leaf."),
		mcp.WithString("leaf", mcp.Description("Leaf node id")),
	), mcp.NewStructuredToolHandler(s.handleRecent))
}

func (s *Server) open(ctx context.Context, id string) (*session.Session, error) {
	if id == "" {
		id = DefaultSessionID
	}
	return s.backend.Open(ctx, id)
}

func (s *Server) snapshot(ctx context.Context, sess *session.Session) (Snapshot, error) {
	state, err := sess.State(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	view, err := sess.View(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Snapshot{State: state, View: view}, nil
}

// act opens the session, runs fn and returns the resulting snapshot.
func (s *Server) act(ctx context.Context, id string, fn func(*session.Session) error) (Snapshot, error) {
	sess, err := s.open(ctx, id)
	if err != nil {
		return Snapshot{}, err
	}
	if err := fn(sess); err != nil {
		return Snapshot{}, err
	}
	return s.snapshot(ctx, sess)
}

func (s *Server) handleGetState(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (Snapshot, error) {
	return s.act(ctx, args.SessionID, func(*session.Session) error { return nil })
}

func (s *Server) handleSelectCategory(ctx context.Context, _ mcp.CallToolRequest, args targetArgs) (Snapshot, error) {
	return s.act(ctx, args.SessionID, func(sess *session.Session) error {
		return sess.SelectCategory(ctx, args.Target)
	})
}

func (s *Server) handleOpenNode(ctx context.Context, _ mcp.CallToolRequest, args targetArgs) (Snapshot, error) {
	return s.act(ctx, args.SessionID, func(sess *session.Session) error {
		return sess.Open(ctx, args.Target)
	})
}

func (s *Server) handleBack(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (Snapshot, error) {
	return s.act(ctx, args.SessionID, func(sess *session.Session) error {
		return sess.Back(ctx)
	})
}

func (s *Server) handleHome(ctx context.Context, _ mcp.CallToolRequest, args SessionArgs) (Snapshot, error) {
	return s.act(ctx, args.SessionID, func(sess *session.Session) error {
		return sess.Home(ctx)
	})
}

func (s *Server) handleJump(ctx context.Context, _ mcp.CallToolRequest, args jumpArgs) (Snapshot, error) {
	return s.act(ctx, args.SessionID, func(sess *session.Session) error {
		return sess.JumpTo(ctx, args.Index)
	})
}

func (s *Server) handlePick(ctx context.Context, _ mcp.CallToolRequest, args targetArgs) (Snapshot, error) {
	return s.act(ctx, args.SessionID, func(sess *session.Session) error {
		_, err := sess.Pick(ctx, args.Target)
		return err
	})
}

func (s *Server) handleDecide(ctx context.Context, _ mcp.CallToolRequest, args decideArgs) (DecisionResult, error) {
	sess, err := s.open(ctx, args.SessionID)
	if err != nil {
		return DecisionResult{}, err
	}
	decide := sess.Decide
	if args.Replay {
		decide = sess.Replay
	}
	decision, err := decide(ctx)
	if err != nil {
		return DecisionResult{}, err
	}
	if err := s.settle(ctx, sess); err != nil {
		return DecisionResult{}, fmt.Errorf("reveal did not finish: %w", err)
	}
	state, err := sess.State(ctx)
	if err != nil {
		return DecisionResult{}, err
	}
	s.logger.Info("MCP decision", "session_id", sess.ID(), "item_id", decision.Winner.ID)
	return DecisionResult{Winner: decision.Winner, State: state}, nil
}

func (s *Server) handleRecent(ctx context.Context, _ mcp.CallToolRequest, args recentArgs) (map[string][]string, error) {
	history := s.backend.Recency()
	if args.Leaf != "" {
		ids := history.Get(ctx, args.Leaf)
		if ids == nil {
			ids = []string{}
		}
		return map[string][]string{args.Leaf: ids}, nil
	}
	return history.Snapshot(ctx), nil
}

// categoryTree is one category with every node reachable from its root.
type categoryTree struct {
	domain.Category
	RootID string        `json:"root_id"`
	Nodes  []domain.Node `json:"nodes"`
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(treeURI, "Category tree",
		mcp.WithResourceDescription("Every category with its reachable nodes"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		loader := s.backend.Loader()
		var out []categoryTree
		for _, c := range loader.Categories() {
			out = append(out, categoryTree{
				Category: c,
				RootID:   loader.RootID(c.ID),
				Nodes:    graph.Reachable(loader, c.ID),
			})
		}
		data, err := json.Marshal(out)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tree: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: treeURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(graphTemplate, "Category graph",
		mcp.WithTemplateDescription("Mermaid flowchart of one category"),
		mcp.WithTemplateMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		categoryID := strings.TrimPrefix(request.Params.URI, graphPrefix)
		loader := s.backend.Loader()
		rootID := loader.RootID(categoryID)
		if rootID == "" {
			return nil, fmt.Errorf("unknown category %q", categoryID)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      request.Params.URI,
				MIMEType: "text/plain",
				Text:     graph.GenerateMermaid(rootID, graph.Reachable(loader, categoryID), nil),
			},
		}, nil
	})
}
