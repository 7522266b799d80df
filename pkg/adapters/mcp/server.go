package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/stepwise"
	"github.com/aretw0/stepwise/internal/logging"
	"github.com/aretw0/stepwise/pkg/runner"
	"github.com/aretw0/stepwise/pkg/wizard"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// WizardURI is the resource describing the wizard's steps.
const WizardURI = "stepwise://wizard"

// Engine is the part of *stepwise.Engine the MCP server drives.
type Engine interface {
	Index() string
	Show(ctx context.Context, sessionID, key string) (*stepwise.View, error)
	Update(ctx context.Context, sessionID, key string, params map[string]any) (*stepwise.Outcome, error)
	Review(ctx context.Context, sessionID string) (*stepwise.Review, error)
	Reset(ctx context.Context, sessionID string) error
	Registry() *wizard.Registry
}

// StepDescription is one entry of the wizard resource.
type StepDescription struct {
	Key         string   `json:"key"`
	Title       string   `json:"title"`
	Attributes  []string `json:"attributes"`
	Personal    bool     `json:"personal"`
	Conditional bool     `json:"conditional"`
}

// ResetResponse is the output of reset_session.
type ResetResponse struct {
	SessionID string `json:"session_id" jsonschema_description:"The session whose answers were discarded"`
	Index     string `json:"index" jsonschema_description:"The key to start again at"`
}

// Server exposes the Engine as MCP tools.
type Server struct {
	engine    Engine
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates an MCP server named after the wizard.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		mcpServer: server.NewMCPServer("stepwise-"+engine.Registry().Name(), strings.TrimSpace(stepwise.Version)),
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves over SSE on port until ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(fmt.Sprintf("http://localhost:%d", port)))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())
	httpServer := &http.Server{Addr: addr, Handler: mux}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
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

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool("show_step",
		mcp.WithDescription("Describe a wizard step and the session's current answers. Omit key to start at the first step."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("key", mcp.Description("Step key (optional)")),
		mcp.WithOutputSchema[stepwise.View](),
	), mcp.NewStructuredToolHandler(s.handleShow))

	s.mcpServer.AddTool(mcp.NewTool("update_step",
		mcp.WithDescription("Submit answers for a step. Returns invalid (with errors), advance (with next_key) or completed."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithString("key", mcp.Required(), mcp.Description("Step key")),
		mcp.WithString("attributes", mcp.Required(), mcp.Description("JSON object of attribute values")),
		mcp.WithOutputSchema[stepwise.Outcome](),
	), mcp.NewStructuredToolHandler(s.handleUpdate))

	s.mcpServer.AddTool(mcp.NewTool("review",
		mcp.WithDescription("List the answers of every non-skipped step and which steps are still invalid."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[stepwise.Review](),
	), mcp.NewStructuredToolHandler(s.handleReview))

	s.mcpServer.AddTool(mcp.NewTool("reset_session",
		mcp.WithDescription("Discard every answer of the session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Session identifier")),
		mcp.WithOutputSchema[ResetResponse](),
	), mcp.NewStructuredToolHandler(s.handleReset))
}

func sessionArg(args map[string]interface{}) (string, error) {
	id, _ := args["session_id"].(string)
	if id == "" {
		return "", errors.New("session_id is required")
	}
	return id, nil
}

func (s *Server) handleShow(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (stepwise.View, error) {
	id, err := sessionArg(args)
	if err != nil {
		return stepwise.View{}, err
	}
	key, _ := args["key"].(string)
	if key == "" {
		key = s.engine.Index()
	}
	view, err := s.engine.Show(ctx, id, key)
	if err != nil {
		return stepwise.View{}, fmt.Errorf("show failed: %w", err)
	}
	return *view, nil
}

func (s *Server) handleUpdate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (stepwise.Outcome, error) {
	id, err := sessionArg(args)
	if err != nil {
		return stepwise.Outcome{}, err
	}
	key, _ := args["key"].(string)

	attrs := map[string]any{}
	if raw, ok := args["attributes"].(string); ok && raw != "" {
		dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
		dec.UseNumber()
		if err := dec.Decode(&attrs); err != nil {
			return stepwise.Outcome{}, fmt.Errorf("attributes must be a JSON object: %w", err)
		}
	}

	attrs, err = runner.SanitizeParams(attrs)
	if err != nil {
		return stepwise.Outcome{}, err
	}

	out, err := s.engine.Update(ctx, id, key, attrs)
	if err != nil {
		s.logger.Error("MCP update_step failed", "session_id", id, "step", key, "err", err)
		return stepwise.Outcome{}, fmt.Errorf("update failed: %w", err)
	}
	return *out, nil
}

func (s *Server) handleReview(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (stepwise.Review, error) {
	id, err := sessionArg(args)
	if err != nil {
		return stepwise.Review{}, err
	}
	review, err := s.engine.Review(ctx, id)
	if err != nil {
		return stepwise.Review{}, fmt.Errorf("review failed: %w", err)
	}
	return *review, nil
}

func (s *Server) handleReset(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (ResetResponse, error) {
	id, err := sessionArg(args)
	if err != nil {
		return ResetResponse{}, err
	}
	if err := s.engine.Reset(ctx, id); err != nil {
		return ResetResponse{}, fmt.Errorf("reset failed: %w", err)
	}
	return ResetResponse{SessionID: id, Index: s.engine.Index()}, nil
}

// Describe lists the wizard's steps in order.
func Describe(reg *wizard.Registry) []StepDescription {
	var out []StepDescription
	for _, def := range reg.IndexedSteps() {
		out = append(out, StepDescription{
			Key:         def.Key,
			Title:       def.Name(),
			Attributes:  def.AttributeNames(),
			Personal:    def.ContainsPersonalDetails,
			Conditional: def.Skip != nil,
		})
	}
	return out
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(WizardURI, "Wizard Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		jsonBytes, err := json.Marshal(Describe(s.engine.Registry()))
		if err != nil {
			return nil, fmt.Errorf("failed to describe wizard: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      WizardURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
