// Package mcp exposes the trendline engine as a Model Context Protocol server.
package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/trendline"
	"github.com/aretw0/trendline/internal/presentation/graph"
	"github.com/aretw0/trendline/pkg/domain"
	"github.com/aretw0/trendline/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	graphURI      = "trendline://graph"
	mermaidURI    = "trendline://graph/mermaid"
	reportURIBase = "trendline://reports/"
)

// Engine is the subset of the trendline facade exposed as tools.
type Engine interface {
	SummarizeWith(ctx context.Context, query string, overrides domain.Config) (*domain.Report, error)
	Report(ctx context.Context, runID string) (*domain.Report, error)
	Reports(ctx context.Context) ([]string, error)
	Describe() []domain.StepNode
}

// SummarizeArgs are the arguments of the summarize_trending tool.
type SummarizeArgs struct {
	Query     string `json:"query,omitempty"`
	ItemCount int    `json:"item_count,omitempty"`
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine     Engine
	assistants ports.AssistantDirectory
	logger     *slog.Logger
	mcpServer  *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithAssistants enables the list_assistants tool.
func WithAssistants(dir ports.AssistantDirectory) Option {
	return func(s *Server) {
		s.assistants = dir
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		mcpServer: server.NewMCPServer("trendline-mcp", strings.TrimSpace(trendline.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE starts the server on the given port using SSE and stops when ctx is done.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", s.corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", s.corsMiddleware(sseServer.MessageHandler()))

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

		s.logger.Info("shutting down MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.logger.Debug("CORS middleware", "method", r.Method, "path", r.URL.Path)
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	summarizeTool := mcp.NewTool("summarize_trending",
		mcp.WithDescription("Fetch recently created GitHub repositories, analyze each one and return a summary report."),
		mcp.WithString("query", mcp.Description("Free-form label recorded with the report (optional)")),
		mcp.WithNumber("item_count", mcp.Min(1), mcp.Description("Number of repositories to analyze (optional)")),
		mcp.WithOutputSchema[domain.Report](),
	)
	s.mcpServer.AddTool(summarizeTool, mcp.NewStructuredToolHandler(s.handleSummarize))

	s.mcpServer.AddTool(mcp.NewTool("get_report",
		mcp.WithDescription("Get the markdown of a stored report."),
		mcp.WithString("run_id", mcp.Required(), mcp.Description("ID of the run that produced the report")),
	), s.handleGetReport)

	s.mcpServer.AddTool(mcp.NewTool("list_reports",
		mcp.WithDescription("List the run IDs of all stored reports."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ids, err := s.engine.Reports(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		return jsonResult(ids)
	})

	s.mcpServer.AddTool(mcp.NewTool("list_assistants",
		mcp.WithDescription("List the assistants deployed on the configured agent server."),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if s.assistants == nil {
			return mcp.NewToolResultError("no assistant directory configured"), nil
		}
		list, err := s.assistants.ListAssistants(ctx)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("list failed: %v", err)), nil
		}
		return jsonResult(list)
	})

	s.mcpServer.AddTool(mcp.NewTool("get_graph",
		mcp.WithDescription("Get the step graph definition for introspection."),
		mcp.WithString("format", mcp.Enum("json", "mermaid"), mcp.Description("Output format (default json)")),
	), func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if request.GetString("format", "json") == "mermaid" {
			return mcp.NewToolResultText(graph.GenerateMermaid(s.engine.Describe(), nil)), nil
		}
		return jsonResult(s.engine.Describe())
	})
}

func (s *Server) handleSummarize(ctx context.Context, request mcp.CallToolRequest, args SummarizeArgs) (domain.Report, error) {
	var overrides domain.Config
	if args.ItemCount > 0 {
		overrides = domain.Config{"item_count": args.ItemCount}
	}

	report, err := s.engine.SummarizeWith(ctx, args.Query, overrides)
	if err != nil {
		s.logger.Error("summarize failed", "err", err)
		return domain.Report{}, fmt.Errorf("summarize failed: %w", err)
	}
	return *report, nil
}

func (s *Server) handleGetReport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	runID, err := request.RequireString("run_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	report, err := s.engine.Report(ctx, runID)
	if errors.Is(err, domain.ErrReportNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("report %s not found", runID)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("load failed: %v", err)), nil
	}
	return mcp.NewToolResultText(report.Content), nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(graphURI, "Step Graph Definition",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		data, err := json.Marshal(s.engine.Describe())
		if err != nil {
			return nil, fmt.Errorf("failed to encode graph: %w", err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: graphURI, MIMEType: "application/json", Text: string(data)},
		}, nil
	})

	s.mcpServer.AddResource(mcp.NewResource(mermaidURI, "Step Graph Diagram",
		mcp.WithMIMEType("text/plain"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: mermaidURI, MIMEType: "text/plain", Text: graph.GenerateMermaid(s.engine.Describe(), nil)},
		}, nil
	})

	s.mcpServer.AddResourceTemplate(mcp.NewResourceTemplate(reportURIBase+"{run_id}", "Stored Report",
		mcp.WithTemplateMIMEType("text/markdown"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		uri := request.Params.URI
		runID := strings.TrimPrefix(uri, reportURIBase)
		report, err := s.engine.Report(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to load report %s: %w", runID, err)
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{URI: uri, MIMEType: "text/markdown", Text: report.Content},
		}, nil
	})
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encode failed: %v", err)), nil
	}
	return mcp.NewToolResultText(string(data)), nil
}
