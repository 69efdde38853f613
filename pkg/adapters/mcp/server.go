package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/totem"
	"github.com/aretw0/totem/internal/logging"
	"github.com/aretw0/totem/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// CategoriesURI is the resource exposing the quiz categories.
const CategoriesURI = "totem://categories"

// StepResponse is the tool view of a quiz step. Option traits are not exposed.
type StepResponse struct {
	Index     int      `json:"index" jsonschema_description:"Zero-based index of the current question"`
	Total     int      `json:"total" jsonschema_description:"Number of questions in the quiz"`
	Completed bool     `json:"completed" jsonschema_description:"True once every question is answered"`
	Question  string   `json:"question,omitempty" jsonschema_description:"Text of the current question"`
	Options   []string `json:"options,omitempty" jsonschema_description:"Answer labels; submit the zero-based position"`
}

// ResultResponse is the resolved category of a session.
type ResultResponse struct {
	Key         string `json:"key"`
	Name        string `json:"name"`
	Description string `json:"description"`
	SponsorInfo string `json:"sponsor_info,omitempty"`
}

// Engine defines the quiz operations the MCP server needs.
type Engine interface {
	StartSession(ctx context.Context, userID string) (domain.Step, error)
	SubmitAnswer(ctx context.Context, userID string, option int) (domain.Step, error)
	SubmitAnswerAt(ctx context.Context, userID string, questionIndex, option int) (domain.Step, error)
	Result(ctx context.Context, userID string) (domain.Category, error)
	Quiz() *domain.Quiz
}

type userArgs struct {
	UserID string `json:"user_id"`
}

type answerArgs struct {
	UserID   string `json:"user_id"`
	Option   int    `json:"option"`
	Question *int   `json:"question,omitempty"`
}

// Server exposes the quiz engine as an MCP server.
type Server struct {
	engine    Engine
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, logger *slog.Logger) *Server {
	if logger == nil {
		logger = logging.NewNop()
	}
	s := &Server{
		engine:    engine,
		logger:    logger,
		mcpServer: server.NewMCPServer("totem-mcp", strings.TrimSpace(totem.Version)),
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the MCP protocol over SSE on addr until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, addr, baseURL string) error {
	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", sseServer.SSEHandler())
	mux.Handle("/message", sseServer.MessageHandler())

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP Server listening (SSE)", "address", addr)
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

func (s *Server) registerTools() {
	startTool := mcp.NewTool("start_quiz",
		mcp.WithDescription("Start (or restart) the quiz for a user and return the first question."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Opaque user identifier")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(startTool, mcp.NewStructuredToolHandler(s.handleStartQuiz))

	answerTool := mcp.NewTool("submit_answer",
		mcp.WithDescription("Answer the current question with the zero-based option position."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Opaque user identifier")),
		mcp.WithNumber("option", mcp.Required(), mcp.Description("Zero-based option position")),
		mcp.WithNumber("question", mcp.Description("Zero-based index of the question being answered; rejects the answer if the session has moved on")),
		mcp.WithOutputSchema[StepResponse](),
	)
	s.mcpServer.AddTool(answerTool, mcp.NewStructuredToolHandler(s.handleSubmitAnswer))

	resultTool := mcp.NewTool("get_result",
		mcp.WithDescription("Resolve the user's answers so far to a category."),
		mcp.WithString("user_id", mcp.Required(), mcp.Description("Opaque user identifier")),
		mcp.WithOutputSchema[ResultResponse](),
	)
	s.mcpServer.AddTool(resultTool, mcp.NewStructuredToolHandler(s.handleGetResult))
}

func (s *Server) handleStartQuiz(ctx context.Context, _ mcp.CallToolRequest, args userArgs) (StepResponse, error) {
	if args.UserID == "" {
		return StepResponse{}, fmt.Errorf("user_id is required")
	}
	step, err := s.engine.StartSession(ctx, args.UserID)
	if err != nil {
		s.logger.Error("MCP StartQuiz failed", "user_id", args.UserID, "error", err)
		return StepResponse{}, fmt.Errorf("start failed: %w", err)
	}
	return newStepResponse(step), nil
}

func (s *Server) handleSubmitAnswer(ctx context.Context, _ mcp.CallToolRequest, args answerArgs) (StepResponse, error) {
	if args.UserID == "" {
		return StepResponse{}, fmt.Errorf("user_id is required")
	}
	var (
		step domain.Step
		err  error
	)
	if args.Question != nil {
		step, err = s.engine.SubmitAnswerAt(ctx, args.UserID, *args.Question, args.Option)
	} else {
		step, err = s.engine.SubmitAnswer(ctx, args.UserID, args.Option)
	}
	if err != nil {
		s.logger.Warn("MCP SubmitAnswer rejected", "user_id", args.UserID, "option", args.Option, "error", err)
		return StepResponse{}, fmt.Errorf("answer rejected: %w", err)
	}
	return newStepResponse(step), nil
}

func (s *Server) handleGetResult(ctx context.Context, _ mcp.CallToolRequest, args userArgs) (ResultResponse, error) {
	if args.UserID == "" {
		return ResultResponse{}, fmt.Errorf("user_id is required")
	}
	c, err := s.engine.Result(ctx, args.UserID)
	if err != nil {
		return ResultResponse{}, fmt.Errorf("result unavailable: %w", err)
	}
	return ResultResponse{
		Key:         c.Key,
		Name:        c.DisplayName(),
		Description: c.Description,
		SponsorInfo: c.SponsorInfo,
	}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(CategoriesURI, "Quiz categories",
		mcp.WithMIMEType("application/json"),
	), s.readCategories)
}

func (s *Server) readCategories(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	jsonBytes, err := json.Marshal(s.engine.Quiz().Categories)
	if err != nil {
		return nil, fmt.Errorf("failed to encode categories: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      CategoriesURI,
			MIMEType: "application/json",
			Text:     string(jsonBytes),
		},
	}, nil
}

func newStepResponse(step domain.Step) StepResponse {
	r := StepResponse{
		Index:     step.Index,
		Total:     step.Total,
		Completed: step.Completed,
	}
	if step.Question != nil {
		r.Question = step.Question.Text
		for _, opt := range step.Question.Options {
			r.Options = append(r.Options, opt.Text)
		}
	}
	return r
}
