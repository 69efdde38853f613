package http

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/totem/internal/logging"
	"github.com/aretw0/totem/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

//go:embed openapi.yaml
var openAPISpec []byte

// Engine defines the quiz operations the HTTP API exposes.
type Engine interface {
	StartSession(ctx context.Context, userID string) (domain.Step, error)
	CurrentQuestion(ctx context.Context, userID string) (domain.Step, error)
	SubmitAnswer(ctx context.Context, userID string, option int) (domain.Step, error)
	SubmitAnswerAt(ctx context.Context, userID string, questionIndex, option int) (domain.Step, error)
	Result(ctx context.Context, userID string) (domain.Category, error)
	Share(ctx context.Context, userID, botUsername string) (domain.ShareCard, error)
	Quiz() *domain.Quiz
}

// Server holds the handlers of the JSON API.
type Server struct {
	Engine  Engine
	Streams *StreamManager
	Logger  *slog.Logger
	metrics http.Handler
}

// Option configures the handler.
type Option func(*Server)

// WithMetrics mounts a Prometheus handler on /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithStreams serves SSE subscriptions from sm.
// Events only flow once sm.Hooks() is registered on the engine.
func WithStreams(sm *StreamManager) Option {
	return func(s *Server) {
		s.Streams = sm
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine Engine, opts ...Option) http.Handler {
	server := &Server{
		Engine:  engine,
		Streams: NewStreamManager(),
		Logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(server)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", server.GetHealth)
	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		_, _ = w.Write(openAPISpec)
	})
	if server.metrics != nil {
		r.Method(http.MethodGet, "/metrics", server.metrics)
	}

	r.Get("/categories", server.ListCategories)
	r.Route("/sessions/{userID}", func(r chi.Router) {
		r.Post("/", server.StartSession)
		r.Get("/question", server.CurrentQuestion)
		r.Post("/answers", server.SubmitAnswer)
		r.Get("/result", server.Result)
		r.Get("/share", server.Share)
		r.Get("/events", server.SubscribeEvents)
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// StartSession handles POST /sessions/{userID}.
func (s *Server) StartSession(w http.ResponseWriter, r *http.Request) {
	step, err := s.Engine.StartSession(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, newStepView(step))
}

// CurrentQuestion handles GET /sessions/{userID}/question.
func (s *Server) CurrentQuestion(w http.ResponseWriter, r *http.Request) {
	step, err := s.Engine.CurrentQuestion(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newStepView(step))
}

// AnswerRequest is the body of POST /sessions/{userID}/answers.
// When Question is set the answer is rejected unless that question is the current one.
type AnswerRequest struct {
	Option   *int `json:"option"`
	Question *int `json:"question,omitempty"`
}

// SubmitAnswer handles POST /sessions/{userID}/answers.
func (s *Server) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var body AnswerRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil || body.Option == nil {
		s.Logger.Warn("SubmitAnswer: Invalid request body", "error", err)
		s.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "body must be {\"option\": <int>}", Code: CodeBadRequest})
		return
	}

	userID := chi.URLParam(r, "userID")
	var (
		step domain.Step
		err  error
	)
	if body.Question != nil {
		step, err = s.Engine.SubmitAnswerAt(r.Context(), userID, *body.Question, *body.Option)
	} else {
		step, err = s.Engine.SubmitAnswer(r.Context(), userID, *body.Option)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, newStepView(step))
}

// Result handles GET /sessions/{userID}/result.
func (s *Server) Result(w http.ResponseWriter, r *http.Request) {
	c, err := s.Engine.Result(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, c)
}

// Share handles GET /sessions/{userID}/share?bot=<username>.
func (s *Server) Share(w http.ResponseWriter, r *http.Request) {
	card, err := s.Engine.Share(r.Context(), chi.URLParam(r, "userID"), r.URL.Query().Get("bot"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, card)
}

// ListCategories handles GET /categories.
func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Engine.Quiz().Categories)
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SubscribeEvents handles GET /sessions/{userID}/events (SSE).
// Every step the engine produces for the user is pushed as a JSON event, in state order.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	userID := chi.URLParam(r, "userID")
	ch, cancel := s.Streams.Subscribe(userID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.Logger.Debug("SSE: Subscribed", "user_id", userID)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: step\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// Error codes returned in ErrorResponse.Code.
const (
	CodeUnknownSession = "unknown_session"
	CodeInvalidOption  = "invalid_option"
	CodeNoTraits       = "no_traits"
	CodeBadRequest     = "bad_request"
	CodeInternal       = "internal"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := http.StatusInternalServerError, CodeInternal
	switch {
	case errors.Is(err, domain.ErrUnknownSession):
		status, code = http.StatusNotFound, CodeUnknownSession
	case errors.Is(err, domain.ErrInvalidOption):
		status, code = http.StatusUnprocessableEntity, CodeInvalidOption
	case errors.Is(err, domain.ErrNoTraitsRecorded):
		status, code = http.StatusConflict, CodeNoTraits
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		msg = "internal error"
	}
	s.writeJSON(w, status, ErrorResponse{Error: msg, Code: code})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

// StepView is the public shape of a step. Option traits are not exposed.
type StepView struct {
	Index     int           `json:"index"`
	Total     int           `json:"total"`
	Completed bool          `json:"completed"`
	Question  *QuestionView `json:"question,omitempty"`
}

// QuestionView is a question without scoring data.
type QuestionView struct {
	Text    string       `json:"text"`
	Options []OptionView `json:"options"`
}

// OptionView is a numbered answer label.
type OptionView struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

func newStepView(step domain.Step) StepView {
	v := StepView{
		Index:     step.Index,
		Total:     step.Total,
		Completed: step.Completed,
	}
	if step.Question != nil {
		q := &QuestionView{Text: step.Question.Text}
		for i, opt := range step.Question.Options {
			q.Options = append(q.Options, OptionView{Index: i, Text: strings.TrimSpace(opt.Text)})
		}
		v.Question = q
	}
	return v
}
