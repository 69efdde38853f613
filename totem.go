package totem

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/totem/internal/logging"
	"github.com/aretw0/totem/internal/runtime"
	"github.com/aretw0/totem/pkg/adapters/memory"
	"github.com/aretw0/totem/pkg/catalog"
	"github.com/aretw0/totem/pkg/domain"
	"github.com/aretw0/totem/pkg/ports"
	"github.com/aretw0/totem/pkg/session"
)

// Engine is the high-level entry point for the Totem library.
// It wraps the internal runtime and provides a simplified API for consumers.
type Engine struct {
	runtime *runtime.Engine
	manager *session.Manager

	quiz        *domain.Quiz
	catalogPath string
	store       ports.SessionStore
	locker      ports.DistributedLocker
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithQuiz uses an already loaded quiz instead of the built-in one.
func WithQuiz(q *domain.Quiz) Option {
	return func(e *Engine) {
		e.quiz = q
	}
}

// WithCatalogPath loads the quiz from a YAML or JSON file.
func WithCatalogPath(path string) Option {
	return func(e *Engine) {
		e.catalogPath = path
	}
}

// WithStore injects a custom SessionStore. The default keeps sessions in memory.
func WithStore(store ports.SessionStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// WithLocker enables distributed locking across replicas.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(e *Engine) {
		e.locker = locker
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls add up.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes a new Totem Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if eng.quiz == nil {
		q, err := catalog.LoadOrDefault(eng.catalogPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load catalog: %w", err)
		}
		eng.quiz = q
	} else if err := eng.quiz.Validate(); err != nil {
		return nil, err
	}

	if eng.store == nil {
		eng.store = memory.NewStore()
	}

	managerOpts := []session.Option{session.WithLogger(eng.logger)}
	if eng.locker != nil {
		managerOpts = append(managerOpts, session.WithLocker(eng.locker))
	}
	eng.manager = session.NewManager(eng.store, managerOpts...)

	eng.runtime = runtime.NewEngine(eng.quiz, eng.manager,
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
	)
	return eng, nil
}

// Quiz returns the quiz definition shared by all sessions.
func (e *Engine) Quiz() *domain.Quiz {
	return e.quiz
}

// Sessions returns the session manager, e.g. to list active users.
func (e *Engine) Sessions() *session.Manager {
	return e.manager
}

// StartSession creates (or resets) the user's session and returns the first question.
func (e *Engine) StartSession(ctx context.Context, userID string) (domain.Step, error) {
	return e.runtime.StartSession(ctx, userID)
}

// CurrentQuestion returns the question awaiting an answer, or a completed step.
func (e *Engine) CurrentQuestion(ctx context.Context, userID string) (domain.Step, error) {
	return e.runtime.CurrentQuestion(ctx, userID)
}

// SubmitAnswer answers the current question with the option at index option.
func (e *Engine) SubmitAnswer(ctx context.Context, userID string, option int) (domain.Step, error) {
	return e.runtime.SubmitAnswer(ctx, userID, option)
}

// SubmitAnswerAt answers question questionIndex, failing with domain.ErrInvalidOption
// if the session has already moved past it. Hosts whose buttons can be pressed twice use it.
func (e *Engine) SubmitAnswerAt(ctx context.Context, userID string, questionIndex, option int) (domain.Step, error) {
	return e.runtime.SubmitAnswerAt(ctx, userID, questionIndex, option)
}

// Result resolves the user's category from the answers given so far.
func (e *Engine) Result(ctx context.Context, userID string) (domain.Category, error) {
	return e.runtime.Result(ctx, userID)
}

// Share returns the share text and links for the user's result.
func (e *Engine) Share(ctx context.Context, userID, botUsername string) (domain.ShareCard, error) {
	return e.runtime.Share(ctx, userID, botUsername)
}

// Session returns a snapshot of the user's session.
func (e *Engine) Session(ctx context.Context, userID string) (*domain.Session, error) {
	return e.runtime.Session(ctx, userID)
}
