package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/totem/internal/logging"
	"github.com/aretw0/totem/pkg/domain"
	"github.com/aretw0/totem/pkg/session"
)

// Engine is the quiz state machine.
//
// A session is either awaiting question i (0 <= i < N) or completed (i == N).
// StartSession always resets to question 0; SubmitAnswer moves i to i+1.
// Every read-modify-write runs under the session manager's per-user lock.
type Engine struct {
	quiz     *domain.Quiz
	sessions *session.Manager
	hooks    domain.LifecycleHooks
	logger   *slog.Logger
	now      func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLogger sets the engine logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new engine over a validated quiz.
func NewEngine(quiz *domain.Quiz, sessions *session.Manager, opts ...EngineOption) *Engine {
	e := &Engine{
		quiz:     quiz,
		sessions: sessions,
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Quiz returns the shared, read-only quiz definition.
func (e *Engine) Quiz() *domain.Quiz {
	return e.quiz
}

// StartSession discards any previous session of the user and starts at the first question.
func (e *Engine) StartSession(ctx context.Context, userID string) (domain.Step, error) {
	now := e.now()
	s := domain.NewSession(userID, now)
	step := domain.StepFor(e.quiz, s)
	err := e.sessions.SaveThen(ctx, userID, s, func(ctx context.Context, _ *domain.Session) {
		if e.hooks.OnSessionStart != nil {
			e.hooks.OnSessionStart(ctx, &domain.SessionEvent{
				EventBase: e.event(domain.EventSessionStart, userID, now),
				Total:     e.quiz.Len(),
				Step:      step,
			})
		}
	})
	if err != nil {
		return domain.Step{}, fmt.Errorf("failed to start session: %w", err)
	}

	e.logger.Debug("session started", "user_id", userID)
	return step, nil
}

// CurrentQuestion returns the question awaiting an answer, or a completed step.
func (e *Engine) CurrentQuestion(ctx context.Context, userID string) (domain.Step, error) {
	s, err := e.load(ctx, userID)
	if err != nil {
		return domain.Step{}, err
	}
	return domain.StepFor(e.quiz, s), nil
}

// SubmitAnswer records the option chosen for the current question and advances.
//
// It fails with domain.ErrUnknownSession when the user never started, and with
// domain.ErrInvalidOption when option is out of range or the quiz is already
// completed. A failed submission leaves the session untouched.
func (e *Engine) SubmitAnswer(ctx context.Context, userID string, option int) (domain.Step, error) {
	return e.submit(ctx, userID, -1, option)
}

// SubmitAnswerAt is SubmitAnswer for an answer given to question questionIndex.
// It fails with domain.ErrInvalidOption unless that question is the one awaiting
// an answer, so a repeated tap on the same button advances the session only once.
func (e *Engine) SubmitAnswerAt(ctx context.Context, userID string, questionIndex, option int) (domain.Step, error) {
	if questionIndex < 0 {
		return e.submit(ctx, userID, e.quiz.Len(), option)
	}
	return e.submit(ctx, userID, questionIndex, option)
}

// submit answers the current question. A non-negative expected pins the question index.
func (e *Engine) submit(ctx context.Context, userID string, expected, option int) (domain.Step, error) {
	total := e.quiz.Len()
	var (
		questionIndex int
		step          domain.Step
	)

	apply := func(s *domain.Session) error {
		questionIndex = s.CurrentIndex
		if s.Completed(total) {
			return fmt.Errorf("%w: quiz already completed", domain.ErrInvalidOption)
		}
		if expected >= 0 && expected != s.CurrentIndex {
			return fmt.Errorf("%w: answer for question %d, session is at question %d",
				domain.ErrInvalidOption, expected, s.CurrentIndex)
		}

		options := e.quiz.Questions[s.CurrentIndex].Options
		if option < 0 || option >= len(options) {
			return fmt.Errorf("%w: %d is not in [0, %d)", domain.ErrInvalidOption, option, len(options))
		}

		s.Traits = append(s.Traits, options[option].Traits...)
		s.CurrentIndex++
		s.UpdatedAt = e.now()
		return nil
	}

	// Hooks fire under the user's lock so observers see transitions in order.
	notify := func(ctx context.Context, s *domain.Session) {
		step = domain.StepFor(e.quiz, s)
		if e.hooks.OnAnswer != nil {
			e.hooks.OnAnswer(ctx, &domain.AnswerEvent{
				EventBase:     e.event(domain.EventAnswer, userID, s.UpdatedAt),
				QuestionIndex: questionIndex,
				Option:        option,
				Traits:        e.quiz.Questions[questionIndex].Options[option].Traits,
				Step:          step,
			})
		}
		if !step.Completed {
			return
		}
		// Only the answer that crosses into the completed state gets here:
		// later submissions fail in apply with ErrInvalidOption.
		result := domain.Resolve(e.quiz, s.Traits)
		e.logger.Info("quiz completed", "user_id", userID, "category", result.Key)
		if e.hooks.OnComplete != nil {
			e.hooks.OnComplete(ctx, &domain.CompletionEvent{
				EventBase: e.event(domain.EventComplete, userID, s.UpdatedAt),
				Category:  result.Key,
				Duration:  s.UpdatedAt.Sub(s.StartedAt),
			})
		}
	}

	if _, err := e.sessions.UpdateThen(ctx, userID, apply, notify); err != nil {
		if errors.Is(err, domain.ErrInvalidOption) {
			e.logger.Debug("invalid answer", "user_id", userID, "question", questionIndex, "option", option)
			if e.hooks.OnInvalidAnswer != nil {
				e.hooks.OnInvalidAnswer(ctx, &domain.AnswerEvent{
					EventBase:     e.event(domain.EventInvalidAnswer, userID, e.now()),
					QuestionIndex: questionIndex,
					Option:        option,
				})
			}
		}
		return domain.Step{}, e.wrap(err, "failed to submit answer")
	}
	return step, nil
}

// Result resolves the category for the traits collected so far.
// It fails with domain.ErrNoTraitsRecorded before the first answer.
func (e *Engine) Result(ctx context.Context, userID string) (domain.Category, error) {
	s, err := e.load(ctx, userID)
	if err != nil {
		return domain.Category{}, err
	}
	if len(s.Traits) == 0 {
		return domain.Category{}, domain.ErrNoTraitsRecorded
	}
	return domain.Resolve(e.quiz, s.Traits), nil
}

// Share builds the share card for the user's result.
func (e *Engine) Share(ctx context.Context, userID, botUsername string) (domain.ShareCard, error) {
	c, err := e.Result(ctx, userID)
	if err != nil {
		return domain.ShareCard{}, err
	}
	return domain.NewShareCard(e.quiz.Brand, c, botUsername), nil
}

// Session returns a snapshot of the user's session.
func (e *Engine) Session(ctx context.Context, userID string) (*domain.Session, error) {
	return e.load(ctx, userID)
}

func (e *Engine) load(ctx context.Context, userID string) (*domain.Session, error) {
	s, err := e.sessions.Load(ctx, userID)
	if err != nil {
		return nil, e.wrap(err, "failed to load session")
	}
	return s, nil
}

// wrap leaves domain errors as they are and annotates infrastructure failures.
func (e *Engine) wrap(err error, msg string) error {
	switch {
	case errors.Is(err, domain.ErrUnknownSession),
		errors.Is(err, domain.ErrInvalidOption):
		return err
	}
	return fmt.Errorf("%s: %w", msg, err)
}

func (e *Engine) event(t domain.EventType, userID string, at time.Time) domain.EventBase {
	return domain.EventBase{
		Timestamp: at,
		Type:      t,
		UserID:    userID,
	}
}
