package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventSessionStart  EventType = "session_start"
	EventAnswer        EventType = "answer"
	EventInvalidAnswer EventType = "invalid_answer"
	EventComplete      EventType = "complete"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	UserID    string    `json:"user_id"`
}

// SessionEvent is emitted when a session starts.
type SessionEvent struct {
	EventBase
	Total int `json:"total"`

	Step Step `json:"-"` // the first question
}

// AnswerEvent is emitted for every submitted answer, valid or not.
type AnswerEvent struct {
	EventBase
	QuestionIndex int      `json:"question_index"`
	Option        int      `json:"option"`
	Traits        []string `json:"traits,omitempty"`

	// Step is where an accepted answer moved the session. Zero for invalid answers.
	Step Step `json:"-"`
}

// CompletionEvent is emitted once when a session reaches the completed state.
type CompletionEvent struct {
	EventBase
	Category string        `json:"category"`
	Duration time.Duration `json:"duration"` // from session start to the last answer
}

// LifecycleHooks defines callbacks for engine observability.
// OnSessionStart, OnAnswer and OnComplete run after the state change is persisted,
// while the user's lock is still held, so they see a user's transitions in order.
// They must be quick and must not call back into the engine for the same user.
// OnInvalidAnswer runs after the lock is released.
type LifecycleHooks struct {
	OnSessionStart  func(context.Context, *SessionEvent)
	OnAnswer        func(context.Context, *AnswerEvent)
	OnInvalidAnswer func(context.Context, *AnswerEvent)
	OnComplete      func(context.Context, *CompletionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnSessionStart:  chain(h.OnSessionStart, other.OnSessionStart),
		OnAnswer:        chain(h.OnAnswer, other.OnAnswer),
		OnInvalidAnswer: chain(h.OnInvalidAnswer, other.OnInvalidAnswer),
		OnComplete:      chain(h.OnComplete, other.OnComplete),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
