package domain

import "time"

// Session is the progress of one user through the quiz.
type Session struct {
	UserID string `json:"user_id"`

	// CurrentIndex is the question awaiting an answer.
	// It equals the number of questions once the quiz is completed.
	CurrentIndex int `json:"current_index"`

	// Traits holds the tags of every chosen option, in answer order.
	Traits []string `json:"traits"`

	StartedAt time.Time `json:"started_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates a fresh session at the first question.
func NewSession(userID string, now time.Time) *Session {
	return &Session{
		UserID:       userID,
		CurrentIndex: 0,
		Traits:       []string{},
		StartedAt:    now,
		UpdatedAt:    now,
	}
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	c := *s
	c.Traits = append([]string(nil), s.Traits...)
	if c.Traits == nil {
		c.Traits = []string{}
	}
	return &c
}

// Completed reports whether every question of a quiz with total questions was answered.
func (s *Session) Completed(total int) bool {
	return s.CurrentIndex >= total
}

// Step describes what the host should present next.
type Step struct {
	// Index is the 0-based position of Question. Equal to Total when Completed.
	Index int `json:"index"`
	Total int `json:"total"`

	// Question is nil when Completed.
	Question *Question `json:"question,omitempty"`

	Completed bool `json:"completed"`
}

// StepFor derives the step of a session within a quiz.
func StepFor(q *Quiz, s *Session) Step {
	total := q.Len()
	if s.Completed(total) {
		return Step{Index: total, Total: total, Completed: true}
	}
	question := q.Questions[s.CurrentIndex]
	return Step{
		Index:    s.CurrentIndex,
		Total:    total,
		Question: &question,
	}
}
