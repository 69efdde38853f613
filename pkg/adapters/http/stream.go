package http

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aretw0/totem/pkg/domain"
)

// StreamManager fans step updates out to SSE subscribers of a user.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{} // UserID -> Set of Channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
	}
}

// Subscribe registers a buffered channel for userID. Call the returned func to unsubscribe.
func (sm *StreamManager) Subscribe(userID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[userID]; !ok {
		sm.subscribers[userID] = make(map[chan string]struct{})
	}
	sm.subscribers[userID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[userID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, userID)
			}
		}
	}
}

// Broadcast sends v as JSON to every subscriber of userID.
// Slow subscribers whose buffer is full miss the message.
func (sm *StreamManager) Broadcast(userID string, v any) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	subs, ok := sm.subscribers[userID]
	if !ok {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	for ch := range subs {
		select {
		case ch <- string(data):
		default:
		}
	}
}

// Hooks broadcasts every step the engine moves a session to.
// The engine runs these hooks under the user's lock, so subscribers
// receive a user's steps in the order the state changed.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSessionStart: func(_ context.Context, e *domain.SessionEvent) {
			sm.Broadcast(e.UserID, newStepView(e.Step))
		},
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			sm.Broadcast(e.UserID, newStepView(e.Step))
		},
	}
}
