package runtime_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/aretw0/totem/internal/runtime"
	"github.com/aretw0/totem/pkg/adapters/memory"
	"github.com/aretw0/totem/pkg/catalog"
	"github.com/aretw0/totem/pkg/domain"
	"github.com/aretw0/totem/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, opts ...runtime.EngineOption) *runtime.Engine {
	t.Helper()
	return runtime.NewEngine(catalog.Default(), session.NewManager(memory.NewStore()), opts...)
}

func TestEngine_StartSession(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	step, err := eng.StartSession(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, step.Completed)
	assert.Equal(t, 0, step.Index)
	assert.Equal(t, 3, step.Total)
	require.NotNil(t, step.Question)
	assert.Equal(t, "Какой у вас характер?", step.Question.Text)

	current, err := eng.CurrentQuestion(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, step, current)

	s, err := eng.Session(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, s.CurrentIndex)
	assert.Empty(t, s.Traits)
}

func TestEngine_StartSessionDiscardsProgress(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, err := eng.StartSession(ctx, "u1")
	require.NoError(t, err)
	_, err = eng.SubmitAnswer(ctx, "u1", 1)
	require.NoError(t, err)

	step, err := eng.StartSession(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, step.Index)

	s, err := eng.Session(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, s.Traits)

	_, err = eng.Result(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNoTraitsRecorded)
}

func TestEngine_SubmitAnswerAdvances(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()
	_, err := eng.StartSession(ctx, "u1")
	require.NoError(t, err)

	step, err := eng.SubmitAnswer(ctx, "u1", 0)
	require.NoError(t, err)
	assert.Equal(t, 1, step.Index)
	assert.False(t, step.Completed)
	assert.Equal(t, "Как вы проводите свободное время?", step.Question.Text)

	step, err = eng.SubmitAnswer(ctx, "u1", 1)
	require.NoError(t, err)
	assert.Equal(t, 2, step.Index)

	step, err = eng.SubmitAnswer(ctx, "u1", 2)
	require.NoError(t, err)
	assert.True(t, step.Completed)
	assert.Equal(t, 3, step.Index)
	assert.Nil(t, step.Question)

	s, err := eng.Session(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"слон", "манул", "сурикат"}, s.Traits, "traits keep answer order")
}

func TestEngine_InvalidOptionLeavesStateUnchanged(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()
	_, err := eng.StartSession(ctx, "u1")
	require.NoError(t, err)
	_, err = eng.SubmitAnswer(ctx, "u1", 4)
	require.NoError(t, err)

	before, err := eng.Session(ctx, "u1")
	require.NoError(t, err)

	for _, option := range []int{-1, 5, 100} {
		_, err := eng.SubmitAnswer(ctx, "u1", option)
		assert.ErrorIs(t, err, domain.ErrInvalidOption, "option %d", option)
	}

	after, err := eng.Session(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestEngine_SubmitAfterCompletion(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()
	_, err := eng.StartSession(ctx, "u1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = eng.SubmitAnswer(ctx, "u1", 0)
		require.NoError(t, err)
	}

	_, err = eng.SubmitAnswer(ctx, "u1", 0)
	assert.ErrorIs(t, err, domain.ErrInvalidOption)

	step, err := eng.CurrentQuestion(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, step.Completed)
}

func TestEngine_UnknownSession(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, err := eng.SubmitAnswer(ctx, "ghost", 0)
	assert.ErrorIs(t, err, domain.ErrUnknownSession)

	_, err = eng.CurrentQuestion(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownSession)

	_, err = eng.Result(ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrUnknownSession)

	_, err = eng.Share(ctx, "ghost", "bot")
	assert.ErrorIs(t, err, domain.ErrUnknownSession)
}

func TestEngine_EndToEnd(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, err := eng.StartSession(ctx, "u1")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = eng.SubmitAnswer(ctx, "u1", 0)
		require.NoError(t, err)
	}

	step, err := eng.CurrentQuestion(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, step.Completed)

	result, err := eng.Result(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "слон", result.Key)

	card, err := eng.Share(ctx, "u1", "mzoo_bot")
	require.NoError(t, err)
	assert.Contains(t, card.Text, "Слон")
	assert.Contains(t, card.Text, "https://t.me/mzoo_bot")
}

func TestEngine_ResultBeforeCompletion(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()
	_, err := eng.StartSession(ctx, "u1")
	require.NoError(t, err)

	_, err = eng.Result(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrNoTraitsRecorded)

	_, err = eng.SubmitAnswer(ctx, "u1", 3)
	require.NoError(t, err)

	result, err := eng.Result(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "фламинго", result.Key)
}

func TestEngine_Hooks(t *testing.T) {
	var (
		mu     sync.Mutex
		events []domain.EventType
		final  string
	)
	record := func(t domain.EventType) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, t)
	}

	clock := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	eng := newEngine(t,
		runtime.WithClock(func() time.Time { return clock }),
		runtime.WithLifecycleHooks(domain.LifecycleHooks{
			OnSessionStart: func(_ context.Context, e *domain.SessionEvent) {
				assert.Equal(t, 3, e.Total)
				assert.Equal(t, clock, e.Timestamp)
				record(e.Type)
			},
			OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
				record(e.Type)
			},
			OnInvalidAnswer: func(_ context.Context, e *domain.AnswerEvent) {
				assert.Equal(t, 9, e.Option)
				record(e.Type)
			},
			OnComplete: func(_ context.Context, e *domain.CompletionEvent) {
				final = e.Category
				record(e.Type)
			},
		}),
	)
	ctx := context.Background()

	_, _ = eng.StartSession(ctx, "u1")
	_, _ = eng.SubmitAnswer(ctx, "u1", 9)
	_, _ = eng.SubmitAnswer(ctx, "u1", 4)
	_, _ = eng.SubmitAnswer(ctx, "u1", 4)
	_, _ = eng.SubmitAnswer(ctx, "u1", 1)

	assert.Equal(t, []domain.EventType{
		domain.EventSessionStart,
		domain.EventInvalidAnswer,
		domain.EventAnswer,
		domain.EventAnswer,
		domain.EventAnswer,
		domain.EventComplete,
	}, events)
	assert.Equal(t, "енот", final)
}

func TestEngine_ConcurrentAnswersAreSerialized(t *testing.T) {
	var completions atomic.Int32
	eng := newEngine(t, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnComplete: func(context.Context, *domain.CompletionEvent) { completions.Add(1) },
	}))
	ctx := context.Background()
	_, err := eng.StartSession(ctx, "u1")
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		ok      atomic.Int32
		invalid atomic.Int32
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.SubmitAnswer(ctx, "u1", 0)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInvalidOption):
				invalid.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(3), ok.Load(), "only one answer per question may be accepted")
	assert.Equal(t, int32(9), invalid.Load())
	assert.Equal(t, int32(1), completions.Load(), "completion fires exactly once")

	s, err := eng.Session(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 3, s.CurrentIndex)
	assert.Equal(t, []string{"слон", "слон", "слон"}, s.Traits)
}

func TestEngine_DoubleTapAdvancesOnce(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()
	_, err := eng.StartSession(ctx, "u1")
	require.NoError(t, err)

	var (
		wg      sync.WaitGroup
		ok      atomic.Int32
		invalid atomic.Int32
	)
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := eng.SubmitAnswerAt(ctx, "u1", 0, 0)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInvalidOption):
				invalid.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(11), invalid.Load())

	s, err := eng.Session(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, s.CurrentIndex)
	assert.Equal(t, []string{"слон"}, s.Traits)
}

func TestEngine_SubmitAnswerAt(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, err := eng.SubmitAnswerAt(ctx, "u1", 0, 0)
	assert.ErrorIs(t, err, domain.ErrUnknownSession)

	_, err = eng.StartSession(ctx, "u1")
	require.NoError(t, err)

	tests := []struct {
		name     string
		question int
		option   int
	}{
		{"future question", 1, 0},
		{"negative question", -1, 0},
		{"option out of range", 0, 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := eng.SubmitAnswerAt(ctx, "u1", tt.question, tt.option)
			assert.ErrorIs(t, err, domain.ErrInvalidOption)
		})
	}

	for q := 0; q < 3; q++ {
		step, err := eng.SubmitAnswerAt(ctx, "u1", q, 4)
		require.NoError(t, err)
		assert.Equal(t, q+1, step.Index)
	}

	// A stale tap on the last question after completion.
	_, err = eng.SubmitAnswerAt(ctx, "u1", 2, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidOption)

	c, err := eng.Result(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "енот", c.Key)
}

func TestEngine_HooksSeeTransitionsInOrder(t *testing.T) {
	var (
		mu      sync.Mutex
		indexes []int
	)
	record := func(step domain.Step) {
		mu.Lock()
		defer mu.Unlock()
		indexes = append(indexes, step.Index)
	}
	eng := newEngine(t, runtime.WithLifecycleHooks(domain.LifecycleHooks{
		OnSessionStart: func(_ context.Context, e *domain.SessionEvent) { record(e.Step) },
		OnAnswer: func(_ context.Context, e *domain.AnswerEvent) {
			// Widen the window between the save and the hook.
			time.Sleep(time.Millisecond)
			record(e.Step)
		},
	}))
	ctx := context.Background()
	_, err := eng.StartSession(ctx, "u1")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = eng.SubmitAnswer(ctx, "u1", 1)
		}()
	}
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3}, indexes)
}

func TestEngine_UsersAreIndependent(t *testing.T) {
	eng := newEngine(t)
	ctx := context.Background()

	_, _ = eng.StartSession(ctx, "a")
	_, _ = eng.StartSession(ctx, "b")
	_, err := eng.SubmitAnswer(ctx, "a", 1)
	require.NoError(t, err)

	stepA, _ := eng.CurrentQuestion(ctx, "a")
	stepB, _ := eng.CurrentQuestion(ctx, "b")
	assert.Equal(t, 1, stepA.Index)
	assert.Equal(t, 0, stepB.Index)
}

type brokenStore struct{ *memory.Store }

func (brokenStore) Save(context.Context, string, *domain.Session) error {
	return errors.New("disk full")
}

func TestEngine_StoreFailureIsWrapped(t *testing.T) {
	eng := runtime.NewEngine(catalog.Default(), session.NewManager(&brokenStore{Store: memory.NewStore()}))

	_, err := eng.StartSession(context.Background(), "u1")
	assert.ErrorContains(t, err, "failed to start session: disk full")
	assert.NotErrorIs(t, err, domain.ErrUnknownSession)
}
