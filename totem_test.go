package totem_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/totem"
	"github.com/aretw0/totem/pkg/adapters/redis"
	"github.com/aretw0/totem/pkg/domain"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	eng, err := totem.New()
	require.NoError(t, err)

	assert.Len(t, eng.Quiz().Questions, 3)
	assert.Equal(t, "слон", eng.Quiz().Default().Key)
}

func TestNew_InvalidQuiz(t *testing.T) {
	_, err := totem.New(totem.WithQuiz(&domain.Quiz{}))
	assert.ErrorIs(t, err, domain.ErrInvalidQuiz)

	_, err = totem.New(totem.WithCatalogPath(filepath.Join(t.TempDir(), "nope.yaml")))
	assert.Error(t, err)
}

func TestNew_CatalogPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pets.yaml")
	doc := `
questions:
  - text: Pick one
    options:
      - { text: Bone, traits: [dog] }
      - { text: Fish, traits: [cat] }
categories:
  - { key: dog, name: Dog }
  - { key: cat, name: Cat }
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	eng, err := totem.New(totem.WithCatalogPath(path))
	require.NoError(t, err)

	ctx := context.Background()
	_, err = eng.StartSession(ctx, "u")
	require.NoError(t, err)
	step, err := eng.SubmitAnswer(ctx, "u", 1)
	require.NoError(t, err)
	assert.True(t, step.Completed)

	c, err := eng.Result(ctx, "u")
	require.NoError(t, err)
	assert.Equal(t, "cat", c.Key)
}

func TestEngine_FullQuizOverRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	defer client.Close()

	var completed []string
	eng, err := totem.New(
		totem.WithStore(redis.NewFromClient(client)),
		totem.WithLocker(redis.NewLocker(client, "totem:")),
		totem.WithLifecycleHooks(domain.LifecycleHooks{
			OnComplete: func(_ context.Context, e *domain.CompletionEvent) {
				completed = append(completed, e.Category)
			},
		}),
	)
	require.NoError(t, err)

	ctx := context.Background()
	_, err = eng.StartSession(ctx, "42")
	require.NoError(t, err)
	for _, opt := range []int{1, 0, 1} {
		_, err = eng.SubmitAnswer(ctx, "42", opt)
		require.NoError(t, err)
	}

	c, err := eng.Result(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "манул", c.Key)
	assert.Equal(t, []string{"манул"}, completed)

	ids, err := eng.Sessions().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"42"}, ids)
}
