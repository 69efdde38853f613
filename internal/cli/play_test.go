package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/aretw0/totem"
	"github.com/aretw0/totem/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T) *totem.Engine {
	t.Helper()
	eng, err := totem.New()
	require.NoError(t, err)
	return eng
}

func TestPlay_Interactive(t *testing.T) {
	var out bytes.Buffer
	c, err := Play(context.Background(), newEngine(t), PlayOptions{
		UserID: "tty",
		Input:  strings.NewReader("2\nabc\n9\n2\n2\n"),
		Output: &out,
	})
	require.NoError(t, err)
	assert.Equal(t, "манул", c.Key)

	text := out.String()
	assert.Contains(t, text, "Вопрос 1/3: Какой у вас характер?")
	assert.Contains(t, text, "  1) Спокойный и мудрый")
	assert.Contains(t, text, "Введите номер варианта.")
	assert.Contains(t, text, "Нет варианта 9, выберите от 1 до 5.")
	assert.Contains(t, text, "## Ваше тотемное животное: Манул")
}

func TestPlay_Scripted(t *testing.T) {
	var out bytes.Buffer
	c, err := Play(context.Background(), newEngine(t), PlayOptions{
		UserID:  "script",
		Answers: []int{4, 4, 1},
		Output:  &out,
		Render:  func(s string) (string, error) { return strings.ToUpper(s), nil },
	})
	require.NoError(t, err)
	assert.Equal(t, "фламинго", c.Key)
	assert.Contains(t, out.String(), "> 4\n")
	assert.Contains(t, out.String(), "ФЛАМИНГО")
}

func TestPlay_ScriptedErrors(t *testing.T) {
	_, err := Play(context.Background(), newEngine(t), PlayOptions{UserID: "short", Answers: []int{1}})
	assert.ErrorContains(t, err, "not enough answers")

	_, err = Play(context.Background(), newEngine(t), PlayOptions{UserID: "bad", Answers: []int{6, 1, 1}})
	assert.ErrorIs(t, err, domain.ErrInvalidOption)

	_, err = Play(context.Background(), newEngine(t), PlayOptions{UserID: "none"})
	assert.Error(t, err)
}

func TestPlay_InputClosed(t *testing.T) {
	_, err := Play(context.Background(), newEngine(t), PlayOptions{
		UserID: "eof",
		Input:  strings.NewReader("1\n"),
	})
	require.Error(t, err)
	assert.NoError(t, HandleExecutionError(err))
}

func TestParseAnswers(t *testing.T) {
	got, err := ParseAnswers(" 1, 2,3 ")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, got)

	got, err = ParseAnswers("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseAnswers("1,x")
	assert.Error(t, err)
}
