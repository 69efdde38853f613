package catalog_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/totem/pkg/catalog"
	"github.com/aretw0/totem/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	q := catalog.Default()

	require.Len(t, q.Questions, 3)
	require.Len(t, q.Categories, 5)
	assert.Equal(t, "слон", q.Default().Key)

	// Every first option votes for the elephant.
	for _, question := range q.Questions {
		require.Len(t, question.Options, 5)
		assert.Equal(t, []string{"слон"}, question.Options[0].Traits)
	}

	manul, ok := q.Category("манул")
	require.True(t, ok)
	assert.Equal(t, "Манул", manul.Name)
	assert.Equal(t, "assets/animals/manul.jpg", manul.Image)
	assert.Contains(t, q.Brand.ShareTemplate, "{animal}")
}

func TestDefault_ReturnsCopies(t *testing.T) {
	a := catalog.Default()
	a.Questions[0].Text = "changed"

	assert.NotEqual(t, "changed", catalog.Default().Questions[0].Text)
}

const tinyYAML = `
default: dog
questions:
  - text: Bark or meow?
    options:
      - { text: Bark, traits: [dog] }
      - { text: Meow, traits: [cat] }
categories:
  - { key: cat, name: Cat }
  - { key: dog, name: Dog }
`

func TestParse_YAML(t *testing.T) {
	q, err := catalog.Parse([]byte(tinyYAML), catalog.YAML)
	require.NoError(t, err)

	assert.Equal(t, "dog", q.Default().Key)
	assert.Equal(t, "Bark or meow?", q.Questions[0].Text)
	assert.Equal(t, []string{"cat"}, q.Questions[0].Options[1].Traits)
}

func TestParse_JSON(t *testing.T) {
	doc := `{
		"questions": [{"text": "Q", "options": [{"text": "A", "traits": ["x"]}]}],
		"categories": [{"key": "x", "name": "X"}]
	}`
	q, err := catalog.Parse([]byte(doc), catalog.JSON)
	require.NoError(t, err)
	assert.Equal(t, "x", q.Default().Key)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"empty":           ``,
		"unknown key":     "questions: []\ncategoriez: []\n",
		"no questions":    "categories: [{key: a}]\n",
		"option traits":   "questions: [{text: q, options: [{text: a, traits: []}]}]\ncategories: [{key: a}]\n",
		"wrong type":      "questions: 42\n",
		"unknown default": "default: z\nquestions: [{text: q, options: [{text: a, traits: [a]}]}]\ncategories: [{key: a}]\n",
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := catalog.Parse([]byte(doc), catalog.YAML)
			assert.ErrorIs(t, err, domain.ErrInvalidQuiz)
		})
	}

	_, err := catalog.Parse([]byte("questions: [unclosed"), catalog.YAML)
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(tinyYAML), 0o644))

	q, err := catalog.Load(path)
	require.NoError(t, err)
	assert.Len(t, q.Categories, 2)

	_, err = catalog.Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	q, err = catalog.LoadOrDefault("")
	require.NoError(t, err)
	assert.Len(t, q.Categories, 5)
}
