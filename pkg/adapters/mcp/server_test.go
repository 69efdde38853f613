package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/aretw0/totem"
	"github.com/aretw0/totem/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	eng, err := totem.New()
	require.NoError(t, err)
	return NewServer(eng, nil)
}

func TestTools_FullQuiz(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	step, err := s.handleStartQuiz(ctx, mcp.CallToolRequest{}, userArgs{UserID: "agent"})
	require.NoError(t, err)
	assert.Equal(t, 0, step.Index)
	assert.Equal(t, 3, step.Total)
	assert.Equal(t, "Какой у вас характер?", step.Question)
	assert.Len(t, step.Options, 5)

	for i := 0; i < 3; i++ {
		step, err = s.handleSubmitAnswer(ctx, mcp.CallToolRequest{}, answerArgs{UserID: "agent", Option: 2})
		require.NoError(t, err)
	}
	assert.True(t, step.Completed)
	assert.Empty(t, step.Question)

	res, err := s.handleGetResult(ctx, mcp.CallToolRequest{}, userArgs{UserID: "agent"})
	require.NoError(t, err)
	assert.Equal(t, "сурикат", res.Key)
	assert.Equal(t, "Сурикат", res.Name)
}

func TestTools_Errors(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	_, err := s.handleStartQuiz(ctx, mcp.CallToolRequest{}, userArgs{})
	assert.Error(t, err)

	_, err = s.handleSubmitAnswer(ctx, mcp.CallToolRequest{}, answerArgs{UserID: "ghost", Option: 0})
	assert.ErrorIs(t, err, domain.ErrUnknownSession)

	_, err = s.handleStartQuiz(ctx, mcp.CallToolRequest{}, userArgs{UserID: "u"})
	require.NoError(t, err)
	_, err = s.handleSubmitAnswer(ctx, mcp.CallToolRequest{}, answerArgs{UserID: "u", Option: 5})
	assert.ErrorIs(t, err, domain.ErrInvalidOption)

	_, err = s.handleGetResult(ctx, mcp.CallToolRequest{}, userArgs{UserID: "u"})
	assert.ErrorIs(t, err, domain.ErrNoTraitsRecorded)
}

func TestTools_SubmitAnswerPinnedToQuestion(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	_, err := s.handleStartQuiz(ctx, mcp.CallToolRequest{}, userArgs{UserID: "u"})
	require.NoError(t, err)

	first := 0
	step, err := s.handleSubmitAnswer(ctx, mcp.CallToolRequest{}, answerArgs{UserID: "u", Option: 1, Question: &first})
	require.NoError(t, err)
	assert.Equal(t, 1, step.Index)

	_, err = s.handleSubmitAnswer(ctx, mcp.CallToolRequest{}, answerArgs{UserID: "u", Option: 1, Question: &first})
	assert.ErrorIs(t, err, domain.ErrInvalidOption)
}

func TestTools_StructuredHandlerReportsToolError(t *testing.T) {
	s := newTestServer(t)

	req := mcp.CallToolRequest{}
	req.Params.Name = "submit_answer"
	req.Params.Arguments = map[string]any{"user_id": "ghost", "option": 0}

	result, err := mcp.NewStructuredToolHandler(s.handleSubmitAnswer)(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestResource_Categories(t *testing.T) {
	s := newTestServer(t)

	contents, err := s.readCategories(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)

	text, ok := contents[0].(mcp.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, CategoriesURI, text.URI)

	var cats []domain.Category
	require.NoError(t, json.Unmarshal([]byte(text.Text), &cats))
	assert.Len(t, cats, 5)
	assert.Equal(t, "слон", cats[0].Key)
}
