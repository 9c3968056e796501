package tools

import (
	"context"
	"errors"
	"testing"

	"github.com/raseed-labs/raseed-backend/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeModel struct {
	requests []llm.Request
	generate func(req *llm.Request) (*llm.Response, error)
}

func (f *fakeModel) Generate(_ context.Context, req *llm.Request) (*llm.Response, error) {
	f.requests = append(f.requests, *req)
	return f.generate(req)
}

func textResponse(text string) *llm.Response {
	return &llm.Response{Content: &llm.Content{Role: llm.RoleModel, Parts: []llm.Part{{Text: text}}}}
}

func TestSearch_Grounded(t *testing.T) {
	model := &fakeModel{generate: func(req *llm.Request) (*llm.Response, error) {
		return textResponse("Petrol is ₹94.72 per litre in Delhi."), nil
	}}

	res, err := NewSearcher(model).Search(context.Background(), "u1", SearchArgs{Query: " petrol price delhi "})
	require.NoError(t, err)
	assert.Equal(t, "petrol price delhi", res.Query)
	assert.Equal(t, "Petrol is ₹94.72 per litre in Delhi.", res.Answer)
	require.Len(t, model.requests, 1)
	assert.True(t, model.requests[0].GoogleSearch)
}

func TestSearch_RetriesWithoutGrounding(t *testing.T) {
	model := &fakeModel{generate: func(req *llm.Request) (*llm.Response, error) {
		if req.GoogleSearch {
			return nil, errors.New("grounding unavailable")
		}
		return textResponse("ungrounded answer"), nil
	}}

	res, err := NewSearcher(model).Search(context.Background(), "u1", SearchArgs{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, "ungrounded answer", res.Answer)
	require.Len(t, model.requests, 2)
	assert.False(t, model.requests[1].GoogleSearch)
}

func TestSearch_BothAttemptsFail(t *testing.T) {
	model := &fakeModel{generate: func(*llm.Request) (*llm.Response, error) {
		return nil, errors.New("down")
	}}

	_, err := NewSearcher(model).Search(context.Background(), "u1", SearchArgs{Query: "q"})
	assert.ErrorContains(t, err, "web search failed")
}
