package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/raseed-labs/raseed-backend/internal/llm"
	"github.com/raseed-labs/raseed-backend/logger"
	"go.uber.org/zap"
)

type SearchArgs struct {
	Query string `json:"query" jsonschema:"minLength=1" jsonschema_description:"What to look up on the web, for example current fuel prices or a product's price."`
}

type SearchResult struct {
	Query  string `json:"query"`
	Answer string `json:"answer"`
}

// Searcher answers web queries through a model with Google Search grounding.
type Searcher struct {
	model llm.Model
	log   *zap.SugaredLogger
}

func NewSearcher(model llm.Model) *Searcher {
	return &Searcher{
		model: model,
		log:   logger.GetLogger().Named("search"),
	}
}

// Search asks the model with grounding enabled and retries once without it
// when the grounded call fails.
func (s *Searcher) Search(ctx context.Context, _ string, args SearchArgs) (*SearchResult, error) {
	query := strings.TrimSpace(args.Query)
	req := &llm.Request{
		Contents:     []llm.Content{llm.UserText(query)},
		GoogleSearch: true,
	}

	resp, err := s.model.Generate(ctx, req)
	if err != nil {
		s.log.Warnw("Grounded search failed, retrying without grounding", "query", query, "error", err)
		req.GoogleSearch = false
		resp, err = s.model.Generate(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("web search failed: %w", err)
		}
	}
	return &SearchResult{Query: query, Answer: resp.Text()}, nil
}

func SearchTool(s *Searcher) (Tool, error) {
	return New("search",
		"Search the web for current information that is not in the user's receipts, such as prices, offers or store details.",
		s.Search)
}
