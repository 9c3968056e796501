package services

import (
	"context"
	"strings"

	apperrors "github.com/raseed-labs/raseed-backend/errors"
	"github.com/raseed-labs/raseed-backend/internal/assistant"
	internal_store "github.com/raseed-labs/raseed-backend/internal/store"
	"github.com/raseed-labs/raseed-backend/logger"
	"github.com/raseed-labs/raseed-backend/types"
	"go.uber.org/zap"
)

// QueryAssistant answers one natural-language query.
type QueryAssistant interface {
	ProcessQuery(ctx context.Context, query, userID string) (*types.WalletPass, assistant.Trace)
}

type QueryService struct {
	assistant QueryAssistant
	passes    internal_store.PassStore
	queries   internal_store.QueryLogStore
	log       *zap.SugaredLogger
}

func NewQueryService(a QueryAssistant, passes internal_store.PassStore, queries internal_store.QueryLogStore) *QueryService {
	return &QueryService{
		assistant: a,
		passes:    passes,
		queries:   queries,
		log:       logger.GetLogger().Named("query_service"),
	}
}

// Answer runs the assistant, stores the resulting pass and logs the query.
// Only persistence failures are returned as errors.
func (s *QueryService) Answer(ctx context.Context, req *types.QueryRequest) (*types.QueryResponse, error) {
	query := strings.TrimSpace(req.Query)
	userID := strings.TrimSpace(req.UserID)
	if query == "" || userID == "" {
		return nil, apperrors.ValidationFailed("query and user_id are required", "")
	}

	pass, trace := s.assistant.ProcessQuery(ctx, query, userID)

	passID, err := s.passes.Save(ctx, pass)
	if err != nil {
		s.log.Errorw("Failed to store wallet pass", "user_id", userID, "error", err)
		return nil, apperrors.NewDatabaseError(err)
	}
	pass.ID = passID

	answer := pass.Answer()
	if _, err := s.queries.LogQuery(ctx, &types.QueryRecord{
		UserID:   userID,
		Query:    query,
		Response: answer,
		PassID:   passID,
	}); err != nil {
		s.log.Errorw("Failed to log query", "user_id", userID, "pass_id", passID, "error", err)
		return nil, apperrors.NewDatabaseError(err)
	}

	s.log.Infow("Answered query",
		"user_id", userID,
		"pass_id", passID,
		"pass_type", pass.PassType,
		"final_state", trace.FinalState)
	return &types.QueryResponse{
		Answer:     answer,
		WalletLink: pass.WalletLink(),
		PassID:     passID,
		WalletPass: pass,
	}, nil
}
