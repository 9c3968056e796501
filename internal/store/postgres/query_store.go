package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	internal_store "github.com/raseed-labs/raseed-backend/internal/store"
	"github.com/raseed-labs/raseed-backend/types"
)

var _ internal_store.QueryLogStore = (*QueryLogStore)(nil)

// QueryLogStore appends answered queries to user_queries.
type QueryLogStore struct {
	db DBTX
}

func NewQueryLogStore(db DBTX) *QueryLogStore {
	return &QueryLogStore{db: db}
}

func (s *QueryLogStore) LogQuery(ctx context.Context, record *types.QueryRecord) (string, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}

	var passID any
	if record.PassID != "" {
		passID = record.PassID
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO user_queries (id, user_id, query, response, pass_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		record.ID, record.UserID, record.Query, record.Response, passID,
	).Scan(&record.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to log query: %w", err)
	}
	return record.ID, nil
}
