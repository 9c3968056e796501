package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	internal_store "github.com/raseed-labs/raseed-backend/internal/store"
	"github.com/raseed-labs/raseed-backend/types"
)

var _ internal_store.PassStore = (*PassStore)(nil)

// PassStore implements internal_store.PassStore on the wallet_passes table.
type PassStore struct {
	db DBTX
}

func NewPassStore(db DBTX) *PassStore {
	return &PassStore{db: db}
}

// Save inserts the pass and fills in its id and creation time.
func (s *PassStore) Save(ctx context.Context, pass *types.WalletPass) (string, error) {
	if pass == nil || !pass.PassType.IsValid() {
		return "", fmt.Errorf("%w: pass type missing or unknown", internal_store.ErrInvalidRecord)
	}
	if pass.ID == "" {
		pass.ID = uuid.NewString()
	}

	detailsJSON := []byte("{}")
	if pass.Details != nil {
		var err error
		if detailsJSON, err = json.Marshal(pass.Details); err != nil {
			return "", fmt.Errorf("failed to marshal pass details: %w", err)
		}
	}

	var validUntil pgtype.Timestamptz
	if pass.ValidUntil != nil {
		validUntil = pgtype.Timestamptz{Time: pass.ValidUntil.UTC(), Valid: true}
	}

	err := s.db.QueryRow(ctx,
		`INSERT INTO wallet_passes (id, user_id, pass_type, title, subtitle, details, valid_until)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at`,
		pass.ID, pass.UserID, string(pass.PassType), pass.Title, pass.Subtitle, detailsJSON, validUntil,
	).Scan(&pass.CreatedAt)
	if err != nil {
		return "", fmt.Errorf("failed to save wallet pass: %w", err)
	}
	return pass.ID, nil
}

// Get retrieves a pass owned by userID with its typed details.
func (s *PassStore) Get(ctx context.Context, userID, id string) (*types.WalletPass, error) {
	var (
		pass        types.WalletPass
		passType    string
		detailsJSON []byte
		validUntil  pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx,
		`SELECT id, user_id, pass_type, title, subtitle, details, valid_until, created_at
		FROM wallet_passes WHERE id = $1 AND user_id = $2`, id, userID,
	).Scan(&pass.ID, &pass.UserID, &passType, &pass.Title, &pass.Subtitle, &detailsJSON, &validUntil, &pass.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, internal_store.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get wallet pass: %w", err)
	}

	pass.PassType = types.PassType(passType)
	if validUntil.Valid {
		t := validUntil.Time
		pass.ValidUntil = &t
	}
	details, err := types.DecodePassDetails(pass.PassType, detailsJSON)
	if err != nil {
		return nil, err
	}
	pass.Details = details
	return &pass, nil
}
