package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/terraconstructs/iamcore/internal/apierr"
	"github.com/terraconstructs/iamcore/internal/db/models"
)

// BunRevokedTokenRepository is the bun-backed RevokedTokenRepository
// implementation: the cold tier of the Revocation Store (C9).
type BunRevokedTokenRepository struct {
	db *bun.DB
}

func NewBunRevokedTokenRepository(db *bun.DB) *BunRevokedTokenRepository {
	return &BunRevokedTokenRepository{db: db}
}

// Upsert inserts a revocation row, or refreshes revokedAt/reason on
// conflict, per §4.10 "write to cold tier with upsert-on-conflict".
func (r *BunRevokedTokenRepository) Upsert(ctx context.Context, row *models.RevokedToken) error {
	_, err := r.db.NewInsert().
		Model(row).
		On("CONFLICT (token_hash) DO UPDATE").
		Set("revoked_at = EXCLUDED.revoked_at").
		Set("reason = EXCLUDED.reason").
		Set("expires_at = EXCLUDED.expires_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("upsert revoked token: %w", err)
	}
	return nil
}

func (r *BunRevokedTokenRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*models.RevokedToken, error) {
	row := new(models.RevokedToken)
	err := r.db.NewSelect().Model(row).Where("token_hash = ?", tokenHash).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apierr.NotFoundf("no revocation row for token hash")
	}
	if err != nil {
		return nil, fmt.Errorf("get revoked token: %w", err)
	}
	return row, nil
}

func (r *BunRevokedTokenRepository) DeleteExpired(ctx context.Context) (int, error) {
	res, err := r.db.NewDelete().Model((*models.RevokedToken)(nil)).
		Where("expires_at <= ?", time.Now()).
		Exec(ctx)
	if err != nil {
		return 0, fmt.Errorf("delete expired revoked tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return int(n), nil
}
