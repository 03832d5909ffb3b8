package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"staffhub/internal/backend"
	"staffhub/internal/entities"
	apperrors "staffhub/pkg/errors"
)

const credentialTable = "user_credentials"

type CredentialRepositoryInterface interface {
	Upsert(ctx context.Context, c entities.Credential) error
	Find(ctx context.Context, userID uuid.UUID, provider string) (*entities.Credential, error)
	Delete(ctx context.Context, userID uuid.UUID, provider string) (bool, error)
}

type CredentialRepository struct {
	storage backend.DB
	logger  *zap.Logger
}

func NewCredentialRepository(storage backend.DB, logger *zap.Logger) CredentialRepositoryInterface {
	return &CredentialRepository{storage: storage, logger: logger}
}

func (r *CredentialRepository) Upsert(ctx context.Context, c entities.Credential) error {
	query, args, err := psql.Insert(credentialTable).
		Columns("user_id", "provider", "access_token", "refresh_token", "scope", "expires_at").
		Values(c.UserID, c.Provider, c.AccessToken, c.RefreshToken, c.Scope, c.ExpiresAt).
		Suffix(`ON CONFLICT (user_id, provider) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = COALESCE(EXCLUDED.refresh_token, user_credentials.refresh_token),
			scope = EXCLUDED.scope,
			expires_at = EXCLUDED.expires_at,
			updated_at = now()`).
		ToSql()
	if err != nil {
		return err
	}
	if _, err := r.storage.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка сохранения учётных данных: %w", err)
	}
	return nil
}

func (r *CredentialRepository) Find(ctx context.Context, userID uuid.UUID, provider string) (*entities.Credential, error) {
	query, args, err := psql.Select("id", "user_id", "provider", "access_token", "refresh_token", "scope", "expires_at", "created_at", "updated_at").
		From(credentialTable).
		Where(sq.Eq{"user_id": userID, "provider": provider}).
		ToSql()
	if err != nil {
		return nil, err
	}

	var c entities.Credential
	var refresh, scope sql.NullString
	var expiresAt sql.NullTime
	err = r.storage.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.UserID, &c.Provider, &c.AccessToken, &refresh, &scope, &expiresAt, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("ошибка получения учётных данных: %w", err)
	}
	c.RefreshToken = nullString(refresh)
	c.Scope = nullString(scope)
	c.ExpiresAt = nullTime(expiresAt)
	return &c, nil
}

func (r *CredentialRepository) Delete(ctx context.Context, userID uuid.UUID, provider string) (bool, error) {
	n, err := backend.DeleteRows(ctx, r.storage, credentialTable, sq.Eq{"user_id": userID, "provider": provider})
	if err != nil {
		return false, fmt.Errorf("ошибка удаления учётных данных: %w", err)
	}
	return n > 0, nil
}
