package auth_repo

import (
	"context"
	"fmt"

	"github.com/georgysavva/scany/v2/pgxscan"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/id"
	"retailcore/internal/domain/auth"
	"retailcore/internal/infrastructure/storage/postgres"
)

const (
	refreshTokensTable = "sys_refresh_tokens"
	resetTokensTable   = "sys_password_reset_tokens"
)

// Compile-time check.
var _ auth.TokenRepository = (*TokenRepo)(nil)

// TokenRepo implements auth.TokenRepository.
// Tokens are looked up by hash only; raw token values never reach storage.
type TokenRepo struct {
	txManager *postgres.TxManager
}

// NewTokenRepo creates a new token repository.
func NewTokenRepo(txManager *postgres.TxManager) *TokenRepo {
	return &TokenRepo{txManager: txManager}
}

// SaveRefreshToken persists a refresh token.
func (r *TokenRepo) SaveRefreshToken(ctx context.Context, token *auth.RefreshToken) error {
	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_refresh_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert refresh token: %w", err)
	}
	return nil
}

// GetRefreshToken retrieves a refresh token by its hash.
func (r *TokenRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*auth.RefreshToken, error) {
	var token auth.RefreshToken
	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &token, `
		SELECT id, user_id, token_hash, expires_at, created_at, revoked_at, revoked_reason
		FROM sys_refresh_tokens
		WHERE token_hash = $1
	`, tokenHash)

	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("refresh_token", "by hash")
		}
		return nil, fmt.Errorf("get refresh token: %w", err)
	}

	return &token, nil
}

// RevokeRefreshToken marks a single refresh token as revoked.
func (r *TokenRepo) RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_refresh_tokens
		SET revoked_at = NOW(), revoked_reason = $1
		WHERE id = $2 AND revoked_at IS NULL
	`, reason, tokenID)

	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("refresh_token", tokenID.String())
	}

	return nil
}

// RevokeAllUserTokens revokes every active refresh token of a user.
// Used on logout-everywhere and after password changes.
func (r *TokenRepo) RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error {
	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_refresh_tokens
		SET revoked_at = NOW(), revoked_reason = $1
		WHERE user_id = $2 AND revoked_at IS NULL
	`, reason, userID)

	if err != nil {
		return fmt.Errorf("revoke user tokens: %w", err)
	}
	return nil
}

// SaveResetToken persists a password reset token.
func (r *TokenRepo) SaveResetToken(ctx context.Context, token *auth.PasswordResetToken) error {
	_, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		INSERT INTO sys_password_reset_tokens (id, user_id, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, token.ID, token.UserID, token.TokenHash, token.ExpiresAt, token.CreatedAt)

	if err != nil {
		return fmt.Errorf("insert reset token: %w", err)
	}
	return nil
}

// GetResetToken retrieves a password reset token by its hash.
func (r *TokenRepo) GetResetToken(ctx context.Context, tokenHash string) (*auth.PasswordResetToken, error) {
	var token auth.PasswordResetToken
	err := pgxscan.Get(ctx, r.txManager.GetQuerier(ctx), &token, `
		SELECT id, user_id, token_hash, expires_at, created_at, used_at
		FROM sys_password_reset_tokens
		WHERE token_hash = $1
	`, tokenHash)

	if err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("reset_token", "by hash")
		}
		return nil, fmt.Errorf("get reset token: %w", err)
	}

	return &token, nil
}

// MarkResetTokenUsed marks a reset token as consumed.
func (r *TokenRepo) MarkResetTokenUsed(ctx context.Context, tokenID id.ID) error {
	result, err := r.txManager.GetQuerier(ctx).Exec(ctx, `
		UPDATE sys_password_reset_tokens
		SET used_at = NOW()
		WHERE id = $1 AND used_at IS NULL
	`, tokenID)

	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}

	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("reset_token", tokenID.String())
	}

	return nil
}

// CleanupExpiredTokens removes expired rows of both kinds.
// Called periodically by the background worker.
func (r *TokenRepo) CleanupExpiredTokens(ctx context.Context) (int, error) {
	querier := r.txManager.GetQuerier(ctx)

	refreshResult, err := querier.Exec(ctx, `
		DELETE FROM sys_refresh_tokens WHERE expires_at < NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("cleanup refresh tokens: %w", err)
	}

	resetResult, err := querier.Exec(ctx, `
		DELETE FROM sys_password_reset_tokens WHERE expires_at < NOW()
	`)
	if err != nil {
		return 0, fmt.Errorf("cleanup reset tokens: %w", err)
	}

	return int(refreshResult.RowsAffected() + resetResult.RowsAffected()), nil
}
