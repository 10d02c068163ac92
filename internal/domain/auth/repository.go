package auth

import (
	"context"

	"retailcore/internal/core/id"
)

// UserRepository defines user storage operations, all tenant-scoped.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, tenantID, userID id.ID) (*User, error)

	// GetByEmail retrieves a user by email within the tenant
	// (case-insensitive).
	GetByEmail(ctx context.Context, tenantID id.ID, email string) (*User, error)

	// Update writes the user conditionally on its version.
	Update(ctx context.Context, user *User) error

	// Delete soft-deletes a user.
	Delete(ctx context.Context, tenantID, userID id.ID) error

	List(ctx context.Context, tenantID id.ID, filter UserFilter) ([]User, int, error)

	// ExistsByEmail checks if email is taken within the tenant.
	ExistsByEmail(ctx context.Context, tenantID id.ID, email string) (bool, error)
}

// TokenRepository defines refresh and reset token storage.
type TokenRepository interface {
	SaveRefreshToken(ctx context.Context, token *RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenID id.ID, reason string) error
	RevokeAllUserTokens(ctx context.Context, userID id.ID, reason string) error

	SaveResetToken(ctx context.Context, token *PasswordResetToken) error
	GetResetToken(ctx context.Context, tokenHash string) (*PasswordResetToken, error)
	MarkResetTokenUsed(ctx context.Context, tokenID id.ID) error

	// CleanupExpiredTokens removes expired rows of both kinds.
	CleanupExpiredTokens(ctx context.Context) (int, error)
}

// UserFilter for listing users.
type UserFilter struct {
	Search   string
	IsActive *bool
	Role     string
	Limit    int
	Offset   int
}
