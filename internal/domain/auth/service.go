package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"retailcore/internal/core/apperror"
	"retailcore/internal/core/clock"
	"retailcore/internal/core/id"
	"retailcore/internal/core/tx"
	"retailcore/pkg/logger"
)

const (
	maxLoginAttempts = 5
	lockDuration     = 15 * time.Minute
	refreshTokenTTL  = 30 * 24 * time.Hour
	resetTokenTTL    = time.Hour
	minPasswordLen   = 8
)

// Service provides authentication operations.
type Service struct {
	users     UserRepository
	tokens    TokenRepository
	jwt       *JWTService
	txManager tx.Manager
	clock     clock.Clock
}

// NewService creates an auth service.
func NewService(users UserRepository, tokens TokenRepository, jwtSvc *JWTService, txManager tx.Manager, clk clock.Clock) *Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &Service{
		users:     users,
		tokens:    tokens,
		jwt:       jwtSvc,
		txManager: txManager,
		clock:     clk,
	}
}

// Register creates a new user within the tenant.
func (s *Service) Register(ctx context.Context, tenantID id.ID, req RegisterRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if len(req.Password) < minPasswordLen {
		return nil, apperror.NewValidation(fmt.Sprintf("password must be at least %d characters", minPasswordLen)).
			WithDetail("field", "password")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("hash password: %w", err))
	}

	user := NewUser(tenantID, email, string(hash), req.Role, s.clock.Now())
	user.FirstName = req.FirstName
	user.LastName = req.LastName

	if err := user.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		taken, err := s.users.ExistsByEmail(txCtx, tenantID, email)
		if err != nil {
			return err
		}
		if taken {
			return apperror.NewConflict("user with this email already exists").
				WithDetail("email", email)
		}
		return s.users.Create(txCtx, user)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "user registered", "user_id", user.ID, "email", email)
	return user, nil
}

// Login verifies credentials and issues a token pair. Failed attempts
// are counted and eventually lock the account.
func (s *Service) Login(ctx context.Context, tenantID id.ID, creds Credentials) (*TokenPair, error) {
	email := strings.ToLower(strings.TrimSpace(creds.Email))
	now := s.clock.Now()

	user, err := s.users.GetByEmail(ctx, tenantID, email)
	if err != nil {
		if apperror.IsNotFound(err) {
			// Same response for unknown email and wrong password.
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, err
	}

	if err := user.CanLogin(now); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(now, maxLoginAttempts, lockDuration)
		if updateErr := s.users.Update(ctx, user); updateErr != nil {
			logger.Warn(ctx, "record failed login", "error", updateErr)
		}
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	user.RecordSuccessfulLogin(now)
	if err := s.users.Update(ctx, user); err != nil {
		logger.Warn(ctx, "record successful login", "error", err)
	}

	return s.issueTokens(ctx, user, now)
}

// Refresh exchanges a valid refresh token for a new pair. The used
// token is revoked (rotation).
func (s *Service) Refresh(ctx context.Context, tenantID id.ID, refreshToken string) (*TokenPair, error) {
	now := s.clock.Now()
	stored, err := s.tokens.GetRefreshToken(ctx, hashToken(refreshToken))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid refresh token")
		}
		return nil, err
	}
	if !stored.IsValid(now) {
		return nil, apperror.NewUnauthorized("refresh token expired or revoked")
	}

	user, err := s.users.GetByID(ctx, tenantID, stored.UserID)
	if err != nil {
		return nil, apperror.NewUnauthorized("invalid refresh token")
	}
	if err := user.CanLogin(now); err != nil {
		return nil, err
	}

	if err := s.tokens.RevokeRefreshToken(ctx, stored.ID, "rotated"); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user, now)
}

// Logout revokes all refresh tokens of the user.
func (s *Service) Logout(ctx context.Context, userID id.ID) error {
	return s.tokens.RevokeAllUserTokens(ctx, userID, "logout")
}

// ChangePassword verifies the old password and sets a new one. All
// refresh tokens are revoked.
func (s *Service) ChangePassword(ctx context.Context, tenantID, userID id.ID, oldPassword, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperror.NewValidation(fmt.Sprintf("password must be at least %d characters", minPasswordLen)).
			WithDetail("field", "newPassword")
	}

	user, err := s.users.GetByID(ctx, tenantID, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return apperror.NewUnauthorized("invalid credentials")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("hash password: %w", err))
	}
	user.PasswordHash = string(hash)
	user.UpdatedAt = s.clock.Now().UTC()

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.users.Update(txCtx, user); err != nil {
			return err
		}
		return s.tokens.RevokeAllUserTokens(txCtx, userID, "password changed")
	})
}

// RequestPasswordReset issues a reset token for the email. The token is
// returned to the caller; mail delivery is handled elsewhere. Unknown
// emails produce no error, so the endpoint does not leak existence.
func (s *Service) RequestPasswordReset(ctx context.Context, tenantID id.ID, email string) (string, error) {
	user, err := s.users.GetByEmail(ctx, tenantID, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if apperror.IsNotFound(err) {
			return "", nil
		}
		return "", err
	}

	raw, err := randomToken()
	if err != nil {
		return "", apperror.NewInternal(err)
	}
	now := s.clock.Now()
	token := &PasswordResetToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: now.Add(resetTokenTTL),
		CreatedAt: now.UTC(),
	}
	if err := s.tokens.SaveResetToken(ctx, token); err != nil {
		return "", err
	}
	return raw, nil
}

// ResetPassword redeems a reset token and sets the new password.
func (s *Service) ResetPassword(ctx context.Context, tenantID id.ID, rawToken, newPassword string) error {
	if len(newPassword) < minPasswordLen {
		return apperror.NewValidation(fmt.Sprintf("password must be at least %d characters", minPasswordLen)).
			WithDetail("field", "newPassword")
	}

	now := s.clock.Now()
	token, err := s.tokens.GetResetToken(ctx, hashToken(rawToken))
	if err != nil {
		if apperror.IsNotFound(err) {
			return apperror.NewUnauthorized("invalid reset token")
		}
		return err
	}
	if !token.IsValid(now) {
		return apperror.NewUnauthorized("reset token expired or already used")
	}

	user, err := s.users.GetByID(ctx, tenantID, token.UserID)
	if err != nil {
		return apperror.NewUnauthorized("invalid reset token")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return apperror.NewInternal(fmt.Errorf("hash password: %w", err))
	}
	user.PasswordHash = string(hash)
	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.UpdatedAt = now.UTC()

	return s.txManager.RunInTransaction(ctx, func(txCtx context.Context) error {
		if err := s.tokens.MarkResetTokenUsed(txCtx, token.ID); err != nil {
			return err
		}
		if err := s.users.Update(txCtx, user); err != nil {
			return err
		}
		return s.tokens.RevokeAllUserTokens(txCtx, user.ID, "password reset")
	})
}

// GetByID retrieves a user within the tenant.
func (s *Service) GetByID(ctx context.Context, tenantID, userID id.ID) (*User, error) {
	return s.users.GetByID(ctx, tenantID, userID)
}

// List retrieves users with filtering.
func (s *Service) List(ctx context.Context, tenantID id.ID, filter UserFilter) ([]User, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	return s.users.List(ctx, tenantID, filter)
}

// ValidateToken delegates to the JWT service.
func (s *Service) ValidateToken(token string) (*Claims, error) {
	uc, err := s.jwt.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &Claims{
		UserID:   uc.UserID,
		TenantID: uc.TenantID,
		Email:    uc.Email,
		Role:     uc.Role,
		IsAdmin:  uc.IsAdmin,
	}, nil
}

func (s *Service) issueTokens(ctx context.Context, user *User, now time.Time) (*TokenPair, error) {
	access, expiresAt, err := s.jwt.GenerateAccessToken(user, now)
	if err != nil {
		return nil, apperror.NewInternal(err)
	}

	raw, err := randomToken()
	if err != nil {
		return nil, apperror.NewInternal(err)
	}
	refresh := &RefreshToken{
		ID:        id.New(),
		UserID:    user.ID,
		TokenHash: hashToken(raw),
		ExpiresAt: now.Add(refreshTokenTTL),
		CreatedAt: now.UTC(),
	}
	if err := s.tokens.SaveRefreshToken(ctx, refresh); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  access,
		RefreshToken: raw,
		ExpiresAt:    expiresAt,
		TokenType:    "Bearer",
	}, nil
}

func randomToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
