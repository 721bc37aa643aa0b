// Package services contains server-side business logic. UserService covers
// registration, login, access token refresh, logout and request
// authentication; Sweeper runs the periodic cleanup.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/motek/internal/common"
	"github.com/dmitrijs2005/motek/internal/dbx"
	"github.com/dmitrijs2005/motek/internal/logging"
	"github.com/dmitrijs2005/motek/internal/server/auth"
	"github.com/dmitrijs2005/motek/internal/server/config"
	"github.com/dmitrijs2005/motek/internal/server/models"
	"github.com/dmitrijs2005/motek/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// maxIssueAttempts bounds retries when a freshly generated refresh token
// collides with an existing one.
const maxIssueAttempts = 3

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Identity is the authenticated caller of a protected request.
type Identity struct {
	UserID   string
	Platform string
}

type UserService struct {
	repomanager          repomanager.RepositoryManager
	codec                *auth.Codec
	refreshTokenValidity time.Duration
	bcryptCost           int
	logger               logging.Logger

	now             func() time.Time
	newRefreshToken func() (string, error)

	dummyOnce sync.Once
	dummyHash string
}

type Option func(*UserService)

// WithClock replaces time.Now for refresh token expiry, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

// WithTokenGenerator replaces the refresh token generator, for tests.
func WithTokenGenerator(gen func() (string, error)) Option {
	return func(s *UserService) { s.newRefreshToken = gen }
}

// NewUserService constructs a UserService using repositories, the access
// token codec and server config.
func NewUserService(m repomanager.RepositoryManager, codec *auth.Codec, cfg *config.Config, logger logging.Logger, opts ...Option) *UserService {
	s := &UserService{
		repomanager:          m,
		codec:                codec,
		refreshTokenValidity: cfg.RefreshTokenValidity(),
		bcryptCost:           cfg.BcryptCost,
		logger:               logger.With("module", "users"),
		now:                  time.Now,
		newRefreshToken: func() (string, error) {
			return auth.RandomAlphanumeric(common.RefreshTokenLength)
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates a user. Duplicate emails yield common.ErrorAlreadyExists,
// policy violations common.ErrorValidation.
func (s *UserService) Register(ctx context.Context, email, password string) (*models.User, error) {
	email = NormalizeEmail(email)
	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		s.logger.Error(ctx, "hash password", logging.Err(err))
		return nil, common.ErrorInternal
	}

	u, err := s.repomanager.Users(s.repomanager.Conn()).Create(ctx, &models.User{Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, common.ErrorAlreadyExists
		}
		s.logger.Error(ctx, "create user", logging.Err(err))
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login verifies credentials and issues an access token for platform plus a
// new refresh token. Unknown emails and wrong passwords are indistinguishable.
func (s *UserService) Login(ctx context.Context, email, password, platform string) (*TokenPair, error) {
	platform, err := NormalizePlatform(platform)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.repomanager.Conn())
	user, err := repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			auth.VerifyPassword(password, s.dummy())
			return nil, common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "find user by email", logging.Err(err))
		return nil, common.ErrorInternal
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, common.ErrorUnauthorized
	}

	if auth.NeedsRehash(user.PasswordHash, s.bcryptCost) {
		s.rehash(ctx, user.ID, password)
	}

	access, err := s.codec.Issue(user.ID, platform)
	if err != nil {
		s.logger.Error(ctx, "issue access token", logging.Err(err))
		return nil, common.ErrorInternal
	}

	refresh, err := s.issueRefreshToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh exchanges a live refresh token for a new access token. The refresh
// token itself is not rotated.
func (s *UserService) Refresh(ctx context.Context, refreshToken, platform string) (string, error) {
	platform, err := NormalizePlatform(platform)
	if err != nil {
		return "", err
	}

	token, err := s.repomanager.RefreshTokens(s.repomanager.Conn()).Find(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "find refresh token", logging.Err(err))
		return "", common.ErrorInternal
	}

	switch {
	case token.Revoked:
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrRefreshTokenRevoked)
	case token.Expired(s.now()):
		return "", fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrRefreshTokenExpired)
	}

	if _, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, token.UserID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrorUnauthorized
		}
		s.logger.Error(ctx, "find refresh token owner", logging.Err(err))
		return "", common.ErrorInternal
	}

	access, err := s.codec.Issue(token.UserID, platform)
	if err != nil {
		s.logger.Error(ctx, "issue access token", logging.Err(err))
		return "", common.ErrorInternal
	}
	return access, nil
}

// Logout revokes one refresh token owned by userID. Unknown tokens are a
// no-op; a token owned by someone else yields common.ErrorForbidden.
func (s *UserService) Logout(ctx context.Context, userID, refreshToken string) error {
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.RefreshTokens(tx)

		token, err := repo.Find(ctx, refreshToken)
		if err != nil {
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		}
		if token.UserID != userID {
			return common.ErrorForbidden
		}
		return repo.Revoke(ctx, refreshToken)
	})

	switch {
	case err == nil:
		return nil
	case errors.Is(err, common.ErrorForbidden):
		s.logger.Warn(ctx, "logout with foreign refresh token", "user_id", userID)
		return common.ErrorForbidden
	default:
		s.logger.Error(ctx, "revoke refresh token", logging.Err(err))
		return common.ErrorInternal
	}
}

// LogoutAll revokes every refresh token of userID and returns how many were
// live.
func (s *UserService) LogoutAll(ctx context.Context, userID string) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.repomanager.Conn()).RevokeAllForUser(ctx, userID)
	if err != nil {
		s.logger.Error(ctx, "revoke all refresh tokens", logging.Err(err))
		return 0, common.ErrorInternal
	}
	s.logger.Info(ctx, "logged out everywhere", "user_id", userID, "revoked", n)
	return n, nil
}

// RevokeAllForEmail is LogoutAll keyed by email, for operators.
func (s *UserService) RevokeAllForEmail(ctx context.Context, email string) (int64, error) {
	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.ErrorNotFound
		}
		s.logger.Error(ctx, "find user by email", logging.Err(err))
		return 0, common.ErrorInternal
	}
	return s.LogoutAll(ctx, user.ID)
}

// Authenticate verifies an access token and resolves its subject to an
// existing user. Token problems and unknown users wrap
// common.ErrorUnauthorized; storage failures are common.ErrorInternal.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*Identity, error) {
	claims, err := s.codec.Verify(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}

	if _, err := uuid.Parse(claims.Subject); err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, common.ErrTokenMalformed)
	}

	user, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: unknown user", common.ErrorUnauthorized)
		}
		s.logger.Error(ctx, "resolve token subject", logging.Err(err))
		return nil, common.ErrorInternal
	}

	return &Identity{UserID: user.ID, Platform: claims.Platform}, nil
}

// GetUser returns the user with id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := s.repomanager.Users(s.repomanager.Conn()).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		s.logger.Error(ctx, "get user", logging.Err(err))
		return nil, common.ErrorInternal
	}
	return u, nil
}

// SweepExpired deletes refresh tokens that are expired or revoked.
func (s *UserService) SweepExpired(ctx context.Context) (int64, error) {
	n, err := s.repomanager.RefreshTokens(s.repomanager.Conn()).DeleteExpired(ctx, s.now())
	if err != nil {
		s.logger.Error(ctx, "sweep refresh tokens", logging.Err(err))
		return 0, common.ErrorInternal
	}
	return n, nil
}

// --- helpers below ---

func (s *UserService) issueRefreshToken(ctx context.Context, userID string) (string, error) {
	repo := s.repomanager.RefreshTokens(s.repomanager.Conn())

	for attempt := 1; attempt <= maxIssueAttempts; attempt++ {
		value, err := s.newRefreshToken()
		if err != nil {
			s.logger.Error(ctx, "generate refresh token", logging.Err(err))
			return "", common.ErrorInternal
		}

		now := s.now()
		token := &models.RefreshToken{
			UserID:    userID,
			Token:     value,
			CreatedAt: now,
			ExpiresAt: now.Add(s.refreshTokenValidity),
		}
		err = repo.Create(ctx, token)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, common.ErrorAlreadyExists) {
			s.logger.Error(ctx, "store refresh token", logging.Err(err))
			return "", common.ErrorInternal
		}
		s.logger.Warn(ctx, "refresh token collision", "attempt", attempt)
	}

	return "", common.ErrorInternal
}

func (s *UserService) rehash(ctx context.Context, userID, password string) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err == nil {
		err = s.repomanager.Users(s.repomanager.Conn()).UpdatePasswordHash(ctx, userID, hash)
	}
	if err != nil {
		s.logger.Warn(ctx, "password rehash failed", "user_id", userID, logging.Err(err))
	}
}

// dummy returns a hash to compare against when the email is unknown, so the
// response time does not reveal whether an account exists.
func (s *UserService) dummy() string {
	s.dummyOnce.Do(func() {
		h, err := auth.HashPassword("motek-dummy-password", s.bcryptCost)
		if err == nil {
			s.dummyHash = h
		}
	})
	return s.dummyHash
}
