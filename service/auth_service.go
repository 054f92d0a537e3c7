package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const logoutMessage = "User logged out."

// RefreshPolicy controls the token lifecycle on refresh and login.
type RefreshPolicy struct {
	RotateRefreshTokens    bool
	BlacklistAfterRotation bool
	UpdateLastLogin        bool
}

// AuthService orchestrates registration, login, refresh, logout and
// access-token authentication. It holds no per-user state: concurrent
// requests are serialized only by the stores' single-row atomicity.
type AuthService struct {
	userRepo      repository.IUserRepository
	tokenRepo     repository.ITokenRepository
	blacklistRepo repository.IBlacklistRepository
	codec         *TokenCodec
	hasher        *PasswordHasher
	policy        RefreshPolicy
	now           func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	userRepo repository.IUserRepository,
	tokenRepo repository.ITokenRepository,
	blacklistRepo repository.IBlacklistRepository,
	codec *TokenCodec,
	hasher *PasswordHasher,
	policy RefreshPolicy,
) *AuthService {
	if hasher == nil {
		hasher = NewPasswordHasher()
	}
	return &AuthService{
		userRepo:      userRepo,
		tokenRepo:     tokenRepo,
		blacklistRepo: blacklistRepo,
		codec:         codec,
		hasher:        hasher,
		policy:        policy,
		now:           time.Now,
	}
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) HashPassword(password string) (string, error) {
	hashed, err := s.hasher.Hash(password)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to hash password")
		return "", err
	}
	return hashed, nil
}

func (s *AuthService) CheckPasswordHash(password, hash string) bool {
	return s.hasher.Verify(password, hash)
}

// Register creates an active, non-staff account.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	email := NormalizeEmail(req.Email)
	log := logger.Log.WithField("email", email)

	hashed, err := s.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Email:    email,
		Password: hashed,
		IsActive: true,
	}
	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateAccount
		}
		return nil, fmt.Errorf("could not create user: %w", err)
	}

	log.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login verifies credentials and issues a token pair, recording the refresh
// token in the ledger. Unknown email, wrong password and inactive account are
// indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.TokenPair, error) {
	email := NormalizeEmail(req.Email)
	log := logger.Log.WithField("email", email)

	user, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Burn a hash verification so response time does not reveal
			// whether the account exists.
			s.hasher.Verify(req.Password, s.timingHash())
			log.Info("Login failed: unknown email")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("could not look up user: %w", err)
	}

	if !s.CheckPasswordHash(req.Password, user.Password) || !user.IsActive {
		log.WithField("user_id", user.ID).Info("Login failed: bad password or inactive account")
		return nil, ErrInvalidCredentials
	}

	access, refresh, err := s.codec.IssuePair(user.ID)
	if err != nil {
		return nil, err
	}

	entry := &model.RefreshToken{
		Token:      refresh.Raw,
		UserID:     user.ID,
		ExpireTime: s.now().Add(s.codec.RefreshTTL()),
	}
	if err := s.tokenRepo.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("could not record refresh token: %w", err)
	}

	if s.policy.UpdateLastLogin {
		if err := s.userRepo.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
			log.WithError(err).Warn("Could not update last login; continuing")
		}
	}

	log.WithField("user_id", user.ID).Info("User logged in")
	return &model.TokenPair{AccessToken: access.Raw, RefreshToken: refresh.Raw}, nil
}

// Refresh exchanges a refresh token for a new access token and, when rotation
// is on, a new refresh token.
//
// The blacklist lookup and the later revocation are separate store calls, so
// two concurrent refreshes of one token can both pass the lookup. Rotation
// also does not write a ledger row for the new refresh token; only login does.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.TokenPair, error) {
	old, err := s.codec.Decode(refreshToken)
	if err != nil {
		return nil, err
	}
	if old.Type != model.TokenTypeRefresh {
		return nil, fmt.Errorf("%w: expected a refresh token", ErrInvalidToken)
	}

	log := logger.Log.WithFields(logrus.Fields{
		"user_id": old.Subject,
		"jti":     old.JTI,
	})

	revoked, err := s.blacklistRepo.Contains(ctx, old.JTI)
	if err != nil {
		return nil, fmt.Errorf("could not check blacklist: %w", err)
	}
	if revoked {
		log.Info("Refresh rejected: token is blacklisted")
		return nil, ErrTokenRevoked
	}

	access, err := s.codec.IssueAccess(old.Subject)
	if err != nil {
		return nil, err
	}
	pair := &model.TokenPair{AccessToken: access.Raw}

	if s.policy.RotateRefreshTokens {
		if s.policy.BlacklistAfterRotation {
			s.revoke(ctx, old, "rotation")
		}

		rotated, err := s.codec.IssueRefresh(old.Subject)
		if err != nil {
			return nil, err
		}
		pair.RefreshToken = rotated.Raw
		log.WithField("new_jti", rotated.JTI).Info("Refresh token rotated")
	}

	return pair, nil
}

// Logout revokes the given refresh token and removes its ledger row. It
// always succeeds: both steps are best-effort and a second call is a no-op.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) model.LogoutResponse {
	tok, err := s.codec.DecodeIgnoringExpiry(refreshToken)
	if err != nil {
		logger.Log.WithError(err).Info("Logout with an unverifiable token; nothing to blacklist")
	} else {
		s.revoke(ctx, tok, "logout")
	}

	deleted, err := s.tokenRepo.DeleteByToken(ctx, refreshToken)
	if err != nil {
		logger.Log.WithError(err).Warn("Could not delete refresh token from ledger; continuing")
	} else {
		logger.Log.WithField("ledger_rows_deleted", deleted).Info("User logged out")
	}

	return model.LogoutResponse{Success: logoutMessage}
}

// Authenticate resolves a bearer access token to an active user.
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (*model.User, error) {
	tok, err := s.codec.Decode(accessToken)
	if err != nil {
		return nil, err
	}
	if tok.Type != model.TokenTypeAccess {
		return nil, fmt.Errorf("%w: expected an access token", ErrInvalidToken)
	}

	revoked, err := s.blacklistRepo.Contains(ctx, tok.JTI)
	if err != nil {
		return nil, fmt.Errorf("could not check blacklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	user, err := s.userRepo.GetUserByID(ctx, tok.Subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("could not load user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrUserInactive
	}
	return user, nil
}

// revoke blacklists tok. Failures are logged and swallowed.
func (s *AuthService) revoke(ctx context.Context, tok *Token, reason string) {
	log := logger.Log.WithFields(logrus.Fields{
		"user_id": tok.Subject,
		"jti":     tok.JTI,
		"reason":  reason,
	})

	added, err := s.blacklistRepo.Add(ctx, &model.BlacklistedToken{
		JTI:       tok.JTI,
		UserID:    tok.Subject,
		ExpiresAt: tok.ExpiresAt,
	})
	if err != nil {
		log.WithError(err).Warn("Could not blacklist token; continuing")
		return
	}
	log.WithField("newly_added", added).Info("Token blacklisted")
}

func (s *AuthService) timingHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash("timing-equalizer")
		if err != nil {
			logger.Log.WithError(err).Warn("Could not prepare timing hash")
		}
		s.dummyHash = h
	})
	return s.dummyHash
}
