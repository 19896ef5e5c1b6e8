package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/taskchat/taskchat/internal/instrumentation"
	"github.com/taskchat/taskchat/internal/logging"
)

var (
	// ErrInvalidCredentials is returned on a failed login. Wrong email
	// and wrong password are indistinguishable on purpose.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrWeakPassword is returned when the password does not meet the
	// minimum length.
	ErrWeakPassword = errors.New("password must be at least 8 characters")
	// ErrInvalidEmail is returned for a malformed email address.
	ErrInvalidEmail = errors.New("invalid email address")
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 8

// TokenPair is the access/refresh token response of register, login and
// refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// Service implements registration, login and token refresh on top of
// the user store.
type Service struct {
	store   UserStore
	hasher  *PasswordHasher
	jwt     *JWTManager
	logger  *slog.Logger
	metrics *instrumentation.Metrics
}

// NewService creates an auth service. logger and metrics may be nil.
func NewService(store UserStore, jwtManager *JWTManager, logger *slog.Logger, metrics *instrumentation.Metrics) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = &instrumentation.Metrics{}
	}
	return &Service{
		store:   store,
		hasher:  NewPasswordHasher(),
		jwt:     jwtManager,
		logger:  logger,
		metrics: metrics,
	}
}

// JWT exposes the token manager, for the HTTP middleware.
func (s *Service) JWT() *JWTManager {
	return s.jwt
}

func (s *Service) tokenPair(userID, email string) (*TokenPair, error) {
	access, err := s.jwt.GenerateAccessToken(userID, email)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwt.GenerateRefreshToken(userID, email)
	if err != nil {
		return nil, err
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    s.jwt.AccessTokenDuration(),
		TokenType:    "bearer",
	}, nil
}

// Register creates a new account and returns the user with a fresh
// token pair.
func (s *Service) Register(ctx context.Context, email, password, name string) (*User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") || len(email) < 3 {
		return nil, nil, ErrInvalidEmail
	}
	if len(password) < MinPasswordLength {
		return nil, nil, ErrWeakPassword
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, err
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		Name:         strings.TrimSpace(name),
		PasswordHash: hash,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, nil, err
	}

	pair, err := s.tokenPair(user.ID.String(), user.Email)
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("user registered", logging.UserHash(user.ID.String()))
	return user, pair, nil
}

// Login verifies the credentials and returns the user with a fresh
// token pair.
func (s *Service) Login(ctx context.Context, email, password string) (*User, *TokenPair, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.metrics.RecordAuthAttempt(ctx, instrumentation.AuthResultFailure)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.metrics.RecordAuthAttempt(ctx, instrumentation.AuthResultFailure)
		s.logger.Warn("login failed", logging.UserHash(user.ID.String()))
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.tokenPair(user.ID.String(), user.Email)
	if err != nil {
		return nil, nil, err
	}

	s.metrics.RecordAuthAttempt(ctx, instrumentation.AuthResultSuccess)
	s.logger.Info("user logged in", logging.UserHash(user.ID.String()))
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := s.jwt.ValidateRefreshToken(refreshToken)
	if err != nil {
		result := instrumentation.AuthResultFailure
		if errors.Is(err, ErrExpiredToken) {
			result = instrumentation.AuthResultExpired
		}
		s.metrics.RecordTokenRefresh(ctx, result)
		return nil, err
	}

	pair, err := s.tokenPair(claims.UserID, claims.Email)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTokenRefresh(ctx, instrumentation.AuthResultSuccess)
	return pair, nil
}
