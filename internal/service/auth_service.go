package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storefront/internal/auth"
	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

type authService struct {
	userRepo repository.UserRepository
	secret   string
	ttl      time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuthService creates a new admin authentication service.
func NewAuthService(userRepo repository.UserRepository, secret string, ttl time.Duration, logger zerolog.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		secret:   secret,
		ttl:      ttl,
		logger:   logger.With().Str("service", "auth").Logger(),
		now:      time.Now,
	}
}

// Login checks the credentials of a back-office account and issues a
// session token. Unknown emails and wrong passwords are indistinguishable.
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.Session, error) {
	if req == nil || strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, model.ValidationError("Email and password are required")
	}
	email := strings.TrimSpace(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil || !auth.CheckPassword(user.PasswordHash, req.Password) {
		s.logger.Warn().Str("email", email).Msg("failed login attempt")
		return nil, model.ErrInvalidCredentials
	}
	if user.Role != model.RoleAdmin {
		s.logger.Warn().Str("email", email).Str("role", user.Role).Msg("non-admin login rejected")
		return nil, model.ErrInvalidCredentials
	}

	token, expiresAt, err := auth.GenerateToken(s.secret, user.ID, user.Email, user.Role, s.ttl, s.now())
	if err != nil {
		return nil, err
	}

	s.logger.Info().Int64("user_id", user.ID).Msg("admin logged in")

	return &model.Session{Token: token, ExpiresAt: expiresAt, User: *user}, nil
}

// Authenticate checks a session token and requires the admin role.
func (s *authService) Authenticate(token string) (*auth.Claims, error) {
	claims, err := auth.ValidateToken(s.secret, token)
	if err != nil {
		return nil, model.NewDomainError(model.ErrCodeUnauthorised, "Invalid or expired session")
	}
	if claims.Role != model.RoleAdmin {
		return nil, model.NewDomainError(model.ErrCodeUnauthorised, "Admin access required")
	}
	return claims, nil
}
