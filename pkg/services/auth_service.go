package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
	"github.com/makerfolio/makerfolio-api/pkg/models"
	"github.com/makerfolio/makerfolio-api/pkg/repositories"
)

// TokenIssuer mints signed tokens for authenticated users.
// pkg/auth.TokenManager satisfies it.
type TokenIssuer interface {
	Issue(user *models.User) (string, error)
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// AuthService handles registration and login. Password hashing is an
// explicit step here at the service boundary, not a persistence hook,
// so storage stays oblivious to credential handling.
type AuthService interface {
	Register(ctx context.Context, username, email, password string) (*AuthResult, error)
	Login(ctx context.Context, email, password string) (*AuthResult, error)
}

// authService implements AuthService.
type authService struct {
	userRepo repositories.UserRepository
	issuer   TokenIssuer
	logger   *zap.Logger
}

// NewAuthService creates a new auth service with dependencies.
func NewAuthService(userRepo repositories.UserRepository, issuer TokenIssuer, logger *zap.Logger) AuthService {
	return &authService{
		userRepo: userRepo,
		issuer:   issuer,
		logger:   logger,
	}
}

// Register creates an account with a bcrypt-hashed password and
// returns it with a fresh token. Duplicate username or email surfaces
// as ErrConflict.
func (s *authService) Register(ctx context.Context, username, email, password string) (*AuthResult, error) {
	if username == "" || email == "" {
		return nil, apperrors.Invalid("username and email are required")
	}
	if len(password) < 8 {
		return nil, apperrors.Invalid("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.SiteRoleUser,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return &AuthResult{User: user, Token: token}, nil
}

// Login verifies credentials and returns the user with a fresh token.
// A missing account and a wrong password are indistinguishable to the
// caller.
func (s *authService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Forbidden("invalid credentials")
		}
		return nil, err
	}

	if !user.IsActive {
		return nil, apperrors.Forbidden("account is deactivated")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, apperrors.Forbidden("invalid credentials")
	}

	token, err := s.issuer.Issue(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{User: user, Token: token}, nil
}

// Ensure authService implements AuthService at compile time.
var _ AuthService = (*authService)(nil)
