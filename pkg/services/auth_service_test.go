package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
	"github.com/makerfolio/makerfolio-api/pkg/models"
)

// mockUserRepository is a configurable mock for testing AuthService
// and UserService.
type mockUserRepository struct {
	user      *models.User
	createErr error
	getErr    error
	updateErr error

	capturedUser *models.User
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	m.capturedUser = user
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.user, nil
}

func (m *mockUserRepository) Update(ctx context.Context, user *models.User) error {
	m.capturedUser = user
	return m.updateErr
}

// staticIssuer issues a fixed token.
type staticIssuer struct {
	token string
	err   error
}

func (s staticIssuer) Issue(user *models.User) (string, error) {
	return s.token, s.err
}

func newTestAuthService(repo *mockUserRepository) AuthService {
	return NewAuthService(repo, staticIssuer{token: "tok"}, zap.NewNop())
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := &mockUserRepository{}
	service := newTestAuthService(repo)

	result, err := service.Register(context.Background(), "maya", "maya@example.com", "longenough")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if result.Token != "tok" {
		t.Errorf("expected issued token, got %q", result.Token)
	}
	if repo.capturedUser == nil {
		t.Fatal("expected user to be persisted")
	}
	if repo.capturedUser.Role != models.SiteRoleUser {
		t.Errorf("expected default site role, got %q", repo.capturedUser.Role)
	}
	if !repo.capturedUser.IsActive {
		t.Error("expected new account to be active")
	}
	if repo.capturedUser.PasswordHash == "longenough" {
		t.Error("password must not be stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(repo.capturedUser.PasswordHash), []byte("longenough")); err != nil {
		t.Errorf("stored hash does not verify: %v", err)
	}
}

func TestAuthService_Register_ShortPassword(t *testing.T) {
	repo := &mockUserRepository{}
	service := newTestAuthService(repo)

	_, err := service.Register(context.Background(), "maya", "maya@example.com", "short")
	if !errors.Is(err, apperrors.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
	if repo.capturedUser != nil {
		t.Error("should not have called repository")
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	repo := &mockUserRepository{createErr: apperrors.ErrConflict}
	service := newTestAuthService(repo)

	_, err := service.Register(context.Background(), "maya", "maya@example.com", "longenough")
	if !errors.Is(err, apperrors.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt failed: %v", err)
	}
	repo := &mockUserRepository{user: &models.User{
		ID:           uuid.New(),
		Email:        "maya@example.com",
		PasswordHash: string(hash),
		IsActive:     true,
	}}
	service := newTestAuthService(repo)

	result, err := service.Login(context.Background(), "maya@example.com", "longenough")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if result.Token != "tok" {
		t.Errorf("expected issued token, got %q", result.Token)
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.MinCost)
	repo := &mockUserRepository{user: &models.User{
		ID:           uuid.New(),
		PasswordHash: string(hash),
		IsActive:     true,
	}}
	service := newTestAuthService(repo)

	_, err := service.Login(context.Background(), "maya@example.com", "wrong")
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthService_Login_UnknownEmailIndistinguishable(t *testing.T) {
	repo := &mockUserRepository{getErr: apperrors.ErrNotFound}
	service := newTestAuthService(repo)

	_, err := service.Login(context.Background(), "nobody@example.com", "whatever")
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAuthService_Login_DeactivatedAccount(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.MinCost)
	repo := &mockUserRepository{user: &models.User{
		ID:           uuid.New(),
		PasswordHash: string(hash),
		IsActive:     false,
	}}
	service := newTestAuthService(repo)

	_, err := service.Login(context.Background(), "maya@example.com", "longenough")
	if !errors.Is(err, apperrors.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
