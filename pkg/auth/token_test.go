package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/makerfolio/makerfolio-api/pkg/models"
)

func testUser() *models.User {
	return &models.User{
		ID:       uuid.New(),
		Username: "maya",
		Role:     models.SiteRoleUser,
	}
}

func TestTokenManager_IssueAndValidate(t *testing.T) {
	tm, err := NewTokenManager("test-secret", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager failed: %v", err)
	}

	user := testUser()
	token, err := tm.Issue(user)
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	claims, err := tm.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.Subject != user.ID.String() {
		t.Errorf("expected subject %s, got %s", user.ID, claims.Subject)
	}
	if claims.Username != "maya" {
		t.Errorf("expected username maya, got %q", claims.Username)
	}
	if claims.Role != models.SiteRoleUser {
		t.Errorf("expected role %q, got %q", models.SiteRoleUser, claims.Role)
	}
}

func TestTokenManager_EmptySecret(t *testing.T) {
	if _, err := NewTokenManager("", time.Hour); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestTokenManager_WrongSecret(t *testing.T) {
	tm1, _ := NewTokenManager("secret-one", time.Hour)
	tm2, _ := NewTokenManager("secret-two", time.Hour)

	token, err := tm1.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := tm2.Validate(token); err == nil {
		t.Fatal("expected validation to fail with a different secret")
	}
}

func TestTokenManager_ExpiredToken(t *testing.T) {
	tm, _ := NewTokenManager("test-secret", time.Hour)
	tm.ttl = -time.Minute

	token, err := tm.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := tm.Validate(token); err == nil {
		t.Fatal("expected validation to fail for expired token")
	}
}

func TestTokenManager_TamperedToken(t *testing.T) {
	tm, _ := NewTokenManager("test-secret", time.Hour)

	token, err := tm.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	parts := strings.Split(token, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]
	if _, err := tm.Validate(tampered); err == nil {
		t.Fatal("expected validation to fail for tampered token")
	}
}
