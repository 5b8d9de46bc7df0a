package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/makerfolio/makerfolio-api/pkg/apperrors"
	"github.com/makerfolio/makerfolio-api/pkg/auth"
	"github.com/makerfolio/makerfolio-api/pkg/models"
	"github.com/makerfolio/makerfolio-api/pkg/services"
)

// mockTeamService is a configurable mock for handler tests.
type mockTeamService struct {
	team    *models.Team
	teams   []*models.Team
	members []*models.TeamMember
	member  *models.TeamMember
	err     error
}

func (m *mockTeamService) Create(ctx context.Context, name, description string, leaderID uuid.UUID) (*models.Team, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.Team{ID: uuid.New(), Name: name, Description: description, LeaderID: leaderID}, nil
}

func (m *mockTeamService) GetByID(ctx context.Context, teamID uuid.UUID) (*models.Team, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.team, nil
}

func (m *mockTeamService) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Team, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.teams, nil
}

func (m *mockTeamService) Update(ctx context.Context, teamID uuid.UUID, patch services.TeamUpdate, actorID uuid.UUID) (*models.Team, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.team, nil
}

func (m *mockTeamService) Delete(ctx context.Context, teamID, actorID uuid.UUID) error {
	return m.err
}

func (m *mockTeamService) GetMembers(ctx context.Context, teamID uuid.UUID) ([]*models.TeamMember, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.members, nil
}

func (m *mockTeamService) AddMember(ctx context.Context, teamID, userID uuid.UUID, role string, actorID uuid.UUID) (*models.TeamMember, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &models.TeamMember{TeamID: teamID, UserID: userID, Role: role}, nil
}

func (m *mockTeamService) RemoveMember(ctx context.Context, teamID, memberID, actorID uuid.UUID) error {
	return m.err
}

func (m *mockTeamService) UpdateMemberRole(ctx context.Context, teamID, memberID uuid.UUID, newRole string, actorID uuid.UUID) (*models.TeamMember, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.member, nil
}

func (m *mockTeamService) TransferLeadership(ctx context.Context, teamID, newLeaderID, actorID uuid.UUID) error {
	return m.err
}

// authedRequest builds a request whose context carries claims for the
// given user, the way the auth middleware would.
func authedRequest(method, target string, body []byte, userID uuid.UUID) *http.Request {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	claims := &auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{Subject: userID.String()},
		Role:             models.SiteRoleUser,
	}
	return req.WithContext(context.WithValue(req.Context(), auth.ClaimsKey, claims))
}

func newTeamsMux(service services.TeamService) *http.ServeMux {
	mux := http.NewServeMux()
	h := NewTeamsHandler(service, zap.NewNop())
	mux.HandleFunc("POST /api/teams", h.Create)
	mux.HandleFunc("GET /api/teams/{id}", h.Get)
	mux.HandleFunc("POST /api/teams/{id}/members", h.AddMember)
	mux.HandleFunc("DELETE /api/teams/{id}/members/{memberId}", h.RemoveMember)
	mux.HandleFunc("POST /api/teams/{id}/leadership", h.TransferLeadership)
	return mux
}

func TestTeamsHandler_Create(t *testing.T) {
	mux := newTeamsMux(&mockTeamService{})

	body, _ := json.Marshal(CreateTeamRequest{Name: "robotics"})
	req := authedRequest(http.MethodPost, "/api/teams", body, uuid.New())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d", http.StatusCreated, rec.Code)
	}

	var team models.Team
	if err := json.NewDecoder(rec.Body).Decode(&team); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if team.Name != "robotics" {
		t.Errorf("expected team name robotics, got %q", team.Name)
	}
}

func TestTeamsHandler_Get_NotFound(t *testing.T) {
	mux := newTeamsMux(&mockTeamService{err: apperrors.ErrNotFound})

	req := authedRequest(http.MethodGet, "/api/teams/"+uuid.NewString(), nil, uuid.New())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
	}
}

func TestTeamsHandler_Get_InvalidID(t *testing.T) {
	mux := newTeamsMux(&mockTeamService{})

	req := authedRequest(http.MethodGet, "/api/teams/not-a-uuid", nil, uuid.New())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestTeamsHandler_AddMember_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		serviceErr error
		wantStatus int
	}{
		{"forbidden for non-leader", apperrors.Forbidden("only the team leader can manage members"), http.StatusForbidden},
		{"conflict for duplicate", apperrors.ErrConflict, http.StatusConflict},
		{"invalid role", apperrors.Invalid("role must be one of: admin, member"), http.StatusBadRequest},
		{"missing team", apperrors.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newTeamsMux(&mockTeamService{err: tt.serviceErr})

			body, _ := json.Marshal(AddMemberRequest{UserID: uuid.NewString(), Role: "member"})
			req := authedRequest(http.MethodPost, "/api/teams/"+uuid.NewString()+"/members", body, uuid.New())
			rec := httptest.NewRecorder()

			mux.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}
}

func TestTeamsHandler_RemoveMember_LeaderRejected(t *testing.T) {
	mux := newTeamsMux(&mockTeamService{err: apperrors.Invalid("cannot remove the team leader")})

	req := authedRequest(http.MethodDelete,
		"/api/teams/"+uuid.NewString()+"/members/"+uuid.NewString(), nil, uuid.New())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected status %d, got %d", http.StatusBadRequest, rec.Code)
	}
}

func TestTeamsHandler_TransferLeadership_Success(t *testing.T) {
	mux := newTeamsMux(&mockTeamService{})

	body, _ := json.Marshal(TransferLeadershipRequest{NewLeaderID: uuid.NewString()})
	req := authedRequest(http.MethodPost, "/api/teams/"+uuid.NewString()+"/leadership", body, uuid.New())
	rec := httptest.NewRecorder()

	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
}
