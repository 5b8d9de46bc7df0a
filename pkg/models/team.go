package models

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a group of users collaborating on projects.
// Invariant: LeaderID always has a matching TeamMember row with the
// leader role, and no other row carries it.
type Team struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description"`
	LeaderID     uuid.UUID  `json:"leader_id"`
	Avatar       string     `json:"avatar,omitempty"`
	Achievements StringList `json:"achievements"`
	Stats        JSONBMap   `json:"stats"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TeamMember binds one user to one team with a role. Unique on
// (TeamID, UserID): a user holds at most one role per team.
type TeamMember struct {
	ID       uuid.UUID `json:"id"`
	TeamID   uuid.UUID `json:"team_id"`
	UserID   uuid.UUID `json:"user_id"`
	Role     string    `json:"role"` // 'leader', 'admin', 'member'
	JoinedAt time.Time `json:"joined_at"`
}

// IsLeader reports whether the membership carries the leader role.
func (m *TeamMember) IsLeader() bool {
	return m != nil && m.Role == TeamRoleLeader
}
