package models

import (
	"time"

	"github.com/google/uuid"
)

// Project statuses.
const (
	ProjectStatusDraft     = "draft"
	ProjectStatusPublished = "published"
)

// Project represents a published portfolio project. Ownership is
// exclusive: either personal (mutation rights belong to UserID alone)
// or team-owned (mutation rights follow team role). TeamID is set iff
// IsTeamProject is true.
type Project struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Technologies  StringList `json:"technologies"`
	Tags          StringList `json:"tags"`
	Thumbnail     string     `json:"thumbnail,omitempty"`
	RepoURL       string     `json:"repo_url,omitempty"`
	DemoURL       string     `json:"demo_url,omitempty"`
	Status        string     `json:"status"`
	Views         int        `json:"views"`
	Likes         int        `json:"likes"`
	CommentsCount int        `json:"comments_count"`
	UserID        uuid.UUID  `json:"user_id"`
	TeamID        *uuid.UUID `json:"team_id,omitempty"`
	IsTeamProject bool       `json:"is_team_project"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Comment is attached to a project and a user. Rows cascade on
// project and user deletion.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	ProjectID uuid.UUID `json:"project_id"`
	UserID    uuid.UUID `json:"user_id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}
