package dto

import (
	"time"

	"job-board-api/internal/models"

	"github.com/google/uuid"
)

// --- Job Request DTOs ---

// CreateJobRequest defines the structure for creating a new job posting.
type CreateJobRequest struct {
	Name        string `form:"name" json:"name" validate:"required,max=200"`
	Description string `form:"description" json:"description" validate:"omitempty,max=140"`
	Location    string `form:"location" json:"location" validate:"omitempty,max=200"`
	Company     string `form:"company" json:"company" validate:"omitempty,max=200"`
	Skills      string `form:"skills" json:"skills" validate:"omitempty,max=1000"` // space or comma separated
}

// ListJobsRequest defines parameters for listing jobs, newest first.
type ListJobsRequest struct {
	Limit  int `form:"limit,default=10" validate:"min=1,max=100"`
	Offset int `form:"offset,default=0" validate:"min=0"`
}

// UpdateJobRequest lists the fields to change; nil fields are kept.
type UpdateJobRequest struct {
	ID          uuid.UUID `form:"-" json:"-" validate:"required"` // From URL path
	Name        *string   `form:"name" json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string   `form:"description" json:"description,omitempty" validate:"omitempty,max=140"`
	Location    *string   `form:"location" json:"location,omitempty" validate:"omitempty,max=200"`
	Company     *string   `form:"company" json:"company,omitempty" validate:"omitempty,max=200"`
	Skills      *string   `form:"skills" json:"skills,omitempty" validate:"omitempty,max=1000"`
}

// --- Job Response DTOs ---

type JobResponse struct {
	ID          uuid.UUID             `json:"id"`
	Name        string                `json:"name"`
	Description string                `json:"description"`
	Location    string                `json:"location"`
	Company     string                `json:"company"`
	Skills      []string              `json:"skills"`
	Owner       models.JobOwner       `json:"owner"`
	Recruiters  []uuid.UUID           `json:"recruiters"`
	Applicants  []models.JobApplicant `json:"applicants"`
	CreatedAt   time.Time             `json:"createdAt"`
	UpdatedAt   time.Time             `json:"updatedAt"`
}

// HomeFeedResponse is the role dependent landing page payload.
type HomeFeedResponse struct {
	Role       models.Role        `json:"role"`
	Jobs       []JobResponse      `json:"jobs"`
	Applicants []ApplicantSummary `json:"applicants"`
}
