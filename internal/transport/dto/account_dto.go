package dto

import (
	"time"

	"job-board-api/internal/models"

	"github.com/google/uuid"
)

// --- Account Request DTOs ---
// Account routes accept both form posts and JSON bodies.

// SignupRequest defines the structure for creating a local account.
type SignupRequest struct {
	Email           string `form:"email" json:"email" validate:"required,email"`
	Password        string `form:"password" json:"password" validate:"required,min=4,max=72"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" validate:"required,eqfield=Password"`
	Type            string `form:"type" json:"type" validate:"required,account_type"`
	FirstName       string `form:"firstName" json:"firstName" validate:"omitempty,max=100"`
	LastName        string `form:"lastName" json:"lastName" validate:"omitempty,max=100"`
}

type LoginRequest struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

// AccountTypeRequest asks for a role migration.
type AccountTypeRequest struct {
	Type string `form:"type" json:"type" validate:"required,account_type"`
}

// UpdateProfileRequest carries the shared profile fields plus the fields of
// both role variants; only the ones matching the caller's role are used.
type UpdateProfileRequest struct {
	Email     string `form:"email" json:"email" validate:"required,email"`
	FirstName string `form:"firstName" json:"firstName" validate:"omitempty,max=100"`
	LastName  string `form:"lastName" json:"lastName" validate:"omitempty,max=100"`
	Gender    string `form:"gender" json:"gender" validate:"omitempty,max=50"`
	Location  string `form:"location" json:"location" validate:"omitempty,max=200"`
	Website   string `form:"website" json:"website" validate:"omitempty,url"`

	// Applicant
	Major          string `form:"major" json:"major" validate:"omitempty,max=200"`
	GraduationYear int    `form:"graduationYear" json:"graduationYear" validate:"omitempty,min=1900,max=2100"`
	Degree         string `form:"degree" json:"degree" validate:"omitempty,max=200"`
	School         string `form:"school" json:"school" validate:"omitempty,max=200"`
	ResumeURL      string `form:"resumeUrl" json:"resumeUrl" validate:"omitempty,url"`

	// Recruiter
	Organization string `form:"organization" json:"organization" validate:"omitempty,max=200"`
	Title        string `form:"title" json:"title" validate:"omitempty,max=200"`

	// Space or comma separated tags, both roles.
	Skills    string `form:"skills" json:"skills" validate:"omitempty,max=1000"`
	Interests string `form:"interests" json:"interests" validate:"omitempty,max=1000"`
}

type ChangePasswordRequest struct {
	Password        string `form:"password" json:"password" validate:"required,min=4,max=72"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" validate:"required,eqfield=Password"`
}

type UnlinkProviderRequest struct {
	Provider string `uri:"provider" validate:"required,provider"`
}

// ProviderLoginRequest is what an OAuth adapter hands over after a
// successful callback.
type ProviderLoginRequest struct {
	Provider    string `json:"provider" validate:"required,provider"`
	Subject     string `json:"subject" validate:"required"`
	Email       string `json:"email" validate:"omitempty,email"`
	AccessToken string `json:"accessToken"`
	TokenSecret string `json:"tokenSecret"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Gender      string `json:"gender"`
	Location    string `json:"location"`
	Website     string `json:"website"`
	Picture     string `json:"picture"`
}

// --- Password Reset Request DTOs ---

type ForgotPasswordRequest struct {
	Email string `form:"email" json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	Token           string `form:"-" json:"-" validate:"required,hexadecimal,len=32"` // From URL path
	Password        string `form:"password" json:"password" validate:"required,min=4,max=72"`
	ConfirmPassword string `form:"confirmPassword" json:"confirmPassword" validate:"required,eqfield=Password"`
}

// --- Account Response DTOs ---

// AccountResponse is the account page view of an identity. Secrets such as
// the password hash and OAuth tokens never appear here.
type AccountResponse struct {
	ID          uuid.UUID          `json:"id"`
	Email       string             `json:"email"`
	Role        models.Role        `json:"role"`
	Profile     models.Profile     `json:"profile"`
	RoleProfile models.RoleProfile `json:"roleProfile"`
	Providers   []string           `json:"providers"`
	HasPassword bool               `json:"hasPassword"`
	Gravatar    string             `json:"gravatar"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// ApplicantSummary is a recruiter's home feed entry.
type ApplicantSummary struct {
	ID        uuid.UUID                `json:"id"`
	Name      string                   `json:"name"`
	Location  string                   `json:"location"`
	Applicant *models.ApplicantProfile `json:"applicant"`
}

// FlashResponse lists pending flash messages by kind.
type FlashResponse struct {
	Messages map[string][]string `json:"messages"`
}
