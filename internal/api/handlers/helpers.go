package handlers

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"

	"job-board-api/internal/models"
	"job-board-api/internal/transport/dto"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// NewValidator returns the request validator with the account_type and
// provider tags registered. Field errors are keyed by the request's json,
// form or uri name.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
			if name != "" && name != "-" {
				return name
			}
		}
		return strings.ToLower(f.Name)
	})
	mustRegister(v, "account_type", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Assignable()
	})
	mustRegister(v, "provider", func(fl validator.FieldLevel) bool {
		return models.IsKnownProvider(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// FormatValidationErrors turns validator errors into one user facing message per field.
func FormatValidationErrors(err error) map[string]string {
	errorsMap := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		errorsMap["error"] = "Invalid validation error type"
		return errorsMap
	}
	for _, fieldError := range validationErrors {
		fieldName := fieldError.Field()
		label := humanize(fieldName)
		switch fieldError.Tag() {
		case "required":
			errorsMap[fieldName] = fmt.Sprintf("%s cannot be blank.", label)
		case "email":
			errorsMap[fieldName] = "Please enter a valid email address."
		case "min":
			if fieldError.Kind() == reflect.String {
				errorsMap[fieldName] = fmt.Sprintf("%s must be at least %s characters long.", label, fieldError.Param())
			} else {
				errorsMap[fieldName] = fmt.Sprintf("%s must be at least %s.", label, fieldError.Param())
			}
		case "max":
			if fieldError.Kind() == reflect.String {
				errorsMap[fieldName] = fmt.Sprintf("%s must be at most %s characters long.", label, fieldError.Param())
			} else {
				errorsMap[fieldName] = fmt.Sprintf("%s must be at most %s.", label, fieldError.Param())
			}
		case "eqfield":
			errorsMap[fieldName] = "Passwords do not match."
		case "url":
			errorsMap[fieldName] = fmt.Sprintf("%s must be a valid URL.", label)
		case "account_type":
			errorsMap[fieldName] = "Account type must be applicant or recruiter."
		case "provider":
			errorsMap[fieldName] = "Unknown login provider."
		case "hexadecimal", "len":
			errorsMap[fieldName] = "Password reset token is invalid or has expired."
		default:
			errorsMap[fieldName] = fmt.Sprintf("Field validation for '%s' failed on the '%s' tag", fieldName, fieldError.Tag())
		}
	}
	return errorsMap
}

// humanize turns "confirmPassword" into "Confirm password".
func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		switch {
		case i == 0:
			b.WriteString(strings.ToUpper(string(r)))
		case r >= 'A' && r <= 'Z':
			b.WriteByte(' ')
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// MapIdentityToAccountResponse converts an identity to its account page view.
func MapIdentityToAccountResponse(identity *models.Identity) dto.AccountResponse {
	providers := make([]string, 0, len(identity.Providers))
	for name := range identity.Providers {
		providers = append(providers, name)
	}
	slices.Sort(providers)

	return dto.AccountResponse{
		ID:          identity.ID,
		Email:       identity.Email,
		Role:        identity.Role,
		Profile:     identity.Profile,
		RoleProfile: identity.RoleProfile,
		Providers:   providers,
		HasPassword: identity.HasPassword(),
		Gravatar:    identity.Identicon(models.DefaultIdenticonSize),
		CreatedAt:   identity.CreatedAt,
		UpdatedAt:   identity.UpdatedAt,
	}
}

// MapIdentityToApplicantSummary converts an applicant to a recruiter feed entry.
func MapIdentityToApplicantSummary(identity *models.Identity) dto.ApplicantSummary {
	return dto.ApplicantSummary{
		ID:        identity.ID,
		Name:      identity.DisplayName(),
		Location:  identity.Profile.Location,
		Applicant: identity.RoleProfile.Applicant,
	}
}

// MapJobModelToJobResponse converts a models.Job to a dto.JobResponse
func MapJobModelToJobResponse(job *models.Job) dto.JobResponse {
	resp := dto.JobResponse{
		ID:          job.ID,
		Name:        job.Name,
		Description: job.Description,
		Location:    job.Location,
		Company:     job.Company,
		Skills:      job.Skills,
		Owner:       job.Owner,
		Recruiters:  job.Recruiters,
		Applicants:  job.Applicants,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
	if resp.Skills == nil {
		resp.Skills = []string{}
	}
	if resp.Recruiters == nil {
		resp.Recruiters = []uuid.UUID{}
	}
	if resp.Applicants == nil {
		resp.Applicants = []models.JobApplicant{}
	}
	return resp
}

func mapJobs(jobs []*models.Job) []dto.JobResponse {
	out := make([]dto.JobResponse, 0, len(jobs))
	for _, job := range jobs {
		out = append(out, MapJobModelToJobResponse(job))
	}
	return out
}
