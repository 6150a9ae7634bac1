package handlers

import (
	"errors"
	"net/http"
	"slices"

	"job-board-api/internal/services"
	"job-board-api/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// flashError reports err as error flashes and redirects to back. Errors
// that carry no message for the user end in a 500 instead.
func flashError(c *gin.Context, s *session.Session, err error, back string) {
	var validationErr *services.ValidationError
	var userErr *services.UserError
	switch {
	case errors.As(err, &validationErr):
		flashFields(s, validationErr.Fields)
	case errors.As(err, &userErr):
		s.AddFlash(session.FlashError, userErr.Message)
	case errors.Is(err, services.ErrInvalidCredentials):
		s.AddFlash(session.FlashError, "Invalid email or password.")
	case errors.Is(err, services.ErrInvalidRole):
		s.AddFlash(session.FlashError, "Account type must be applicant or recruiter.")
	case errors.Is(err, services.ErrInvalidResetToken):
		s.AddFlash(session.FlashError, "Password reset token is invalid or has expired.")
	default:
		internalError(c, err, "Something went wrong")
		return
	}
	c.Redirect(http.StatusFound, back)
}

// flashFields adds one error flash per field, in field order.
func flashFields(s *session.Session, fields map[string]string) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		s.AddFlash(session.FlashError, fields[k])
	}
}

// jsonError writes err as {"error": ...} with the matching status code.
func jsonError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	var userErr *services.UserError
	message := ""
	if errors.As(err, &userErr) {
		message = userErr.Message
	}

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": validationErr.Fields})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": orDefault(message, "Not found")})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": orDefault(message, "Forbidden")})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": orDefault(message, "Conflict")})
	default:
		internalError(c, err, "Internal Server Error")
	}
}

func internalError(c *gin.Context, err error, message string) {
	log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("Request failed")
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": message})
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
