package handlers

import (
	"errors"
	"net/http"
	"strings"

	"job-board-api/internal/api/middleware"
	"job-board-api/internal/services"
	"job-board-api/internal/session"
	"job-board-api/internal/transport/dto"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

const forgotSentMessage = "If an account with that email address exists, an e-mail has been sent with further instructions."

// AccountHandler serves the login, signup, account and password reset routes.
// Every POST answers with a redirect and reports its outcome as a flash.
type AccountHandler struct {
	accounts  services.AccountService
	resets    services.PasswordResetService
	sessions  *session.Manager
	validator *validator.Validate
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(accounts services.AccountService, resets services.PasswordResetService, sessions *session.Manager, validate *validator.Validate) *AccountHandler {
	return &AccountHandler{
		accounts:  accounts,
		resets:    resets,
		sessions:  sessions,
		validator: validate,
	}
}

// bind fills req from a form or JSON body and validates it. On failure the
// problems are flashed, the caller is sent to back and false is returned.
func (h *AccountHandler) bind(c *gin.Context, s *session.Session, req any, back string) bool {
	if err := c.ShouldBind(req); err != nil {
		s.AddFlash(session.FlashError, "Invalid request body.")
		c.Redirect(http.StatusFound, back)
		return false
	}
	return h.check(c, s, req, back)
}

func (h *AccountHandler) check(c *gin.Context, s *session.Session, req any, back string) bool {
	if err := h.validator.Struct(req); err != nil {
		flashFields(s, FormatValidationErrors(err))
		c.Redirect(http.StatusFound, back)
		return false
	}
	return true
}

// GetFlash godoc
// @Summary      Pending flash messages
// @Description  Returns and clears the messages queued by earlier requests. Also serves the login, signup and forgot pages.
// @Tags         accounts
// @Produce      json
// @Success      200 {object} dto.FlashResponse
// @Router       /flash [get]
func (h *AccountHandler) GetFlash(c *gin.Context) {
	s := middleware.CurrentSession(c)
	c.JSON(http.StatusOK, dto.FlashResponse{Messages: s.TakeFlashes()})
}

// PostLogin godoc
// @Summary      Log in with email and password
// @Tags         accounts
// @Accept       x-www-form-urlencoded,json
// @Param        credentials body dto.LoginRequest true "Email and password"
// @Success      302 "Redirect to the remembered page or /"
// @Failure      302 "Redirect to /login with an error flash"
// @Router       /login [post]
func (h *AccountHandler) PostLogin(c *gin.Context) {
	s := middleware.CurrentSession(c)
	var req dto.LoginRequest
	if !h.bind(c, s, &req, "/login") {
		return
	}

	identity, err := h.accounts.Login(c.Request.Context(), &req)
	if err != nil {
		flashError(c, s, err, "/login")
		return
	}
	if err := h.sessions.Login(c, s, identity.ID); err != nil {
		internalError(c, err, "Failed to start session")
		return
	}
	s.AddFlash(session.FlashSuccess, "Success! You are logged in.")
	c.Redirect(http.StatusFound, s.TakeReturnTo("/"))
}

// Logout godoc
// @Summary      Log out
// @Tags         accounts
// @Success      302 "Redirect to /"
// @Router       /logout [post]
func (h *AccountHandler) Logout(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if err := h.sessions.Logout(c, s); err != nil {
		internalError(c, err, "Failed to end session")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// PostSignup godoc
// @Summary      Create a local account
// @Description  Creates an applicant or recruiter account and logs it in.
// @Tags         accounts
// @Accept       x-www-form-urlencoded,json
// @Param        account body dto.SignupRequest true "New account"
// @Success      302 "Redirect to /"
// @Failure      302 "Redirect to /signup with error flashes"
// @Router       /signup [post]
func (h *AccountHandler) PostSignup(c *gin.Context) {
	s := middleware.CurrentSession(c)
	var req dto.SignupRequest
	if !h.bind(c, s, &req, "/signup") {
		return
	}

	identity, err := h.accounts.Signup(c.Request.Context(), &req)
	if err != nil {
		flashError(c, s, err, "/signup")
		return
	}
	if err := h.sessions.Login(c, s, identity.ID); err != nil {
		internalError(c, err, "Failed to start session")
		return
	}
	c.Redirect(http.StatusFound, "/")
}

// GetAccount godoc
// @Summary      Current account
// @Tags         accounts
// @Produce      json
// @Success      200 {object} dto.AccountResponse
// @Failure      401 {object} map[string]string "Authentication required"
// @Router       /account [get]
func (h *AccountHandler) GetAccount(c *gin.Context) {
	c.JSON(http.StatusOK, MapIdentityToAccountResponse(middleware.CurrentIdentity(c)))
}

// PostAccountType godoc
// @Summary      Change account type
// @Description  Migrates the account to the other role. The account gets a new ID and the session follows it.
// @Tags         accounts
// @Accept       x-www-form-urlencoded,json
// @Param        type body dto.AccountTypeRequest true "Target role"
// @Success      302 "Redirect to /account"
// @Router       /account/type [post]
func (h *AccountHandler) PostAccountType(c *gin.Context) {
	s := middleware.CurrentSession(c)
	var req dto.AccountTypeRequest
	if !h.bind(c, s, &req, "/account") {
		return
	}

	migrated, err := h.accounts.MigrateRole(c.Request.Context(), middleware.CurrentIdentity(c), &req)
	if err != nil {
		flashError(c, s, err, "/account")
		return
	}
	if err := h.sessions.Login(c, s, migrated.ID); err != nil {
		internalError(c, err, "Failed to move session")
		return
	}
	s.AddFlash(session.FlashSuccess, "Your account type has been updated.")
	c.Redirect(http.StatusFound, "/account")
}

// PostProfile godoc
// @Summary      Update profile
// @Description  Updates the shared profile and the fields of the caller's role.
// @Tags         accounts
// @Accept       x-www-form-urlencoded,json
// @Param        profile body dto.UpdateProfileRequest true "Profile fields"
// @Success      302 "Redirect to /account"
// @Router       /account/profile [post]
func (h *AccountHandler) PostProfile(c *gin.Context) {
	s := middleware.CurrentSession(c)
	var req dto.UpdateProfileRequest
	if !h.bind(c, s, &req, "/account") {
		return
	}

	if _, err := h.accounts.UpdateProfile(c.Request.Context(), middleware.CurrentIdentity(c), &req); err != nil {
		flashError(c, s, err, "/account")
		return
	}
	s.AddFlash(session.FlashSuccess, "Profile information has been updated.")
	c.Redirect(http.StatusFound, "/account")
}

// PostPassword godoc
// @Summary      Change password
// @Tags         accounts
// @Accept       x-www-form-urlencoded,json
// @Param        password body dto.ChangePasswordRequest true "New password"
// @Success      302 "Redirect to /account"
// @Failure      500 {object} map[string]string "Hashing failed"
// @Router       /account/password [post]
func (h *AccountHandler) PostPassword(c *gin.Context) {
	s := middleware.CurrentSession(c)
	var req dto.ChangePasswordRequest
	if !h.bind(c, s, &req, "/account") {
		return
	}

	if _, err := h.accounts.ChangePassword(c.Request.Context(), middleware.CurrentIdentity(c), &req); err != nil {
		flashError(c, s, err, "/account")
		return
	}
	s.AddFlash(session.FlashSuccess, "Password has been changed.")
	c.Redirect(http.StatusFound, "/account")
}

// PostDelete godoc
// @Summary      Delete account
// @Tags         accounts
// @Success      302 "Redirect to /"
// @Router       /account/delete [post]
func (h *AccountHandler) PostDelete(c *gin.Context) {
	s := middleware.CurrentSession(c)
	if err := h.accounts.Delete(c.Request.Context(), middleware.CurrentIdentity(c)); err != nil {
		flashError(c, s, err, "/account")
		return
	}
	if err := h.sessions.Logout(c, s); err != nil {
		internalError(c, err, "Failed to end session")
		return
	}
	s.AddFlash(session.FlashInfo, "Your account has been deleted.")
	c.Redirect(http.StatusFound, "/")
}

// GetUnlink godoc
// @Summary      Unlink a login provider
// @Tags         accounts
// @Param        provider path string true "facebook, google or github"
// @Success      302 "Redirect to /account"
// @Router       /account/unlink/{provider} [get]
func (h *AccountHandler) GetUnlink(c *gin.Context) {
	s := middleware.CurrentSession(c)
	var req dto.UnlinkProviderRequest
	if err := c.ShouldBindUri(&req); err != nil {
		s.AddFlash(session.FlashError, "Invalid request.")
		c.Redirect(http.StatusFound, "/account")
		return
	}
	if !h.check(c, s, &req, "/account") {
		return
	}

	if _, err := h.accounts.UnlinkProvider(c.Request.Context(), middleware.CurrentIdentity(c), req.Provider); err != nil {
		flashError(c, s, err, "/account")
		return
	}
	s.AddFlash(session.FlashInfo, providerLabel(req.Provider)+" account has been unlinked.")
	c.Redirect(http.StatusFound, "/account")
}

func providerLabel(provider string) string {
	if provider == "" {
		return provider
	}
	return strings.ToUpper(provider[:1]) + provider[1:]
}

// PostForgot godoc
// @Summary      Request a password reset link
// @Description  Always answers with the same message, whether or not the email is registered.
// @Tags         password-reset
// @Accept       x-www-form-urlencoded,json
// @Param        email body dto.ForgotPasswordRequest true "Account email"
// @Success      302 "Redirect to /forgot"
// @Router       /forgot [post]
func (h *AccountHandler) PostForgot(c *gin.Context) {
	s := middleware.CurrentSession(c)
	var req dto.ForgotPasswordRequest
	if !h.bind(c, s, &req, "/forgot") {
		return
	}

	if err := h.resets.RequestReset(c.Request.Context(), &req); err != nil {
		internalError(c, err, "Failed to request password reset")
		return
	}
	s.AddFlash(session.FlashInfo, forgotSentMessage)
	c.Redirect(http.StatusFound, "/forgot")
}

// GetReset godoc
// @Summary      Check a password reset token
// @Tags         password-reset
// @Produce      json
// @Param        token path string true "Reset token"
// @Success      200 {object} map[string]any "Token is redeemable"
// @Failure      302 "Redirect to /forgot when the token is invalid or expired"
// @Router       /reset/{token} [get]
func (h *AccountHandler) GetReset(c *gin.Context) {
	s := middleware.CurrentSession(c)
	token := c.Param("token")
	if err := h.resets.ValidateToken(c.Request.Context(), token); err != nil {
		flashError(c, s, err, "/forgot")
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true, "messages": s.TakeFlashes()})
}

// PostReset godoc
// @Summary      Set a new password with a reset token
// @Tags         password-reset
// @Accept       x-www-form-urlencoded,json
// @Param        token    path string                    true "Reset token"
// @Param        password body dto.ResetPasswordRequest true "New password"
// @Success      302 "Redirect to / logged in"
// @Router       /reset/{token} [post]
func (h *AccountHandler) PostReset(c *gin.Context) {
	s := middleware.CurrentSession(c)
	back := c.Request.URL.Path
	var req dto.ResetPasswordRequest
	if err := c.ShouldBind(&req); err != nil {
		s.AddFlash(session.FlashError, "Invalid request body.")
		c.Redirect(http.StatusFound, back)
		return
	}
	req.Token = c.Param("token")
	if !h.check(c, s, &req, back) {
		return
	}

	result, err := h.resets.ResetPassword(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			back = "/forgot"
		}
		flashError(c, s, err, back)
		return
	}
	if err := h.sessions.Login(c, s, result.Identity.ID); err != nil {
		internalError(c, err, "Failed to start session")
		return
	}
	s.AddFlash(session.FlashSuccess, "Success! Your password has been changed.")
	if result.NotificationErr != nil {
		log.Warn().Err(result.NotificationErr).Str("user_id", result.Identity.ID.String()).Msg("Password changed without confirmation e-mail")
		s.AddFlash(session.FlashError, "We could not send the confirmation e-mail.")
	}
	c.Redirect(http.StatusFound, "/")
}
