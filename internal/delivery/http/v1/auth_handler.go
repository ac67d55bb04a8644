package v1

import (
	"errors"
	"net/http"
	"time"

	"go-athlete-backend/config"
	"go-athlete-backend/internal/delivery/http/response"
	"go-athlete-backend/internal/domain"
	"go-athlete-backend/internal/session"
	"go-athlete-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	registry *session.Registry
	config   *config.Config
}

func NewAuthHandler(public *gin.RouterGroup, protected *gin.RouterGroup, registry *session.Registry, cfg *config.Config) {
	handler := &AuthHandler{
		registry: registry,
		config:   cfg,
	}

	// Public Routes
	publicAuth := public.Group("/auth")
	{
		publicAuth.POST("/register", handler.Register)
		publicAuth.POST("/confirm", handler.Confirm)
		publicAuth.POST("/login", handler.Login)
	}

	// Protected Routes
	protectedAuth := protected.Group("/auth")
	{
		protectedAuth.POST("/logout", handler.Logout)
		protectedAuth.POST("/restore", handler.Restore)
		protectedAuth.GET("/me", handler.Me)
		protectedAuth.GET("/session", handler.Session)
	}
}

// sessionView is the session envelope returned by every auth operation.
type sessionView struct {
	State   domain.SessionState `json:"state"`
	Profile *domain.UserProfile `json:"profile,omitempty"`
	Nav     domain.NavState     `json:"nav"`
}

func viewOf(mgr *session.Manager) sessionView {
	return sessionView{
		State:   mgr.State(),
		Profile: mgr.CurrentUser(),
		Nav:     mgr.NavState(),
	}
}

// managerFor resolves the authenticated user's session manager, restoring
// state from the snapshot or provider attributes when the process has no
// in-memory session yet.
func managerFor(c *gin.Context, registry *session.Registry) (*session.Manager, bool) {
	userID := c.GetString(string(domain.KeyUserID))
	token := c.GetString(string(domain.KeyAccessToken))

	mgr := registry.ForUser(userID)
	if mgr.State() == domain.StateSignedOut {
		if _, err := mgr.Restore(c.Request.Context(), token); err != nil {
			c.Error(err)
			return nil, false
		}
		if mgr.State() == domain.StateSignedOut {
			c.Error(apperror.SessionExpired())
			return nil, false
		}
	}
	return mgr, true
}

type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=6"`
	DisplayName string `json:"display_name"`
}

// Register godoc
// @Summary      User Registration
// @Description  Register a new athlete account. When the provider requires email confirmation, no session is established yet.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        register  body      RegisterRequest  true  "Registration Details"
// @Success      201    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Failure      409    {object}  response.Response
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	mgr := h.registry.NewDetached()
	profile, err := mgr.SignUp(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		var appErr *apperror.AppError
		if errors.As(err, &appErr) && appErr.Kind == apperror.KindConfirmationRequired {
			response.Success(c, http.StatusAccepted, "Confirmation required. Check your email for the verification code.", gin.H{"email": req.Email})
			return
		}
		c.Error(err)
		return
	}

	h.registry.Bind(profile.ID, mgr)
	response.Success(c, http.StatusCreated, "Registration successful", viewOf(mgr))
}

type ConfirmRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Code     string `json:"code" binding:"required"`
	Password string `json:"password"`
}

// Confirm godoc
// @Summary      Confirm Registration
// @Description  Redeem the emailed verification code. When the password is supplied the user is signed in immediately.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        confirm  body      ConfirmRequest  true  "Confirmation Details"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /auth/confirm [post]
func (h *AuthHandler) Confirm(c *gin.Context) {
	var req ConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	mgr := h.registry.NewDetached()
	profile, err := mgr.ConfirmSignUp(c.Request.Context(), req.Email, req.Code, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	if profile == nil {
		response.Success(c, http.StatusOK, "Account confirmed. Please sign in.", nil)
		return
	}

	h.registry.Bind(profile.ID, mgr)
	response.Success(c, http.StatusOK, "Account confirmed", viewOf(mgr))
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary      User Login
// @Description  Authenticate with email and password and establish the session.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        login  body      LoginRequest  true  "Credentials"
// @Success      200    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	mgr := h.registry.NewDetached()
	profile, err := mgr.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	h.registry.Bind(profile.ID, mgr)
	response.Success(c, http.StatusOK, "Login successful", viewOf(mgr))
}

// Logout godoc
// @Summary      Sign Out
// @Description  Sign out globally. Local session state is cleared even when the provider sign-out only partially succeeds.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200    {object}  response.Response
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	mgr := h.registry.ForUser(userID)

	result := mgr.SignOut(c.Request.Context())
	h.registry.Remove(userID)
	h.registry.Publish(c.Request.Context(), domain.AuthEvent{
		Type:       domain.EventSignedOut,
		UserID:     userID,
		OccurredAt: time.Now(),
	})

	subErrors := make([]string, 0, len(result.SubErrors))
	for _, e := range result.SubErrors {
		subErrors = append(subErrors, e.Error())
	}

	response.Success(c, http.StatusOK, "Signed out", gin.H{
		"status":     result.Status,
		"sub_errors": subErrors,
	})
}

// Restore godoc
// @Summary      Restore Session
// @Description  Reconcile provider session, local snapshot and identity attributes on app start.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200    {object}  response.Response
// @Router       /auth/restore [post]
func (h *AuthHandler) Restore(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))
	token := c.GetString(string(domain.KeyAccessToken))

	mgr := h.registry.ForUser(userID)
	profile, err := mgr.Restore(c.Request.Context(), token)
	if err != nil {
		c.Error(err)
		return
	}
	if profile == nil {
		h.registry.Remove(userID)
		response.Success(c, http.StatusOK, "No active session", sessionView{State: domain.StateSignedOut})
		return
	}

	response.Success(c, http.StatusOK, "Session restored", viewOf(mgr))
}

// Me godoc
// @Summary      Current Profile
// @Description  Return the authenticated user's profile.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}

	profile := mgr.CurrentUser()
	if profile == nil {
		c.Error(apperror.NoUserLoggedIn())
		return
	}
	response.Success(c, http.StatusOK, "Profile retrieved", profile)
}

// Session godoc
// @Summary      Session State
// @Description  Return the session state machine position and navigation surface.
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200    {object}  response.Response
// @Router       /auth/session [get]
func (h *AuthHandler) Session(c *gin.Context) {
	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "Session state", viewOf(mgr))
}
