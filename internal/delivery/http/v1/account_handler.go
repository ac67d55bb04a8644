package v1

import (
	"net/http"
	"time"

	"go-athlete-backend/internal/delivery/http/response"
	"go-athlete-backend/internal/domain"
	"go-athlete-backend/internal/session"
	"go-athlete-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AccountHandler struct {
	registry *session.Registry
}

func NewAccountHandler(protected *gin.RouterGroup, registry *session.Registry) {
	handler := &AccountHandler{registry: registry}

	account := protected.Group("/account")
	{
		account.GET("/nav", handler.Nav)
		account.PUT("/nav/tab", handler.SelectTab)
		account.POST("/points", handler.AddPoints)
		account.POST("/workouts/start", handler.StartWorkout)
		account.POST("/workouts/complete", handler.CompleteWorkout)
	}
}

// Nav godoc
// @Summary      Navigation State
// @Description  Return the per-session navigation surface.
// @Tags         account
// @Produce      json
// @Security     BearerAuth
// @Success      200    {object}  response.Response
// @Router       /account/nav [get]
func (h *AccountHandler) Nav(c *gin.Context) {
	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}
	response.Success(c, http.StatusOK, "Navigation state", mgr.NavState())
}

type SelectTabRequest struct {
	Index int `json:"index" binding:"min=0"`
}

// SelectTab godoc
// @Summary      Select Tab
// @Description  Record the active tab on the navigation surface.
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tab  body      SelectTabRequest  true  "Tab index"
// @Success      200    {object}  response.Response
// @Router       /account/nav/tab [put]
func (h *AccountHandler) SelectTab(c *gin.Context) {
	var req SelectTabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}
	mgr.SelectTab(req.Index)
	response.Success(c, http.StatusOK, "Tab selected", mgr.NavState())
}

type AddPointsRequest struct {
	Amount int    `json:"amount" binding:"required,gt=0"`
	Reason string `json:"reason" binding:"required"`
}

// AddPoints godoc
// @Summary      Add Points
// @Description  Credit gamification points to the current user.
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        points  body      AddPointsRequest  true  "Points"
// @Success      200    {object}  response.Response
// @Failure      401    {object}  response.Response
// @Router       /account/points [post]
func (h *AccountHandler) AddPoints(c *gin.Context) {
	var req AddPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}

	profile, err := mgr.AddPoints(c.Request.Context(), req.Amount, req.Reason)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Points added", profile)
}

type StartWorkoutRequest struct {
	Name string `json:"name" binding:"required"`
}

// StartWorkout godoc
// @Summary      Start Workout
// @Description  Record the active workout on the navigation surface.
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        workout  body      StartWorkoutRequest  true  "Workout"
// @Success      200    {object}  response.Response
// @Router       /account/workouts/start [post]
func (h *AccountHandler) StartWorkout(c *gin.Context) {
	var req StartWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}

	if err := mgr.StartWorkout(req.Name); err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Workout started", mgr.NavState())
}

type CompleteWorkoutRequest struct {
	ModuleKey string    `json:"module_key" binding:"required"`
	Score     int       `json:"score" binding:"min=0"`
	StartedAt time.Time `json:"started_at" binding:"required"`
}

// CompleteWorkout godoc
// @Summary      Complete Workout
// @Description  Clear the active workout and append a game session to the profile.
// @Tags         account
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        workout  body      CompleteWorkoutRequest  true  "Completed workout"
// @Success      200    {object}  response.Response
// @Router       /account/workouts/complete [post]
func (h *AccountHandler) CompleteWorkout(c *gin.Context) {
	var req CompleteWorkoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}

	gameSession := domain.GameSession{
		ID:          uuid.NewString(),
		ModuleKey:   req.ModuleKey,
		Score:       req.Score,
		StartedAt:   req.StartedAt,
		CompletedAt: time.Now(),
	}
	profile, err := mgr.CompleteWorkout(c.Request.Context(), gameSession)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Workout completed", profile)
}
