package v1

import (
	"io"
	"net/http"

	"go-athlete-backend/internal/delivery/http/response"
	"go-athlete-backend/internal/domain"
	"go-athlete-backend/internal/session"
	"go-athlete-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// maxPictureBytes caps the accepted profile picture upload size.
const maxPictureBytes = 10 << 20 // 10 MB

type OnboardingHandler struct {
	registry *session.Registry
	validate *validator.Validate
}

func NewOnboardingHandler(protected *gin.RouterGroup, registry *session.Registry) {
	handler := &OnboardingHandler{
		registry: registry,
		validate: validator.New(),
	}

	onboarding := protected.Group("/onboarding")
	{
		onboarding.GET("/status", handler.Status)
		onboarding.POST("/step1", handler.Step1)
		onboarding.POST("/step2", handler.Step2)
		onboarding.POST("/step3", handler.Step3)
		onboarding.POST("/complete", handler.Complete)
		onboarding.POST("/skip-picture", handler.SkipPicture)
	}
}

// Status godoc
// @Summary      Onboarding Status
// @Description  Return wizard progress for the current session.
// @Tags         onboarding
// @Produce      json
// @Security     BearerAuth
// @Success      200    {object}  response.Response
// @Router       /onboarding/status [get]
func (h *OnboardingHandler) Status(c *gin.Context) {
	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}

	profile := mgr.CurrentUser()
	if profile == nil {
		c.Error(apperror.NoUserLoggedIn())
		return
	}
	response.Success(c, http.StatusOK, "Onboarding status", gin.H{
		"state":      mgr.State(),
		"onboarding": profile.Onboarding,
	})
}

// Step1 godoc
// @Summary      Onboarding Step 1
// @Description  Record athlete type, sport and date of birth. Age is derived server-side; an unparseable date leaves it unset.
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        step1  body      domain.Step1Request  true  "Demographics"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /onboarding/step1 [post]
func (h *OnboardingHandler) Step1(c *gin.Context) {
	var req domain.Step1Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}

	profile, err := mgr.SubmitStep1(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Step 1 recorded", profile)
}

// Step2 godoc
// @Summary      Onboarding Step 2
// @Description  Record interest selections. Duplicates are dropped, insertion order kept, at most 10 retained.
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        step2  body      domain.Step2Request  true  "Interests"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /onboarding/step2 [post]
func (h *OnboardingHandler) Step2(c *gin.Context) {
	var req domain.Step2Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}

	profile, err := mgr.SubmitStep2(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Step 2 recorded", profile)
}

// Step3 godoc
// @Summary      Onboarding Step 3
// @Description  Record the learning goal; the preferred content type and mindset profile are derived from it.
// @Tags         onboarding
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        step3  body      domain.Step3Request  true  "Learning Goal"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /onboarding/step3 [post]
func (h *OnboardingHandler) Step3(c *gin.Context) {
	var req domain.Step3Request
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}

	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}

	profile, err := mgr.SubmitStep3(c.Request.Context(), req)
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Step 3 recorded", profile)
}

// Complete godoc
// @Summary      Complete Onboarding
// @Description  Upload the profile picture (multipart field "picture") and finish the wizard. Completion applies even when the upload fails; the failure is reported alongside the completed profile. Idempotent.
// @Tags         onboarding
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        picture  formData  file  false  "Profile picture (JPEG or PNG)"
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /onboarding/complete [post]
func (h *OnboardingHandler) Complete(c *gin.Context) {
	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}

	var image []byte
	file, err := c.FormFile("picture")
	if err == nil && file != nil {
		if file.Size > maxPictureBytes {
			c.Error(apperror.BadRequest("Picture exceeds the 10 MB limit"))
			return
		}
		src, err := file.Open()
		if err != nil {
			c.Error(apperror.BadRequest("Unable to read the uploaded picture"))
			return
		}
		defer src.Close()
		image, err = io.ReadAll(io.LimitReader(src, maxPictureBytes))
		if err != nil {
			c.Error(apperror.BadRequest("Unable to read the uploaded picture"))
			return
		}
	}

	profile, err := mgr.CompleteWithPicture(c.Request.Context(), image)
	if err != nil {
		if profile != nil {
			// Onboarding finished but the picture did not make it.
			response.Success(c, http.StatusOK, "Onboarding completed; picture upload failed", gin.H{
				"profile":      profile,
				"upload_error": err.Error(),
			})
			return
		}
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Onboarding completed", profile)
}

// SkipPicture godoc
// @Summary      Complete Onboarding Without Picture
// @Description  Finish the wizard without uploading a picture. Idempotent.
// @Tags         onboarding
// @Produce      json
// @Security     BearerAuth
// @Success      200    {object}  response.Response
// @Router       /onboarding/skip-picture [post]
func (h *OnboardingHandler) SkipPicture(c *gin.Context) {
	mgr, ok := managerFor(c, h.registry)
	if !ok {
		return
	}

	profile, err := mgr.SkipPicture(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	response.Success(c, http.StatusOK, "Onboarding completed", profile)
}
