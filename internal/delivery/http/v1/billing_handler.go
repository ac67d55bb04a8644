package v1

import (
	"io"
	"net/http"

	"go-athlete-backend/config"
	"go-athlete-backend/internal/billing"
	"go-athlete-backend/internal/delivery/http/response"
	"go-athlete-backend/internal/domain"
	"go-athlete-backend/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type BillingHandler struct {
	billing *billing.Service
	config  *config.Config
}

func NewBillingHandler(public *gin.RouterGroup, protected *gin.RouterGroup, svc *billing.Service, cfg *config.Config) {
	handler := &BillingHandler{
		billing: svc,
		config:  cfg,
	}

	// Stripe calls the webhook directly; it authenticates via signature, not JWT.
	public.POST("/billing/webhook", handler.Webhook)

	protected.POST("/billing/checkout", handler.Checkout)
}

// Checkout godoc
// @Summary      Premium Checkout
// @Description  Create a Stripe Checkout session for the premium upgrade and return its hosted URL.
// @Tags         billing
// @Produce      json
// @Security     BearerAuth
// @Success      200    {object}  response.Response
// @Failure      502    {object}  response.Response
// @Router       /billing/checkout [post]
func (h *BillingHandler) Checkout(c *gin.Context) {
	userID := c.GetString(string(domain.KeyUserID))

	successURL := h.config.FrontendURL + "/billing/success"
	cancelURL := h.config.FrontendURL + "/billing/cancel"

	id, url, err := h.billing.CreateCheckoutSession(userID, successURL, cancelURL)
	if err != nil {
		c.Error(apperror.NetworkError(err))
		return
	}
	response.Success(c, http.StatusOK, "Checkout session created", gin.H{
		"session_id":   id,
		"checkout_url": url,
	})
}

// Webhook godoc
// @Summary      Stripe Webhook
// @Description  Receive Stripe events. A completed checkout upgrades the account tier.
// @Tags         billing
// @Accept       json
// @Produce      json
// @Success      200    {object}  response.Response
// @Failure      400    {object}  response.Response
// @Router       /billing/webhook [post]
func (h *BillingHandler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.Error(apperror.BadRequest("Unable to read webhook payload"))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.billing.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		c.Error(apperror.BadRequest(err.Error()))
		return
	}
	response.Success(c, http.StatusOK, "Webhook processed", nil)
}
