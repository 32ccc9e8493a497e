// internal/interfaces/http/handlers/webhook.go
package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v81"
	"github.com/your-org/storefront-backend/internal/config"
	"github.com/your-org/storefront-backend/internal/domain/order"
	"github.com/your-org/storefront-backend/internal/domain/payment"
	"github.com/your-org/storefront-backend/internal/pkg/email"
	"gorm.io/gorm"
)

// WebhookHandler handles Stripe webhook callbacks
type WebhookHandler struct {
	stripeService *payment.StripeService
	orderService  *order.Service
	config        *config.Config
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(db *gorm.DB, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{
		stripeService: payment.NewStripeService(cfg),
		orderService:  order.NewService(db, cfg, email.NewService(cfg)),
		config:        cfg,
	}
}

// HandleStripeWebhook handles POST /webhooks/stripe. The signature is
// verified against the raw body before anything is trusted. Unhandled
// event types and unknown intents get a 200 so Stripe stops retrying;
// only signature failures and our own errors are reported.
func (h *WebhookHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	event, err := h.stripeService.ParseWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		logrus.WithError(err).Warn("Rejected Stripe webhook with bad signature")
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid webhook signature",
		})
		return
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		intent, err := payment.ExtractPaymentIntent(event)
		if err != nil {
			logrus.WithError(err).Error("Failed to decode payment intent from webhook")
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "Malformed event payload",
			})
			return
		}

		ord, err := h.orderService.MarkPaidByIntent(intent.ID)
		if err != nil {
			// The intent may belong to a checkout that was never
			// submitted; acknowledge so Stripe does not retry forever
			logrus.WithError(err).WithField("intent", intent.ID).
				Warn("Payment intent succeeded with no matching order")
			c.JSON(http.StatusOK, gin.H{"received": true})
			return
		}

		logrus.WithFields(logrus.Fields{
			"order":  ord.OrderNumber,
			"intent": intent.ID,
		}).Info("Order marked paid via Stripe webhook")

	case stripe.EventTypePaymentIntentPaymentFailed:
		logrus.WithField("event", event.ID).Info("Payment intent failed")

	default:
		logrus.WithField("type", event.Type).Debug("Ignoring unhandled Stripe event")
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
