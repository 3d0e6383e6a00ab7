// Webhook HTTP handler.
//
// This endpoint is the gateway's entry point into the backend, and its
// status-code contract is deliberately narrow:
//   - 400 when the signature header is missing (the delivery cannot be
//     authenticated at all)
//   - 401 when the signature does not verify (possible forgery)
//   - 200 for everything else, including processing failures — the gateway
//     retries non-2xx responses, and redelivering an event we already
//     received but failed to process internally only amplifies the failure.
//     Processing errors surface as success=false in the body and in logs.
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/roseate/go-payments-backend/internal/http/middleware"
	"github.com/roseate/go-payments-backend/internal/services"
)

// HeaderWebhookSignature carries the gateway's HMAC over the raw body.
const HeaderWebhookSignature = "X-Razorpay-Signature"

// WebhookResponse is the acknowledgment body returned to the gateway.
type WebhookResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Handled       bool   `json:"handled"`
	PaymentID     string `json:"payment_id,omitempty"`
	PaymentLinkID string `json:"payment_link_id,omitempty"`
}

// HandleWebhook godoc
// @ID          handleWebhook
// @Summary     Receive a gateway webhook
// @Description Verifies the signature over the raw body and dispatches the event. Redeliveries are acknowledged without reprocessing.
// @Tags        Webhooks
// @Accept      json
// @Produce     json
//
// @Param       X-Razorpay-Signature  header  string  true  "Hex HMAC-SHA256 of the raw body"
//
// @Success     200  {object}  handlers.WebhookResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing signature or unreadable body"
// @Failure     401  {object}  handlers.ErrorResponse  "Signature verification failed"
// @Router      /webhooks/razorpay [post]
func (h *Handlers) HandleWebhook(c *gin.Context) {
	// The signature covers the body bytes exactly as sent; read them raw
	// before any binding can touch the stream.
	body, err := c.GetRawData()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unreadable request body")
		return
	}
	signature := c.GetHeader(HeaderWebhookSignature)
	if signature == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "missing webhook signature")
		return
	}

	res, err := h.hookSvc.Process(c.Request.Context(), body, signature)
	if err != nil {
		if errors.Is(err, services.ErrSignatureMismatch) {
			fail(c, http.StatusUnauthorized, ErrCodeUnauthorized, "invalid webhook signature")
			return
		}
		// Authenticated but failed internally: acknowledge so the gateway
		// does not redeliver, and leave the details to the logs.
		lg := middleware.LoggerFrom(c)
		lg.Error().Err(err).Msg("webhook processing failed")
		ok(c, http.StatusOK, WebhookResponse{Success: false, Message: "Event processing failed"})
		return
	}

	ok(c, http.StatusOK, WebhookResponse{
		Success:       true,
		Message:       res.Message,
		Handled:       res.Handled,
		PaymentID:     res.PaymentID,
		PaymentLinkID: res.PaymentLinkID,
	})
}
