package handlers

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fatflowers/travelpay/internal/app/service/payment"
	"github.com/fatflowers/travelpay/pkg/logctx"
)

const maxWebhookBody = 1 << 20

// @Summary      Payment gateway webhook
// @Description  Receives gateway callbacks. The reference may be top-level, nested under data, or in the query string.
// @Tags         Webhook
// @Accept       json
// @Produce      json
// @Param        payload body object false "Gateway callback payload"
// @Param        reference query string false "Fallback transaction reference"
// @Param        tx_ref query string false "Fallback transaction reference"
// @Success      201  {object}  payment.WebhookResult
// @Failure      400  {object}  handlers.ErrorBody
// @Failure      404  {object}  handlers.ErrorBody
// @Failure      500  {object}  handlers.ErrorBody
// @Router       /payments/webhook [post]
func ApiPaymentWebhook(mgr payment.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		lg := logctx.FromGin(c, log)

		raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			lg.Warnw("payment_webhook_read_failed", "err", err)
		}
		req := &payment.WebhookRequest{Payload: decodeObject(raw), Query: map[string]string{}}
		for k, v := range c.Request.URL.Query() {
			if len(v) > 0 {
				req.Query[k] = v[0]
			}
		}

		res, err := mgr.HandleWebhook(c.Request.Context(), req)
		if err != nil {
			status := statusFor(err)
			switch status {
			case http.StatusBadRequest:
				c.JSON(status, ErrorBody{Detail: "tx_ref missing"})
			case http.StatusNotFound:
				c.JSON(status, ErrorBody{Detail: "Payment not found"})
			default:
				lg.Errorw("payment_webhook_handle_error", "err", err)
				c.JSON(http.StatusInternalServerError, ErrorBody{Detail: "internal error"})
			}
			return
		}
		c.JSON(http.StatusCreated, res)
	}
}

// decodeObject treats anything but a JSON object as an empty payload.
func decodeObject(raw []byte) map[string]any {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return map[string]any{}
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{}
}
