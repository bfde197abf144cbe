package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fatflowers/travelpay/internal/app/service/payment"
	models "github.com/fatflowers/travelpay/internal/models"
	"github.com/fatflowers/travelpay/pkg/logctx"
	"github.com/fatflowers/travelpay/pkg/types"
)

// PaymentView is the public shape of a payment; raw gateway documents stay internal.
type PaymentView struct {
	ID               string              `json:"id"`
	TxRef            string              `json:"tx_ref"`
	BookingReference string              `json:"booking_reference"`
	Amount           decimal.Decimal     `json:"amount"`
	Currency         string              `json:"currency"`
	Status           types.PaymentStatus `json:"status"`
	ExternalTxID     string              `json:"external_tx_id,omitempty"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`
}

func toPaymentView(p *models.Payment) *PaymentView {
	return &PaymentView{
		ID:               p.ID,
		TxRef:            p.TxRef,
		BookingReference: p.BookingReference,
		Amount:           p.Amount,
		Currency:         p.Currency,
		Status:           p.Status,
		ExternalTxID:     lo.FromPtr(p.ExternalTxID),
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

// @Summary      Initiate payment
// @Description  Creates a PENDING payment and returns the gateway checkout URL.
// @Tags         Payment
// @Accept       json
// @Produce      json
// @Param        request body payment.InitiateRequest true "Payment initiation request"
// @Success      200  {object}  payment.InitiateResult
// @Failure      400  {object}  handlers.ErrorBody
// @Failure      502  {object}  handlers.ErrorBody
// @Router       /payments/initiate [post]
func ApiInitiatePayment(mgr payment.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req payment.InitiateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorBody{Detail: "invalid request body", Error: err.Error()})
			return
		}

		res, err := mgr.Initiate(c.Request.Context(), &req)
		if err != nil {
			status := statusFor(err)
			switch status {
			case http.StatusBadRequest:
				c.JSON(status, ErrorBody{Detail: strings.TrimPrefix(err.Error(), payment.ErrValidation.Error()+": ")})
			case http.StatusBadGateway:
				body := ErrorBody{Detail: "Payment initialization failed", Error: err.Error()}
				var gwErr *payment.GatewayError
				if errors.As(err, &gwErr) {
					body.Error = gwErr.Cause()
				}
				c.JSON(status, body)
			default:
				logctx.FromGin(c, log).Errorw("payment_initiate_error", "err", err)
				c.JSON(status, ErrorBody{Detail: "internal error"})
			}
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary      Verify payment
// @Description  Polls the gateway for the payment outcome and reconciles it.
// @Tags         Payment
// @Produce      json
// @Param        tx_ref path string true "Transaction reference"
// @Success      200  {object}  payment.VerifyResult
// @Failure      404  {object}  handlers.ErrorBody
// @Failure      502  {object}  handlers.ErrorBody
// @Router       /payments/verify/{tx_ref} [get]
func ApiVerifyPayment(mgr payment.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := mgr.Verify(c.Request.Context(), c.Param("tx_ref"))
		if err != nil {
			status := statusFor(err)
			switch status {
			case http.StatusNotFound:
				c.JSON(status, ErrorBody{Detail: "Payment not found"})
			case http.StatusBadGateway:
				c.JSON(status, ErrorBody{Detail: "verify failed"})
			default:
				logctx.FromGin(c, log).Errorw("payment_verify_error", "err", err)
				c.JSON(status, ErrorBody{Detail: "internal error"})
			}
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// @Summary      Get payment
// @Description  Returns the stored state of a payment.
// @Tags         Payment
// @Produce      json
// @Param        tx_ref path string true "Transaction reference"
// @Success      200  {object}  handlers.PaymentView
// @Failure      404  {object}  handlers.ErrorBody
// @Router       /payments/{tx_ref} [get]
func ApiGetPayment(mgr payment.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := mgr.GetPayment(c.Request.Context(), c.Param("tx_ref"))
		if err != nil {
			status := statusFor(err)
			if status == http.StatusNotFound {
				c.JSON(status, ErrorBody{Detail: "Payment not found"})
				return
			}
			logctx.FromGin(c, log).Errorw("payment_get_error", "err", err)
			c.JSON(status, ErrorBody{Detail: "internal error"})
			return
		}
		c.JSON(http.StatusOK, toPaymentView(p))
	}
}

func RegisterPaymentRoutes(r gin.IRouter, mgr payment.Manager, log *zap.SugaredLogger) {
	r.POST("/initiate", ApiInitiatePayment(mgr, log))
	r.GET("/verify/:tx_ref", ApiVerifyPayment(mgr, log))
	r.POST("/webhook", ApiPaymentWebhook(mgr, log))
	r.GET("/:tx_ref", ApiGetPayment(mgr, log))
}
