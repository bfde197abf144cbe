package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fatflowers/travelpay/internal/app/service/payment"
	paymentstore "github.com/fatflowers/travelpay/internal/app/service/payment_store"
	models "github.com/fatflowers/travelpay/internal/models"
	"github.com/fatflowers/travelpay/pkg/logctx"
	"github.com/fatflowers/travelpay/pkg/response"
	"github.com/fatflowers/travelpay/pkg/types"
)

type ListPaymentRequest struct {
	Filters   []*types.CommonFilter `json:"filters"`
	From      int                   `json:"from"`
	Size      int                   `json:"size"`
	SortBy    string                `json:"sort_by"`
	SortOrder string                `json:"sort_order"`
}

// PaymentItem is one admin list row. Raw gateway metadata stays server-side.
type PaymentItem struct {
	ID               string                `json:"id"`
	TxRef            string                `json:"tx_ref"`
	BookingReference string                `json:"booking_reference"`
	UserID           string                `json:"user_id,omitempty"`
	Amount           decimal.Decimal       `json:"amount"`
	Currency         string                `json:"currency"`
	Status           types.PaymentStatus   `json:"status"`
	Provider         types.PaymentProvider `json:"provider"`
	ExternalTxID     string                `json:"external_tx_id,omitempty"`
	CustomerEmail    string                `json:"customer_email,omitempty"`
	FailedReason     string                `json:"failed_reason,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

func toPaymentItem(m *models.Payment) *PaymentItem {
	reason, _ := m.Metadata[models.MetadataKeyFailedReason].(string)
	return &PaymentItem{
		ID:               m.ID,
		TxRef:            m.TxRef,
		BookingReference: m.BookingReference,
		UserID:           lo.FromPtr(m.UserID),
		Amount:           m.Amount,
		Currency:         m.Currency,
		Status:           m.Status,
		Provider:         m.Provider,
		ExternalTxID:     lo.FromPtr(m.ExternalTxID),
		CustomerEmail:    m.CustomerEmail,
		FailedReason:     reason,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

type ListPaymentsResponse struct {
	Items []*PaymentItem `json:"items"`
	Total int64          `json:"total"`
}

// @Summary      List Payments (Admin)
// @Description  Retrieves a paginated and filterable list of payments.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request body ListPaymentRequest true "List payment request with filters, pagination, and sorting"
// @Success      200  {object}  handlers.RespListPayments
// @Router       /api/v1/admin/payment/list [post]
func ApiListPayments(mgr payment.Manager, log *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ListPaymentRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
			return
		}
		scanReq := &paymentstore.ScanRequest{Filters: req.Filters, From: req.From, Size: req.Size, SortBy: req.SortBy, SortOrder: req.SortOrder}
		res, err := mgr.ListPayments(c.Request.Context(), scanReq)
		if err != nil {
			if statusFor(err) == http.StatusBadRequest {
				c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
				return
			}
			logctx.FromGin(c, log).Errorw("admin_list_payments_error", "err", err)
			c.JSON(http.StatusOK, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
			return
		}
		items := lo.Map(res.Items, func(it *models.Payment, _ int) *PaymentItem { return toPaymentItem(it) })
		c.JSON(http.StatusOK, response.OKT(&ListPaymentsResponse{Items: items, Total: res.Total}))
	}
}

func RegisterAdminPaymentRoutes(r gin.IRouter, mgr payment.Manager, log *zap.SugaredLogger) {
	r.POST("/payment/list", ApiListPayments(mgr, log))
}
