package models

import (
	"time"

	"github.com/fatflowers/travelpay/pkg/types"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Metadata keys under which raw gateway documents are accumulated.
const (
	MetadataKeyInitializeResponse = "initialize_response"
	MetadataKeyInitializeError    = "initialize_error"
	MetadataKeyVerifyResponse     = "verify_response"
	MetadataKeyWebhook            = "webhook"
	MetadataKeyFailedReason       = "failed_reason"
)

// Payment is a single payment intent, correlated with the gateway through TxRef.
type Payment struct {
	ID     string  `gorm:"column:id;primary_key;type:uuid" json:"id"`
	UserID *string `gorm:"column:user_id;type:varchar(64);index" json:"user_id"`
	// BookingReference correlates to a booking; it is not a foreign key.
	BookingReference string          `gorm:"column:booking_reference;type:varchar(128);not null;index" json:"booking_reference"`
	Amount           decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Currency         string          `gorm:"column:currency;type:varchar(10);not null" json:"currency"`
	// TxRef is assigned once before any gateway call and never changes.
	TxRef         string                `gorm:"column:tx_ref;type:varchar(255);not null;uniqueIndex:unique_payment_tx_ref" json:"tx_ref"`
	ExternalTxID  *string               `gorm:"column:external_tx_id;type:varchar(256)" json:"external_tx_id"`
	CustomerEmail string                `gorm:"column:customer_email;type:varchar(254)" json:"customer_email,omitempty"`
	Status        types.PaymentStatus   `gorm:"column:status;type:varchar(20);not null;index" json:"status"`
	Provider      types.PaymentProvider `gorm:"column:provider;type:varchar(64);not null" json:"provider"`
	Metadata      datatypes.JSONMap     `gorm:"column:metadata;type:jsonb" json:"metadata"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payment"
}

// MergeMetadata returns a copy of m with extra merged in key by key.
func MergeMetadata(m datatypes.JSONMap, extra map[string]any) datatypes.JSONMap {
	out := make(datatypes.JSONMap, len(m)+len(extra))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range extra {
		out[k] = v
	}
	return out
}
