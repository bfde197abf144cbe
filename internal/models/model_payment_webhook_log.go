package models

import (
	"time"

	"gorm.io/datatypes"
)

type PaymentWebhookLogStatus string

const (
	PaymentWebhookLogStatusHandled      PaymentWebhookLogStatus = "handled"
	PaymentWebhookLogStatusHandleFailed PaymentWebhookLogStatus = "handle_failed"
)

// PaymentWebhookLog is an audit row per webhook delivery and processing outcome.
type PaymentWebhookLog struct {
	ID               string                  `gorm:"column:id;type:uuid;primary_key" json:"id"`
	ProviderID       string                  `gorm:"column:provider_id;type:varchar(64);not null" json:"provider_id"`
	TraceID          string                  `gorm:"column:trace_id;type:varchar(128)" json:"trace_id"`
	TxRef            string                  `gorm:"column:tx_ref;type:varchar(255);index" json:"tx_ref"`
	NotificationTime time.Time               `gorm:"column:notification_time" json:"notification_time"`
	Data             datatypes.JSON          `gorm:"column:data;type:jsonb" json:"data"`
	Result           *datatypes.JSON         `gorm:"column:result;type:jsonb" json:"result"`
	Status           PaymentWebhookLogStatus `gorm:"column:status;type:varchar(64);not null" json:"status"`
	CreatedAt        time.Time               `json:"created_at"`
	UpdatedAt        time.Time               `json:"updated_at"`
}

func (PaymentWebhookLog) TableName() string { return "payment_webhook_log" }
