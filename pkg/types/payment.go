package types

type PaymentProvider string

const (
	PaymentProviderChapa PaymentProvider = "chapa"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
)

// IsTerminal reports whether no further automatic transition is expected.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentStatusCompleted || s == PaymentStatusFailed
}

// ReconcileChannel names the path a signal about a payment arrived on.
type ReconcileChannel string

const (
	ReconcileChannelInitiate ReconcileChannel = "initiate"
	ReconcileChannelVerify   ReconcileChannel = "verify"
	ReconcileChannelWebhook  ReconcileChannel = "webhook"
)
