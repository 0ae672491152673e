package order

import (
	"time"

	vo "paybridge/internal/domain/order/valueobjects"
)

// CommitMessage is the normalized content of a gateway payment notification.
// CommittedAt is nil for the provisional phase of a two-phase virtual-account
// notification (account issued, funds pending) and non-nil for a terminal
// payment result.
type CommitMessage struct {
	ID          string
	TotalPrice  int64
	CommittedAt *time.Time
	MerchantID  string
	TradeNumber string
	TradeDate   time.Time
	PaymentType vo.PaymentType
}

// AdditionalInfo is the payment-method-specific portion of a notification.
// Exactly one variant applies per payment type.
type AdditionalInfo interface {
	isAdditionalInfo()
}

// VirtualAccountInfo carries the bank transfer coordinates issued for a
// virtual-account order.
type VirtualAccountInfo struct {
	BankCode string
	Account  string
}

func (*VirtualAccountInfo) isAdditionalInfo() {}

// CreditCardInfo carries the authorization result of a credit-card payment.
type CreditCardInfo struct {
	ProcessDate time.Time
	AuthCode    string
	Amount      int64
	ECI         int
	Card4Number string
	Card6Number string
}

func (*CreditCardInfo) isAdditionalInfo() {}
