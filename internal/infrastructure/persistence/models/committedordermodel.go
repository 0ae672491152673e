package models

import (
	"time"
)

// CommittedOrderModel is the durable archive row written for every terminal
// order commit. The pending store stays authoritative while an order is
// live; this table is the tail for audit and reconciliation after TTL.
type CommittedOrderModel struct {
	ID                  uint   `gorm:"primaryKey"`
	OrderID             string `gorm:"size:20;not null;uniqueIndex"`
	MerchantID          string `gorm:"size:10;not null"`
	PlatformTradeNumber string `gorm:"size:20;not null;index"`
	PaymentType         string `gorm:"size:32;not null"`
	TotalPrice          int64  `gorm:"not null"`
	CommittedAt         time.Time
	TradeDate           *time.Time

	BankCode       string `gorm:"size:8"`
	VirtualAccount string `gorm:"size:20"`

	CreditCardAuthCode string `gorm:"size:8"`
	CreditCardLastFour string `gorm:"size:4"`

	CreatedAt time.Time
}

func (CommittedOrderModel) TableName() string {
	return "committed_orders"
}
