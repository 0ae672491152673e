package valueobjects

// PaymentType is the concrete payment method reported by an ECPay callback.
// Values mirror the gateway's PaymentType wire codes.
type PaymentType string

const (
	PaymentTypeATMTaishin    PaymentType = "ATM_TAISHIN"
	PaymentTypeATMESun       PaymentType = "ATM_ESUN"
	PaymentTypeATMBOT        PaymentType = "ATM_BOT"
	PaymentTypeATMFubon      PaymentType = "ATM_FUBON"
	PaymentTypeATMChinatrust PaymentType = "ATM_CHINATRUST"
	PaymentTypeATMFirst      PaymentType = "ATM_FIRST"
	PaymentTypeATMLand       PaymentType = "ATM_LAND"
	PaymentTypeATMCathay     PaymentType = "ATM_CATHAY"
	PaymentTypeATMTachong    PaymentType = "ATM_TACHONG"
	PaymentTypeATMPanhsin    PaymentType = "ATM_PANHSIN"

	PaymentTypeCreditCard PaymentType = "Credit_CreditCard"

	// PaymentTypeVirtualAccountWaiting marks a virtual-account order whose
	// account information has been issued but whose funds have not arrived
	// yet (phase one of the two-phase notification).
	PaymentTypeVirtualAccountWaiting PaymentType = "VIRTUAL_ACCOUNT_WAITING"
)

// virtualAccountTypes is the ATM family of callback codes.
var virtualAccountTypes = map[PaymentType]struct{}{
	PaymentTypeATMTaishin:    {},
	PaymentTypeATMESun:       {},
	PaymentTypeATMBOT:        {},
	PaymentTypeATMFubon:      {},
	PaymentTypeATMChinatrust: {},
	PaymentTypeATMFirst:      {},
	PaymentTypeATMLand:       {},
	PaymentTypeATMCathay:     {},
	PaymentTypeATMTachong:    {},
	PaymentTypeATMPanhsin:    {},
}

func (t PaymentType) IsVirtualAccount() bool {
	_, ok := virtualAccountTypes[t]
	return ok
}

func (t PaymentType) IsCreditCard() bool {
	return t == PaymentTypeCreditCard
}

func (t PaymentType) IsWaiting() bool {
	return t == PaymentTypeVirtualAccountWaiting
}

func (t PaymentType) IsValid() bool {
	return t.IsVirtualAccount() || t.IsCreditCard() || t.IsWaiting()
}

func (t PaymentType) String() string {
	return string(t)
}
