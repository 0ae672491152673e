package valueobjects

// Channel is the payment method category selected when preparing an order.
// It constrains which channel-specific options apply.
type Channel string

const (
	// ChannelAll lets the gateway checkout page offer every payment method.
	ChannelAll Channel = "all"
	// ChannelCreditCard restricts checkout to credit card payment.
	ChannelCreditCard Channel = "credit_card"
	// ChannelVirtualAccount restricts checkout to bank virtual account transfer.
	ChannelVirtualAccount Channel = "virtual_account"
)

func (c Channel) IsValid() bool {
	switch c {
	case ChannelAll, ChannelCreditCard, ChannelVirtualAccount:
		return true
	default:
		return false
	}
}

func (c Channel) IsCreditCard() bool {
	return c == ChannelCreditCard
}

func (c Channel) IsVirtualAccount() bool {
	return c == ChannelVirtualAccount
}

func (c Channel) String() string {
	return string(c)
}
