package ecpay

import (
	"regexp"
	"strconv"
	"strings"

	"paybridge/internal/domain/order"
	vo "paybridge/internal/domain/order/valueobjects"
	apperrors "paybridge/internal/shared/errors"
)

// OrderInput is the merchant-facing request for preparing a checkout order.
// Channel-specific options must match the selected channel.
type OrderInput struct {
	// ID is the merchant trade number. Generated when empty.
	ID          string
	Items       []order.Item
	Description string
	// ClientBackURL receives the browser redirect after checkout completes.
	ClientBackURL string

	Channel        vo.Channel
	CreditCard     *CreditCardOptions
	VirtualAccount *VirtualAccountOptions
}

// CreditCardOptions are the credit-card-channel checkout options.
type CreditCardOptions struct {
	// Memory requests card binding for later charges; requires MemberID.
	Memory   bool
	MemberID string

	AllowUnionPay         bool
	AllowCreditCardRedeem bool

	// Installments is a comma-separated list of installment term counts,
	// e.g. "3,6,9,12".
	Installments string

	Period *PeriodOptions
}

// PeriodOptions configure a recurring charge schedule.
type PeriodOptions struct {
	Type vo.PeriodType
	// Frequency is the number of period units between charges. Zero means
	// the gateway default of one.
	Frequency int
	// Times is the total number of charges.
	Times           int
	AmountPerPeriod int64
}

// VirtualAccountOptions are the virtual-account-channel checkout options.
type VirtualAccountOptions struct {
	// ExpireDays is how long the issued account stays payable. Zero means
	// the gateway default of three days.
	ExpireDays int
}

var installmentsPattern = regexp.MustCompile(`^\d+(,\d+)*$`)

// validate applies the channel option rules in a fixed order so the same bad
// input always reports the same first violation.
func (in OrderInput) validate() error {
	channel := in.Channel
	if channel == "" {
		channel = vo.ChannelAll
	}
	if !channel.IsValid() {
		return apperrors.NewValidationError("unknown payment channel", channel.String())
	}

	if in.VirtualAccount != nil && in.VirtualAccount.ExpireDays != 0 {
		if !channel.IsVirtualAccount() {
			return apperrors.NewValidationError("virtual account expire days only works on virtual account channel")
		}
		if in.VirtualAccount.ExpireDays < 1 || in.VirtualAccount.ExpireDays > 60 {
			return apperrors.NewValidationError("virtual account expire days should be between 1 and 60")
		}
	}

	cc := in.CreditCard
	if cc == nil {
		return nil
	}

	if cc.Memory {
		if !channel.IsCreditCard() {
			return apperrors.NewValidationError("memory only works on credit card channel")
		}
		if cc.MemberID == "" {
			return apperrors.NewValidationError("memory requires a member id")
		}
	}

	if cc.AllowUnionPay && !channel.IsCreditCard() {
		return apperrors.NewValidationError("union pay only works on credit card channel")
	}
	if cc.AllowCreditCardRedeem && !channel.IsCreditCard() {
		return apperrors.NewValidationError("credit card redeem only works on credit card channel")
	}
	if cc.Installments != "" {
		if !channel.IsCreditCard() {
			return apperrors.NewValidationError("installments only works on credit card channel")
		}
		if cc.AllowCreditCardRedeem {
			return apperrors.NewValidationError("installments and credit card redeem are mutually exclusive")
		}
		if cc.Period != nil {
			return apperrors.NewValidationError("installments and period are mutually exclusive")
		}
	}
	if cc.Period != nil && !channel.IsCreditCard() {
		return apperrors.NewValidationError("period only works on credit card channel")
	}

	if cc.Installments != "" {
		if !installmentsPattern.MatchString(cc.Installments) {
			return apperrors.NewValidationError("invalid installments format, expected comma separated positive numbers", cc.Installments)
		}
		for _, part := range strings.Split(cc.Installments, ",") {
			n, err := strconv.Atoi(part)
			if err != nil || n <= 0 {
				return apperrors.NewValidationError("invalid installments format, expected comma separated positive numbers", cc.Installments)
			}
		}
	}

	if cc.Period != nil {
		if err := cc.Period.validate(); err != nil {
			return err
		}
	}

	return nil
}

func (p PeriodOptions) validate() error {
	if !p.Type.IsValid() {
		return apperrors.NewValidationError("unknown period type", p.Type.String())
	}

	if p.Frequency != 0 {
		switch p.Type {
		case vo.PeriodTypeMonth:
			if p.Frequency < 1 || p.Frequency > 12 {
				return apperrors.NewValidationError("monthly period frequency should be between 1 and 12")
			}
		case vo.PeriodTypeYear:
			if p.Frequency != 1 {
				return apperrors.NewValidationError("yearly period frequency should be 1")
			}
		case vo.PeriodTypeDay:
			if p.Frequency < 1 || p.Frequency > 365 {
				return apperrors.NewValidationError("daily period frequency should be between 1 and 365")
			}
		}
	}

	if p.Times < 1 {
		return apperrors.NewValidationError("period times should be at least 1")
	}
	switch p.Type {
	case vo.PeriodTypeMonth:
		if p.Times > 99 {
			return apperrors.NewValidationError("monthly period times should be at most 99")
		}
	case vo.PeriodTypeYear:
		if p.Times > 9 {
			return apperrors.NewValidationError("yearly period times should be at most 9")
		}
	case vo.PeriodTypeDay:
		if p.Times > 999 {
			return apperrors.NewValidationError("daily period times should be at most 999")
		}
	}

	return nil
}
