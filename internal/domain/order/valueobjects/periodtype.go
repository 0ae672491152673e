package valueobjects

// PeriodType is the unit of a recurring credit-card charge period.
type PeriodType string

const (
	PeriodTypeDay   PeriodType = "day"
	PeriodTypeMonth PeriodType = "month"
	PeriodTypeYear  PeriodType = "year"
)

func (t PeriodType) IsValid() bool {
	switch t {
	case PeriodTypeDay, PeriodTypeMonth, PeriodTypeYear:
		return true
	default:
		return false
	}
}

// GatewayCode returns the single-letter code used on the ECPay wire.
func (t PeriodType) GatewayCode() string {
	switch t {
	case PeriodTypeMonth:
		return "M"
	case PeriodTypeYear:
		return "Y"
	default:
		return "D"
	}
}

func (t PeriodType) String() string {
	return string(t)
}
