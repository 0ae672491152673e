package valueobjects

// OrderStatus is derived from the commit state of an order. There are no
// other states: cancellation and expiry are represented by eviction from the
// pending order store, not by a status value.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusCommitted OrderStatus = "committed"
)

func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusCommitted:
		return true
	default:
		return false
	}
}

func (s OrderStatus) IsCommitted() bool {
	return s == OrderStatusCommitted
}

func (s OrderStatus) String() string {
	return string(s)
}
