package order

import (
	"fmt"
	"sync"
	"time"

	vo "paybridge/internal/domain/order/valueobjects"
	"paybridge/internal/shared/biztime"
	apperrors "paybridge/internal/shared/errors"
)

// Item is one checkout line item.
type Item struct {
	Name      string
	UnitPrice int64
	Quantity  int64
	Unit      string
	Remark    string
}

// Order is one payment order prepared against the gateway. It is created in
// pending state, held by the pending order store for its TTL, and transitions
// to committed at most once when an authenticated gateway callback arrives.
//
// Callbacks are served concurrently, so the commit check-and-set is guarded
// by a per-order mutex: the gateway is known to redeliver callbacks and the
// first terminal commit must win.
type Order struct {
	mu sync.Mutex

	id        string
	items     []Item
	form      map[string]string
	actionURL string

	createdAt   time.Time
	committedAt *time.Time

	merchantID          string
	platformTradeNumber string
	tradeDate           *time.Time
	paymentType         *vo.PaymentType

	virtualAccountInfo *VirtualAccountInfo
	creditCardInfo     *CreditCardInfo

	subscribers []CommitSubscriber
}

// Params carries the inputs for a freshly prepared order.
type Params struct {
	ID          string
	Items       []Item
	Form        map[string]string
	ActionURL   string
	Subscribers []CommitSubscriber
}

// NewOrder creates a pending order.
func NewOrder(p Params) (*Order, error) {
	if p.ID == "" {
		return nil, fmt.Errorf("order id is required")
	}
	if len(p.Items) == 0 {
		return nil, fmt.Errorf("order needs at least one item")
	}
	for _, item := range p.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item %q quantity must be positive", item.Name)
		}
	}

	return &Order{
		id:          p.ID,
		items:       p.Items,
		form:        p.Form,
		actionURL:   p.ActionURL,
		createdAt:   biztime.NowUTC(),
		subscribers: p.Subscribers,
	}, nil
}

// ReconstructParams carries the fields of an order rebuilt from a remote
// query result rather than from the local pending store.
type ReconstructParams struct {
	ID                  string
	Items               []Item
	CreatedAt           time.Time
	CommittedAt         *time.Time
	MerchantID          string
	PlatformTradeNumber string
	PaymentType         *vo.PaymentType
}

// ReconstructOrder builds a cold, synthetic order reflecting the gateway's
// authoritative view. Used for reconciliation when callbacks are lost; the
// result is not cached and never receives callbacks.
func ReconstructOrder(p ReconstructParams) *Order {
	return &Order{
		id:                  p.ID,
		items:               p.Items,
		createdAt:           p.CreatedAt,
		committedAt:         p.CommittedAt,
		merchantID:          p.MerchantID,
		platformTradeNumber: p.PlatformTradeNumber,
		paymentType:         p.PaymentType,
	}
}

// Commit applies a payment notification to the order.
//
// A message without CommittedAt is the provisional phase of a two-phase
// virtual-account notification: it records the issued account information and
// payment type but leaves the order commitable. A message with CommittedAt is
// terminal: it finalizes the order exactly once and notifies the registered
// commit subscribers. A second terminal commit is rejected without mutation.
func (o *Order) Commit(msg CommitMessage, info AdditionalInfo) error {
	subscribers, err := o.applyCommit(msg, info)
	if err != nil {
		return err
	}

	// Subscribers run outside the order lock so they may inspect the order.
	for _, fn := range subscribers {
		fn(o)
	}

	return nil
}

func (o *Order) applyCommit(msg CommitMessage, info AdditionalInfo) ([]CommitSubscriber, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.committedAt != nil {
		return nil, apperrors.NewStateConflictError("order already committed", o.id)
	}

	if msg.ID != o.id {
		return nil, apperrors.NewValidationError("commit message trade number mismatch", msg.ID)
	}

	if msg.PaymentType.IsWaiting() {
		if msg.CommittedAt != nil {
			return nil, apperrors.NewValidationError("waiting notification cannot finalize an order", o.id)
		}
		if o.paymentType != nil && !o.paymentType.IsWaiting() {
			return nil, apperrors.NewStateConflictError("payment type cannot return to waiting", o.id)
		}
	} else if o.paymentType != nil && !o.paymentType.IsWaiting() && *o.paymentType != msg.PaymentType {
		return nil, apperrors.NewStateConflictError("conflicting payment type notification", o.id)
	}

	paymentType := msg.PaymentType
	o.paymentType = &paymentType
	o.merchantID = msg.MerchantID
	o.platformTradeNumber = msg.TradeNumber
	tradeDate := msg.TradeDate
	o.tradeDate = &tradeDate

	switch v := info.(type) {
	case *VirtualAccountInfo:
		o.virtualAccountInfo = v
	case *CreditCardInfo:
		o.creditCardInfo = v
	case nil:
	default:
		return nil, apperrors.NewValidationError("unsupported additional info", fmt.Sprintf("%T", info))
	}

	if msg.CommittedAt == nil {
		// Provisional: account issued, funds not yet received.
		return nil, nil
	}

	committedAt := *msg.CommittedAt
	o.committedAt = &committedAt

	return o.subscribers, nil
}

// Commitable reports whether the order can still accept a terminal commit.
func (o *Order) Commitable() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.committedAt == nil
}

// Status is derived from the commit state.
func (o *Order) Status() vo.OrderStatus {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.committedAt != nil {
		return vo.OrderStatusCommitted
	}
	return vo.OrderStatusPending
}

// TotalPrice is the sum of unit price times quantity over all items.
func (o *Order) TotalPrice() int64 {
	var total int64
	for _, item := range o.items {
		total += item.UnitPrice * item.Quantity
	}
	return total
}

func (o *Order) ID() string {
	return o.id
}

func (o *Order) Items() []Item {
	return o.items
}

// Form returns the signed checkout form payload.
func (o *Order) Form() map[string]string {
	return o.form
}

// ActionURL is the gateway checkout endpoint the form posts to.
func (o *Order) ActionURL() string {
	return o.actionURL
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) CommittedAt() *time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.committedAt
}

func (o *Order) MerchantID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.merchantID
}

func (o *Order) PlatformTradeNumber() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.platformTradeNumber
}

func (o *Order) TradeDate() *time.Time {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.tradeDate
}

func (o *Order) PaymentType() *vo.PaymentType {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.paymentType
}

func (o *Order) VirtualAccountInfo() *VirtualAccountInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.virtualAccountInfo
}

func (o *Order) CreditCardInfo() *CreditCardInfo {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.creditCardInfo
}
