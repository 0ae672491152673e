package order

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vo "paybridge/internal/domain/order/valueobjects"
	apperrors "paybridge/internal/shared/errors"
)

// --- helpers ---

func validItems() []Item {
	return []Item{
		{Name: "widget", UnitPrice: 100, Quantity: 2},
		{Name: "gadget", UnitPrice: 50, Quantity: 1},
	}
}

func validOrder(t *testing.T, subscribers ...CommitSubscriber) *Order {
	t.Helper()
	o, err := NewOrder(Params{
		ID:    "9e2a71c5b8d4f60312ab",
		Items: validItems(),
		Form: map[string]string{
			"MerchantID":      "2000132",
			"MerchantTradeNo": "9e2a71c5b8d4f60312ab",
			"TotalAmount":     "250",
			"CheckMacValue":   "ABCDEF",
		},
		ActionURL:   "https://payment-stage.ecpay.com.tw/Cashier/AioCheckOut/V5",
		Subscribers: subscribers,
	})
	require.NoError(t, err)
	return o
}

func terminalCreditCardMessage(o *Order) (CommitMessage, *CreditCardInfo) {
	now := time.Now().UTC()
	msg := CommitMessage{
		ID:          o.ID(),
		TotalPrice:  o.TotalPrice(),
		CommittedAt: &now,
		MerchantID:  "2000132",
		TradeNumber: "2404261234567890",
		TradeDate:   now,
		PaymentType: vo.PaymentTypeCreditCard,
	}
	info := &CreditCardInfo{
		ProcessDate: now,
		AuthCode:    "777777",
		Amount:      o.TotalPrice(),
		ECI:         5,
		Card4Number: "2222",
		Card6Number: "431195",
	}
	return msg, info
}

func waitingMessage(o *Order) (CommitMessage, *VirtualAccountInfo) {
	msg := CommitMessage{
		ID:          o.ID(),
		TotalPrice:  o.TotalPrice(),
		CommittedAt: nil,
		MerchantID:  "2000132",
		TradeNumber: "2404269876543210",
		TradeDate:   time.Now().UTC(),
		PaymentType: vo.PaymentTypeVirtualAccountWaiting,
	}
	info := &VirtualAccountInfo{BankCode: "812", Account: "9103522175887271"}
	return msg, info
}

// =============================================================================
// Constructor Tests
// =============================================================================

func TestNewOrder(t *testing.T) {
	t.Run("valid input", func(t *testing.T) {
		o := validOrder(t)

		assert.Equal(t, "9e2a71c5b8d4f60312ab", o.ID())
		assert.Equal(t, int64(250), o.TotalPrice())
		assert.Equal(t, vo.OrderStatusPending, o.Status())
		assert.True(t, o.Commitable())
		assert.Nil(t, o.CommittedAt())
		assert.Nil(t, o.PaymentType())
		assert.False(t, o.CreatedAt().IsZero())
	})

	t.Run("missing id", func(t *testing.T) {
		o, err := NewOrder(Params{Items: validItems()})
		assert.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "order id is required")
	})

	t.Run("no items", func(t *testing.T) {
		o, err := NewOrder(Params{ID: "abc"})
		assert.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "at least one item")
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		o, err := NewOrder(Params{
			ID:    "abc",
			Items: []Item{{Name: "widget", UnitPrice: 100, Quantity: 0}},
		})
		assert.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "quantity must be positive")
	})
}

// =============================================================================
// Commit Tests
// =============================================================================

func TestOrder_Commit(t *testing.T) {
	t.Run("terminal credit card commit", func(t *testing.T) {
		var committed []*Order
		o := validOrder(t, func(o *Order) { committed = append(committed, o) })
		msg, info := terminalCreditCardMessage(o)

		require.NoError(t, o.Commit(msg, info))

		assert.False(t, o.Commitable())
		assert.Equal(t, vo.OrderStatusCommitted, o.Status())
		require.NotNil(t, o.CommittedAt())
		assert.Equal(t, *msg.CommittedAt, *o.CommittedAt())
		require.NotNil(t, o.PaymentType())
		assert.Equal(t, vo.PaymentTypeCreditCard, *o.PaymentType())
		assert.Equal(t, msg.TradeNumber, o.PlatformTradeNumber())
		require.NotNil(t, o.CreditCardInfo())
		assert.Equal(t, "777777", o.CreditCardInfo().AuthCode)
		require.Len(t, committed, 1)
		assert.Same(t, o, committed[0])
	})

	t.Run("second commit rejected without mutation", func(t *testing.T) {
		var commits int
		o := validOrder(t, func(*Order) { commits++ })
		msg, info := terminalCreditCardMessage(o)
		require.NoError(t, o.Commit(msg, info))
		firstCommittedAt := *o.CommittedAt()

		later := time.Now().UTC().Add(time.Minute)
		msg.CommittedAt = &later
		err := o.Commit(msg, info)

		assert.True(t, apperrors.IsStateConflictError(err))
		assert.Equal(t, firstCommittedAt, *o.CommittedAt(), "state must be identical to a single commit")
		assert.Equal(t, 1, commits, "subscriber must fire exactly once")
	})

	t.Run("trade number mismatch", func(t *testing.T) {
		o := validOrder(t)
		msg, info := terminalCreditCardMessage(o)
		msg.ID = "someone-elses-order"

		err := o.Commit(msg, info)
		assert.True(t, apperrors.IsValidationError(err))
		assert.True(t, o.Commitable())
	})
}

// =============================================================================
// Two-phase virtual account Tests
// =============================================================================

func TestOrder_TwoPhaseVirtualAccount(t *testing.T) {
	t.Run("waiting then terminal then rejected", func(t *testing.T) {
		var commits int
		o := validOrder(t, func(*Order) { commits++ })

		// Phase one: account issued, no committed-at.
		waitMsg, vaInfo := waitingMessage(o)
		require.NoError(t, o.Commit(waitMsg, vaInfo))

		assert.True(t, o.Commitable(), "provisional notification must not finalize")
		assert.Equal(t, vo.OrderStatusPending, o.Status())
		require.NotNil(t, o.PaymentType())
		assert.True(t, o.PaymentType().IsWaiting())
		require.NotNil(t, o.VirtualAccountInfo())
		assert.Equal(t, "812", o.VirtualAccountInfo().BankCode)
		assert.Equal(t, "9103522175887271", o.VirtualAccountInfo().Account)
		assert.Equal(t, 0, commits)

		// Phase two: funds received, concrete ATM code.
		paidAt := time.Now().UTC()
		finalMsg := waitMsg
		finalMsg.CommittedAt = &paidAt
		finalMsg.PaymentType = vo.PaymentTypeATMTaishin
		require.NoError(t, o.Commit(finalMsg, vaInfo))

		assert.False(t, o.Commitable())
		assert.Equal(t, vo.PaymentTypeATMTaishin, *o.PaymentType())
		assert.Equal(t, 1, commits)

		// Phase three: redelivery is rejected.
		err := o.Commit(finalMsg, vaInfo)
		assert.True(t, apperrors.IsStateConflictError(err))
		assert.Equal(t, 1, commits)
	})

	t.Run("waiting notification cannot finalize", func(t *testing.T) {
		o := validOrder(t)
		msg, info := waitingMessage(o)
		now := time.Now().UTC()
		msg.CommittedAt = &now

		err := o.Commit(msg, info)
		assert.True(t, apperrors.IsValidationError(err))
		assert.True(t, o.Commitable())
	})

	t.Run("cannot return to waiting after concrete type", func(t *testing.T) {
		o := validOrder(t)

		// Provisional notification already carrying the concrete ATM code.
		msg, info := waitingMessage(o)
		msg.PaymentType = vo.PaymentTypeATMFubon
		require.NoError(t, o.Commit(msg, info))
		assert.True(t, o.Commitable())

		backToWaiting, _ := waitingMessage(o)
		err := o.Commit(backToWaiting, info)
		assert.True(t, apperrors.IsStateConflictError(err))
	})

	t.Run("conflicting concrete types rejected", func(t *testing.T) {
		o := validOrder(t)
		msg, info := waitingMessage(o)
		msg.PaymentType = vo.PaymentTypeATMFubon
		require.NoError(t, o.Commit(msg, info))

		other := msg
		other.PaymentType = vo.PaymentTypeATMTaishin
		err := o.Commit(other, info)
		assert.True(t, apperrors.IsStateConflictError(err))
	})
}

// =============================================================================
// Form rendering Tests
// =============================================================================

func TestOrder_FormHTML(t *testing.T) {
	o := validOrder(t)

	html, err := o.FormHTML()
	require.NoError(t, err)

	assert.Contains(t, html, `action="https://payment-stage.ecpay.com.tw/Cashier/AioCheckOut/V5"`)
	assert.Contains(t, html, `name="MerchantTradeNo" value="9e2a71c5b8d4f60312ab"`)
	assert.Contains(t, html, `name="CheckMacValue" value="ABCDEF"`)
	assert.Contains(t, html, "document.getElementById")

	// Deterministic output.
	again, err := o.FormHTML()
	require.NoError(t, err)
	assert.Equal(t, html, again)

	// Hidden inputs follow sorted field order.
	assert.Less(t, strings.Index(html, "CheckMacValue"), strings.Index(html, "MerchantID"))
}

func TestOrder_ReconstructOrder(t *testing.T) {
	createdAt := time.Date(2024, 4, 26, 3, 21, 0, 0, time.UTC)
	paidAt := createdAt.Add(10 * time.Minute)
	paymentType := vo.PaymentTypeCreditCard

	o := ReconstructOrder(ReconstructParams{
		ID:                  "remote123",
		Items:               []Item{{Name: "remote-trade", UnitPrice: 200, Quantity: 1}},
		CreatedAt:           createdAt,
		CommittedAt:         &paidAt,
		MerchantID:          "2000132",
		PlatformTradeNumber: "remote123",
		PaymentType:         &paymentType,
	})

	assert.Equal(t, "remote123", o.ID())
	assert.Equal(t, int64(200), o.TotalPrice())
	assert.Equal(t, vo.OrderStatusCommitted, o.Status())
	assert.False(t, o.Commitable())
	require.NotNil(t, o.CommittedAt())
	assert.Equal(t, paidAt, *o.CommittedAt())
}
