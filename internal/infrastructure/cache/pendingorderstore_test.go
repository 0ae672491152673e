package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybridge/internal/domain/order"
)

func testOrder(t *testing.T, id string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(order.Params{
		ID:    id,
		Items: []order.Item{{Name: "widget", UnitPrice: 100, Quantity: 1}},
	})
	require.NoError(t, err)
	return o
}

func TestPendingOrderStore_SetGet(t *testing.T) {
	store := NewPendingOrderStore(time.Minute)
	defer store.Close()

	o := testOrder(t, "abc123")
	store.Set(o.ID(), o)

	got, ok := store.Get("abc123")
	require.True(t, ok)
	assert.Same(t, o, got, "store must hand back the shared order instance")

	_, ok = store.Get("never-existed")
	assert.False(t, ok)
}

func TestPendingOrderStore_TTLExpiry(t *testing.T) {
	store := NewPendingOrderStore(30 * time.Millisecond)
	defer store.Close()

	o := testOrder(t, "short-lived")
	store.Set(o.ID(), o)

	_, ok := store.Get("short-lived")
	require.True(t, ok)

	time.Sleep(60 * time.Millisecond)

	_, ok = store.Get("short-lived")
	assert.False(t, ok, "expired entry must be indistinguishable from never existed")
	assert.Equal(t, 0, store.Len())
}

func TestPendingOrderStore_SetRestartsTTL(t *testing.T) {
	store := NewPendingOrderStore(50 * time.Millisecond)
	defer store.Close()

	o := testOrder(t, "refreshed")
	store.Set(o.ID(), o)
	time.Sleep(30 * time.Millisecond)
	store.Set(o.ID(), o)
	time.Sleep(30 * time.Millisecond)

	_, ok := store.Get("refreshed")
	assert.True(t, ok, "re-inserting must restart the TTL")
}

func TestPendingOrderStore_SharedMutation(t *testing.T) {
	store := NewPendingOrderStore(time.Minute)
	defer store.Close()

	o := testOrder(t, "mutated")
	store.Set(o.ID(), o)

	got, ok := store.Get("mutated")
	require.True(t, ok)
	require.True(t, got.Commitable())

	now := time.Now().UTC()
	require.NoError(t, got.Commit(order.CommitMessage{
		ID:          "mutated",
		TotalPrice:  100,
		CommittedAt: &now,
		TradeDate:   now,
		PaymentType: "Credit_CreditCard",
	}, nil))

	again, ok := store.Get("mutated")
	require.True(t, ok)
	assert.False(t, again.Commitable(), "mutation through one reference must be visible through the store")
}
