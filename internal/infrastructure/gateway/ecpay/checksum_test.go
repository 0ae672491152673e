package ecpay

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSigner() MacSigner {
	return NewMacSigner("5294y06JbISpM5x9", "v77hoKGq4kWxNNIS")
}

// =============================================================================
// Encoding Tests
// =============================================================================

func TestEncodeURIComponent(t *testing.T) {
	// The characters JavaScript's encodeURIComponent leaves bare must stay
	// bare, and space must become %20, not +.
	assert.Equal(t, "a%20b~c'(d)*!-_.", encodeURIComponent("a b~c'(d)*!-_."))
	assert.Equal(t, "https%3A%2F%2Fexample.com%2Fback%3Fa%3D1%26b%3D2", encodeURIComponent("https://example.com/back?a=1&b=2"))
	assert.Equal(t, "%E5%95%86%E5%93%81%20x2", encodeURIComponent("商品 x2"))
}

// =============================================================================
// Signing Tests
// =============================================================================

func TestMacSigner_Sign(t *testing.T) {
	signer := testSigner()
	payload := map[string]string{
		"MerchantID":      "2000132",
		"MerchantTradeNo": "abc123",
		"TotalAmount":     "250",
		"ItemName":        "widget x2#gadget x1",
		"ReturnURL":       "https://example.com/payments/ecpay/callback",
	}

	mac := signer.Sign(payload)
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{64}$`), mac)

	// Deterministic regardless of map iteration order.
	assert.Equal(t, mac, signer.Sign(payload))

	// A signature field already present must not feed into the digest.
	withMac := map[string]string{CheckMacField: "FFFF"}
	for k, v := range payload {
		withMac[k] = v
	}
	assert.Equal(t, mac, signer.Sign(withMac))
}

func TestMacSigner_AttachVerify(t *testing.T) {
	signer := testSigner()
	payload := map[string]string{
		"MerchantID":      "2000132",
		"MerchantTradeNo": "abc123",
		"TradeAmt":        "250",
	}

	signed := signer.Attach(payload)
	require.NotEmpty(t, signed[CheckMacField])
	assert.NotContains(t, payload, CheckMacField, "Attach must not mutate its input")
	assert.True(t, signer.Verify(signed))

	t.Run("tampered value", func(t *testing.T) {
		tampered := signer.Attach(payload)
		tampered["TradeAmt"] = "9999"
		assert.False(t, signer.Verify(tampered))
	})

	t.Run("tampered mac", func(t *testing.T) {
		tampered := signer.Attach(payload)
		tampered[CheckMacField] = "0000000000000000000000000000000000000000000000000000000000000000"
		assert.False(t, signer.Verify(tampered))
	})

	t.Run("missing mac", func(t *testing.T) {
		assert.False(t, signer.Verify(payload))
	})

	t.Run("wrong keys", func(t *testing.T) {
		other := NewMacSigner("otherkey12345678", "otheriv123456789")
		assert.False(t, other.Verify(signed))
	})
}

func TestMacSigner_KeySortIsCaseInsensitive(t *testing.T) {
	signer := testSigner()

	// Mixed-case keys must canonicalize the same way every time; equal macs
	// from repeated runs would not prove this without mixed casing present.
	payload := map[string]string{
		"ItemName":    "a",
		"apple":       "b",
		"Banana":      "c",
		"TradeDesc":   "d",
		"MerchantID":  "2000132",
		"totalAmount": "100",
	}
	first := signer.Sign(payload)
	for i := 0; i < 16; i++ {
		assert.Equal(t, first, signer.Sign(payload))
	}
}
