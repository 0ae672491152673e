package ecpay

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paybridge/internal/domain/order"
	vo "paybridge/internal/domain/order/valueobjects"
	apperrors "paybridge/internal/shared/errors"
)

// signedValues signs the payload with the gateway's keys and renders it as a
// posted form.
func signedValues(g *Gateway, payload map[string]string) url.Values {
	values := url.Values{}
	for key, value := range g.Signer().Attach(payload) {
		values.Set(key, value)
	}
	return values
}

func creditCardCallback(orderID string) map[string]string {
	return map[string]string{
		"MerchantID":      "2000132",
		"MerchantTradeNo": orderID,
		"TradeNo":         "2404261234567890",
		"RtnCode":         "1",
		"RtnMsg":          "paid",
		"TradeAmt":        "250",
		"TradeDate":       "2024/04/26 11:21:00",
		"PaymentDate":     "2024/04/26 11:30:00",
		"PaymentType":     "Credit_CreditCard",
		"SimulatePaid":    "0",
		"process_date":    "2024/04/26 11:30:00",
		"auth_code":       "777777",
		"amount":          "250",
		"eci":             "5",
		"card4no":         "2222",
		"card6no":         "431195",
	}
}

func atmIssuanceCallback(orderID string) map[string]string {
	return map[string]string{
		"MerchantID":      "2000132",
		"MerchantTradeNo": orderID,
		"TradeNo":         "2404269876543210",
		"RtnCode":         "2",
		"RtnMsg":          "account issued",
		"TradeAmt":        "250",
		"TradeDate":       "2024/04/26 11:21:00",
		"PaymentType":     "ATM_TAISHIN",
		"BankCode":        "812",
		"vAccount":        "9103522175887271",
		"ExpireDate":      "2024/04/29",
	}
}

// =============================================================================
// Parsing Tests
// =============================================================================

func TestGateway_ParseCallback(t *testing.T) {
	g := testGateway(t)

	t.Run("valid credit card callback", func(t *testing.T) {
		p, err := g.ParseCallback(signedValues(g, creditCardCallback("order-1")))
		require.NoError(t, err)

		assert.Equal(t, "order-1", p.MerchantTradeNo)
		assert.Equal(t, 1, p.RtnCode)
		assert.Equal(t, int64(250), p.TradeAmt)
		assert.Equal(t, int64(250), p.Amount)
		assert.Equal(t, 5, p.ECI)
		assert.Equal(t, vo.PaymentTypeCreditCard, p.PaymentType)
		assert.Equal(t, "777777", p.AuthCode)
		assert.True(t, p.Succeeded())
	})

	t.Run("tampered amount", func(t *testing.T) {
		values := signedValues(g, creditCardCallback("order-2"))
		values.Set("TradeAmt", "1")

		_, err := g.ParseCallback(values)
		assert.True(t, apperrors.IsIntegrityError(err))
	})

	t.Run("missing mac", func(t *testing.T) {
		values := url.Values{}
		for key, value := range creditCardCallback("order-3") {
			values.Set(key, value)
		}
		_, err := g.ParseCallback(values)
		assert.True(t, apperrors.IsIntegrityError(err))
	})

	t.Run("non numeric field", func(t *testing.T) {
		payload := creditCardCallback("order-4")
		payload["RtnCode"] = "one"
		_, err := g.ParseCallback(signedValues(g, payload))
		assert.True(t, apperrors.IsValidationError(err))
		assert.Contains(t, err.Error(), "RtnCode")
	})

	t.Run("non numeric eci", func(t *testing.T) {
		payload := creditCardCallback("order-5")
		payload["eci"] = "5b"
		_, err := g.ParseCallback(signedValues(g, payload))
		assert.True(t, apperrors.IsValidationError(err))
		assert.Contains(t, err.Error(), "eci")
	})
}

// =============================================================================
// Commit message conversion Tests
// =============================================================================

func TestCallbackPayload_CommitMessage(t *testing.T) {
	g := testGateway(t)

	t.Run("credit card payment is terminal", func(t *testing.T) {
		p, err := g.ParseCallback(signedValues(g, creditCardCallback("order-cc")))
		require.NoError(t, err)

		msg, info, err := p.CommitMessage()
		require.NoError(t, err)

		assert.Equal(t, "order-cc", msg.ID)
		assert.Equal(t, int64(250), msg.TotalPrice)
		assert.Equal(t, "2404261234567890", msg.TradeNumber)
		assert.Equal(t, vo.PaymentTypeCreditCard, msg.PaymentType)
		require.NotNil(t, msg.CommittedAt)

		cc, ok := info.(*order.CreditCardInfo)
		require.True(t, ok)
		assert.Equal(t, "777777", cc.AuthCode)
		assert.Equal(t, "2222", cc.Card4Number)
		assert.Equal(t, "431195", cc.Card6Number)
		assert.Equal(t, int64(250), cc.Amount)
		assert.Equal(t, 5, cc.ECI)
	})

	t.Run("atm issuance is provisional waiting", func(t *testing.T) {
		p, err := g.ParseCallback(signedValues(g, atmIssuanceCallback("order-atm")))
		require.NoError(t, err)
		assert.True(t, p.Succeeded())

		msg, info, err := p.CommitMessage()
		require.NoError(t, err)

		assert.Nil(t, msg.CommittedAt, "issuance must not finalize the order")
		assert.Equal(t, vo.PaymentTypeVirtualAccountWaiting, msg.PaymentType)

		va, ok := info.(*order.VirtualAccountInfo)
		require.True(t, ok)
		assert.Equal(t, "812", va.BankCode)
		assert.Equal(t, "9103522175887271", va.Account)
	})

	t.Run("atm payment is terminal with concrete type", func(t *testing.T) {
		payload := atmIssuanceCallback("order-atm-paid")
		payload["RtnCode"] = "1"
		payload["PaymentDate"] = "2024/04/27 09:00:00"

		p, err := g.ParseCallback(signedValues(g, payload))
		require.NoError(t, err)

		msg, info, err := p.CommitMessage()
		require.NoError(t, err)

		require.NotNil(t, msg.CommittedAt)
		assert.Equal(t, vo.PaymentTypeATMTaishin, msg.PaymentType)
		_, ok := info.(*order.VirtualAccountInfo)
		assert.True(t, ok)
	})

	t.Run("unsupported payment type", func(t *testing.T) {
		payload := creditCardCallback("order-weird")
		payload["PaymentType"] = "WebATM_TAISHIN"

		p, err := g.ParseCallback(signedValues(g, payload))
		require.NoError(t, err)

		_, _, err = p.CommitMessage()
		assert.True(t, apperrors.IsValidationError(err))
	})

	t.Run("malformed trade date", func(t *testing.T) {
		payload := creditCardCallback("order-baddate")
		payload["TradeDate"] = "yesterday"

		p, err := g.ParseCallback(signedValues(g, payload))
		require.NoError(t, err)

		_, _, err = p.CommitMessage()
		assert.True(t, apperrors.IsValidationError(err))
	})
}
