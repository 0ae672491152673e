package ezpay

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCodec() codec {
	return newCodec("yoRs5AfTfAWe9HI4DlEYKRorr9YvV3Kr", "CrJMQLwDF6zKOeaP")
}

// =============================================================================
// Codec Tests
// =============================================================================

func TestCodec_EncryptDecrypt(t *testing.T) {
	c := testCodec()

	fields := []kv{
		{"MerchantOrderNo", "order_001"},
		{"BuyerName", "王小明"},
		{"TotalAmt", "1050"},
	}

	secret, err := c.encrypt(fields)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]+$`), secret)
	assert.Zero(t, len(secret)%32, "hex ciphertext covers whole AES blocks")

	plain, err := c.decrypt(secret)
	require.NoError(t, err)
	assert.Equal(t, "MerchantOrderNo=order_001&BuyerName="+encodeComponent("王小明")+"&TotalAmt=1050", plain)
}

func TestCodec_EncryptPreservesFieldOrder(t *testing.T) {
	c := testCodec()

	first, err := c.encrypt([]kv{{"A", "1"}, {"B", "2"}})
	require.NoError(t, err)
	second, err := c.encrypt([]kv{{"B", "2"}, {"A", "1"}})
	require.NoError(t, err)

	assert.NotEqual(t, first, second, "field order is part of the wire format")
}

func TestCodec_DecryptRejectsGarbage(t *testing.T) {
	c := testCodec()

	_, err := c.decrypt("not-hex")
	assert.Error(t, err)

	_, err = c.decrypt("abcdef")
	assert.Error(t, err, "partial block must be rejected")
}

func TestCodec_Checksum(t *testing.T) {
	c := testCodec()

	sum := c.checksum("deadbeef")
	assert.Regexp(t, regexp.MustCompile(`^[0-9A-F]{64}$`), sum)
	assert.Equal(t, sum, c.checksum("deadbeef"))
	assert.NotEqual(t, sum, c.checksum("deadbeee"))
}

func TestDecodeResponseFields(t *testing.T) {
	fields := decodeResponseFields("IsExist=Y&CellphoneBarcode=" + encodeComponent("/ABC+123") + "&Junk")
	assert.Equal(t, "Y", fields["IsExist"])
	assert.Equal(t, "/ABC+123", fields["CellphoneBarcode"])
	_, ok := fields["Junk"]
	assert.False(t, ok)

	stripped := decodeResponseFields("IsExist=Y\x1b/&Other=1")
	assert.Equal(t, "Y", stripped["IsExist"])
}

func TestDeriveTaxType(t *testing.T) {
	taxed := []Item{{Name: "a", UnitPrice: 100, Quantity: 1}}
	assert.Equal(t, TaxTypeTaxed, deriveTaxType(taxed))

	zero := []Item{{Name: "a", UnitPrice: 100, Quantity: 1, TaxType: TaxTypeZeroTax}}
	assert.Equal(t, TaxTypeZeroTax, deriveTaxType(zero))

	mixed := []Item{
		{Name: "a", UnitPrice: 100, Quantity: 1},
		{Name: "b", UnitPrice: 100, Quantity: 1, TaxType: TaxTypeTaxFree},
	}
	assert.Equal(t, TaxTypeMixed, deriveTaxType(mixed))

	special := []Item{
		{Name: "a", UnitPrice: 100, Quantity: 1, TaxType: TaxTypeSpecial},
		{Name: "b", UnitPrice: 100, Quantity: 1},
	}
	assert.Equal(t, TaxTypeSpecial, deriveTaxType(special))

	assert.Equal(t, TaxTypeTaxed, deriveTaxType(nil))
}

func TestEncodeComponent(t *testing.T) {
	assert.Equal(t, "a%20b~'(c)*!", encodeComponent("a b~'(c)*!"))
	assert.True(t, strings.HasPrefix(encodeComponent("商品"), "%E5"))
}
