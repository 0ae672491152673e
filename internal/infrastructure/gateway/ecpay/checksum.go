package ecpay

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"sort"
	"strings"
)

// CheckMacField is the reserved payload field carrying the signature.
const CheckMacField = "CheckMacValue"

// uriComponentUnescapes reverts the characters Go's query escaping encodes
// but JavaScript's encodeURIComponent leaves alone. The gateway computes its
// reference digest with encodeURIComponent, so the byte stream must match it
// exactly.
var uriComponentUnescapes = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// macFixups are the gateway's idiosyncratic escaping rules, applied after
// lower-casing the encoded string.
var macFixups = strings.NewReplacer(
	"'", "%27",
	"~", "%7e",
	"%20", "+",
)

func encodeURIComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	return uriComponentUnescapes.Replace(escaped)
}

// MacSigner computes and verifies CheckMacValue signatures over flat
// key-value payloads using the merchant's hash key and IV.
type MacSigner struct {
	hashKey string
	hashIV  string
}

func NewMacSigner(hashKey, hashIV string) MacSigner {
	return MacSigner{hashKey: hashKey, hashIV: hashIV}
}

// Sign canonicalizes the payload (case-insensitive key sort, HashKey prefix,
// HashIV suffix, k=v pairs joined with &), percent-encodes the whole string,
// lower-cases it, applies the gateway's escaping fixups and returns the
// uppercase hex SHA-256 digest. Any deviation from this exact procedure
// breaks interoperability with the gateway's verifier.
func (s MacSigner) Sign(payload map[string]string) string {
	keys := make([]string, 0, len(payload))
	for key := range payload {
		if key == CheckMacField {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return strings.ToLower(keys[i]) < strings.ToLower(keys[j])
	})

	var sb strings.Builder
	sb.WriteString("HashKey=")
	sb.WriteString(s.hashKey)
	for _, key := range keys {
		sb.WriteByte('&')
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(payload[key])
	}
	sb.WriteString("&HashIV=")
	sb.WriteString(s.hashIV)

	encoded := strings.ToLower(encodeURIComponent(sb.String()))
	encoded = macFixups.Replace(encoded)

	digest := sha256.Sum256([]byte(encoded))

	return strings.ToUpper(hex.EncodeToString(digest[:]))
}

// Attach returns a copy of the payload with the computed signature added.
func (s MacSigner) Attach(payload map[string]string) map[string]string {
	signed := make(map[string]string, len(payload)+1)
	for key, value := range payload {
		signed[key] = value
	}
	signed[CheckMacField] = s.Sign(payload)
	return signed
}

// Verify strips the signature field, recomputes the signature over the
// remaining fields and compares for exact string equality.
func (s MacSigner) Verify(payload map[string]string) bool {
	mac, ok := payload[CheckMacField]
	if !ok || mac == "" {
		return false
	}
	return s.Sign(payload) == mac
}
