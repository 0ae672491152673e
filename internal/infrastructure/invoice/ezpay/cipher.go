package ezpay

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"
)

// kv is one ordered payload field. The platform decrypts the payload as a
// positional query string, so insertion order is part of the wire format and
// a map cannot carry it.
type kv struct {
	key   string
	value string
}

// codec implements the EZPay payload envelope: AES-256-CBC over a
// query-string rendering of the fields, hex encoded, plus the SHA-256
// CheckValue over the ciphertext.
type codec struct {
	key []byte
	iv  []byte
}

func newCodec(hashKey, hashIV string) codec {
	return codec{key: []byte(hashKey), iv: []byte(hashIV)}
}

var componentUnescapes = strings.NewReplacer(
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent escapes a value the way JavaScript's encodeURIComponent
// does; the platform decodes with its counterpart.
func encodeComponent(s string) string {
	escaped := url.QueryEscape(s)
	escaped = strings.ReplaceAll(escaped, "+", "%20")
	return componentUnescapes.Replace(escaped)
}

// encrypt renders the fields as k=v pairs joined with &, PKCS#7-pads and
// encrypts with AES-256-CBC, and returns lowercase hex ciphertext.
func (c codec) encrypt(fields []kv) (string, error) {
	pairs := make([]string, 0, len(fields))
	for _, field := range fields {
		pairs = append(pairs, field.key+"="+encodeComponent(field.value))
	}
	plaintext := []byte(strings.Join(pairs, "&"))

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("invalid cipher key: %w", err)
	}

	padLen := aes.BlockSize - len(plaintext)%aes.BlockSize
	padded := make([]byte, len(plaintext)+padLen)
	copy(padded, plaintext)
	for i := len(plaintext); i < len(padded); i++ {
		padded[i] = byte(padLen)
	}

	out := make([]byte, len(padded))
	cipher.NewCBCEncrypter(block, c.iv).CryptBlocks(out, padded)

	return hex.EncodeToString(out), nil
}

// decrypt reverses encrypt without assuming well-formed padding: the
// platform's responses carry nonstandard trailing bytes, so everything below
// 0x20 is stripped from the tail and escape characters are removed from the
// body.
func (c codec) decrypt(secret string) (string, error) {
	raw, err := hex.DecodeString(secret)
	if err != nil {
		return "", fmt.Errorf("ciphertext is not hex: %w", err)
	}
	if len(raw) == 0 || len(raw)%aes.BlockSize != 0 {
		return "", fmt.Errorf("ciphertext length %d is not a block multiple", len(raw))
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("invalid cipher key: %w", err)
	}

	plain := make([]byte, len(raw))
	cipher.NewCBCDecrypter(block, c.iv).CryptBlocks(plain, raw)

	end := len(plain)
	for end > 0 && plain[end-1] < 0x20 {
		end--
	}

	return strings.ReplaceAll(string(plain[:end]), "\x1b", ""), nil
}

// checksum computes the CheckValue over an encrypted payload.
func (c codec) checksum(postData string) string {
	digest := sha256.Sum256([]byte("HashKey=" + string(c.key) + "&" + postData + "&HashIV=" + string(c.iv)))
	return strings.ToUpper(hex.EncodeToString(digest[:]))
}

// decodeResponseFields parses a decrypted validation response back into a
// field map, trimming the platform's stray escape sequences.
func decodeResponseFields(plain string) map[string]string {
	fields := make(map[string]string)
	for _, pair := range strings.Split(plain, "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found {
			continue
		}
		decoded, err := url.QueryUnescape(strings.TrimSpace(value))
		if err != nil {
			decoded = value
		}
		fields[key] = strings.ReplaceAll(decoded, "\x1b/", "")
	}
	return fields
}
