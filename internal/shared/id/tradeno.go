// Package id generates merchant trade numbers.
package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TradeNoBytes is the entropy of a generated merchant trade number.
// 10 bytes render as a 20-character hex string, within ECPay's 20-character
// MerchantTradeNo limit.
const TradeNoBytes = 10

// GenerateTradeNo creates a random merchant trade number.
func GenerateTradeNo() (string, error) {
	buf := make([]byte, TradeNoBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// MustGenerateTradeNo creates a random merchant trade number and panics on
// error. crypto/rand only fails when the platform entropy source is broken.
func MustGenerateTradeNo() string {
	tradeNo, err := GenerateTradeNo()
	if err != nil {
		panic(err)
	}
	return tradeNo
}
