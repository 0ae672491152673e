// Package biztime provides business timezone utilities for gateway
// integrations. All storage and transport inside the service use UTC; the
// ECPay wire format carries wall-clock timestamps in the gateway's business
// timezone (Asia/Taipei), so parsing and formatting go through the business
// location explicitly. Implicit Local timezone is prohibited.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "Asia/Taipei"

	// GatewayTimeLayout is the wall-clock layout used by ECPay request and
	// callback fields (MerchantTradeDate, TradeDate, PaymentDate, ...).
	GatewayTimeLayout = "2006/01/02 15:04:05"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error
)

// Init initializes the business timezone. Should be called once at startup.
// If tz is empty, defaults to Asia/Taipei.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// MustInit initializes the business timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(fmt.Sprintf("failed to initialize business timezone %q: %v", tz, err))
	}
}

// Location returns the business timezone location, auto-initializing with the
// default timezone when Init was not called explicitly.
func Location() *time.Location {
	if bizLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return bizLocation
}

// NowUTC returns current time in UTC.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// FormatGatewayTime renders t as a gateway wall-clock timestamp in the
// business timezone.
func FormatGatewayTime(t time.Time) string {
	return t.In(Location()).Format(GatewayTimeLayout)
}

// ParseGatewayTime parses a gateway wall-clock timestamp and returns it in
// UTC.
func ParseGatewayTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(GatewayTimeLayout, s, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid gateway time %q: %w", s, err)
	}
	return t.UTC(), nil
}
