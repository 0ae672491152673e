// Package ecpay implements the ECPay all-in-one payment gateway adapter:
// order preparation with a signed checkout form, callback verification and
// reconciliation, and remote trade queries.
package ecpay

import (
	"net/http"
	"strings"
	"time"

	"paybridge/internal/domain/order"
	"paybridge/internal/infrastructure/cache"
	"paybridge/internal/shared/config"
	"paybridge/internal/shared/logger"
)

const (
	// Stage environment defaults. Production merchants must override all of
	// these through configuration.
	defaultBaseURL    = "https://payment-stage.ecpay.com.tw"
	defaultMerchantID = "2000132"
	defaultHashKey    = "5294y06JbISpM5x9"
	defaultHashIV     = "v77hoKGq4kWxNNIS"

	defaultServerHost   = "http://localhost:3000"
	defaultCallbackPath = "/payments/ecpay/callback"
	defaultCheckoutPath = "/payments/ecpay/checkout"

	checkoutEndpointPath = "/Cashier/AioCheckOut/V5"
	queryEndpointPath    = "/Cashier/QueryTradeInfo/V5"

	defaultRequestTimeout = 10 * time.Second
)

// Gateway is the facade over the ECPay integration. It owns the pending order
// store and the signing keys; every outbound payload is signed and every
// inbound payload is verified before it can touch order state.
type Gateway struct {
	baseURL      string
	merchantID   string
	serverHost   string
	callbackPath string
	checkoutPath string
	language     string

	signer      MacSigner
	store       *cache.PendingOrderStore
	httpClient  *http.Client
	logger      logger.Interface
	subscribers []order.CommitSubscriber
}

// New builds a gateway from configuration. Commit subscribers registered here
// are attached to every order the gateway prepares and fire on terminal
// commit. Zero-valued config fields fall back to the stage environment.
func New(cfg config.ECPayConfig, log logger.Interface, subscribers ...order.CommitSubscriber) *Gateway {
	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	merchantID := cfg.MerchantID
	hashKey := cfg.HashKey
	hashIV := cfg.HashIV
	if merchantID == "" {
		merchantID = defaultMerchantID
		hashKey = defaultHashKey
		hashIV = defaultHashIV
	}
	serverHost := strings.TrimSuffix(cfg.ServerHost, "/")
	if serverHost == "" {
		serverHost = defaultServerHost
	}
	callbackPath := cfg.CallbackPath
	if callbackPath == "" {
		callbackPath = defaultCallbackPath
	}
	checkoutPath := cfg.CheckoutPath
	if checkoutPath == "" {
		checkoutPath = defaultCheckoutPath
	}

	ttl := time.Duration(cfg.OrderTTLMinutes) * time.Minute
	timeout := time.Duration(cfg.RequestTimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	if log == nil {
		log = logger.NewLogger()
	}

	return &Gateway{
		baseURL:      baseURL,
		merchantID:   merchantID,
		serverHost:   serverHost,
		callbackPath: callbackPath,
		checkoutPath: checkoutPath,
		language:     cfg.Language,
		signer:       NewMacSigner(hashKey, hashIV),
		store:        cache.NewPendingOrderStore(ttl),
		httpClient:   &http.Client{Timeout: timeout},
		logger:       log.Named("ecpay"),
		subscribers:  subscribers,
	}
}

// CheckoutURL is the local URL that serves the auto-submitting checkout form
// for a prepared order.
func (g *Gateway) CheckoutURL(orderID string) string {
	return g.serverHost + g.checkoutPath + "/" + orderID
}

// CallbackURL is the externally reachable URL the gateway posts payment
// results to.
func (g *Gateway) CallbackURL() string {
	return g.serverHost + g.callbackPath
}

// CallbackPath returns the configured callback route path.
func (g *Gateway) CallbackPath() string {
	return g.callbackPath
}

// CheckoutPath returns the configured checkout route path.
func (g *Gateway) CheckoutPath() string {
	return g.checkoutPath
}

// PendingOrder fetches a prepared order that has not expired.
func (g *Gateway) PendingOrder(orderID string) (*order.Order, bool) {
	return g.store.Get(orderID)
}

// Signer exposes the gateway's mac signer for payload verification.
func (g *Gateway) Signer() MacSigner {
	return g.signer
}

// Close releases the pending order store.
func (g *Gateway) Close() {
	g.store.Close()
}
