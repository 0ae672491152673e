package ecpay

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"paybridge/internal/domain/order"
	vo "paybridge/internal/domain/order/valueobjects"
	"paybridge/internal/shared/biztime"
	apperrors "paybridge/internal/shared/errors"
)

// queryItemName labels the synthetic single line item of a reconciled order.
// The query endpoint reports only the trade amount, not the original items.
const queryItemName = "gateway-trade"

// Query asks the gateway for the authoritative state of a trade and rebuilds
// a read-only order from the verified response. It does not touch the pending
// order store; use it to reconcile orders whose callbacks were lost.
func (g *Gateway) Query(ctx context.Context, orderID string) (*order.Order, error) {
	if orderID == "" {
		return nil, apperrors.NewValidationError("order id is required")
	}

	payload := g.signer.Attach(map[string]string{
		"MerchantID":      g.merchantID,
		"MerchantTradeNo": orderID,
		"PlatformID":      "",
		"TimeStamp":       strconv.FormatInt(time.Now().Unix(), 10),
	})

	form := url.Values{}
	for key, value := range payload {
		form.Set(key, value)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+queryEndpointPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, apperrors.NewInternalError("build query request", err.Error())
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewInternalError("query trade info", err.Error())
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.NewInternalError("read query response", err.Error())
	}
	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewInternalError("query trade info failed", resp.Status)
	}

	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, apperrors.NewValidationError("query response is malformed", err.Error())
	}

	flat := make(map[string]string, len(values))
	for key := range values {
		flat[key] = values.Get(key)
	}

	if !g.signer.Verify(flat) {
		return nil, apperrors.NewIntegrityError("query response check mac value mismatch", orderID)
	}

	return reconstructFromQuery(orderID, flat)
}

func reconstructFromQuery(orderID string, flat map[string]string) (*order.Order, error) {
	tradeAmt, err := strconv.ParseInt(flat["TradeAmt"], 10, 64)
	if err != nil {
		return nil, apperrors.NewValidationError("query response trade amount is malformed", flat["TradeAmt"])
	}

	createdAt, err := biztime.ParseGatewayTime(flat["TradeDate"])
	if err != nil {
		return nil, apperrors.NewValidationError("query response trade date is malformed", flat["TradeDate"])
	}

	var committedAt *time.Time
	if paymentDate := flat["PaymentDate"]; paymentDate != "" {
		paidAt, err := biztime.ParseGatewayTime(paymentDate)
		if err != nil {
			return nil, apperrors.NewValidationError("query response payment date is malformed", paymentDate)
		}
		committedAt = &paidAt
	}

	var paymentType *vo.PaymentType
	if raw := flat["PaymentType"]; raw != "" {
		pt := vo.PaymentType(raw)
		paymentType = &pt
	}

	return order.ReconstructOrder(order.ReconstructParams{
		ID:                  orderID,
		Items:               []order.Item{{Name: queryItemName, UnitPrice: tradeAmt, Quantity: 1}},
		CreatedAt:           createdAt,
		CommittedAt:         committedAt,
		MerchantID:          flat["MerchantID"],
		PlatformTradeNumber: flat["TradeNo"],
		PaymentType:         paymentType,
	}), nil
}
