package ecpay

import (
	"net/url"
	"strconv"
	"time"

	"paybridge/internal/domain/order"
	vo "paybridge/internal/domain/order/valueobjects"
	"paybridge/internal/shared/biztime"
	apperrors "paybridge/internal/shared/errors"
)

// Successful RtnCode values. ATM account issuance reports 2; everything else
// reports 1 on success.
const (
	rtnCodeSuccess       = 1
	rtnCodeATMInfoIssued = 2
)

// CallbackPayload is the verified, typed content of a gateway callback.
// Fields outside the typed set remain available through Raw.
type CallbackPayload struct {
	MerchantID      string
	MerchantTradeNo string
	TradeNo         string
	RtnCode         int
	RtnMsg          string
	TradeAmt        int64
	TradeDate       string
	PaymentDate     string
	PaymentType     vo.PaymentType
	SimulatePaid    int

	// Credit card result fields.
	ProcessDate string
	AuthCode    string
	Amount      int64
	ECI         int
	Card4No     string
	Card6No     string

	// Virtual account issuance fields.
	BankCode   string
	VAccount   string
	ExpireDate string

	Raw url.Values
}

// ParseCallback flattens the posted form, verifies its signature and coerces
// the known numeric fields. Signature failure is an integrity error and must
// be reported to the gateway with the checksum sentinel.
func (g *Gateway) ParseCallback(values url.Values) (*CallbackPayload, error) {
	flat := make(map[string]string, len(values))
	for key := range values {
		flat[key] = values.Get(key)
	}

	if !g.signer.Verify(flat) {
		return nil, apperrors.NewIntegrityError("callback check mac value mismatch", flat["MerchantTradeNo"])
	}

	p := &CallbackPayload{
		MerchantID:      flat["MerchantID"],
		MerchantTradeNo: flat["MerchantTradeNo"],
		TradeNo:         flat["TradeNo"],
		RtnMsg:          flat["RtnMsg"],
		TradeDate:       flat["TradeDate"],
		PaymentDate:     flat["PaymentDate"],
		PaymentType:     vo.PaymentType(flat["PaymentType"]),
		ProcessDate:     flat["process_date"],
		AuthCode:        flat["auth_code"],
		Card4No:         flat["card4no"],
		Card6No:         flat["card6no"],
		BankCode:        flat["BankCode"],
		VAccount:        flat["vAccount"],
		ExpireDate:      flat["ExpireDate"],
		Raw:             values,
	}

	var err error
	if p.RtnCode, err = intField(flat, "RtnCode"); err != nil {
		return nil, err
	}
	if p.TradeAmt, err = int64Field(flat, "TradeAmt"); err != nil {
		return nil, err
	}
	if p.Amount, err = int64Field(flat, "amount"); err != nil {
		return nil, err
	}
	if p.SimulatePaid, err = intField(flat, "SimulatePaid"); err != nil {
		return nil, err
	}
	if p.ECI, err = intField(flat, "eci"); err != nil {
		return nil, err
	}

	return p, nil
}

func intField(flat map[string]string, key string) (int, error) {
	raw, ok := flat[key]
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperrors.NewValidationError("callback field is not numeric", key)
	}
	return n, nil
}

func int64Field(flat map[string]string, key string) (int64, error) {
	raw, ok := flat[key]
	if !ok || raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperrors.NewValidationError("callback field is not numeric", key)
	}
	return n, nil
}

// Succeeded reports whether the callback carries a successful result code.
func (p *CallbackPayload) Succeeded() bool {
	return p.RtnCode == rtnCodeSuccess || p.RtnCode == rtnCodeATMInfoIssued
}

// CommitMessage converts a verified callback into the order commit message
// and its payment-method-specific info.
//
// An ATM issuance callback (bank account assigned, not yet paid) yields a
// provisional message with nil CommittedAt; a payment result yields a
// terminal message stamped with the gateway's payment time.
func (p *CallbackPayload) CommitMessage() (order.CommitMessage, order.AdditionalInfo, error) {
	tradeDate, err := biztime.ParseGatewayTime(p.TradeDate)
	if err != nil {
		return order.CommitMessage{}, nil, apperrors.NewValidationError("callback trade date is malformed", p.TradeDate)
	}

	msg := order.CommitMessage{
		ID:          p.MerchantTradeNo,
		TotalPrice:  p.TradeAmt,
		MerchantID:  p.MerchantID,
		TradeNumber: p.TradeNo,
		TradeDate:   tradeDate,
		PaymentType: p.PaymentType,
	}

	switch {
	case p.PaymentType.IsVirtualAccount() && p.PaymentDate == "":
		// Account issued, funds pending. The order stays provisionally typed
		// as waiting until the payment result callback arrives.
		msg.PaymentType = vo.PaymentTypeVirtualAccountWaiting
		return msg, &order.VirtualAccountInfo{BankCode: p.BankCode, Account: p.VAccount}, nil

	case p.PaymentType.IsVirtualAccount():
		paidAt, err := biztime.ParseGatewayTime(p.PaymentDate)
		if err != nil {
			return order.CommitMessage{}, nil, apperrors.NewValidationError("callback payment date is malformed", p.PaymentDate)
		}
		msg.CommittedAt = &paidAt
		return msg, &order.VirtualAccountInfo{BankCode: p.BankCode, Account: p.VAccount}, nil

	case p.PaymentType.IsCreditCard():
		paidAt, err := biztime.ParseGatewayTime(p.PaymentDate)
		if err != nil {
			return order.CommitMessage{}, nil, apperrors.NewValidationError("callback payment date is malformed", p.PaymentDate)
		}
		msg.CommittedAt = &paidAt

		var processDate time.Time
		if p.ProcessDate != "" {
			if processDate, err = biztime.ParseGatewayTime(p.ProcessDate); err != nil {
				return order.CommitMessage{}, nil, apperrors.NewValidationError("callback process date is malformed", p.ProcessDate)
			}
		}
		return msg, &order.CreditCardInfo{
			ProcessDate: processDate,
			AuthCode:    p.AuthCode,
			Amount:      p.Amount,
			ECI:         p.ECI,
			Card4Number: p.Card4No,
			Card6Number: p.Card6No,
		}, nil

	default:
		return order.CommitMessage{}, nil, apperrors.NewValidationError("unsupported callback payment type", p.PaymentType.String())
	}
}
