package ecpay

import (
	"strconv"
	"strings"

	"paybridge/internal/domain/order"
	vo "paybridge/internal/domain/order/valueobjects"
	"paybridge/internal/shared/biztime"
	apperrors "paybridge/internal/shared/errors"
	"paybridge/internal/shared/id"
)

// channelCodes maps the channel enum to the gateway's ChoosePayment codes.
var channelCodes = map[vo.Channel]string{
	vo.ChannelAll:            "ALL",
	vo.ChannelCreditCard:     "Credit",
	vo.ChannelVirtualAccount: "ATM",
}

// Prepare validates the input, assembles and signs the checkout payload, and
// registers the resulting pending order in the store. The returned order
// renders the checkout form and will accept the matching callback until its
// TTL expires.
func (g *Gateway) Prepare(input OrderInput) (*order.Order, error) {
	if err := input.validate(); err != nil {
		return nil, err
	}
	if len(input.Items) == 0 {
		return nil, apperrors.NewValidationError("order needs at least one item")
	}

	orderID := input.ID
	if orderID == "" {
		generated, err := id.GenerateTradeNo()
		if err != nil {
			return nil, apperrors.NewInternalError("generate trade number", err.Error())
		}
		orderID = generated
	}

	channel := input.Channel
	if channel == "" {
		channel = vo.ChannelAll
	}

	var totalPrice int64
	itemNames := make([]string, 0, len(input.Items))
	for _, item := range input.Items {
		totalPrice += item.UnitPrice * item.Quantity
		itemNames = append(itemNames, item.Name+" x"+strconv.FormatInt(item.Quantity, 10))
	}

	description := input.Description
	if description == "" {
		description = "-"
	}

	payload := map[string]string{
		"MerchantID":        g.merchantID,
		"MerchantTradeNo":   orderID,
		"MerchantTradeDate": biztime.FormatGatewayTime(biztime.NowUTC()),
		"PaymentType":       "aio",
		"TotalAmount":       strconv.FormatInt(totalPrice, 10),
		"TradeDesc":         description,
		"ItemName":          strings.Join(itemNames, "#"),
		"ReturnURL":         g.CallbackURL(),
		"ChoosePayment":     channelCodes[channel],
		"NeedExtraPaidInfo": "Y",
		"EncryptType":       "1",
		"OrderResultURL":    input.ClientBackURL,
		"Language":          g.language,
	}

	applyCreditCardFields(payload, channel, input.CreditCard, g.CallbackURL())
	applyVirtualAccountFields(payload, channel, input.VirtualAccount, g.CallbackURL(), input.ClientBackURL)

	o, err := order.NewOrder(order.Params{
		ID:          orderID,
		Items:       input.Items,
		Form:        g.signer.Attach(payload),
		ActionURL:   g.baseURL + checkoutEndpointPath,
		Subscribers: g.subscribers,
	})
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	g.store.Set(orderID, o)
	g.logger.Debugw("order prepared",
		"order_id", orderID,
		"channel", channel.String(),
		"total", totalPrice,
	)

	return o, nil
}

func applyCreditCardFields(payload map[string]string, channel vo.Channel, cc *CreditCardOptions, callbackURL string) {
	if !channel.IsCreditCard() || cc == nil {
		return
	}

	if cc.Memory {
		payload["BindingCard"] = "1"
		payload["MerchantMemberID"] = cc.MemberID
	}
	if cc.AllowCreditCardRedeem {
		payload["Redeem"] = "Y"
	}
	if cc.AllowUnionPay {
		payload["UnionPay"] = "0"
	}
	if cc.Installments != "" {
		payload["CreditInstallment"] = cc.Installments
	}
	if cc.Period != nil {
		frequency := cc.Period.Frequency
		if frequency == 0 {
			frequency = 1
		}
		payload["PeriodAmount"] = strconv.FormatInt(cc.Period.AmountPerPeriod, 10)
		payload["PeriodType"] = cc.Period.Type.GatewayCode()
		payload["Frequency"] = strconv.Itoa(frequency)
		payload["ExecTimes"] = strconv.Itoa(cc.Period.Times)
		payload["PeriodReturnURL"] = callbackURL
	}
}

func applyVirtualAccountFields(payload map[string]string, channel vo.Channel, va *VirtualAccountOptions, callbackURL, clientBackURL string) {
	// The ALL-channel hosted page still lets the buyer pick ATM, so the
	// account-issuance notification URL must be present there too. Only the
	// explicit virtual-account channel forces the expiry default.
	if channel != vo.ChannelAll && !channel.IsVirtualAccount() {
		return
	}

	if va != nil && va.ExpireDays != 0 {
		payload["ExpireDate"] = strconv.Itoa(va.ExpireDays)
	} else if channel.IsVirtualAccount() {
		payload["ExpireDate"] = "3"
	}
	payload["PaymentInfoURL"] = callbackURL
	payload["ClientRedirectURL"] = clientBackURL
}
