package usecases

import (
	"context"

	"paybridge/internal/domain/order"
	vo "paybridge/internal/domain/order/valueobjects"
	"paybridge/internal/infrastructure/gateway/ecpay"
	"paybridge/internal/shared/logger"
)

// PrepareOrderCommand carries the merchant's checkout request.
type PrepareOrderCommand struct {
	OrderID       string
	Items         []order.Item
	Description   string
	ClientBackURL string

	Channel        vo.Channel
	CreditCard     *ecpay.CreditCardOptions
	VirtualAccount *ecpay.VirtualAccountOptions
}

// PrepareOrderResult is what the merchant needs to send the buyer to
// checkout.
type PrepareOrderResult struct {
	Order       *order.Order
	CheckoutURL string
}

type PrepareOrderUseCase struct {
	gateway *ecpay.Gateway
	logger  logger.Interface
}

func NewPrepareOrderUseCase(gateway *ecpay.Gateway, log logger.Interface) *PrepareOrderUseCase {
	return &PrepareOrderUseCase{gateway: gateway, logger: log}
}

func (uc *PrepareOrderUseCase) Execute(_ context.Context, cmd PrepareOrderCommand) (*PrepareOrderResult, error) {
	o, err := uc.gateway.Prepare(ecpay.OrderInput{
		ID:             cmd.OrderID,
		Items:          cmd.Items,
		Description:    cmd.Description,
		ClientBackURL:  cmd.ClientBackURL,
		Channel:        cmd.Channel,
		CreditCard:     cmd.CreditCard,
		VirtualAccount: cmd.VirtualAccount,
	})
	if err != nil {
		uc.logger.Warnw("order preparation rejected", "order_id", cmd.OrderID, "error", err)
		return nil, err
	}

	uc.logger.Infow("order prepared",
		"order_id", o.ID(),
		"total", o.TotalPrice(),
	)

	return &PrepareOrderResult{
		Order:       o,
		CheckoutURL: uc.gateway.CheckoutURL(o.ID()),
	}, nil
}
