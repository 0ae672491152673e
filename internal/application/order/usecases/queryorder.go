package usecases

import (
	"context"

	"paybridge/internal/domain/order"
	"paybridge/internal/infrastructure/gateway/ecpay"
	apperrors "paybridge/internal/shared/errors"
	"paybridge/internal/shared/logger"
)

// QueryOrderUseCase resolves an order's current state: the live pending
// order when it is still cached, the gateway's authoritative record
// otherwise. This is the reconciliation path for lost callbacks.
type QueryOrderUseCase struct {
	gateway *ecpay.Gateway
	logger  logger.Interface
}

func NewQueryOrderUseCase(gateway *ecpay.Gateway, log logger.Interface) *QueryOrderUseCase {
	return &QueryOrderUseCase{gateway: gateway, logger: log}
}

func (uc *QueryOrderUseCase) Execute(ctx context.Context, orderID string) (*order.Order, error) {
	if orderID == "" {
		return nil, apperrors.NewValidationError("order id is required")
	}

	if o, ok := uc.gateway.PendingOrder(orderID); ok {
		return o, nil
	}

	o, err := uc.gateway.Query(ctx, orderID)
	if err != nil {
		uc.logger.Warnw("remote order query failed", "order_id", orderID, "error", err)
		return nil, err
	}

	return o, nil
}
