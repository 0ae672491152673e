package usecases

import (
	"context"
	"net/url"

	"paybridge/internal/infrastructure/gateway/ecpay"
	apperrors "paybridge/internal/shared/errors"
	"paybridge/internal/shared/logger"
)

// HandleCallbackUseCase applies an asynchronous gateway payment notification
// to its pending order. The error taxonomy drives the gateway's sentinel
// protocol: integrity errors acknowledge with the checksum sentinel, every
// other failure with the order-not-found sentinel.
type HandleCallbackUseCase struct {
	gateway *ecpay.Gateway
	logger  logger.Interface
}

func NewHandleCallbackUseCase(gateway *ecpay.Gateway, log logger.Interface) *HandleCallbackUseCase {
	return &HandleCallbackUseCase{gateway: gateway, logger: log}
}

func (uc *HandleCallbackUseCase) Execute(_ context.Context, values url.Values) error {
	payload, err := uc.gateway.ParseCallback(values)
	if err != nil {
		uc.logger.Warnw("callback rejected",
			"order_id", values.Get("MerchantTradeNo"),
			"error", err,
		)
		return err
	}

	if !payload.Succeeded() {
		uc.logger.Warnw("callback reports failure",
			"order_id", payload.MerchantTradeNo,
			"rtn_code", payload.RtnCode,
			"rtn_msg", payload.RtnMsg,
		)
		return apperrors.NewValidationError("callback reports a failed trade", payload.RtnMsg)
	}

	o, ok := uc.gateway.PendingOrder(payload.MerchantTradeNo)
	if !ok {
		uc.logger.Warnw("callback for unknown or expired order", "order_id", payload.MerchantTradeNo)
		return apperrors.NewNotFoundError("order not found", payload.MerchantTradeNo)
	}

	// A redelivered callback finds the order already committed; it must be
	// acknowledged the same way as an unknown order.
	if !o.Commitable() {
		uc.logger.Infow("callback for already committed order", "order_id", payload.MerchantTradeNo)
		return apperrors.NewNotFoundError("order already committed", payload.MerchantTradeNo)
	}

	msg, info, err := payload.CommitMessage()
	if err != nil {
		return err
	}

	if err := o.Commit(msg, info); err != nil {
		uc.logger.Warnw("callback commit rejected",
			"order_id", payload.MerchantTradeNo,
			"error", err,
		)
		return err
	}

	uc.logger.Infow("callback applied",
		"order_id", payload.MerchantTradeNo,
		"payment_type", msg.PaymentType.String(),
		"terminal", msg.CommittedAt != nil,
	)

	return nil
}
