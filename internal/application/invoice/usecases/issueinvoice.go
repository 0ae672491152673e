package usecases

import (
	"context"

	"paybridge/internal/infrastructure/invoice/ezpay"
	"paybridge/internal/shared/logger"
)

// IssueInvoiceUseCase issues an e-invoice through the EZPay platform.
type IssueInvoiceUseCase struct {
	gateway *ezpay.Gateway
	logger  logger.Interface
}

func NewIssueInvoiceUseCase(gateway *ezpay.Gateway, log logger.Interface) *IssueInvoiceUseCase {
	return &IssueInvoiceUseCase{gateway: gateway, logger: log}
}

func (uc *IssueInvoiceUseCase) Execute(ctx context.Context, options ezpay.IssueOptions) (*ezpay.Invoice, error) {
	invoice, err := uc.gateway.Issue(ctx, options)
	if err != nil {
		uc.logger.Warnw("invoice issuance failed", "order_id", options.OrderID, "error", err)
		return nil, err
	}

	return invoice, nil
}
