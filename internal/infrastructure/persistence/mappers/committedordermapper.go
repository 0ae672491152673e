package mappers

import (
	"fmt"

	"paybridge/internal/domain/order"
	vo "paybridge/internal/domain/order/valueobjects"
	"paybridge/internal/infrastructure/persistence/models"
)

type CommittedOrderMapper interface {
	ToModel(entity *order.Order) (*models.CommittedOrderModel, error)
	ToEntity(model *models.CommittedOrderModel) (*order.Order, error)
}

type CommittedOrderMapperImpl struct{}

func NewCommittedOrderMapper() CommittedOrderMapper {
	return &CommittedOrderMapperImpl{}
}

func (m *CommittedOrderMapperImpl) ToModel(entity *order.Order) (*models.CommittedOrderModel, error) {
	if entity == nil {
		return nil, nil
	}

	committedAt := entity.CommittedAt()
	if committedAt == nil {
		return nil, fmt.Errorf("order %s is not committed", entity.ID())
	}
	paymentType := entity.PaymentType()
	if paymentType == nil {
		return nil, fmt.Errorf("order %s has no payment type", entity.ID())
	}

	model := &models.CommittedOrderModel{
		OrderID:             entity.ID(),
		MerchantID:          entity.MerchantID(),
		PlatformTradeNumber: entity.PlatformTradeNumber(),
		PaymentType:         paymentType.String(),
		TotalPrice:          entity.TotalPrice(),
		CommittedAt:         *committedAt,
		TradeDate:           entity.TradeDate(),
	}

	if va := entity.VirtualAccountInfo(); va != nil {
		model.BankCode = va.BankCode
		model.VirtualAccount = va.Account
	}
	if cc := entity.CreditCardInfo(); cc != nil {
		model.CreditCardAuthCode = cc.AuthCode
		model.CreditCardLastFour = cc.Card4Number
	}

	return model, nil
}

func (m *CommittedOrderMapperImpl) ToEntity(model *models.CommittedOrderModel) (*order.Order, error) {
	if model == nil {
		return nil, nil
	}

	paymentType := vo.PaymentType(model.PaymentType)
	if !paymentType.IsValid() {
		return nil, fmt.Errorf("archived order %s has unknown payment type %q", model.OrderID, model.PaymentType)
	}

	committedAt := model.CommittedAt

	return order.ReconstructOrder(order.ReconstructParams{
		ID: model.OrderID,
		Items: []order.Item{
			{Name: "archived-trade", UnitPrice: model.TotalPrice, Quantity: 1},
		},
		CreatedAt:           model.CreatedAt,
		CommittedAt:         &committedAt,
		MerchantID:          model.MerchantID,
		PlatformTradeNumber: model.PlatformTradeNumber,
		PaymentType:         &paymentType,
	}), nil
}
