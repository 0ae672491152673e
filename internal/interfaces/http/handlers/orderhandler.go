package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paybridge/internal/application/order/usecases"
	"paybridge/internal/domain/order"
	vo "paybridge/internal/domain/order/valueobjects"
	"paybridge/internal/infrastructure/gateway/ecpay"
	"paybridge/internal/shared/logger"
	"paybridge/internal/shared/utils"
)

// OrderHandler serves the merchant-facing order API.
type OrderHandler struct {
	prepareOrderUC *usecases.PrepareOrderUseCase
	queryOrderUC   *usecases.QueryOrderUseCase
	logger         logger.Interface
}

func NewOrderHandler(
	prepareOrderUC *usecases.PrepareOrderUseCase,
	queryOrderUC *usecases.QueryOrderUseCase,
	log logger.Interface,
) *OrderHandler {
	return &OrderHandler{
		prepareOrderUC: prepareOrderUC,
		queryOrderUC:   queryOrderUC,
		logger:         log,
	}
}

type orderItemRequest struct {
	Name      string `json:"name" binding:"required"`
	UnitPrice int64  `json:"unitPrice" binding:"required,gt=0"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	Unit      string `json:"unit"`
}

type periodRequest struct {
	Type            string `json:"type" binding:"required,oneof=day month year"`
	Frequency       int    `json:"frequency" binding:"omitempty,gte=1"`
	Times           int    `json:"times" binding:"required,gte=1"`
	AmountPerPeriod int64  `json:"amountPerPeriod" binding:"required,gt=0"`
}

type creditCardRequest struct {
	Memory                bool           `json:"memory"`
	MemberID              string         `json:"memberId"`
	AllowUnionPay         bool           `json:"allowUnionPay"`
	AllowCreditCardRedeem bool           `json:"allowCreditCardRedeem"`
	Installments          string         `json:"installments"`
	Period                *periodRequest `json:"period"`
}

type virtualAccountRequest struct {
	ExpireDays int `json:"expireDays" binding:"omitempty,gte=1,lte=60"`
}

type prepareOrderRequest struct {
	OrderID        string                 `json:"orderId"`
	Items          []orderItemRequest     `json:"items" binding:"required,min=1,dive"`
	Description    string                 `json:"description"`
	ClientBackURL  string                 `json:"clientBackUrl" binding:"omitempty,url"`
	Channel        string                 `json:"channel" binding:"omitempty,oneof=all credit_card virtual_account"`
	CreditCard     *creditCardRequest     `json:"creditCard"`
	VirtualAccount *virtualAccountRequest `json:"virtualAccount"`
}

type prepareOrderResponse struct {
	OrderID     string `json:"orderId"`
	CheckoutURL string `json:"checkoutUrl"`
	TotalPrice  int64  `json:"totalPrice"`
	Status      string `json:"status"`
}

type virtualAccountResponse struct {
	BankCode string `json:"bankCode"`
	Account  string `json:"account"`
}

type orderResponse struct {
	OrderID             string                  `json:"orderId"`
	Status              string                  `json:"status"`
	TotalPrice          int64                   `json:"totalPrice"`
	PaymentType         string                  `json:"paymentType,omitempty"`
	PlatformTradeNumber string                  `json:"platformTradeNumber,omitempty"`
	CommittedAt         *time.Time              `json:"committedAt,omitempty"`
	VirtualAccount      *virtualAccountResponse `json:"virtualAccount,omitempty"`
}

// Prepare creates a pending order and returns the checkout hand-off.
func (h *OrderHandler) Prepare(c *gin.Context) {
	var req prepareOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]order.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, order.Item{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
		})
	}

	cmd := usecases.PrepareOrderCommand{
		OrderID:       req.OrderID,
		Items:         items,
		Description:   req.Description,
		ClientBackURL: req.ClientBackURL,
		Channel:       vo.Channel(req.Channel),
	}
	if req.CreditCard != nil {
		cmd.CreditCard = &ecpay.CreditCardOptions{
			Memory:                req.CreditCard.Memory,
			MemberID:              req.CreditCard.MemberID,
			AllowUnionPay:         req.CreditCard.AllowUnionPay,
			AllowCreditCardRedeem: req.CreditCard.AllowCreditCardRedeem,
			Installments:          req.CreditCard.Installments,
		}
		if req.CreditCard.Period != nil {
			cmd.CreditCard.Period = &ecpay.PeriodOptions{
				Type:            vo.PeriodType(req.CreditCard.Period.Type),
				Frequency:       req.CreditCard.Period.Frequency,
				Times:           req.CreditCard.Period.Times,
				AmountPerPeriod: req.CreditCard.Period.AmountPerPeriod,
			}
		}
	}
	if req.VirtualAccount != nil {
		cmd.VirtualAccount = &ecpay.VirtualAccountOptions{
			ExpireDays: req.VirtualAccount.ExpireDays,
		}
	}

	result, err := h.prepareOrderUC.Execute(c.Request.Context(), cmd)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "order prepared", prepareOrderResponse{
		OrderID:     result.Order.ID(),
		CheckoutURL: result.CheckoutURL,
		TotalPrice:  result.Order.TotalPrice(),
		Status:      result.Order.Status().String(),
	})
}

// Get resolves an order's current state, querying the gateway when the
// order is no longer in the pending store.
func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.queryOrderUC.Execute(c.Request.Context(), c.Param("orderID"))
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	resp := orderResponse{
		OrderID:             o.ID(),
		Status:              o.Status().String(),
		TotalPrice:          o.TotalPrice(),
		PlatformTradeNumber: o.PlatformTradeNumber(),
		CommittedAt:         o.CommittedAt(),
	}
	if pt := o.PaymentType(); pt != nil {
		resp.PaymentType = pt.String()
	}
	if va := o.VirtualAccountInfo(); va != nil {
		resp.VirtualAccount = &virtualAccountResponse{
			BankCode: va.BankCode,
			Account:  va.Account,
		}
	}

	utils.SuccessResponse(c, http.StatusOK, "", resp)
}
