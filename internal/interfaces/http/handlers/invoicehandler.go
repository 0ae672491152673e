package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paybridge/internal/application/invoice/usecases"
	"paybridge/internal/infrastructure/invoice/ezpay"
	"paybridge/internal/shared/logger"
	"paybridge/internal/shared/utils"
)

// InvoiceHandler serves e-invoice issuance.
type InvoiceHandler struct {
	issueInvoiceUC *usecases.IssueInvoiceUseCase
	logger         logger.Interface
}

func NewInvoiceHandler(issueInvoiceUC *usecases.IssueInvoiceUseCase, log logger.Interface) *InvoiceHandler {
	return &InvoiceHandler{issueInvoiceUC: issueInvoiceUC, logger: log}
}

type invoiceItemRequest struct {
	Name      string `json:"name" binding:"required"`
	UnitPrice int64  `json:"unitPrice" binding:"required,gt=0"`
	Quantity  int64  `json:"quantity" binding:"required,gt=0"`
	Unit      string `json:"unit"`
	TaxType   string `json:"taxType" binding:"omitempty,oneof=taxed tax_free zero_tax special"`
}

type invoiceCarrierRequest struct {
	Type string `json:"type" binding:"required,oneof=print mobile moica love_code platform"`
	Code string `json:"code"`
}

type issueInvoiceRequest struct {
	OrderID              string                 `json:"orderId" binding:"required"`
	Items                []invoiceItemRequest   `json:"items" binding:"required,min=1,dive"`
	BuyerName            string                 `json:"buyerName" binding:"required"`
	BuyerEmail           string                 `json:"buyerEmail"`
	BuyerAddress         string                 `json:"buyerAddress"`
	VATNumber            string                 `json:"vatNumber"`
	Carrier              *invoiceCarrierRequest `json:"carrier"`
	SpecialTaxPercentage int                    `json:"specialTaxPercentage"`
	CustomsCleared       bool                   `json:"customsCleared"`
	Remark               string                 `json:"remark"`
}

type issueInvoiceResponse struct {
	InvoiceNumber string    `json:"invoiceNumber"`
	RandomCode    string    `json:"randomCode"`
	IssuedOn      time.Time `json:"issuedOn"`
}

// Issue issues one e-invoice through the invoice platform.
func (h *InvoiceHandler) Issue(c *gin.Context) {
	var req issueInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]ezpay.Item, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, ezpay.Item{
			Name:      item.Name,
			UnitPrice: item.UnitPrice,
			Quantity:  item.Quantity,
			Unit:      item.Unit,
			TaxType:   ezpay.TaxType(item.TaxType),
		})
	}

	options := ezpay.IssueOptions{
		OrderID:              req.OrderID,
		Items:                items,
		BuyerName:            req.BuyerName,
		BuyerEmail:           req.BuyerEmail,
		BuyerAddress:         req.BuyerAddress,
		VATNumber:            req.VATNumber,
		SpecialTaxPercentage: req.SpecialTaxPercentage,
		CustomsCleared:       req.CustomsCleared,
		Remark:               req.Remark,
	}
	if req.Carrier != nil {
		options.Carrier = &ezpay.Carrier{
			Type: ezpay.CarrierType(req.Carrier.Type),
			Code: req.Carrier.Code,
		}
	}

	invoice, err := h.issueInvoiceUC.Execute(c.Request.Context(), options)
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "invoice issued", issueInvoiceResponse{
		InvoiceNumber: invoice.InvoiceNumber,
		RandomCode:    invoice.RandomCode,
		IssuedOn:      invoice.IssuedOn,
	})
}
