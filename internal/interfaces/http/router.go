package http

import (
	"github.com/gin-gonic/gin"

	invoiceUsecases "paybridge/internal/application/invoice/usecases"
	orderUsecases "paybridge/internal/application/order/usecases"
	"paybridge/internal/infrastructure/gateway/ecpay"
	"paybridge/internal/infrastructure/invoice/ezpay"
	"paybridge/internal/interfaces/http/handlers"
	"paybridge/internal/interfaces/http/middleware"
	"paybridge/internal/shared/logger"
)

// RouterDeps are the wired dependencies the router needs.
type RouterDeps struct {
	PaymentGateway *ecpay.Gateway
	InvoiceGateway *ezpay.Gateway
	Logger         logger.Interface
	Mode           string
}

// NewRouter wires the use cases and handlers onto a gin engine. The gateway
// routes (checkout page, callback) live at the configured gateway paths;
// the merchant API lives under /api.
func NewRouter(deps RouterDeps) *gin.Engine {
	if deps.Mode != "" {
		gin.SetMode(deps.Mode)
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewLogger()
	}

	prepareOrderUC := orderUsecases.NewPrepareOrderUseCase(deps.PaymentGateway, log)
	handleCallbackUC := orderUsecases.NewHandleCallbackUseCase(deps.PaymentGateway, log)
	queryOrderUC := orderUsecases.NewQueryOrderUseCase(deps.PaymentGateway, log)

	gatewayHandler := handlers.NewGatewayHandler(deps.PaymentGateway, handleCallbackUC, log)
	orderHandler := handlers.NewOrderHandler(prepareOrderUC, queryOrderUC, log)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger(log))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET(deps.PaymentGateway.CheckoutPath()+"/:orderID", gatewayHandler.Checkout)
	router.POST(deps.PaymentGateway.CallbackPath(), gatewayHandler.Callback)

	api := router.Group("/api")
	{
		api.POST("/orders", orderHandler.Prepare)
		api.GET("/orders/:orderID", orderHandler.Get)

		if deps.InvoiceGateway != nil {
			issueInvoiceUC := invoiceUsecases.NewIssueInvoiceUseCase(deps.InvoiceGateway, log)
			invoiceHandler := handlers.NewInvoiceHandler(issueInvoiceUC, log)
			api.POST("/invoices", invoiceHandler.Issue)
		}
	}

	return router
}
