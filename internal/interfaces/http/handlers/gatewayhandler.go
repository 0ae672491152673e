package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paybridge/internal/application/order/usecases"
	"paybridge/internal/infrastructure/gateway/ecpay"
	apperrors "paybridge/internal/shared/errors"
	"paybridge/internal/shared/logger"
)

// Gateway acknowledgement sentinels. The gateway keeps redelivering a
// callback until it reads one of these exact bodies.
const (
	ackOK              = "1|OK"
	ackCheckSumInvalid = "0|CheckSumInvalid"
	ackOrderNotFound   = "0|OrderNotFound"
)

// GatewayHandler serves the two gateway-facing routes: the hosted checkout
// form and the asynchronous payment callback.
type GatewayHandler struct {
	gateway          *ecpay.Gateway
	handleCallbackUC *usecases.HandleCallbackUseCase
	logger           logger.Interface
}

func NewGatewayHandler(
	gateway *ecpay.Gateway,
	handleCallbackUC *usecases.HandleCallbackUseCase,
	log logger.Interface,
) *GatewayHandler {
	return &GatewayHandler{
		gateway:          gateway,
		handleCallbackUC: handleCallbackUC,
		logger:           log,
	}
}

// Checkout renders the auto-submitting checkout form for a pending order.
// The buyer's browser lands here and is immediately posted to the gateway.
func (h *GatewayHandler) Checkout(c *gin.Context) {
	orderID := c.Param("orderID")

	o, ok := h.gateway.PendingOrder(orderID)
	if !ok {
		c.String(http.StatusNotFound, "order not found")
		return
	}

	html, err := o.FormHTML()
	if err != nil {
		h.logger.Errorw("checkout form rendering failed", "order_id", orderID, "error", err)
		c.String(http.StatusInternalServerError, "internal error")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}

// Callback receives the gateway's payment notification and answers with the
// plain-text acknowledgement protocol: a signature failure must be
// distinguished from every other rejection, and only a fully applied
// notification is acknowledged as OK.
func (h *GatewayHandler) Callback(c *gin.Context) {
	if err := c.Request.ParseForm(); err != nil {
		c.String(http.StatusBadRequest, ackCheckSumInvalid)
		return
	}

	err := h.handleCallbackUC.Execute(c.Request.Context(), c.Request.PostForm)
	switch {
	case err == nil:
		c.String(http.StatusOK, ackOK)
	case apperrors.IsIntegrityError(err):
		c.String(http.StatusBadRequest, ackCheckSumInvalid)
	default:
		c.String(http.StatusBadRequest, ackOrderNotFound)
	}
}
