package controllers

import (
	"net/http"

	"github.com/ecotrade/ecotrade-api/config"
	"github.com/ecotrade/ecotrade-api/services"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// UpdateOrderRequest represents the request body for changing an order's shipping address
type UpdateOrderRequest struct {
	ShippingAddress string `json:"shipping_address" binding:"required"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: allowedOrigin,
}

// allowedOrigin accepts clients without an Origin header and the configured CORS origins
func allowedOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range config.GetConfig().CORSOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// GetOrders handles GET /api/v1/orders
func GetOrders(c *gin.Context) {
	orders, err := newOrderService().List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, orders)
}

// GetOrder handles GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := newOrderService().Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

// GetUserOrders handles GET /api/v1/orders/user/:userId
func GetUserOrders(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	orders, err := newOrderService().ListByUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, orders)
}

// CreateOrder handles POST /api/v1/orders - reserves stock and settles points
func CreateOrder(c *gin.Context) {
	var req services.CreateOrderInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := newOrderService().Create(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, order)
}

// UpdateOrder handles PUT /api/v1/orders/:id - changes the shipping address
func UpdateOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	order, err := newOrderService().UpdateShippingAddress(id, req.ShippingAddress)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

// ConfirmOrder handles PUT /api/v1/orders/:id/confirm (staff only)
func ConfirmOrder(c *gin.Context) {
	transitionOrder(c, (*services.OrderService).Confirm)
}

// ShipOrder handles PUT /api/v1/orders/:id/ship (staff only)
func ShipOrder(c *gin.Context) {
	transitionOrder(c, (*services.OrderService).Ship)
}

// DeliverOrder handles PUT /api/v1/orders/:id/deliver (staff only)
func DeliverOrder(c *gin.Context) {
	transitionOrder(c, (*services.OrderService).Deliver)
}

// CancelOrder handles PUT /api/v1/orders/:id/cancel - restores the reserved stock
func CancelOrder(c *gin.Context) {
	transitionOrder(c, (*services.OrderService).Cancel)
}

func transitionOrder(c *gin.Context, apply func(*services.OrderService, uint) (*services.OrderDTO, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	order, err := apply(newOrderService(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, order)
}

// DeleteOrder handles DELETE /api/v1/orders/:id - only cancelled orders can be deleted
func DeleteOrder(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := newOrderService().Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Order deleted successfully",
	})
}

// StreamOrders handles GET /api/v1/orders/stream - upgrades to a WebSocket
// that receives every order event until the client disconnects
func StreamOrders(c *gin.Context) {
	hub := services.GetOrderHub()
	if hub == nil {
		respondError(c, http.StatusServiceUnavailable, "STREAM_UNAVAILABLE", "Order events are not enabled")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already written the handshake error
		zap.L().Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	hub.Serve(conn)
}
