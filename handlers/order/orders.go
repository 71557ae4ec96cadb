package order

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/sahilchouksey/career-guidance-api/database"
	"github.com/sahilchouksey/career-guidance-api/model"
	"github.com/sahilchouksey/career-guidance-api/utils/response"
	"github.com/sahilchouksey/career-guidance-api/utils/validation"
)

// OrderHandler serves the bakery orders API
type OrderHandler struct {
	store     database.Storage
	validator *validation.Validator
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(store database.Storage) *OrderHandler {
	return &OrderHandler{
		store:     store,
		validator: validation.NewValidator(),
	}
}

// CreateOrderRequest represents the request body for creating an order
type CreateOrderRequest struct {
	OrderID      string `json:"order_id" validate:"required,max=100"`
	CustomerName string `json:"customer_name" validate:"required,max=255"`
	Product      string `json:"product" validate:"required,max=255"`
	Quantity     int    `json:"quantity" validate:"gte=0"`
	OrderDate    string `json:"order_date" validate:"omitempty,date"`
	Status       string `json:"status" validate:"omitempty,max=50"`
}

// UpdateOrderRequest represents the request body for updating an order
type UpdateOrderRequest struct {
	Status string `json:"status" validate:"required,max=50"`
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	var orders []model.Order
	if err := db.WithContext(c.UserContext()).Order("created_at DESC").Find(&orders).Error; err != nil {
		return response.FromDBError(c, err)
	}

	return response.Success(c, orders)
}

// CreateOrder handles POST /api/orders
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	var req CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	order := model.Order{
		OrderID:      validation.SanitizeString(req.OrderID),
		CustomerName: validation.SanitizeString(req.CustomerName),
		Product:      validation.SanitizeString(req.Product),
		Quantity:     req.Quantity,
		Status:       validation.SanitizeString(req.Status),
	}
	if order.Quantity == 0 {
		order.Quantity = 1
	}
	if order.Status == "" {
		order.Status = model.OrderStatusPending
	}
	if req.OrderDate != "" {
		date, err := time.ParseInLocation("2006-01-02", req.OrderDate, time.UTC)
		if err != nil {
			return response.BadRequest(c, "order_date must be YYYY-MM-DD")
		}
		order.OrderDate = &date
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	if err := db.WithContext(c.UserContext()).Create(&order).Error; err != nil {
		return response.FromDBError(c, err, response.DBErrorOptions{
			DuplicateStatus:  fiber.StatusBadRequest,
			DuplicateMessage: "Order ID already exists",
		})
	}

	log.Info().Str("order_id", order.OrderID).Msg("order created")
	return response.Created(c, order)
}

// UpdateOrder handles PUT /api/orders/:id where :id is the order_id
func (h *OrderHandler) UpdateOrder(c *fiber.Ctx) error {
	var req UpdateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		return response.ValidationError(c, err)
	}

	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	result := db.WithContext(c.UserContext()).
		Model(&model.Order{}).
		Where("order_id = ?", c.Params("id")).
		Update("status", validation.SanitizeString(req.Status))
	if result.Error != nil {
		return response.FromDBError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Order not found")
	}

	return response.SuccessWithMessage(c, "Order updated successfully", nil)
}

// DeleteOrder handles DELETE /api/orders/:id where :id is the order_id
func (h *OrderHandler) DeleteOrder(c *fiber.Ctx) error {
	db, err := h.store.Conn()
	if err != nil {
		return response.FromDBError(c, err)
	}

	result := db.WithContext(c.UserContext()).Where("order_id = ?", c.Params("id")).Delete(&model.Order{})
	if result.Error != nil {
		return response.FromDBError(c, result.Error)
	}
	if result.RowsAffected == 0 {
		return response.NotFound(c, "Order not found")
	}

	return response.SuccessWithMessage(c, "Order deleted successfully", nil)
}
