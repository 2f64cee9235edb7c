package services

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ecotrade/ecotrade-api/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderItemInput is one requested product line
type OrderItemInput struct {
	ProductID          uint             `json:"product_id" binding:"required"`
	Quantity           int  `json:"quantity" binding:"required,gt=0"`
	RedeemedWithPoints bool `json:"redeemed_with_points"`
}

// PaymentDetails carries the checkout form; the address parts form the shipping address
type PaymentDetails struct {
	Method  string `json:"method"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Pincode string `json:"pincode"`
}

// CreateOrderInput is the request to place an order
type CreateOrderInput struct {
	UserID          uint             `json:"user_id" binding:"required"`
	Items           []OrderItemInput `json:"items" binding:"required,min=1,dive"`
	EcoPointsEarned *int             `json:"eco_points_earned"` // defaults to the sum of product rewards
	EcoPointsUsed   int              `json:"eco_points_used" binding:"gte=0"`
	UsePlastic      bool             `json:"use_plastic"`
	PlasticWeight   *float64         `json:"plastic_weight"`
	ShippingAddress string           `json:"shipping_address"`
	PaymentDetails  *PaymentDetails  `json:"payment_details"`
}

// OrderEvent is published after every committed order change
type OrderEvent struct {
	Type       string    `json:"type"`
	Order      *OrderDTO `json:"order"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Order event types
const (
	OrderCreatedEvent   = "order.created"
	OrderUpdatedEvent   = "order.updated"
	OrderConfirmedEvent = "order.confirmed"
	OrderShippedEvent   = "order.shipped"
	OrderDeliveredEvent = "order.delivered"
	OrderCancelledEvent = "order.cancelled"
	OrderDeletedEvent   = "order.deleted"
)

// OrderEvents receives order events. Publishing must not block.
type OrderEvents interface {
	Publish(event OrderEvent)
}

// OrderService owns the order state machine together with the stock and
// point side effects of each transition.
type OrderService struct {
	db               *gorm.DB
	logger           *zap.Logger
	ledger           *LedgerService
	events           OrderEvents
	strictRedemption bool
	now              func() time.Time
}

// NewOrderService creates an order service. events may be nil. With
// strictRedemption the points spent on an order must be covered by the
// user's balance; otherwise the balance may go negative.
func NewOrderService(db *gorm.DB, logger *zap.Logger, events OrderEvents, strictRedemption bool) *OrderService {
	return &OrderService{
		db:               db,
		logger:           logger,
		ledger:           NewLedgerService(db, logger),
		events:           events,
		strictRedemption: strictRedemption,
		now:              time.Now,
	}
}

// Create places an order: stock is reserved for every item, points used are
// debited and the plastic bonus credited, all in one transaction.
func (s *OrderService) Create(input CreateOrderInput) (*OrderDTO, error) {
	if len(input.Items) == 0 {
		return nil, newError(KindValidation, "Order must contain at least one item")
	}
	if input.EcoPointsUsed < 0 {
		return nil, newError(KindValidation, "Eco points used must not be negative")
	}
	if input.EcoPointsEarned != nil && *input.EcoPointsEarned < 0 {
		return nil, newError(KindValidation, "Eco points earned must not be negative")
	}
	if input.PlasticWeight != nil && *input.PlasticWeight < 0 {
		return nil, newError(KindValidation, "Plastic weight must not be negative")
	}
	for _, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, newError(KindValidation, "Quantity must be greater than zero")
		}
	}

	now := s.now()
	order := models.Order{
		UserID:          input.UserID,
		Reference:       newOrderReference(now),
		Status:          models.OrderPending,
		OrderDate:       now,
		EcoPointsUsed:   input.EcoPointsUsed,
		UsePlastic:      input.UsePlastic,
		PlasticWeight:   input.PlasticWeight,
		ShippingAddress: input.ShippingAddress,
	}
	if input.PaymentDetails != nil {
		order.PaymentMethod = input.PaymentDetails.Method
		if address := composeShippingAddress(input.PaymentDetails); address != "" {
			order.ShippingAddress = address
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, input.UserID).Error; err != nil {
			return lookupError(err, "User", input.UserID)
		}

		total := decimal.Zero
		earned := 0
		for _, in := range input.Items {
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&product, in.ProductID).Error; err != nil {
				return lookupError(err, "Product", in.ProductID)
			}
			if in.Quantity > product.Stock {
				return newError(KindInsufficientStock, "Insufficient stock for product: %s", product.Name)
			}

			product.Stock -= in.Quantity
			if err := tx.Model(&product).Update("stock", product.Stock).Error; err != nil {
				return fmt.Errorf("failed to update stock: %w", err)
			}

			// the line price is always the catalog price at the time of ordering
			price := product.Price
			if !in.RedeemedWithPoints {
				total = total.Add(price.Mul(decimal.NewFromInt(int64(in.Quantity))))
			}
			earned += product.EcoPointsReward * in.Quantity

			order.Items = append(order.Items, models.OrderItem{
				ProductID:          product.ID,
				Quantity:           in.Quantity,
				Price:              price,
				RedeemedWithPoints: in.RedeemedWithPoints,
			})
		}

		order.TotalAmount = total
		order.EcoPointsEarned = earned
		if input.EcoPointsEarned != nil {
			order.EcoPointsEarned = *input.EcoPointsEarned
		}

		if err := tx.Create(&order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		ledger := s.ledger.WithTx(tx)
		reference := orderReference(order.ID)
		if order.EcoPointsUsed > 0 {
			debit := ledger.Debit
			if s.strictRedemption {
				debit = ledger.Use
			}
			if _, err := debit(user.ID, order.EcoPointsUsed, models.ReasonOrderRedemption, reference); err != nil {
				return err
			}
		}
		if order.UsePlastic && order.PlasticWeight != nil {
			bonus := int(math.Round(*order.PlasticWeight * 10))
			if _, err := ledger.Add(user.ID, bonus, models.ReasonPlasticBonus, reference); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", order.UserID),
		zap.String("reference", order.Reference),
		zap.Int("items", len(order.Items)),
	)
	return s.publish(OrderCreatedEvent, order.ID)
}

// Confirm moves a PENDING order to CONFIRMED
func (s *OrderService) Confirm(id uint) (*OrderDTO, error) {
	return s.transition(id, models.OrderConfirmed, OrderConfirmedEvent, nil, models.OrderPending)
}

// Ship moves a CONFIRMED order to SHIPPED
func (s *OrderService) Ship(id uint) (*OrderDTO, error) {
	return s.transition(id, models.OrderShipped, OrderShippedEvent, nil, models.OrderConfirmed)
}

// Deliver moves a SHIPPED order to DELIVERED and credits the points it earned
func (s *OrderService) Deliver(id uint) (*OrderDTO, error) {
	return s.transition(id, models.OrderDelivered, OrderDeliveredEvent, func(tx *gorm.DB, order *models.Order) error {
		_, err := s.ledger.WithTx(tx).Add(order.UserID, order.EcoPointsEarned, models.ReasonOrderDelivered, orderReference(order.ID))
		return err
	}, models.OrderShipped)
}

// Cancel restores stock for every item and marks the order CANCELLED.
// Points debited or credited at creation are not reverted.
func (s *OrderService) Cancel(id uint) (*OrderDTO, error) {
	return s.transition(id, models.OrderCancelled, OrderCancelledEvent, func(tx *gorm.DB, order *models.Order) error {
		for _, item := range order.Items {
			err := tx.Unscoped().Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumn("stock", gorm.Expr("stock + ?", item.Quantity)).Error
			if err != nil {
				return fmt.Errorf("failed to restore stock: %w", err)
			}
		}
		return nil
	}, models.OrderPending, models.OrderConfirmed, models.OrderShipped)
}

// Delete removes a CANCELLED order and its items
func (s *OrderService) Delete(id uint) error {
	var deleted *OrderDTO
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, id)
		if err != nil {
			return err
		}
		if order.Status != models.OrderCancelled {
			return newError(KindInvalidOperation, "Only cancelled orders can be deleted (current status: %s)", order.Status)
		}
		deleted = toOrderDTO(order)

		if err := tx.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
			return fmt.Errorf("failed to delete order items: %w", err)
		}
		if err := tx.Delete(&models.Order{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete order: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("order deleted", zap.Uint("order_id", id))
	s.emit(OrderDeletedEvent, deleted)
	return nil
}

// UpdateShippingAddress changes where an order goes while it has not shipped
func (s *OrderService) UpdateShippingAddress(id uint, address string) (*OrderDTO, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, newError(KindValidation, "Shipping address is required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, id)
		if err != nil {
			return err
		}
		if order.Status != models.OrderPending && order.Status != models.OrderConfirmed {
			return newError(KindInvalidOperation, "Shipping address cannot be changed once the order is %s", order.Status)
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Update("shipping_address", address).Error; err != nil {
			return fmt.Errorf("failed to update order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.publish(OrderUpdatedEvent, id)
}

// Get returns one order with its items
func (s *OrderService) Get(id uint) (*OrderDTO, error) {
	var order models.Order
	if err := s.withItems(s.db).First(&order, id).Error; err != nil {
		return nil, lookupError(err, "Order", id)
	}
	return toOrderDTO(&order), nil
}

// List returns every order, newest first
func (s *OrderService) List() ([]OrderDTO, error) {
	return s.find(s.db)
}

// ListByUser returns the orders of userID, newest first
func (s *OrderService) ListByUser(userID uint) ([]OrderDTO, error) {
	var user models.User
	if err := s.db.Select("id").First(&user, userID).Error; err != nil {
		return nil, lookupError(err, "User", userID)
	}
	return s.find(s.db.Where("user_id = ?", userID))
}

func (s *OrderService) find(query *gorm.DB) ([]OrderDTO, error) {
	var orders []models.Order
	if err := s.withItems(query).Order("order_date DESC, id DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	dtos := make([]OrderDTO, 0, len(orders))
	for i := range orders {
		dtos = append(dtos, *toOrderDTO(&orders[i]))
	}
	return dtos, nil
}

// withItems preloads items and their products, including soft-deleted ones
func (s *OrderService) withItems(query *gorm.DB) *gorm.DB {
	return query.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (s *OrderService) lockOrder(tx *gorm.DB, id uint) (*models.Order, error) {
	var order models.Order
	err := s.withItems(tx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&order, id).Error
	if err != nil {
		return nil, lookupError(err, "Order", id)
	}
	return &order, nil
}

// transition moves order id to status `to` when it is currently in one of
// from, running effect inside the same transaction.
func (s *OrderService) transition(id uint, to models.OrderStatus, event string, effect func(tx *gorm.DB, order *models.Order) error, from ...models.OrderStatus) (*OrderDTO, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		order, err := s.lockOrder(tx, id)
		if err != nil {
			return err
		}
		if !statusIn(order.Status, from) {
			return newError(KindInvalidStateTransition, "Cannot move order %d from %s to %s", id, order.Status, to)
		}
		if effect != nil {
			if err := effect(tx, order); err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Order{}).Where("id = ?", id).Update("status", to).Error; err != nil {
			return fmt.Errorf("failed to update order status: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("order status changed", zap.Uint("order_id", id), zap.String("status", string(to)))
	return s.publish(event, id)
}

// publish reloads the order after commit and emits event for it
func (s *OrderService) publish(event string, id uint) (*OrderDTO, error) {
	dto, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	s.emit(event, dto)
	return dto, nil
}

func (s *OrderService) emit(event string, dto *OrderDTO) {
	if s.events == nil {
		return
	}
	s.events.Publish(OrderEvent{Type: event, Order: dto, OccurredAt: s.now()})
}

func statusIn(status models.OrderStatus, allowed []models.OrderStatus) bool {
	for _, a := range allowed {
		if status == a {
			return true
		}
	}
	return false
}

func newOrderReference(now time.Time) string {
	return now.Format("20060102150405") + "-" + uuid.NewString()
}

func orderReference(id uint) string {
	return fmt.Sprintf("order:%d", id)
}

// composeShippingAddress renders "name, address, city, state - pincode"; it
// returns "" when no address part is present.
func composeShippingAddress(p *PaymentDetails) string {
	if p.Name == "" && p.Address == "" && p.City == "" && p.State == "" && p.Pincode == "" {
		return ""
	}
	return fmt.Sprintf("%s, %s, %s, %s - %s", p.Name, p.Address, p.City, p.State, p.Pincode)
}
