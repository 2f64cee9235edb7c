package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderConfirmed OrderStatus = "CONFIRMED"
	OrderShipped   OrderStatus = "SHIPPED"
	OrderDelivered OrderStatus = "DELIVERED"
	OrderCancelled OrderStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is possible
func (s OrderStatus) IsTerminal() bool {
	return s == OrderDelivered || s == OrderCancelled
}

// Order represents a purchase placed by a user
type Order struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	UserID          uint            `gorm:"not null;index" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID" json:"-"`
	Reference       string          `gorm:"uniqueIndex;not null" json:"reference"`
	Items           []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	Status          OrderStatus     `gorm:"not null;default:'PENDING';index" json:"status"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	OrderDate       time.Time       `gorm:"not null" json:"order_date"`
	EcoPointsEarned int             `gorm:"not null;default:0" json:"eco_points_earned"`
	EcoPointsUsed   int             `gorm:"not null;default:0" json:"eco_points_used"`
	UsePlastic      bool            `gorm:"not null;default:false" json:"use_plastic"`
	PlasticWeight   *float64        `json:"plastic_weight,omitempty"` // kg handed in with the order
	ShippingAddress string          `json:"shipping_address"`
	PaymentMethod   string          `json:"payment_method"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// OrderItem is one product line of an order. Price is a snapshot taken at checkout.
type OrderItem struct {
	ID                 uint            `gorm:"primaryKey" json:"id"`
	OrderID            uint            `gorm:"not null;index" json:"order_id"`
	ProductID          uint            `gorm:"not null;index" json:"product_id"`
	Product            Product         `gorm:"foreignKey:ProductID" json:"-"`
	Quantity           int             `gorm:"not null;check:quantity > 0" json:"quantity"`
	Price              decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	RedeemedWithPoints bool            `gorm:"not null;default:false" json:"redeemed_with_points"`
	CreatedAt          time.Time       `json:"created_at"`
}

// TableName specifies the table name for the OrderItem model
func (OrderItem) TableName() string {
	return "order_items"
}
