package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ProductCategory groups catalog items
type ProductCategory string

const (
	CategoryPlants              ProductCategory = "PLANTS"
	CategorySeeds               ProductCategory = "SEEDS"
	CategoryPots                ProductCategory = "POTS"
	CategoryTools               ProductCategory = "TOOLS"
	CategoryFertilizers         ProductCategory = "FERTILIZERS"
	CategoryAccessories         ProductCategory = "ACCESSORIES"
	CategoryEcoFriendlyProducts ProductCategory = "ECO_FRIENDLY_PRODUCTS"
)

var productCategories = []ProductCategory{
	CategoryPlants,
	CategorySeeds,
	CategoryPots,
	CategoryTools,
	CategoryFertilizers,
	CategoryAccessories,
	CategoryEcoFriendlyProducts,
}

// ParseProductCategory accepts "eco-friendly-products" as well as "ECO_FRIENDLY_PRODUCTS"
func ParseProductCategory(s string) (ProductCategory, bool) {
	normalized := ProductCategory(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_")))
	for _, c := range productCategories {
		if c == normalized {
			return c, true
		}
	}
	return "", false
}

// Product is a catalog item that can be bought with money or redeemed with EcoPoints
type Product struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	Name            string          `gorm:"not null" json:"name"`
	Description     string          `gorm:"size:1000;not null" json:"description"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	EcoPointsCost   int             `gorm:"not null;default:0" json:"eco_points_cost"`
	EcoPointsReward int             `gorm:"not null;default:0" json:"eco_points_reward"`
	Stock           int             `gorm:"not null;default:0;check:stock >= 0" json:"stock"`
	ImageKey        *string         `json:"image_key,omitempty"` // S3 key when the image was uploaded
	ImageURL        string          `json:"image_url"`
	Category        ProductCategory `gorm:"not null" json:"category"`
	IsPlant         bool            `gorm:"not null;default:false" json:"is_plant"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// TableName specifies the table name for the Product model
func (Product) TableName() string {
	return "products"
}
