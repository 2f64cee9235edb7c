package services

import (
	"context"
	"time"

	"github.com/ecotrade/ecotrade-api/models"
	"github.com/shopspring/decimal"
)

// UserDTO is the public view of a user; the password hash never leaves the service
type UserDTO struct {
	ID        uint        `json:"id"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	Name      string      `json:"name"`
	FullName  string      `json:"full_name"`
	EcoPoints int         `json:"eco_points"`
	Role      models.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func toUserDTO(u *models.User) *UserDTO {
	return &UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Name:      u.Name,
		FullName:  u.FullName,
		EcoPoints: u.EcoPoints,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

type ProductDTO struct {
	ID              uint                   `json:"id"`
	Name            string                 `json:"name"`
	Description     string                 `json:"description"`
	Price           decimal.Decimal        `json:"price"`
	EcoPointsCost   int                    `json:"eco_points_cost"`
	EcoPointsReward int                    `json:"eco_points_reward"`
	Stock           int                    `json:"stock"`
	ImageURL        string                 `json:"image_url"`
	Category        models.ProductCategory `json:"category"`
	IsPlant         bool                   `json:"is_plant"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// toProductDTO prefers an uploaded image over the stored image URL
func toProductDTO(ctx context.Context, p *models.Product, photos *PhotoService) *ProductDTO {
	imageURL := p.ImageURL
	if p.ImageKey != nil {
		if url := photos.URL(ctx, *p.ImageKey); url != "" {
			imageURL = url
		}
	}
	return &ProductDTO{
		ID:              p.ID,
		Name:            p.Name,
		Description:     p.Description,
		Price:           p.Price,
		EcoPointsCost:   p.EcoPointsCost,
		EcoPointsReward: p.EcoPointsReward,
		Stock:           p.Stock,
		ImageURL:        imageURL,
		Category:        p.Category,
		IsPlant:         p.IsPlant,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

type OrderItemDTO struct {
	ID                 uint            `json:"id"`
	ProductID          uint            `json:"product_id"`
	ProductName        string          `json:"product_name"`
	Quantity           int             `json:"quantity"`
	Price              decimal.Decimal `json:"price"`
	RedeemedWithPoints bool            `json:"redeemed_with_points"`
}

type OrderDTO struct {
	ID              uint               `json:"id"`
	UserID          uint               `json:"user_id"`
	Reference       string             `json:"reference"`
	Status          models.OrderStatus `json:"status"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	OrderDate       time.Time          `json:"order_date"`
	EcoPointsEarned int                `json:"eco_points_earned"`
	EcoPointsUsed   int                `json:"eco_points_used"`
	UsePlastic      bool               `json:"use_plastic"`
	PlasticWeight   *float64           `json:"plastic_weight,omitempty"`
	ShippingAddress string             `json:"shipping_address"`
	PaymentMethod   string             `json:"payment_method"`
	Items           []OrderItemDTO     `json:"items"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// toOrderDTO expects Items and Items.Product to be preloaded
func toOrderDTO(o *models.Order) *OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:                 item.ID,
			ProductID:          item.ProductID,
			ProductName:        item.Product.Name,
			Quantity:           item.Quantity,
			Price:              item.Price,
			RedeemedWithPoints: item.RedeemedWithPoints,
		})
	}
	return &OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Reference:       o.Reference,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		OrderDate:       o.OrderDate,
		EcoPointsEarned: o.EcoPointsEarned,
		EcoPointsUsed:   o.EcoPointsUsed,
		UsePlastic:      o.UsePlastic,
		PlasticWeight:   o.PlasticWeight,
		ShippingAddress: o.ShippingAddress,
		PaymentMethod:   o.PaymentMethod,
		Items:           items,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}

type PlantDTO struct {
	ID              uint                `json:"id"`
	UserID          uint                `json:"user_id"`
	ProductID       *uint               `json:"product_id"`
	ProductName     string              `json:"product_name,omitempty"`
	Name            string              `json:"name"`
	Species         string              `json:"species"`
	PlantName       string              `json:"plant_name"`
	PlantingDate    *time.Time          `json:"planting_date"`
	PurchaseDate    time.Time           `json:"purchase_date"`
	LastWatered     *time.Time          `json:"last_watered"`
	LastFertilized  *time.Time          `json:"last_fertilized"`
	GrowthStage     models.GrowthStage  `json:"growth_stage"`
	HealthStatus    models.HealthStatus `json:"health_status"`
	CurrentHeightCm *float64            `json:"current_height_cm"`
	ImageURL        string              `json:"image_url"`
	Notes           string              `json:"notes"`
	SourceOrderID   *uint               `json:"source_order_id,omitempty"`
	SourceSequence  *int                `json:"source_sequence,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

func toPlantDTO(p *models.Plant) *PlantDTO {
	dto := &PlantDTO{
		ID:              p.ID,
		UserID:          p.UserID,
		ProductID:       p.ProductID,
		Name:            p.Name,
		Species:         p.Species,
		PlantName:       p.PlantName,
		PlantingDate:    p.PlantingDate,
		PurchaseDate:    p.PurchaseDate,
		LastWatered:     p.LastWatered,
		LastFertilized:  p.LastFertilized,
		GrowthStage:     p.GrowthStage,
		HealthStatus:    p.HealthStatus,
		CurrentHeightCm: p.CurrentHeightCm,
		ImageURL:        p.ImageURL,
		Notes:           p.Notes,
		SourceOrderID:   p.SourceOrderID,
		SourceSequence:  p.SourceSequence,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
	if p.Product != nil {
		dto.ProductName = p.Product.Name
	}
	return dto
}

type GrowthRecordDTO struct {
	ID              uint                   `json:"id"`
	PlantID         uint                   `json:"plant_id"`
	RecordDate      time.Time              `json:"record_date"`
	MaintenanceType models.MaintenanceType `json:"maintenance_type"`
	HeightCm        *float64               `json:"height_cm"`
	NumLeaves       *int                   `json:"num_leaves"`
	Notes           string                 `json:"notes"`
}

func toGrowthRecordDTO(r *models.PlantGrowthRecord) *GrowthRecordDTO {
	return &GrowthRecordDTO{
		ID:              r.ID,
		PlantID:         r.PlantID,
		RecordDate:      r.RecordDate,
		MaintenanceType: r.MaintenanceType,
		HeightCm:        r.HeightCm,
		NumLeaves:       r.NumLeaves,
		Notes:           r.Notes,
	}
}

type PlasticSubmissionDTO struct {
	ID                uint                    `json:"id"`
	UserID            uint                    `json:"user_id"`
	UserName          string                  `json:"user_name"`
	Weight            float64                 `json:"weight"`
	PlasticType       string                  `json:"plastic_type"`
	Description       string                  `json:"description"`
	Location          string                  `json:"location"`
	PhotoURL          string                  `json:"photo_url"`
	SubmissionDate    time.Time               `json:"submission_date"`
	EcoPoints         float64                 `json:"eco_points"`
	VerificationDate  *time.Time              `json:"verification_date"`
	VerificationNotes string                  `json:"verification_notes"`
	Status            models.SubmissionStatus `json:"status"`
	Notes             string                  `json:"notes"`
}

// toPlasticSubmissionDTO expects User to be preloaded
func toPlasticSubmissionDTO(ctx context.Context, s *models.PlasticSubmission, photos *PhotoService) *PlasticSubmissionDTO {
	dto := &PlasticSubmissionDTO{
		ID:                s.ID,
		UserID:            s.UserID,
		UserName:          s.User.Name,
		Weight:            s.Weight,
		PlasticType:       s.PlasticType,
		Description:       s.Description,
		Location:          s.Location,
		SubmissionDate:    s.SubmissionDate,
		EcoPoints:         s.EcoPoints,
		VerificationDate:  s.VerificationDate,
		VerificationNotes: s.VerificationNotes,
		Status:            s.Status,
		Notes:             s.Notes,
	}
	if s.PhotoKey != nil {
		dto.PhotoURL = photos.URL(ctx, *s.PhotoKey)
	}
	return dto
}
