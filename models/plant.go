package models

import (
	"strings"
	"time"
)

// GrowthStage is the maturity bucket of a plant, derived from its age
type GrowthStage string

const (
	StageSeedling    GrowthStage = "Seedling"
	StageYoungPlant  GrowthStage = "Young Plant"
	StageMaturePlant GrowthStage = "Mature Plant"
	StageFullyGrown  GrowthStage = "Fully Grown"
)

// ParseGrowthStage matches a stage label case-insensitively
func ParseGrowthStage(s string) (GrowthStage, bool) {
	for _, stage := range []GrowthStage{StageSeedling, StageYoungPlant, StageMaturePlant, StageFullyGrown} {
		if strings.EqualFold(strings.TrimSpace(s), string(stage)) {
			return stage, true
		}
	}
	return "", false
}

// HealthStatus is the owner-reported condition of a plant
type HealthStatus string

const (
	HealthExcellent HealthStatus = "Excellent"
	HealthGood      HealthStatus = "Good"
	HealthFair      HealthStatus = "Fair"
	HealthPoor      HealthStatus = "Poor"
)

// ParseHealthStatus matches a health label case-insensitively
func ParseHealthStatus(s string) (HealthStatus, bool) {
	for _, h := range []HealthStatus{HealthExcellent, HealthGood, HealthFair, HealthPoor} {
		if strings.EqualFold(strings.TrimSpace(s), string(h)) {
			return h, true
		}
	}
	return "", false
}

// MaintenanceType is the kind of care recorded against a plant
type MaintenanceType string

const (
	MaintenanceWater     MaintenanceType = "water"
	MaintenanceFertilize MaintenanceType = "fertilize"
	MaintenancePrune     MaintenanceType = "prune"
	MaintenanceRepot     MaintenanceType = "repot"
	MaintenanceOther     MaintenanceType = "other"
)

// ParseMaintenanceType never fails: unrecognised labels are MaintenanceOther.
func ParseMaintenanceType(s string) MaintenanceType {
	switch t := MaintenanceType(strings.ToLower(strings.TrimSpace(s))); t {
	case MaintenanceWater, MaintenanceFertilize, MaintenancePrune, MaintenanceRepot:
		return t
	}
	return MaintenanceOther
}

// Plant is a plant owned by a user, optionally bought through an order.
// SourceOrderID, SourceProductID and SourceSequence identify plants created
// from order lines; they are nil for plants added by hand.
type Plant struct {
	ID              uint                `gorm:"primaryKey" json:"id"`
	UserID          uint                `gorm:"not null;index;uniqueIndex:idx_plant_origin,priority:1" json:"user_id"`
	User            User                `gorm:"foreignKey:UserID" json:"-"`
	ProductID       *uint               `gorm:"index" json:"product_id"`
	Product         *Product            `gorm:"foreignKey:ProductID" json:"-"`
	Name            string              `gorm:"not null" json:"name"`
	Species         string              `json:"species"`
	PlantName       string              `json:"plant_name"`
	PlantingDate    *time.Time          `json:"planting_date"`
	PurchaseDate    time.Time           `gorm:"not null" json:"purchase_date"`
	LastWatered     *time.Time          `json:"last_watered"`
	LastFertilized  *time.Time          `json:"last_fertilized"`
	GrowthStage     GrowthStage         `json:"growth_stage"`
	HealthStatus    HealthStatus        `json:"health_status"`
	CurrentHeightCm *float64            `json:"current_height_cm"`
	ImageURL        string              `json:"image_url"`
	Notes           string              `json:"notes"`
	SourceOrderID   *uint               `gorm:"uniqueIndex:idx_plant_origin,priority:2" json:"source_order_id,omitempty"`
	SourceProductID *uint               `gorm:"uniqueIndex:idx_plant_origin,priority:3" json:"source_product_id,omitempty"`
	SourceSequence  *int                `gorm:"uniqueIndex:idx_plant_origin,priority:4" json:"source_sequence,omitempty"`
	GrowthRecords   []PlantGrowthRecord `gorm:"foreignKey:PlantID" json:"growth_records,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// TableName specifies the table name for the Plant model
func (Plant) TableName() string {
	return "plants"
}

// PlantGrowthRecord is an immutable maintenance/growth snapshot
type PlantGrowthRecord struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	PlantID         uint            `gorm:"not null;index" json:"plant_id"`
	RecordDate      time.Time       `gorm:"not null" json:"record_date"`
	MaintenanceType MaintenanceType `json:"maintenance_type"`
	HeightCm        *float64        `json:"height_cm"`
	NumLeaves       *int            `json:"num_leaves"`
	Notes           string          `json:"notes"`
	CreatedAt       time.Time       `json:"created_at"`
}

// TableName specifies the table name for the PlantGrowthRecord model
func (PlantGrowthRecord) TableName() string {
	return "plant_growth_records"
}
