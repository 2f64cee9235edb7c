package models

import (
	"strings"
	"time"
)

// PointsReason explains a change to a user's EcoPoints balance
type PointsReason string

const (
	ReasonSignupBonus      PointsReason = "SIGNUP_BONUS"
	ReasonOrderRedemption  PointsReason = "ORDER_REDEMPTION"
	ReasonOrderDelivered   PointsReason = "ORDER_DELIVERED"
	ReasonPlasticBonus     PointsReason = "PLASTIC_BONUS"
	ReasonPlasticVerified  PointsReason = "PLASTIC_VERIFIED"
	ReasonPlantGrowth      PointsReason = "PLANT_GROWTH"
	ReasonPlantMaintenance PointsReason = "PLANT_MAINTENANCE"
	ReasonManualAdjustment PointsReason = "MANUAL_ADJUSTMENT"
	ReasonRedemption       PointsReason = "REDEMPTION"
)

var pointsReasons = []PointsReason{
	ReasonSignupBonus, ReasonOrderRedemption, ReasonOrderDelivered, ReasonPlasticBonus, ReasonPlasticVerified,
	ReasonPlantGrowth, ReasonPlantMaintenance, ReasonManualAdjustment, ReasonRedemption,
}

// ParsePointsReason matches s case-insensitively against the known reasons
func ParsePointsReason(s string) (PointsReason, bool) {
	normalized := PointsReason(strings.ToUpper(strings.TrimSpace(s)))
	for _, r := range pointsReasons {
		if r == normalized {
			return r, true
		}
	}
	return "", false
}

// PointsTransaction is one append-only entry of the EcoPoints ledger
type PointsTransaction struct {
	ID           uint         `gorm:"primaryKey" json:"id"`
	UserID       uint         `gorm:"not null;index" json:"user_id"`
	Delta        int          `gorm:"not null" json:"delta"`
	BalanceAfter int          `gorm:"not null" json:"balance_after"`
	Reason       PointsReason `gorm:"not null;index" json:"reason"`
	Reference    string       `json:"reference"` // e.g. "order:12", "plant:3"
	CreatedAt    time.Time    `json:"created_at"`
}

// TableName specifies the table name for the PointsTransaction model
func (PointsTransaction) TableName() string {
	return "points_transactions"
}
