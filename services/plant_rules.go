package services

import (
	"math"
	"time"

	"github.com/ecotrade/ecotrade-api/models"
)

// Points awarded per maintenance type, with the on-schedule bonus windows
const (
	waterPoints          = 3
	waterOnTimeBonus     = 2
	fertilizePoints      = 5
	fertilizeOnTimeBonus = 5
	prunePoints          = 5
	repotPoints          = 15
	otherCarePoints      = 2
)

// dateOf truncates t to its UTC calendar day
func dateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// daysBetween counts calendar days from from to to
func daysBetween(from, to time.Time) int {
	return int(dateOf(to).Sub(dateOf(from)).Hours() / 24)
}

// growthPoints rewards 2 points per centimetre grown, rounded up
func growthPoints(previous, current float64) int {
	if current <= previous {
		return 0
	}
	return int(math.Ceil(2 * (current - previous)))
}

// maintenancePoints scores one care action. The watering and fertilizing
// bonuses apply when the previous action of that kind was on schedule.
func maintenancePoints(t models.MaintenanceType, lastWatered, lastFertilized *time.Time, today time.Time) int {
	switch t {
	case models.MaintenanceWater:
		if lastWatered != nil {
			if days := daysBetween(*lastWatered, today); days >= 5 && days <= 9 {
				return waterPoints + waterOnTimeBonus
			}
		}
		return waterPoints
	case models.MaintenanceFertilize:
		if lastFertilized != nil {
			if days := daysBetween(*lastFertilized, today); days >= 25 && days <= 35 {
				return fertilizePoints + fertilizeOnTimeBonus
			}
		}
		return fertilizePoints
	case models.MaintenancePrune:
		return prunePoints
	case models.MaintenanceRepot:
		return repotPoints
	default:
		return otherCarePoints
	}
}

// stageForAge maps days since planting to a growth stage
func stageForAge(days int) models.GrowthStage {
	switch {
	case days < 14:
		return models.StageSeedling
	case days < 45:
		return models.StageYoungPlant
	case days < 90:
		return models.StageMaturePlant
	default:
		return models.StageFullyGrown
	}
}
