package services

import (
	"testing"
	"time"

	"github.com/ecotrade/ecotrade-api/models"
	"github.com/stretchr/testify/assert"
)

func TestGrowthPoints(t *testing.T) {
	tests := []struct {
		previous, current float64
		want              int
	}{
		{10, 12.5, 5},
		{10, 10.2, 1},
		{10, 10, 0},
		{10, 8, 0},
		{0.5, 3, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, growthPoints(tt.previous, tt.current), "%v -> %v", tt.previous, tt.current)
	}
}

func TestMaintenancePoints(t *testing.T) {
	today := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	daysAgo := func(n int) *time.Time {
		d := today.AddDate(0, 0, -n)
		return &d
	}

	tests := []struct {
		name           string
		kind           models.MaintenanceType
		lastWatered    *time.Time
		lastFertilized *time.Time
		want           int
	}{
		{"water never watered", models.MaintenanceWater, nil, nil, 3},
		{"water 4 days", models.MaintenanceWater, daysAgo(4), nil, 3},
		{"water 5 days", models.MaintenanceWater, daysAgo(5), nil, 5},
		{"water 7 days", models.MaintenanceWater, daysAgo(7), nil, 5},
		{"water 9 days", models.MaintenanceWater, daysAgo(9), nil, 5},
		{"water 10 days", models.MaintenanceWater, daysAgo(10), nil, 3},
		{"fertilize never", models.MaintenanceFertilize, nil, nil, 5},
		{"fertilize 24 days", models.MaintenanceFertilize, nil, daysAgo(24), 5},
		{"fertilize 25 days", models.MaintenanceFertilize, nil, daysAgo(25), 10},
		{"fertilize 35 days", models.MaintenanceFertilize, nil, daysAgo(35), 10},
		{"fertilize 36 days", models.MaintenanceFertilize, nil, daysAgo(36), 5},
		{"prune", models.MaintenancePrune, nil, nil, 5},
		{"repot", models.MaintenanceRepot, nil, nil, 15},
		{"other", models.MaintenanceOther, nil, nil, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, maintenancePoints(tt.kind, tt.lastWatered, tt.lastFertilized, today))
		})
	}
}

func TestStageForAge(t *testing.T) {
	assert.Equal(t, models.StageSeedling, stageForAge(0))
	assert.Equal(t, models.StageSeedling, stageForAge(13))
	assert.Equal(t, models.StageYoungPlant, stageForAge(14))
	assert.Equal(t, models.StageYoungPlant, stageForAge(44))
	assert.Equal(t, models.StageMaturePlant, stageForAge(45))
	assert.Equal(t, models.StageMaturePlant, stageForAge(89))
	assert.Equal(t, models.StageFullyGrown, stageForAge(90))
}

func TestDaysBetweenIgnoresTimeOfDay(t *testing.T) {
	from := time.Date(2024, 6, 1, 23, 30, 0, 0, time.UTC)
	to := time.Date(2024, 6, 2, 0, 15, 0, 0, time.UTC)
	assert.Equal(t, 1, daysBetween(from, to))
}
