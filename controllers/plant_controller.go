package controllers

import (
	"errors"
	"io"
	"net/http"

	"github.com/ecotrade/ecotrade-api/models"
	"github.com/ecotrade/ecotrade-api/services"
	"github.com/gin-gonic/gin"
)

// RecordMaintenanceRequest is the optional body of a maintenance record
type RecordMaintenanceRequest struct {
	CurrentHeightCm *float64 `json:"current_height_cm" binding:"omitempty,gte=0"`
}

// GetPlants handles GET /api/v1/plants
func GetPlants(c *gin.Context) {
	plants, err := newPlantService().List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plants)
}

// GetPlant handles GET /api/v1/plants/:id
func GetPlant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	plant, err := newPlantService().Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plant)
}

// GetUserPlants handles GET /api/v1/plants/user/:userId
func GetUserPlants(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	plants, err := newPlantService().ListByUser(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plants)
}

// SyncPlantsFromOrders handles GET /api/v1/plants/user/:userId/orders.
// Every plant unit the user bought gets a tracked plant; repeated calls
// create nothing new.
func SyncPlantsFromOrders(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	plants, err := newPlantService().SyncFromOrders(userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plants)
}

// CreatePlant handles POST /api/v1/plants
func CreatePlant(c *gin.Context) {
	var req services.CreatePlantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	plant, err := newPlantService().Create(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, plant)
}

// UpdatePlant handles PUT /api/v1/plants/:id
func UpdatePlant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdatePlantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	plant, err := newPlantService().Update(id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plant)
}

// DeletePlant handles DELETE /api/v1/plants/:id
func DeletePlant(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := newPlantService().Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Plant deleted successfully",
	})
}

// RecordPlantMaintenance handles POST /api/v1/plants/:id/record-maintenance?maintenanceType=&notes=
// An unknown maintenance type is recorded as "other".
func RecordPlantMaintenance(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req RecordMaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondValidationError(c, err)
		return
	}

	kind := models.ParseMaintenanceType(c.Query("maintenanceType"))
	result, err := newPlantService().RecordMaintenance(id, kind, c.Query("notes"), req.CurrentHeightCm)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, result)
}

// WaterPlant handles POST /api/v1/plants/:id/water
func WaterPlant(c *gin.Context) {
	touchPlant(c, (*services.PlantService).Water)
}

// FertilizePlant handles POST /api/v1/plants/:id/fertilize
func FertilizePlant(c *gin.Context) {
	touchPlant(c, (*services.PlantService).Fertilize)
}

func touchPlant(c *gin.Context, apply func(*services.PlantService, uint) (*services.PlantDTO, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	plant, err := apply(newPlantService(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, plant)
}

// GetPlantGrowthRecords handles GET /api/v1/plants/:id/growth-records
func GetPlantGrowthRecords(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	records, err := newPlantService().GrowthHistory(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, records)
}
