package controllers

import (
	"net/http"

	"github.com/ecotrade/ecotrade-api/models"
	"github.com/ecotrade/ecotrade-api/services"
	"github.com/gin-gonic/gin"
)

// GetUsers handles GET /api/v1/users
func GetUsers(c *gin.Context) {
	users, err := newUserService().List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, users)
}

// GetUser handles GET /api/v1/users/:id
func GetUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	user, err := newUserService().Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

// CreateUser handles POST /api/v1/users - staff creates an account directly
func CreateUser(c *gin.Context) {
	var req services.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := newUserService().Create(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, user)
}

// UpdateUser handles PUT /api/v1/users/:id - only the fields present in the body change
func UpdateUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.UpdateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := newUserService().Update(id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

// DeleteUser handles DELETE /api/v1/users/:id
func DeleteUser(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := newUserService().Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "User deleted successfully",
	})
}

// AddEcoPoints handles PUT /api/v1/users/:id/eco-points/add?points=&reason=
// The reason defaults to a manual adjustment.
func AddEcoPoints(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	points, ok := queryInt(c, "points")
	if !ok {
		return
	}

	reason := models.ReasonManualAdjustment
	if raw := c.Query("reason"); raw != "" {
		parsed, ok := models.ParsePointsReason(raw)
		if !ok {
			respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown points reason: "+raw)
			return
		}
		reason = parsed
	}

	user, err := newLedgerService().Add(id, points, reason, c.Query("reference"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

// UseEcoPoints handles PUT /api/v1/users/:id/eco-points/use?points=
func UseEcoPoints(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	points, ok := queryInt(c, "points")
	if !ok {
		return
	}

	user, err := newLedgerService().Use(id, points, models.ReasonRedemption, c.Query("reference"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, user)
}

// GetEcoPointsHistory handles GET /api/v1/users/:id/eco-points/history
func GetEcoPointsHistory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	history, err := newLedgerService().History(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, history)
}
