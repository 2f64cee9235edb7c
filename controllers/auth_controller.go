package controllers

import (
	"net/http"

	"github.com/ecotrade/ecotrade-api/services"
	"github.com/gin-gonic/gin"
)

// LoginRequest represents the request body for logging in
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles POST /api/v1/auth/register - creates an account with the sign-up bonus
func Register(c *gin.Context) {
	var req services.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := newUserService().Register(req)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusCreated, user)
}

// Login handles POST /api/v1/auth/login - checks the credentials and returns the account
func Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	user, err := newUserService().Authenticate(req.Email, req.Password)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, http.StatusOK, user)
}
