package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecotrade/ecotrade-api/services"
	"github.com/ecotrade/ecotrade-api/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name         string
		err          error
		expectedCode int
		expectedBody string
	}{
		{"not found", &services.Error{Kind: services.KindNotFound, Message: "Order not found with id: 1"}, http.StatusNotFound, "NOT_FOUND"},
		{"state transition", &services.Error{Kind: services.KindInvalidStateTransition}, http.StatusConflict, "INVALID_STATE_TRANSITION"},
		{"stock", &services.Error{Kind: services.KindInsufficientStock}, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{"points", &services.Error{Kind: services.KindInsufficientPoints}, http.StatusConflict, "INSUFFICIENT_POINTS"},
		{"duplicate", &services.Error{Kind: services.KindDuplicateIdentity}, http.StatusConflict, "DUPLICATE_IDENTITY"},
		{"operation", &services.Error{Kind: services.KindInvalidOperation}, http.StatusConflict, "INVALID_OPERATION"},
		{"validation", &services.Error{Kind: services.KindValidation}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"credentials", &services.Error{Kind: services.KindInvalidCredentials}, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
		{"wrapped", fmt.Errorf("outer: %w", &services.Error{Kind: services.KindNotFound}), http.StatusNotFound, "NOT_FOUND"},
		{"upload", &utils.FileUploadError{Code: "EMPTY_FILE", Message: "Uploaded file is empty"}, http.StatusBadRequest, "EMPTY_FILE"},
		{"infrastructure", errors.New("connection refused"), http.StatusInternalServerError, "DATABASE_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/orders/1", nil)

			respondServiceError(c, tt.err)

			assert.Equal(t, tt.expectedCode, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}
