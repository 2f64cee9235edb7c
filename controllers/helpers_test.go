package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ecotrade/ecotrade-api/config"
	"github.com/ecotrade/ecotrade-api/services"
	"github.com/ecotrade/ecotrade-api/testutil"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// setupTestRouter wires every handler onto a fresh in-memory database.
// Staff routes are left open; auth is covered by the middleware tests.
func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewTestDB(t)
	config.SetDB(db)
	config.SetConfig(config.Default())
	services.SetPhotoService(services.NewPhotoService(services.NewMemoryStore("/api/v1/uploads"), zap.NewNop()))
	services.SetOrderHub(nil)
	t.Cleanup(func() {
		config.SetDB(nil)
		config.SetConfig(nil)
		services.SetPhotoService(nil)
	})

	router := gin.New()
	v1 := router.Group("/api/v1")

	v1.POST("/auth/register", Register)
	v1.POST("/auth/login", Login)

	v1.GET("/users", GetUsers)
	v1.POST("/users", CreateUser)
	v1.GET("/users/:id", GetUser)
	v1.PUT("/users/:id", UpdateUser)
	v1.DELETE("/users/:id", DeleteUser)
	v1.PUT("/users/:id/eco-points/add", AddEcoPoints)
	v1.PUT("/users/:id/eco-points/use", UseEcoPoints)
	v1.GET("/users/:id/eco-points/history", GetEcoPointsHistory)

	v1.GET("/products", GetProducts)
	v1.GET("/products/plants", GetPlantProducts)
	v1.GET("/products/export", ExportProducts)
	v1.GET("/products/category/:category", GetProductsByCategory)
	v1.GET("/products/:id", GetProduct)
	v1.POST("/products", CreateProduct)
	v1.PUT("/products/:id", UpdateProduct)
	v1.DELETE("/products/:id", DeleteProduct)
	v1.POST("/products/:id/image", UploadProductImage)

	v1.GET("/orders", GetOrders)
	v1.GET("/orders/stream", StreamOrders)
	v1.GET("/orders/user/:userId", GetUserOrders)
	v1.GET("/orders/:id", GetOrder)
	v1.POST("/orders", CreateOrder)
	v1.PUT("/orders/:id", UpdateOrder)
	v1.PUT("/orders/:id/confirm", ConfirmOrder)
	v1.PUT("/orders/:id/ship", ShipOrder)
	v1.PUT("/orders/:id/deliver", DeliverOrder)
	v1.PUT("/orders/:id/cancel", CancelOrder)
	v1.DELETE("/orders/:id", DeleteOrder)

	v1.GET("/plants", GetPlants)
	v1.GET("/plants/user/:userId", GetUserPlants)
	v1.GET("/plants/user/:userId/orders", SyncPlantsFromOrders)
	v1.GET("/plants/:id", GetPlant)
	v1.GET("/plants/:id/growth-records", GetPlantGrowthRecords)
	v1.POST("/plants", CreatePlant)
	v1.PUT("/plants/:id", UpdatePlant)
	v1.DELETE("/plants/:id", DeletePlant)
	v1.POST("/plants/:id/record-maintenance", RecordPlantMaintenance)
	v1.POST("/plants/:id/water", WaterPlant)
	v1.POST("/plants/:id/fertilize", FertilizePlant)

	v1.GET("/plastic-submissions", GetPlasticSubmissions)
	v1.GET("/plastic-submissions/user/:userId", GetUserPlasticSubmissions)
	v1.GET("/plastic-submissions/:id", GetPlasticSubmission)
	v1.POST("/plastic-submissions", CreatePlasticSubmission)
	v1.POST("/plastic-submissions/:id/photo", UploadPlasticPhoto)
	v1.PUT("/plastic-submissions/:id/verify", VerifyPlasticSubmission)
	v1.PUT("/plastic-submissions/:id/reject", RejectPlasticSubmission)
	v1.DELETE("/plastic-submissions/:id", DeletePlasticSubmission)

	v1.GET("/uploads/*key", GetUploadedImage)

	return router, db
}

// performRequest sends body (JSON-encoded unless nil) and returns the recorder
func performRequest(t *testing.T, router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeResponse parses the JSON envelope of w
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response), w.Body.String())
	return response
}

// responseData returns the "data" object of a successful response
func responseData(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	response := decodeResponse(t, w)
	require.Equal(t, true, response["success"], w.Body.String())
	data, ok := response["data"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return data
}

// responseList returns the "data" array of a successful response
func responseList(t *testing.T, w *httptest.ResponseRecorder) []interface{} {
	t.Helper()

	response := decodeResponse(t, w)
	require.Equal(t, true, response["success"], w.Body.String())
	data, ok := response["data"].([]interface{})
	require.True(t, ok, w.Body.String())
	return data
}

// errorCode returns the error code of a failed response
func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	response := decodeResponse(t, w)
	require.Equal(t, false, response["success"], w.Body.String())
	errObj, ok := response["error"].(map[string]interface{})
	require.True(t, ok, w.Body.String())
	return errObj["code"].(string)
}
