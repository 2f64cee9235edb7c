package controllers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ecotrade/ecotrade-api/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestCreateProduct(t *testing.T) {
	router, _ := setupTestRouter(t)

	tests := []struct {
		name           string
		requestBody    map[string]interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, data map[string]interface{})
	}{
		{
			name: "Successfully create product",
			requestBody: map[string]interface{}{
				"name":              "Bamboo Toothbrush",
				"price":             "4.50",
				"stock":             30,
				"eco_points_reward": 2,
				"category":          "eco-friendly-products",
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, data map[string]interface{}) {
				assert.Equal(t, "Bamboo Toothbrush", data["name"])
				assert.Equal(t, "4.5", data["price"])
				assert.Equal(t, "ECO_FRIENDLY_PRODUCTS", data["category"])
				assert.Equal(t, float64(30), data["stock"])
			},
		},
		{
			name: "Fail with unknown category",
			requestBody: map[string]interface{}{
				"name":     "Sofa",
				"price":    "100",
				"category": "furniture",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with negative stock",
			requestBody: map[string]interface{}{
				"name":     "Trowel",
				"category": "tools",
				"stock":    -1,
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name: "Fail with negative price",
			requestBody: map[string]interface{}{
				"name":     "Trowel",
				"category": "tools",
				"price":    "-2",
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
		{
			name:           "Fail with missing name",
			requestBody:    map[string]interface{}{"category": "tools"},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := performRequest(t, router, http.MethodPost, "/api/v1/products", tt.requestBody)
			require.Equal(t, tt.expectedStatus, w.Code, w.Body.String())
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, errorCode(t, w))
			}
			if tt.checkResponse != nil {
				tt.checkResponse(t, responseData(t, w))
			}
		})
	}
}

func TestProductQueries(t *testing.T) {
	router, db := setupTestRouter(t)
	fern := testutil.CreateProduct(t, db, "Fern", "12.00", 5, true)
	testutil.CreateProduct(t, db, "Trowel", "8.00", 3, false)

	w := performRequest(t, router, http.MethodGet, "/api/v1/products", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, responseList(t, w), 2)

	w = performRequest(t, router, http.MethodGet, "/api/v1/products/plants", nil)
	require.Equal(t, http.StatusOK, w.Code)
	plants := responseList(t, w)
	require.Len(t, plants, 1)
	assert.Equal(t, "Fern", plants[0].(map[string]interface{})["name"])

	w = performRequest(t, router, http.MethodGet, "/api/v1/products/category/tools", nil)
	require.Equal(t, http.StatusOK, w.Code)
	tools := responseList(t, w)
	require.Len(t, tools, 1)
	assert.Equal(t, "Trowel", tools[0].(map[string]interface{})["name"])

	w = performRequest(t, router, http.MethodGet, "/api/v1/products/category/furniture", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = performRequest(t, router, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", fern.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Fern", responseData(t, w)["name"])

	w = performRequest(t, router, http.MethodGet, "/api/v1/products/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, w))
}

func TestUpdateAndDeleteProduct(t *testing.T) {
	router, db := setupTestRouter(t)
	fern := testutil.CreateProduct(t, db, "Fern", "12.00", 5, true)
	path := fmt.Sprintf("/api/v1/products/%d", fern.ID)

	w := performRequest(t, router, http.MethodPut, path, map[string]interface{}{
		"name":     "Boston Fern",
		"price":    "14.25",
		"stock":    7,
		"category": "plants",
		"is_plant": true,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	data := responseData(t, w)
	assert.Equal(t, "Boston Fern", data["name"])
	assert.Equal(t, "14.25", data["price"])

	w = performRequest(t, router, http.MethodDelete, path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = performRequest(t, router, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = performRequest(t, router, http.MethodDelete, path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUploadProductImage(t *testing.T) {
	router, db := setupTestRouter(t)
	fern := testutil.CreateProduct(t, db, "Fern", "12.00", 5, true)
	path := fmt.Sprintf("/api/v1/products/%d/image", fern.ID)

	t.Run("Successfully upload image", func(t *testing.T) {
		body, contentType := testutil.MultipartBody(t, "image", "fern.png", []byte("fake png"))
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		imageURL := responseData(t, w)["image_url"].(string)
		assert.True(t, strings.HasPrefix(imageURL, "/api/v1/uploads/products/"), imageURL)
		assert.True(t, strings.HasSuffix(imageURL, ".png"), imageURL)

		// the stored image is served back through the uploads route
		w = performRequest(t, router, http.MethodGet, imageURL, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []byte("fake png"), w.Body.Bytes())
	})

	t.Run("Fail with unsupported format", func(t *testing.T) {
		body, contentType := testutil.MultipartBody(t, "image", "fern.gif", []byte("GIF89a"))
		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "INVALID_FILE_FORMAT", errorCode(t, w))
	})

	t.Run("Fail without file", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString("{}"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "MISSING_FILE", errorCode(t, w))
	})
}

func TestExportProducts(t *testing.T) {
	router, db := setupTestRouter(t)
	testutil.CreateProduct(t, db, "Trowel", "8.00", 3, false)
	testutil.CreateProduct(t, db, "Fern", "12.00", 5, true)

	w := performRequest(t, router, http.MethodGet, "/api/v1/products/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "products.xlsx")

	workbook, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer workbook.Close()

	rows, err := workbook.GetRows("Products")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Name", rows[0][1])
}
