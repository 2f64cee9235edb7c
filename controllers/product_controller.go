package controllers

import (
	"bytes"
	"net/http"

	"github.com/ecotrade/ecotrade-api/services"
	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// GetProducts handles GET /api/v1/products
func GetProducts(c *gin.Context) {
	products, err := newProductService().List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, products)
}

// GetProduct handles GET /api/v1/products/:id
func GetProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	product, err := newProductService().Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product)
}

// GetProductsByCategory handles GET /api/v1/products/category/:category
func GetProductsByCategory(c *gin.Context) {
	products, err := newProductService().ListByCategory(c.Request.Context(), c.Param("category"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, products)
}

// GetPlantProducts handles GET /api/v1/products/plants
func GetPlantProducts(c *gin.Context) {
	products, err := newProductService().ListPlants(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, products)
}

// CreateProduct handles POST /api/v1/products (staff only)
func CreateProduct(c *gin.Context) {
	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := newProductService().Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, product)
}

// UpdateProduct handles PUT /api/v1/products/:id (staff only)
func UpdateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.ProductInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	product, err := newProductService().Update(c.Request.Context(), id, req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product)
}

// DeleteProduct handles DELETE /api/v1/products/:id (staff only)
func DeleteProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := newProductService().Delete(id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Product deleted successfully",
	})
}

// UploadProductImage handles POST /api/v1/products/:id/image (staff only).
// The multipart field is "image".
func UploadProductImage(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "An image file is required in the 'image' field")
		return
	}

	product, err := newProductService().AttachImage(c.Request.Context(), id, fileHeader)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, product)
}

// ExportProducts handles GET /api/v1/products/export (staff only) and
// returns the catalog as an Excel workbook
func ExportProducts(c *gin.Context) {
	var buf bytes.Buffer
	if err := newProductService().ExportCatalog(&buf); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="products.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
