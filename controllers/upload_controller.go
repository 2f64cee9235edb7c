package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/ecotrade/ecotrade-api/services"
	"github.com/ecotrade/ecotrade-api/utils"
	"github.com/gin-gonic/gin"
)

// GetUploadedImage handles GET /api/v1/uploads/*key - serves photos kept in
// the in-process store when S3 is not configured
func GetUploadedImage(c *gin.Context) {
	key := strings.TrimPrefix(c.Param("key"), "/")

	if key == "" {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", "Filename is required")
		return
	}

	// Security: Prevent directory traversal attacks
	if strings.Contains(key, "..") || strings.Contains(key, "\\") {
		respondError(c, http.StatusBadRequest, "INVALID_FILENAME", "Invalid filename")
		return
	}

	if _, ok := utils.ImageContentType(key); !ok {
		respondError(c, http.StatusBadRequest, "INVALID_FILE_TYPE", "Only .png, .jpg and .jpeg files are supported")
		return
	}

	content, contentType, err := services.GetPhotoService().Open(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respondError(c, http.StatusNotFound, "FILE_NOT_FOUND", "Image not found")
			return
		}
		respondServiceError(c, err)
		return
	}

	c.Header("Cache-Control", "public, max-age=86400") // Cache for 24 hours
	c.Data(http.StatusOK, contentType, content)
}
