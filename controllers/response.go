package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/ecotrade/ecotrade-api/config"
	"github.com/ecotrade/ecotrade-api/services"
	"github.com/ecotrade/ecotrade-api/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// statusByKind maps domain error kinds to HTTP status codes
var statusByKind = map[services.ErrorKind]int{
	services.KindNotFound:               http.StatusNotFound,
	services.KindInvalidStateTransition: http.StatusConflict,
	services.KindInsufficientStock:      http.StatusConflict,
	services.KindInsufficientPoints:     http.StatusConflict,
	services.KindDuplicateIdentity:      http.StatusConflict,
	services.KindInvalidOperation:       http.StatusConflict,
	services.KindValidation:             http.StatusBadRequest,
	services.KindInvalidCredentials:     http.StatusUnauthorized,
}

func respondOK(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// respondServiceError writes err using the status for its kind. Anything
// that is not a domain or upload error is logged and reported as a 500.
func respondServiceError(c *gin.Context, err error) {
	var domainErr *services.Error
	if errors.As(err, &domainErr) {
		status, ok := statusByKind[domainErr.Kind]
		if !ok {
			status = http.StatusInternalServerError
		}
		respondError(c, status, string(domainErr.Kind), domainErr.Message)
		return
	}

	var uploadErr *utils.FileUploadError
	if errors.As(err, &uploadErr) {
		respondError(c, http.StatusBadRequest, uploadErr.Code, uploadErr.Message)
		return
	}

	zap.L().Error("request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.Request.URL.Path),
		zap.Error(err),
	)
	respondError(c, http.StatusInternalServerError, "DATABASE_ERROR", "An internal error occurred")
}

// parseID reads a positive numeric path parameter, answering 400 when it is malformed
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondError(c, http.StatusBadRequest, "INVALID_ID", "Invalid "+name+" parameter")
		return 0, false
	}
	return uint(id), true
}

// queryInt reads a required integer query parameter, answering 400 when it is missing or malformed
func queryInt(c *gin.Context, name string) (int, bool) {
	value, err := strconv.Atoi(c.Query(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Query parameter "+name+" must be an integer")
		return 0, false
	}
	return value, true
}

func newUserService() *services.UserService {
	return services.NewUserService(config.GetDB(), zap.L(), config.GetConfig().SignupBonusPoints)
}

func newLedgerService() *services.LedgerService {
	return services.NewLedgerService(config.GetDB(), zap.L())
}

func newProductService() *services.ProductService {
	return services.NewProductService(config.GetDB(), zap.L(), services.GetPhotoService())
}

func newOrderService() *services.OrderService {
	return services.NewOrderService(config.GetDB(), zap.L(), services.GetOrderHub(), config.GetConfig().StrictPointsRedemption)
}

func newPlantService() *services.PlantService {
	return services.NewPlantService(config.GetDB(), zap.L())
}

func newPlasticService() *services.PlasticService {
	return services.NewPlasticService(config.GetDB(), zap.L(), services.GetPhotoService())
}
