package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/ecotrade/ecotrade-api/services"
	"github.com/gin-gonic/gin"
)

// ReviewSubmissionRequest carries the reviewer's notes for verify and reject
type ReviewSubmissionRequest struct {
	Notes string `json:"notes"`
}

// GetPlasticSubmissions handles GET /api/v1/plastic-submissions
func GetPlasticSubmissions(c *gin.Context) {
	submissions, err := newPlasticService().List(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, submissions)
}

// GetPlasticSubmission handles GET /api/v1/plastic-submissions/:id
func GetPlasticSubmission(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	submission, err := newPlasticService().Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, submission)
}

// GetUserPlasticSubmissions handles GET /api/v1/plastic-submissions/user/:userId
func GetUserPlasticSubmissions(c *gin.Context) {
	userID, ok := parseID(c, "userId")
	if !ok {
		return
	}

	submissions, err := newPlasticService().ListByUser(c.Request.Context(), userID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, submissions)
}

// CreatePlasticSubmission handles POST /api/v1/plastic-submissions
func CreatePlasticSubmission(c *gin.Context) {
	var req services.CreatePlasticSubmissionInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err)
		return
	}

	submission, err := newPlasticService().Create(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusCreated, submission)
}

// UploadPlasticPhoto handles POST /api/v1/plastic-submissions/:id/photo.
// The multipart field is "photo".
func UploadPlasticPhoto(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		respondError(c, http.StatusBadRequest, "MISSING_FILE", "A photo file is required in the 'photo' field")
		return
	}

	submission, err := newPlasticService().AttachPhoto(c.Request.Context(), id, fileHeader)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, submission)
}

// VerifyPlasticSubmission handles PUT /api/v1/plastic-submissions/:id/verify (staff only)
// and credits the submission's points to its owner
func VerifyPlasticSubmission(c *gin.Context) {
	reviewSubmission(c, (*services.PlasticService).Verify)
}

// RejectPlasticSubmission handles PUT /api/v1/plastic-submissions/:id/reject (staff only)
func RejectPlasticSubmission(c *gin.Context) {
	reviewSubmission(c, (*services.PlasticService).Reject)
}

func reviewSubmission(c *gin.Context, review func(*services.PlasticService, context.Context, uint, string) (*services.PlasticSubmissionDTO, error)) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req ReviewSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondValidationError(c, err)
		return
	}

	submission, err := review(newPlasticService(), c.Request.Context(), id, req.Notes)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, http.StatusOK, submission)
}

// DeletePlasticSubmission handles DELETE /api/v1/plastic-submissions/:id
func DeletePlasticSubmission(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}

	if err := newPlasticService().Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Plastic submission deleted successfully",
	})
}
