package services

import (
	"context"
	"fmt"
	"math"
	"mime/multipart"
	"strings"
	"time"

	"github.com/ecotrade/ecotrade-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// pointsPerKg is the base reward for one kilogram of plastic
const pointsPerKg = 10.0

// premiumPlasticBonus multiplies the reward for easily recycled plastics
const premiumPlasticBonus = 1.2

// CreatePlasticSubmissionInput is a user's hand-in of recycled plastic
type CreatePlasticSubmissionInput struct {
	UserID      uint    `json:"user_id" binding:"required"`
	Weight      float64 `json:"weight" binding:"required"`
	PlasticType string  `json:"plastic_type"`
	Description string  `json:"description"`
	Location    string  `json:"location"`
	Notes       string  `json:"notes"`
}

// PlasticPoints computes the EcoPoints a submission is worth: 10 per kg,
// 20% more for PET and HDPE. The result is rounded to two decimals.
func PlasticPoints(weight float64, plasticType string) float64 {
	points := weight * pointsPerKg
	switch strings.ToUpper(strings.TrimSpace(plasticType)) {
	case "PET", "HDPE":
		points *= premiumPlasticBonus
	}
	return math.Round(points*100) / 100
}

// PlasticService handles plastic submissions and their verification
type PlasticService struct {
	db     *gorm.DB
	logger *zap.Logger
	ledger *LedgerService
	photos *PhotoService
	now    func() time.Time
}

// NewPlasticService creates the service; photos may be nil when uploads are disabled
func NewPlasticService(db *gorm.DB, logger *zap.Logger, photos *PhotoService) *PlasticService {
	return &PlasticService{
		db:     db,
		logger: logger,
		ledger: NewLedgerService(db, logger),
		photos: photos,
		now:    time.Now,
	}
}

// Create records a PENDING submission with its computed reward
func (s *PlasticService) Create(ctx context.Context, input CreatePlasticSubmissionInput) (*PlasticSubmissionDTO, error) {
	if input.Weight <= 0 {
		return nil, newError(KindValidation, "Weight must be greater than zero")
	}

	var user models.User
	if err := s.db.Select("id").First(&user, input.UserID).Error; err != nil {
		return nil, lookupError(err, "User", input.UserID)
	}

	submission := models.PlasticSubmission{
		UserID:         input.UserID,
		Weight:         input.Weight,
		PlasticType:    input.PlasticType,
		Description:    input.Description,
		Location:       input.Location,
		Notes:          input.Notes,
		SubmissionDate: s.now(),
		EcoPoints:      PlasticPoints(input.Weight, input.PlasticType),
		Status:         models.SubmissionPending,
	}
	if err := s.db.Create(&submission).Error; err != nil {
		return nil, fmt.Errorf("failed to create plastic submission: %w", err)
	}

	s.logger.Info("plastic submission created",
		zap.Uint("submission_id", submission.ID),
		zap.Uint("user_id", submission.UserID),
		zap.Float64("weight", submission.Weight),
		zap.Float64("eco_points", submission.EcoPoints),
	)
	return s.Get(ctx, submission.ID)
}

// Verify accepts a PENDING submission and credits its rounded reward
func (s *PlasticService) Verify(ctx context.Context, id uint, notes string) (*PlasticSubmissionDTO, error) {
	return s.review(ctx, id, models.SubmissionVerified, notes)
}

// Reject declines a PENDING submission; nothing is credited
func (s *PlasticService) Reject(ctx context.Context, id uint, notes string) (*PlasticSubmissionDTO, error) {
	return s.review(ctx, id, models.SubmissionRejected, notes)
}

func (s *PlasticService) review(ctx context.Context, id uint, to models.SubmissionStatus, notes string) (*PlasticSubmissionDTO, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var submission models.PlasticSubmission
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&submission, id).Error; err != nil {
			return lookupError(err, "Plastic submission", id)
		}
		if submission.Status != models.SubmissionPending {
			return newError(KindInvalidStateTransition, "Plastic submission %d is already %s", id, submission.Status)
		}

		reviewedAt := s.now()
		err := tx.Model(&models.PlasticSubmission{}).Where("id = ?", id).Updates(map[string]interface{}{
			"status":             to,
			"verification_date":  reviewedAt,
			"verification_notes": notes,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to update plastic submission: %w", err)
		}

		if to == models.SubmissionVerified {
			points := int(math.Round(submission.EcoPoints))
			if _, err := s.ledger.WithTx(tx).Add(submission.UserID, points, models.ReasonPlasticVerified, fmt.Sprintf("plastic:%d", id)); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("plastic submission reviewed", zap.Uint("submission_id", id), zap.String("status", string(to)))
	return s.Get(ctx, id)
}

// AttachPhoto uploads a photo for the submission, replacing any previous one
func (s *PlasticService) AttachPhoto(ctx context.Context, id uint, fileHeader *multipart.FileHeader) (*PlasticSubmissionDTO, error) {
	var submission models.PlasticSubmission
	if err := s.db.First(&submission, id).Error; err != nil {
		return nil, lookupError(err, "Plastic submission", id)
	}

	key, err := s.photos.Upload(ctx, PlasticPhotoFolder, fileHeader)
	if err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.PlasticSubmission{}).Where("id = ?", id).Update("photo_key", key).Error; err != nil {
		s.photos.Delete(ctx, key)
		return nil, fmt.Errorf("failed to save photo key: %w", err)
	}
	if submission.PhotoKey != nil {
		s.photos.Delete(ctx, *submission.PhotoKey)
	}
	return s.Get(ctx, id)
}

// Delete removes a submission and its photo. Points already credited stay.
func (s *PlasticService) Delete(ctx context.Context, id uint) error {
	var submission models.PlasticSubmission
	if err := s.db.First(&submission, id).Error; err != nil {
		return lookupError(err, "Plastic submission", id)
	}
	if err := s.db.Delete(&submission).Error; err != nil {
		return fmt.Errorf("failed to delete plastic submission: %w", err)
	}
	if submission.PhotoKey != nil {
		s.photos.Delete(ctx, *submission.PhotoKey)
	}
	return nil
}

func (s *PlasticService) Get(ctx context.Context, id uint) (*PlasticSubmissionDTO, error) {
	var submission models.PlasticSubmission
	if err := s.withUser(s.db).First(&submission, id).Error; err != nil {
		return nil, lookupError(err, "Plastic submission", id)
	}
	return toPlasticSubmissionDTO(ctx, &submission, s.photos), nil
}

func (s *PlasticService) List(ctx context.Context) ([]PlasticSubmissionDTO, error) {
	return s.find(ctx, s.db)
}

func (s *PlasticService) ListByUser(ctx context.Context, userID uint) ([]PlasticSubmissionDTO, error) {
	var user models.User
	if err := s.db.Select("id").First(&user, userID).Error; err != nil {
		return nil, lookupError(err, "User", userID)
	}
	return s.find(ctx, s.db.Where("user_id = ?", userID))
}

// withUser preloads the owner, including soft-deleted accounts
func (s *PlasticService) withUser(query *gorm.DB) *gorm.DB {
	return query.Preload("User", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (s *PlasticService) find(ctx context.Context, query *gorm.DB) ([]PlasticSubmissionDTO, error) {
	var submissions []models.PlasticSubmission
	if err := s.withUser(query).Order("submission_date DESC, id DESC").Find(&submissions).Error; err != nil {
		return nil, fmt.Errorf("failed to load plastic submissions: %w", err)
	}
	dtos := make([]PlasticSubmissionDTO, 0, len(submissions))
	for i := range submissions {
		dtos = append(dtos, *toPlasticSubmissionDTO(ctx, &submissions[i], s.photos))
	}
	return dtos, nil
}
