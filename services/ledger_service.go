package services

import (
	"fmt"

	"github.com/ecotrade/ecotrade-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService is the only writer of users.eco_points. Every change appends
// a PointsTransaction with the resulting balance.
type LedgerService struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewLedgerService(db *gorm.DB, logger *zap.Logger) *LedgerService {
	return &LedgerService{db: db, logger: logger}
}

// WithTx returns a ledger bound to tx so point changes commit or roll back
// with the caller's transaction.
func (s *LedgerService) WithTx(tx *gorm.DB) *LedgerService {
	return &LedgerService{db: tx, logger: s.logger}
}

// Add credits points unconditionally. Zero points is a no-op.
func (s *LedgerService) Add(userID uint, points int, reason models.PointsReason, reference string) (*UserDTO, error) {
	if points < 0 {
		return nil, newError(KindValidation, "Points to add must not be negative")
	}
	return s.apply(userID, points, reason, reference, false)
}

// Use debits points, failing with InsufficientPoints when the balance is too low.
func (s *LedgerService) Use(userID uint, points int, reason models.PointsReason, reference string) (*UserDTO, error) {
	if points < 0 {
		return nil, newError(KindValidation, "Points to use must not be negative")
	}
	return s.apply(userID, -points, reason, reference, true)
}

// Debit removes points without a balance check; the balance may go negative.
func (s *LedgerService) Debit(userID uint, points int, reason models.PointsReason, reference string) (*UserDTO, error) {
	if points < 0 {
		return nil, newError(KindValidation, "Points to debit must not be negative")
	}
	return s.apply(userID, -points, reason, reference, false)
}

// Balance returns the current balance of userID
func (s *LedgerService) Balance(userID uint) (int, error) {
	var user models.User
	if err := s.db.Select("id", "eco_points").First(&user, userID).Error; err != nil {
		return 0, lookupError(err, "User", userID)
	}
	return user.EcoPoints, nil
}

// History lists the ledger entries of userID, newest first
func (s *LedgerService) History(userID uint) ([]models.PointsTransaction, error) {
	if _, err := s.Balance(userID); err != nil {
		return nil, err
	}

	var entries []models.PointsTransaction
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC, id DESC").Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("failed to load points history: %w", err)
	}
	return entries, nil
}

func (s *LedgerService) apply(userID uint, delta int, reason models.PointsReason, reference string, requireFunds bool) (*UserDTO, error) {
	var user models.User
	if delta == 0 {
		if err := s.db.First(&user, userID).Error; err != nil {
			return nil, lookupError(err, "User", userID)
		}
		return toUserDTO(&user), nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, userID).Error; err != nil {
			return lookupError(err, "User", userID)
		}
		if requireFunds && user.EcoPoints+delta < 0 {
			return newError(KindInsufficientPoints, "Insufficient eco points: have %d, need %d", user.EcoPoints, -delta)
		}

		user.EcoPoints += delta
		if err := tx.Model(&user).Update("eco_points", user.EcoPoints).Error; err != nil {
			return fmt.Errorf("failed to update eco points: %w", err)
		}

		entry := models.PointsTransaction{
			UserID:       userID,
			Delta:        delta,
			BalanceAfter: user.EcoPoints,
			Reason:       reason,
			Reference:    reference,
		}
		if err := tx.Create(&entry).Error; err != nil {
			return fmt.Errorf("failed to record points transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("eco points changed",
		zap.Uint("user_id", userID),
		zap.Int("delta", delta),
		zap.Int("balance", user.EcoPoints),
		zap.String("reason", string(reason)),
		zap.String("reference", reference),
	)
	return toUserDTO(&user), nil
}
