package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestErrorIsMatchesKind(t *testing.T) {
	err := newError(KindInsufficientStock, "Insufficient stock for product: %s", "Peace Lily")

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Insufficient stock for product: Peace Lily", err.Error())

	wrapped := fmt.Errorf("create order: %w", err)
	assert.True(t, errors.Is(wrapped, ErrInsufficientStock))
}

func TestLookupError(t *testing.T) {
	err := lookupError(gorm.ErrRecordNotFound, "Plant", 7)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "Plant not found with id: 7", err.Error())

	err = lookupError(errors.New("connection reset"), "Plant", 7)
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "failed to load plant 7")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	assert.True(t, isUniqueViolation(errors.New("UNIQUE constraint failed: users.email")))
	assert.True(t, isUniqueViolation(errors.New(`ERROR: duplicate key value violates unique constraint "idx_users_email"`)))
	assert.False(t, isUniqueViolation(errors.New("connection refused")))
}
