package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTableNames(t *testing.T) {
	assert.Equal(t, "users", User{}.TableName())
	assert.Equal(t, "products", Product{}.TableName())
	assert.Equal(t, "orders", Order{}.TableName())
	assert.Equal(t, "order_items", OrderItem{}.TableName())
	assert.Equal(t, "plants", Plant{}.TableName())
	assert.Equal(t, "plant_growth_records", PlantGrowthRecord{}.TableName())
	assert.Equal(t, "plastic_submissions", PlasticSubmission{}.TableName())
	assert.Equal(t, "points_transactions", PointsTransaction{}.TableName())
	assert.Len(t, All(), 8)
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
		ok    bool
	}{
		{"USER", RoleUser, true},
		{"admin", RoleAdmin, true},
		{" Admin ", RoleAdmin, true},
		{"technician", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseRole(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseProductCategory(t *testing.T) {
	got, ok := ParseProductCategory("eco-friendly-products")
	assert.True(t, ok)
	assert.Equal(t, CategoryEcoFriendlyProducts, got)

	got, ok = ParseProductCategory("plants")
	assert.True(t, ok)
	assert.Equal(t, CategoryPlants, got)

	_, ok = ParseProductCategory("furniture")
	assert.False(t, ok)
}

func TestOrderStatusIsTerminal(t *testing.T) {
	assert.False(t, OrderPending.IsTerminal())
	assert.False(t, OrderConfirmed.IsTerminal())
	assert.False(t, OrderShipped.IsTerminal())
	assert.True(t, OrderDelivered.IsTerminal())
	assert.True(t, OrderCancelled.IsTerminal())
}

func TestParsePointsReason(t *testing.T) {
	reason, ok := ParsePointsReason(" plastic_verified ")
	assert.True(t, ok)
	assert.Equal(t, ReasonPlasticVerified, reason)

	_, ok = ParsePointsReason("LOTTERY")
	assert.False(t, ok)
}
