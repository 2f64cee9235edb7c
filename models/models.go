package models

// All returns every persisted model, in migration order
func All() []interface{} {
	return []interface{}{
		&User{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Plant{},
		&PlantGrowthRecord{},
		&PlasticSubmission{},
		&PointsTransaction{},
	}
}
