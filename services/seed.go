package services

import (
	"fmt"
	"time"

	"github.com/ecotrade/ecotrade-api/models"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type seedUser struct {
	username, email, password, name, fullName string
	role                                      models.Role
	points                                    int
}

type seedProduct struct {
	name, description, price string
	cost, reward, stock      int
	category                 models.ProductCategory
	isPlant                  bool
	image                    string
}

type seedPlant struct {
	owner, product, name, species string
	stage                         models.GrowthStage
	heightCm                      float64
	wateredDaysAgo, monthsOwned   int
}

type seedSubmission struct {
	owner, plasticType, notes string
	weight                    float64
	submittedDaysAgo          int
}

var demoUsers = []seedUser{
	{"john_doe", "john@example.com", "password", "John", "John Doe", models.RoleUser, 100},
	{"jane_smith", "jane@example.com", "password", "Jane", "Jane Smith", models.RoleUser, 150},
	{"admin", "admin@example.com", "admin123", "Admin", "Admin User", models.RoleAdmin, 500},
}

var demoProducts = []seedProduct{
	{"Bamboo Toothbrush", "Eco-friendly bamboo toothbrush with natural bristles", "5.99", 50, 10, 100, models.CategoryAccessories, false, "/images/products/979d5c44-5008-4832-831c-449b830f074c.jpg"},
	{"Reusable Water Bottle", "Stainless steel water bottle with eco-friendly design", "24.99", 200, 40, 50, models.CategoryAccessories, false, "/images/products/67e834b2-96b4-4a0b-a908-b734b670543d.jpg"},
	{"Monstera Plant", "Beautiful Monstera Deliciosa plant", "29.99", 250, 50, 20, models.CategoryPlants, true, "/images/products/610f45f1-ceb0-4566-b838-d9988da27f80.jpg"},
	{"Snake Plant", "Low-maintenance Snake Plant", "24.99", 200, 40, 15, models.CategoryPlants, true, "/images/products/b0ddcbe5-0e6a-4cb3-8d47-8f60a5633e4c.jpg"},
	{"Organic Plant Fertilizer", "Natural organic fertilizer for plants", "14.99", 120, 25, 30, models.CategoryFertilizers, false, "/images/products/2d129837-54a8-4bcd-97a7-1f36c247b965.jpg"},
	{"Fiddle Leaf Fig", "Trendy indoor plant with large, violin-shaped leaves", "29.99", 220, 35, 15, models.CategoryPlants, true, "/images/products/0c8397d0-44ba-41b9-ba04-25a8db41ba02.jpg"},
	{"Peace Lily", "Elegant flowering plant that thrives in low light", "22.99", 190, 28, 25, models.CategoryPlants, true, "/images/products/f18d563e-3ab8-4ec0-b790-c8280636eaed.jpg"},
	{"Aloe Vera", "Medicinal succulent plant, perfect for sunny windowsills", "18.99", 160, 22, 35, models.CategoryPlants, true, "/images/products/6e40da72-9cd9-4937-bcee-fc38b6941b29.jpg"},
	{"Boston Fern", "Lush, feathery fronds, ideal for hanging baskets", "21.99", 175, 26, 20, models.CategoryPlants, true, "/images/products/675fa6ed-5d3a-490a-ba29-a37e9b46662a.jpg"},
}

var demoPlants = []seedPlant{
	{"john_doe", "Monstera Plant", "Monstera", "Monstera Deliciosa", models.StageSeedling, 5, 2, 1},
	{"jane_smith", "Snake Plant", "Snake Plant", "Sansevieria Trifasciata", models.StageMaturePlant, 30, 5, 2},
}

var demoSubmissions = []seedSubmission{
	{"john_doe", "PET", "Recycled plastic bottles", 2.5, 5},
	{"john_doe", "HDPE", "Recycled milk jugs", 1.8, 10},
	{"jane_smith", "PET", "Recycled plastic containers", 3.2, 7},
}

// SeedDemoData fills an empty database with demo accounts, the starter
// catalog, two plants and verified plastic submissions. It reports false
// and changes nothing when any user exists.
func SeedDemoData(db *gorm.DB, logger *zap.Logger) (bool, error) {
	var count int64
	if err := db.Unscoped().Model(&models.User{}).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	now := time.Now()
	today := dateOf(now)

	err := db.Transaction(func(tx *gorm.DB) error {
		ledger := NewLedgerService(tx, logger)

		users := make(map[string]uint, len(demoUsers))
		for _, u := range demoUsers {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}
			user := models.User{
				Username:     u.username,
				Email:        u.email,
				PasswordHash: string(hash),
				Name:         u.name,
				FullName:     u.fullName,
				Role:         u.role,
			}
			if err := tx.Create(&user).Error; err != nil {
				return fmt.Errorf("failed to seed user %s: %w", u.username, err)
			}
			if _, err := ledger.Add(user.ID, u.points, models.ReasonManualAdjustment, "seed"); err != nil {
				return err
			}
			users[u.username] = user.ID
		}

		products := make(map[string]uint, len(demoProducts))
		for _, p := range demoProducts {
			product := models.Product{
				Name:            p.name,
				Description:     p.description,
				Price:           decimal.RequireFromString(p.price),
				EcoPointsCost:   p.cost,
				EcoPointsReward: p.reward,
				Stock:           p.stock,
				Category:        p.category,
				IsPlant:         p.isPlant,
				ImageURL:        p.image,
			}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("failed to seed product %s: %w", p.name, err)
			}
			products[p.name] = product.ID
		}

		for _, p := range demoPlants {
			productID := products[p.product]
			planted := today.AddDate(0, -p.monthsOwned, 0)
			watered := today.AddDate(0, 0, -p.wateredDaysAgo)
			height := p.heightCm
			plant := models.Plant{
				UserID:          users[p.owner],
				ProductID:       &productID,
				Name:            p.name,
				Species:         p.species,
				PlantName:       p.product,
				PlantingDate:    &planted,
				PurchaseDate:    now.AddDate(0, -p.monthsOwned, 0),
				LastWatered:     &watered,
				GrowthStage:     p.stage,
				HealthStatus:    models.HealthGood,
				CurrentHeightCm: &height,
			}
			if err := tx.Create(&plant).Error; err != nil {
				return fmt.Errorf("failed to seed plant %s: %w", p.name, err)
			}
		}

		// balances above already include these rewards, so nothing is credited
		for _, sub := range demoSubmissions {
			submitted := now.AddDate(0, 0, -sub.submittedDaysAgo)
			verified := submitted.AddDate(0, 0, 1)
			submission := models.PlasticSubmission{
				UserID:           users[sub.owner],
				Weight:           sub.weight,
				PlasticType:      sub.plasticType,
				Notes:            sub.notes,
				SubmissionDate:   submitted,
				EcoPoints:        PlasticPoints(sub.weight, sub.plasticType),
				VerificationDate: &verified,
				Status:           models.SubmissionVerified,
			}
			if err := tx.Create(&submission).Error; err != nil {
				return fmt.Errorf("failed to seed plastic submission: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return false, err
	}

	logger.Info("demo data seeded",
		zap.Int("users", len(demoUsers)),
		zap.Int("products", len(demoProducts)),
		zap.Int("plants", len(demoPlants)),
		zap.Int("plastic_submissions", len(demoSubmissions)),
	)
	return true, nil
}
