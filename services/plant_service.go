package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/ecotrade/ecotrade-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreatePlantInput registers a plant by hand
type CreatePlantInput struct {
	UserID          uint       `json:"user_id" binding:"required"`
	ProductID       *uint      `json:"product_id"`
	Name            string     `json:"name" binding:"required"`
	Species         string     `json:"species"`
	PlantName       string     `json:"plant_name"`
	PlantingDate    *time.Time `json:"planting_date"`
	PurchaseDate    *time.Time `json:"purchase_date"`
	LastWatered     *time.Time `json:"last_watered"`
	LastFertilized  *time.Time `json:"last_fertilized"`
	GrowthStage     string     `json:"growth_stage"`
	HealthStatus    string     `json:"health_status"`
	CurrentHeightCm *float64   `json:"current_height_cm"`
	ImageURL        string     `json:"image_url"`
	Notes           string     `json:"notes"`
}

// UpdatePlantInput changes the fields that are set
type UpdatePlantInput struct {
	Name            *string    `json:"name"`
	Species         *string    `json:"species"`
	PlantName       *string    `json:"plant_name"`
	PlantingDate    *time.Time `json:"planting_date"`
	PurchaseDate    *time.Time `json:"purchase_date"`
	LastWatered     *time.Time `json:"last_watered"`
	LastFertilized  *time.Time `json:"last_fertilized"`
	GrowthStage     *string    `json:"growth_stage"`
	HealthStatus    *string    `json:"health_status"`
	CurrentHeightCm *float64   `json:"current_height_cm"`
	ImageURL        *string    `json:"image_url"`
	Notes           *string    `json:"notes"`
}

// MaintenanceResult reports what a maintenance action changed and earned
type MaintenanceResult struct {
	Plant             *PlantDTO        `json:"plant"`
	Record            *GrowthRecordDTO `json:"record"`
	GrowthPoints      int              `json:"growth_points"`
	MaintenancePoints int              `json:"maintenance_points"`
}

// PlantService tracks owned plants and rewards their care
type PlantService struct {
	db     *gorm.DB
	logger *zap.Logger
	ledger *LedgerService
	now    func() time.Time
}

func NewPlantService(db *gorm.DB, logger *zap.Logger) *PlantService {
	return &PlantService{
		db:     db,
		logger: logger,
		ledger: NewLedgerService(db, logger),
		now:    time.Now,
	}
}

// RecordMaintenance logs a care action against a plant. Growth since the
// last stored height and the action itself are credited as separate ledger
// entries, and the growth stage is recomputed from the plant's age.
func (s *PlantService) RecordMaintenance(plantID uint, kind models.MaintenanceType, notes string, newHeight *float64) (*MaintenanceResult, error) {
	if newHeight != nil && *newHeight < 0 {
		return nil, newError(KindValidation, "Height must not be negative")
	}

	today := dateOf(s.now())
	result := &MaintenanceResult{}
	var plant models.Plant
	var record models.PlantGrowthRecord

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&plant, plantID).Error; err != nil {
			return lookupError(err, "Plant", plantID)
		}

		record = models.PlantGrowthRecord{
			PlantID:         plant.ID,
			RecordDate:      today,
			MaintenanceType: kind,
			HeightCm:        newHeight,
			Notes:           notes,
		}
		if err := tx.Create(&record).Error; err != nil {
			return fmt.Errorf("failed to record maintenance: %w", err)
		}

		if newHeight != nil {
			if plant.CurrentHeightCm != nil {
				result.GrowthPoints = growthPoints(*plant.CurrentHeightCm, *newHeight)
			}
			height := *newHeight
			plant.CurrentHeightCm = &height
		}

		result.MaintenancePoints = maintenancePoints(kind, plant.LastWatered, plant.LastFertilized, today)
		switch kind {
		case models.MaintenanceWater:
			plant.LastWatered = &today
		case models.MaintenanceFertilize:
			plant.LastFertilized = &today
		}

		if plant.PlantingDate != nil {
			plant.GrowthStage = stageForAge(daysBetween(*plant.PlantingDate, today))
		}

		if err := tx.Omit(clause.Associations).Save(&plant).Error; err != nil {
			return fmt.Errorf("failed to update plant: %w", err)
		}

		ledger := s.ledger.WithTx(tx)
		reference := fmt.Sprintf("plant:%d", plant.ID)
		if _, err := ledger.Add(plant.UserID, result.GrowthPoints, models.ReasonPlantGrowth, reference); err != nil {
			return err
		}
		if _, err := ledger.Add(plant.UserID, result.MaintenancePoints, models.ReasonPlantMaintenance, reference); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("plant maintenance recorded",
		zap.Uint("plant_id", plant.ID),
		zap.String("type", string(kind)),
		zap.Int("growth_points", result.GrowthPoints),
		zap.Int("maintenance_points", result.MaintenancePoints),
	)

	result.Plant, err = s.Get(plant.ID)
	if err != nil {
		return nil, err
	}
	result.Record = toGrowthRecordDTO(&record)
	return result, nil
}

// Water sets the last watered date to today without awarding points
func (s *PlantService) Water(plantID uint) (*PlantDTO, error) {
	return s.touch(plantID, "last_watered")
}

// Fertilize sets the last fertilized date to today without awarding points
func (s *PlantService) Fertilize(plantID uint) (*PlantDTO, error) {
	return s.touch(plantID, "last_fertilized")
}

func (s *PlantService) touch(plantID uint, column string) (*PlantDTO, error) {
	res := s.db.Model(&models.Plant{}).Where("id = ?", plantID).Update(column, dateOf(s.now()))
	if res.Error != nil {
		return nil, fmt.Errorf("failed to update plant: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, notFound("Plant", plantID)
	}
	return s.Get(plantID)
}

// Create adds a plant. Unset dates default to today, the stage to Seedling
// and the health to Good.
func (s *PlantService) Create(input CreatePlantInput) (*PlantDTO, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, newError(KindValidation, "Plant name is required")
	}

	now := s.now()
	today := dateOf(now)
	plant := models.Plant{
		UserID:          input.UserID,
		ProductID:       input.ProductID,
		Name:            input.Name,
		Species:         input.Species,
		PlantName:       input.PlantName,
		PlantingDate:    input.PlantingDate,
		PurchaseDate:    now,
		LastWatered:     input.LastWatered,
		LastFertilized:  input.LastFertilized,
		GrowthStage:     models.StageSeedling,
		HealthStatus:    models.HealthGood,
		CurrentHeightCm: input.CurrentHeightCm,
		ImageURL:        input.ImageURL,
		Notes:           input.Notes,
	}
	if plant.PlantingDate == nil {
		plant.PlantingDate = &today
	}
	if input.PurchaseDate != nil {
		plant.PurchaseDate = *input.PurchaseDate
	}
	if input.GrowthStage != "" {
		stage, ok := models.ParseGrowthStage(input.GrowthStage)
		if !ok {
			return nil, newError(KindValidation, "Invalid growth stage: %s", input.GrowthStage)
		}
		plant.GrowthStage = stage
	}
	if input.HealthStatus != "" {
		health, ok := models.ParseHealthStatus(input.HealthStatus)
		if !ok {
			return nil, newError(KindValidation, "Invalid health status: %s", input.HealthStatus)
		}
		plant.HealthStatus = health
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, input.UserID).Error; err != nil {
			return lookupError(err, "User", input.UserID)
		}
		if input.ProductID != nil {
			var product models.Product
			if err := tx.Select("id").First(&product, *input.ProductID).Error; err != nil {
				return lookupError(err, "Product", *input.ProductID)
			}
		}
		if err := tx.Create(&plant).Error; err != nil {
			return fmt.Errorf("failed to create plant: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(plant.ID)
}

// Update applies the set fields of input
func (s *PlantService) Update(plantID uint, input UpdatePlantInput) (*PlantDTO, error) {
	var plant models.Plant
	if err := s.db.First(&plant, plantID).Error; err != nil {
		return nil, lookupError(err, "Plant", plantID)
	}

	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			return nil, newError(KindValidation, "Plant name is required")
		}
		plant.Name = *input.Name
	}
	if input.Species != nil {
		plant.Species = *input.Species
	}
	if input.PlantName != nil {
		plant.PlantName = *input.PlantName
	}
	if input.PlantingDate != nil {
		plant.PlantingDate = input.PlantingDate
	}
	if input.PurchaseDate != nil {
		plant.PurchaseDate = *input.PurchaseDate
	}
	if input.LastWatered != nil {
		plant.LastWatered = input.LastWatered
	}
	if input.LastFertilized != nil {
		plant.LastFertilized = input.LastFertilized
	}
	if input.GrowthStage != nil {
		stage, ok := models.ParseGrowthStage(*input.GrowthStage)
		if !ok {
			return nil, newError(KindValidation, "Invalid growth stage: %s", *input.GrowthStage)
		}
		plant.GrowthStage = stage
	}
	if input.HealthStatus != nil {
		health, ok := models.ParseHealthStatus(*input.HealthStatus)
		if !ok {
			return nil, newError(KindValidation, "Invalid health status: %s", *input.HealthStatus)
		}
		plant.HealthStatus = health
	}
	if input.CurrentHeightCm != nil {
		if *input.CurrentHeightCm < 0 {
			return nil, newError(KindValidation, "Height must not be negative")
		}
		plant.CurrentHeightCm = input.CurrentHeightCm
	}
	if input.ImageURL != nil {
		plant.ImageURL = *input.ImageURL
	}
	if input.Notes != nil {
		plant.Notes = *input.Notes
	}

	if err := s.db.Omit(clause.Associations).Save(&plant).Error; err != nil {
		return nil, fmt.Errorf("failed to update plant: %w", err)
	}
	return s.Get(plantID)
}

// Delete removes a plant together with its growth records
func (s *PlantService) Delete(plantID uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var plant models.Plant
		if err := tx.Select("id").First(&plant, plantID).Error; err != nil {
			return lookupError(err, "Plant", plantID)
		}
		if err := tx.Where("plant_id = ?", plantID).Delete(&models.PlantGrowthRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete growth records: %w", err)
		}
		if err := tx.Delete(&plant).Error; err != nil {
			return fmt.Errorf("failed to delete plant: %w", err)
		}
		return nil
	})
}

func (s *PlantService) Get(plantID uint) (*PlantDTO, error) {
	var plant models.Plant
	if err := s.withProduct(s.db).First(&plant, plantID).Error; err != nil {
		return nil, lookupError(err, "Plant", plantID)
	}
	return toPlantDTO(&plant), nil
}

func (s *PlantService) List() ([]PlantDTO, error) {
	return s.find(s.db.Order("id"))
}

func (s *PlantService) ListByUser(userID uint) ([]PlantDTO, error) {
	var user models.User
	if err := s.db.Select("id").First(&user, userID).Error; err != nil {
		return nil, lookupError(err, "User", userID)
	}
	return s.find(s.db.Where("user_id = ?", userID).Order("id"))
}

// GrowthHistory returns the growth records of a plant, oldest first
func (s *PlantService) GrowthHistory(plantID uint) ([]GrowthRecordDTO, error) {
	var plant models.Plant
	if err := s.db.Select("id").First(&plant, plantID).Error; err != nil {
		return nil, lookupError(err, "Plant", plantID)
	}

	var records []models.PlantGrowthRecord
	if err := s.db.Where("plant_id = ?", plantID).Order("record_date, id").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to load growth records: %w", err)
	}
	dtos := make([]GrowthRecordDTO, 0, len(records))
	for i := range records {
		dtos = append(dtos, *toGrowthRecordDTO(&records[i]))
	}
	return dtos, nil
}

type plantOrigin struct {
	orderID   uint
	productID uint
	sequence  int
}

// SyncFromOrders makes sure the user owns one plant per plant unit ever
// ordered and returns all plants that came from orders. Plants are matched
// on their origin (order, product, unit number), so running it again or
// renaming a plant never creates duplicates.
func (s *PlantService) SyncFromOrders(userID uint) ([]PlantDTO, error) {
	now := s.now()
	today := dateOf(now)
	created := 0

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, userID).Error; err != nil {
			return lookupError(err, "User", userID)
		}

		var orders []models.Order
		err := tx.Where("user_id = ?", userID).
			Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
			Preload("Items.Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
			Order("id").
			Find(&orders).Error
		if err != nil {
			return fmt.Errorf("failed to load orders: %w", err)
		}

		var linked []models.Plant
		if err := tx.Where("user_id = ? AND source_order_id IS NOT NULL", userID).Find(&linked).Error; err != nil {
			return fmt.Errorf("failed to load plants: %w", err)
		}
		existing := make(map[plantOrigin]bool, len(linked))
		for _, p := range linked {
			if p.SourceProductID != nil && p.SourceSequence != nil {
				existing[plantOrigin{*p.SourceOrderID, *p.SourceProductID, *p.SourceSequence}] = true
			}
		}

		for i := range orders {
			order := &orders[i]
			// units are numbered per product across the whole order, so two
			// lines for the same product never share a sequence number
			units := make(map[uint]int)
			for _, item := range order.Items {
				if item.Product.IsPlant {
					units[item.ProductID] += item.Quantity
				}
			}
			next := make(map[uint]int)
			for j := range order.Items {
				item := &order.Items[j]
				if !item.Product.IsPlant {
					continue
				}
				for u := 0; u < item.Quantity; u++ {
					next[item.ProductID]++
					origin := plantOrigin{order.ID, item.ProductID, next[item.ProductID]}
					if existing[origin] {
						continue
					}
					plant := newPlantFromOrder(order, item, origin.sequence, units[item.ProductID], now, today)
					if err := tx.Omit(clause.Associations).Create(plant).Error; err != nil {
						return fmt.Errorf("failed to create plant from order %d: %w", order.ID, err)
					}
					existing[origin] = true
					created++
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if created > 0 {
		s.logger.Info("plants created from orders", zap.Uint("user_id", userID), zap.Int("count", created))
	}
	return s.find(s.db.Where("user_id = ? AND source_order_id IS NOT NULL", userID).
		Order("source_order_id, source_product_id, source_sequence"))
}

func newPlantFromOrder(order *models.Order, item *models.OrderItem, k, n int, now, today time.Time) *models.Plant {
	orderID, productID, sequence := order.ID, item.ProductID, k
	plantingDate := today
	return &models.Plant{
		UserID:          order.UserID,
		ProductID:       &productID,
		Name:            orderPlantName(item.Product.Name, order, k, n),
		Species:         item.Product.Description,
		PlantName:       item.Product.Name,
		PlantingDate:    &plantingDate,
		PurchaseDate:    order.OrderDate,
		GrowthStage:     models.StageSeedling,
		HealthStatus:    models.HealthGood,
		ImageURL:        item.Product.ImageURL,
		SourceOrderID:   &orderID,
		SourceProductID: &productID,
		SourceSequence:  &sequence,
	}
}

// orderPlantName renders e.g. "Fern (Order #3, 2024-05-01, eco-friendly, #2 of 3)"
func orderPlantName(product string, order *models.Order, k, n int) string {
	kind := "eco-friendly"
	if order.UsePlastic {
		kind = "with plastic"
	}
	name := fmt.Sprintf("%s (Order #%d, %s, %s", product, order.ID, order.OrderDate.Format("2006-01-02"), kind)
	if n > 1 {
		name += fmt.Sprintf(", #%d of %d", k, n)
	}
	return name + ")"
}

func (s *PlantService) withProduct(query *gorm.DB) *gorm.DB {
	return query.Preload("Product", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (s *PlantService) find(query *gorm.DB) ([]PlantDTO, error) {
	var plants []models.Plant
	if err := s.withProduct(query).Find(&plants).Error; err != nil {
		return nil, fmt.Errorf("failed to load plants: %w", err)
	}
	dtos := make([]PlantDTO, 0, len(plants))
	for i := range plants {
		dtos = append(dtos, *toPlantDTO(&plants[i]))
	}
	return dtos, nil
}
