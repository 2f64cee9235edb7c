package services

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/ecotrade/ecotrade-api/models"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const catalogSheet = "Products"

// ProductInput creates or replaces a catalog item
type ProductInput struct {
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Price           decimal.Decimal `json:"price"`
	EcoPointsCost   int             `json:"eco_points_cost" binding:"gte=0"`
	EcoPointsReward int             `json:"eco_points_reward" binding:"gte=0"`
	Stock           int             `json:"stock" binding:"gte=0"`
	ImageURL        string          `json:"image_url"`
	Category        string          `json:"category" binding:"required"`
	IsPlant         bool            `json:"is_plant"`
}

// ProductService manages the catalog
type ProductService struct {
	db     *gorm.DB
	logger *zap.Logger
	photos *PhotoService
}

// NewProductService creates the service; photos may be nil when uploads are disabled
func NewProductService(db *gorm.DB, logger *zap.Logger, photos *PhotoService) *ProductService {
	return &ProductService{db: db, logger: logger, photos: photos}
}

func (s *ProductService) Create(ctx context.Context, input ProductInput) (*ProductDTO, error) {
	product := models.Product{}
	if err := applyProductInput(&product, input); err != nil {
		return nil, err
	}
	if err := s.db.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product: %w", err)
	}

	s.logger.Info("product created", zap.Uint("product_id", product.ID), zap.String("name", product.Name))
	return toProductDTO(ctx, &product, s.photos), nil
}

// Update replaces every editable field of the product
func (s *ProductService) Update(ctx context.Context, id uint, input ProductInput) (*ProductDTO, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		return nil, lookupError(err, "Product", id)
	}
	if err := applyProductInput(&product, input); err != nil {
		return nil, err
	}
	if err := s.db.Save(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product: %w", err)
	}
	return toProductDTO(ctx, &product, s.photos), nil
}

// Delete soft-deletes the product so past orders keep their lines
func (s *ProductService) Delete(id uint) error {
	res := s.db.Delete(&models.Product{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound("Product", id)
	}
	s.logger.Info("product deleted", zap.Uint("product_id", id))
	return nil
}

func (s *ProductService) Get(ctx context.Context, id uint) (*ProductDTO, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		return nil, lookupError(err, "Product", id)
	}
	return toProductDTO(ctx, &product, s.photos), nil
}

func (s *ProductService) List(ctx context.Context) ([]ProductDTO, error) {
	return s.find(ctx, s.db)
}

// ListByCategory accepts both "ECO_FRIENDLY_PRODUCTS" and "eco-friendly-products"
func (s *ProductService) ListByCategory(ctx context.Context, category string) ([]ProductDTO, error) {
	c, ok := models.ParseProductCategory(category)
	if !ok {
		return nil, newError(KindValidation, "Invalid category: %s", category)
	}
	return s.find(ctx, s.db.Where("category = ?", c))
}

// ListPlants returns the products that become plants when ordered
func (s *ProductService) ListPlants(ctx context.Context) ([]ProductDTO, error) {
	return s.find(ctx, s.db.Where("is_plant = ?", true))
}

// AttachImage uploads a product image, replacing any previous upload
func (s *ProductService) AttachImage(ctx context.Context, id uint, fileHeader *multipart.FileHeader) (*ProductDTO, error) {
	var product models.Product
	if err := s.db.First(&product, id).Error; err != nil {
		return nil, lookupError(err, "Product", id)
	}

	key, err := s.photos.Upload(ctx, ProductPhotoFolder, fileHeader)
	if err != nil {
		return nil, err
	}
	previous := product.ImageKey
	product.ImageKey = &key
	if err := s.db.Model(&product).Update("image_key", key).Error; err != nil {
		s.photos.Delete(ctx, key)
		return nil, fmt.Errorf("failed to save image key: %w", err)
	}
	if previous != nil {
		s.photos.Delete(ctx, *previous)
	}
	return toProductDTO(ctx, &product, s.photos), nil
}

// ExportCatalog writes the active catalog to w as an .xlsx workbook
func (s *ProductService) ExportCatalog(w io.Writer) error {
	var products []models.Product
	if err := s.db.Order("category, name").Find(&products).Error; err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", catalogSheet); err != nil {
		return fmt.Errorf("failed to prepare workbook: %w", err)
	}
	header := []interface{}{"ID", "Name", "Category", "Price", "Stock", "Eco Points Cost", "Eco Points Reward", "Plant"}
	if err := f.SetSheetRow(catalogSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, p := range products {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			p.ID, p.Name, string(p.Category), p.Price.InexactFloat64(),
			p.Stock, p.EcoPointsCost, p.EcoPointsReward, p.IsPlant,
		}
		if err := f.SetSheetRow(catalogSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write product %d: %w", p.ID, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func (s *ProductService) find(ctx context.Context, query *gorm.DB) ([]ProductDTO, error) {
	var products []models.Product
	if err := query.Order("id").Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to load products: %w", err)
	}
	dtos := make([]ProductDTO, 0, len(products))
	for i := range products {
		dtos = append(dtos, *toProductDTO(ctx, &products[i], s.photos))
	}
	return dtos, nil
}

func applyProductInput(product *models.Product, input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return newError(KindValidation, "Product name is required")
	}
	if input.Price.IsNegative() {
		return newError(KindValidation, "Price must not be negative")
	}
	if input.Stock < 0 || input.EcoPointsCost < 0 || input.EcoPointsReward < 0 {
		return newError(KindValidation, "Stock and eco points must not be negative")
	}
	category, ok := models.ParseProductCategory(input.Category)
	if !ok {
		return newError(KindValidation, "Invalid category: %s", input.Category)
	}

	product.Name = strings.TrimSpace(input.Name)
	product.Description = input.Description
	product.Price = input.Price
	product.EcoPointsCost = input.EcoPointsCost
	product.EcoPointsReward = input.EcoPointsReward
	product.Stock = input.Stock
	product.ImageURL = input.ImageURL
	product.Category = category
	product.IsPlant = input.IsPlant
	return nil
}
