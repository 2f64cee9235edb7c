package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/ecotrade/ecotrade-api/config"
	"github.com/ecotrade/ecotrade-api/controllers"
	"github.com/ecotrade/ecotrade-api/middleware"
	"github.com/ecotrade/ecotrade-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// uploadsPath serves photos from the in-process store when S3 is not configured
const uploadsPath = "/api/v1/uploads"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := config.InitLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting EcoTrade API server...", zap.String("env", cfg.GoEnv))

	// Connect to database
	if err := config.ConnectDatabase(cfg); err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Auto-migrate database models
	if err := config.Migrate(config.GetDB()); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migration completed successfully")

	if cfg.SeedData {
		if _, err := services.SeedDemoData(config.GetDB(), logger); err != nil {
			logger.Fatal("Failed to seed demo data", zap.Error(err))
		}
	}

	if err := initPhotoStorage(cfg, logger); err != nil {
		logger.Fatal("Failed to initialize photo storage", zap.Error(err))
	}
	services.InitOrderHub(logger)

	router, err := setupRouter(cfg)
	if err != nil {
		logger.Fatal("Failed to set up routes", zap.Error(err))
	}

	// Start server
	port := ":" + cfg.Port
	logger.Info("Server is running", zap.String("addr", "http://localhost"+port))
	if err := router.Run(port); err != nil {
		logger.Fatal("Failed to start server", zap.Error(err))
	}
}

// initPhotoStorage stores uploads in S3 when a bucket is configured and in
// memory otherwise
func initPhotoStorage(cfg *config.Config, logger *zap.Logger) error {
	if !cfg.StorageEnabled() {
		logger.Warn("AWS_S3_BUCKET not set, keeping uploaded photos in memory")
		services.InitPhotoService(services.NewMemoryStore(uploadsPath), logger)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := services.NewS3Service(ctx, cfg)
	if err != nil {
		return err
	}
	services.InitPhotoService(store, logger)
	logger.Info("Uploading photos to S3", zap.String("bucket", cfg.AWSS3Bucket), zap.String("region", cfg.AWSRegion))
	return nil
}

// setupRouter registers every route. Staff routes additionally pass
// through the Auth0 token and scope checks.
func setupRouter(cfg *config.Config) (*gin.Engine, error) {
	staff, err := middleware.StaffOnly(cfg)
	if err != nil {
		return nil, err
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(zap.L()))
	router.Use(cors.New(corsConfig(cfg)))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Database status endpoint
		v1.GET("/database/status", databaseStatus)

		auth := v1.Group("/auth")
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)

		users := v1.Group("/users")
		users.GET("", controllers.GetUsers)
		users.GET("/:id", controllers.GetUser)
		users.PUT("/:id/eco-points/use", controllers.UseEcoPoints)
		users.GET("/:id/eco-points/history", controllers.GetEcoPointsHistory)

		products := v1.Group("/products")
		products.GET("", controllers.GetProducts)
		products.GET("/plants", controllers.GetPlantProducts)
		products.GET("/category/:category", controllers.GetProductsByCategory)
		products.GET("/:id", controllers.GetProduct)

		orders := v1.Group("/orders")
		orders.GET("", controllers.GetOrders)
		orders.GET("/stream", controllers.StreamOrders)
		orders.GET("/user/:userId", controllers.GetUserOrders)
		orders.GET("/:id", controllers.GetOrder)
		orders.POST("", controllers.CreateOrder)
		orders.PUT("/:id", controllers.UpdateOrder)
		orders.PUT("/:id/cancel", controllers.CancelOrder)
		orders.DELETE("/:id", controllers.DeleteOrder)

		plants := v1.Group("/plants")
		plants.GET("", controllers.GetPlants)
		plants.GET("/user/:userId", controllers.GetUserPlants)
		plants.GET("/user/:userId/orders", controllers.SyncPlantsFromOrders)
		plants.GET("/:id", controllers.GetPlant)
		plants.GET("/:id/growth-records", controllers.GetPlantGrowthRecords)
		plants.POST("", controllers.CreatePlant)
		plants.PUT("/:id", controllers.UpdatePlant)
		plants.DELETE("/:id", controllers.DeletePlant)
		plants.POST("/:id/record-maintenance", controllers.RecordPlantMaintenance)
		plants.POST("/:id/water", controllers.WaterPlant)
		plants.POST("/:id/fertilize", controllers.FertilizePlant)

		plastic := v1.Group("/plastic-submissions")
		plastic.GET("", controllers.GetPlasticSubmissions)
		plastic.GET("/user/:userId", controllers.GetUserPlasticSubmissions)
		plastic.GET("/:id", controllers.GetPlasticSubmission)
		plastic.POST("", controllers.CreatePlasticSubmission)
		plastic.POST("/:id/photo", controllers.UploadPlasticPhoto)
		plastic.DELETE("/:id", controllers.DeletePlasticSubmission)

		v1.GET("/uploads/*key", controllers.GetUploadedImage)

		// Staff routes
		admin := v1.Group("", staff...)
		// account writes carry role and balance, so only staff may make them
		admin.POST("/users", controllers.CreateUser)
		admin.PUT("/users/:id", controllers.UpdateUser)
		admin.DELETE("/users/:id", controllers.DeleteUser)
		admin.PUT("/users/:id/eco-points/add", controllers.AddEcoPoints)
		admin.POST("/products", controllers.CreateProduct)
		admin.GET("/products/export", controllers.ExportProducts)
		admin.PUT("/products/:id", controllers.UpdateProduct)
		admin.DELETE("/products/:id", controllers.DeleteProduct)
		admin.POST("/products/:id/image", controllers.UploadProductImage)
		admin.PUT("/orders/:id/confirm", controllers.ConfirmOrder)
		admin.PUT("/orders/:id/ship", controllers.ShipOrder)
		admin.PUT("/orders/:id/deliver", controllers.DeliverOrder)
		admin.PUT("/plastic-submissions/:id/verify", controllers.VerifyPlasticSubmission)
		admin.PUT("/plastic-submissions/:id/reject", controllers.RejectPlasticSubmission)
	}

	return router, nil
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	for _, origin := range cfg.CORSOrigins {
		if origin == "*" {
			corsCfg.AllowAllOrigins = true
			corsCfg.AllowCredentials = false
			return corsCfg
		}
	}
	corsCfg.AllowOrigins = cfg.CORSOrigins
	return corsCfg
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "EcoTrade API is running",
	})
}

// databaseStatus checks database connectivity and returns table information
func databaseStatus(c *gin.Context) {
	db := config.GetDB()

	// Get the underlying SQL database to check connection
	sqlDB, err := db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_ERROR",
				"message": "Failed to get database instance",
			},
		})
		return
	}

	// Ping the database to verify connection
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_CONNECTION_ERROR",
				"message": "Database connection failed",
			},
		})
		return
	}

	// Get list of tables
	tables, err := db.Migrator().GetTables()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "DATABASE_QUERY_ERROR",
				"message": "Failed to query tables",
			},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Database connected",
		"tables":  tables,
	})
}
