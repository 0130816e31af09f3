package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/mufufarm/farmstore-api/config"
	"github.com/mufufarm/farmstore-api/controllers"
	"github.com/mufufarm/farmstore-api/models"
	"github.com/mufufarm/farmstore-api/push"
	"github.com/mufufarm/farmstore-api/router"
	"github.com/mufufarm/farmstore-api/services"
	"github.com/mufufarm/farmstore-api/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Configuration error: %v", err)
	}

	if err := utils.InitJWT(cfg.JWTSecret, cfg.JWTExpiry); err != nil {
		utils.ErrorLogger.Fatalf("JWT setup error: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}

	autoMigrate(db)

	if err := controllers.SeedAdmin(db, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed admin account: %v", err)
	}

	files := services.NewFileStore(cfg.UploadsDir)
	if err := files.EnsureDirs(); err != nil {
		utils.ErrorLogger.Fatalf("Failed to prepare uploads directory: %v", err)
	}

	// Push delivery is optional; without credentials the API runs with
	// notifications disabled.
	var sender push.Sender = push.Disabled{}
	if cfg.FirebaseCredentialsFile != "" {
		fcm, err := push.NewFCMClient(context.Background(), cfg.FirebaseCredentialsFile)
		if err != nil {
			utils.ErrorLogger.Printf("Firebase init failed, push disabled: %v", err)
		} else {
			sender = fcm
			utils.InfoLogger.Println("Firebase messaging initialized")
		}
	}

	notifier := services.NewNotificationService(db, sender)
	orders := services.NewOrderService(db, notifier, cfg.MaxOrderTotal, cfg.MaxItemQuantity)
	paystack := services.NewPaystackService(cfg.PaystackSecretKey)
	if !paystack.Configured() {
		utils.InfoLogger.Println("Paystack secret not set, gateway endpoints will refuse requests")
	}

	r := router.SetupRouter(router.Deps{
		DB:       db,
		Config:   cfg,
		Orders:   orders,
		Notifier: notifier,
		Paystack: paystack,
		Files:    files,
	})

	utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.Admin{},
		&models.Product{},
		&models.Order{},
		&models.OrderItem{},
		&models.DeviceToken{},
		&models.Notification{},
		&models.NotificationRecipient{},
		&models.Testimonial{},
		&models.ContactMessage{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
