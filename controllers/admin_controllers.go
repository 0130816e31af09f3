package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mufufarm/farmstore-api/models"
	"github.com/mufufarm/farmstore-api/services"
	"github.com/mufufarm/farmstore-api/utils"
)

type AdminController struct {
	DB     *gorm.DB
	Orders *services.OrderService
}

func NewAdminController(db *gorm.DB, orders *services.OrderService) *AdminController {
	return &AdminController{DB: db, Orders: orders}
}

// Login -> verifies credentials and returns a bearer token.
func (ac *AdminController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var admin models.Admin
	if err := ac.DB.Where("username = ?", input.Username).First(&admin).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("incorrect username or password"))
		return
	}

	if !admin.IsActive {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("account is disabled"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.HashedPassword), []byte(input.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("incorrect username or password"))
		return
	}

	token, err := utils.GenerateToken(admin.ID, admin.Username)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Admin login: %s", admin.Username)

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Me -> returns the admin attached to the verified token.
func (ac *AdminController) Me(c *gin.Context) {
	adminID, ok := c.Get("admin_id")
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("admin id not found in context"))
		return
	}

	var admin models.Admin
	if err := ac.DB.First(&admin, adminID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("admin not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Admin profile", admin)
}

// GetDashboardStats -> order/product counters for the admin dashboard.
func (ac *AdminController) GetDashboardStats(c *gin.Context) {
	stats, err := ac.Orders.GetDashboardStats()
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

// SeedAdmin creates or resets the bootstrap admin account from environment
// configuration. Called once at startup; a no-op when unset.
func SeedAdmin(db *gorm.DB, username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	var admin models.Admin
	err = db.Where("username = ?", username).First(&admin).Error
	if err == gorm.ErrRecordNotFound {
		return db.Create(&models.Admin{
			Username:       username,
			HashedPassword: string(hashed),
			IsActive:       true,
		}).Error
	}
	if err != nil {
		return err
	}

	admin.HashedPassword = string(hashed)
	admin.IsActive = true
	return db.Save(&admin).Error
}
