package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mufufarm/farmstore-api/models"
	"github.com/mufufarm/farmstore-api/utils"
)

type ContactController struct {
	DB *gorm.DB
}

func NewContactController(db *gorm.DB) *ContactController {
	return &ContactController{DB: db}
}

// CreateMessage -> public contact form submission.
func (cc *ContactController) CreateMessage(c *gin.Context) {
	var body struct {
		Name    string  `json:"name" binding:"required"`
		Email   string  `json:"email" binding:"required,email"`
		Phone   *string `json:"phone"`
		Subject string  `json:"subject" binding:"required"`
		Message string  `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	message := models.ContactMessage{
		Name:    body.Name,
		Email:   body.Email,
		Phone:   body.Phone,
		Subject: body.Subject,
		Message: body.Message,
	}
	if err := cc.DB.Create(&message).Error; err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Message received", message)
}

// GetAllMessages (admin) -> newest first, optional unread filter.
func (cc *ContactController) GetAllMessages(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 {
		limit = 100
	}

	query := cc.DB.Model(&models.ContactMessage{})
	if c.Query("unread_only") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var messages []models.ContactMessage
	if err := query.Order("created_at DESC").Offset(skip).Limit(limit).Find(&messages).Error; err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Contact messages", messages)
}

// MarkMessageRead (admin)
func (cc *ContactController) MarkMessageRead(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("message_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid message id"))
		return
	}

	var message models.ContactMessage
	if err := cc.DB.First(&message, id).Error; err != nil {
		utils.RespondServiceError(c, utils.NewNotFoundError("message", id))
		return
	}

	message.IsRead = true
	if err := cc.DB.Save(&message).Error; err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Message marked as read", nil)
}
