package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mufufarm/farmstore-api/models"
	"github.com/mufufarm/farmstore-api/services"
	"github.com/mufufarm/farmstore-api/utils"
)

type NotificationController struct {
	DB       *gorm.DB
	Notifier *services.NotificationService
}

func NewNotificationController(db *gorm.DB, notifier *services.NotificationService) *NotificationController {
	return &NotificationController{DB: db, Notifier: notifier}
}

type tokenRequest struct {
	Token    string `json:"token" binding:"required"`
	DeviceID string `json:"deviceId" binding:"required"`
}

// RegisterToken -> public push token registration.
func (nc *NotificationController) RegisterToken(c *gin.Context) {
	var body tokenRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := nc.Notifier.RegisterToken(body.Token, body.DeviceID, false); err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Token registered", nil)
}

// RegisterAdminToken -> marks the token as an admin device.
func (nc *NotificationController) RegisterAdminToken(c *gin.Context) {
	var body tokenRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := nc.Notifier.RegisterToken(body.Token, body.DeviceID, true); err != nil {
		utils.RespondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Admin token registered", nil)
}

// UnsubscribeToken -> idempotent; a missing token is still a success for the
// client.
func (nc *NotificationController) UnsubscribeToken(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		utils.RespondError(c, http.StatusBadRequest, errors.New("token is required"))
		return
	}

	removed, err := nc.Notifier.UnsubscribeToken(token)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	message := "Successfully unsubscribed"
	if !removed {
		message = "Token not found or already unsubscribed"
	}
	utils.RespondJSON(c, http.StatusOK, message, nil)
}

// SendNotification -> admin broadcast to every registered device.
func (nc *NotificationController) SendNotification(c *gin.Context) {
	var body struct {
		Title   string `json:"title" binding:"required"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !nc.Notifier.Sender.Enabled() {
		utils.RespondError(c, http.StatusServiceUnavailable,
			errors.New("push delivery is not configured"))
		return
	}

	var count int64
	nc.DB.Model(&models.DeviceToken{}).Count(&count)
	if count == 0 {
		utils.RespondJSON(c, http.StatusOK, "No registered devices found", gin.H{
			"sent_count":   0,
			"failed_count": 0,
		})
		return
	}

	notification, err := nc.Notifier.SendToAll(c.Request.Context(), body.Title, body.Message)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Notification sent", gin.H{
		"notification_id": notification.ID,
		"sent_count":      notification.SentCount,
		"failed_count":    notification.FailedCount,
	})
}

// TrackClick -> idempotent click recording.
func (nc *NotificationController) TrackClick(c *gin.Context) {
	var body struct {
		NotificationID uint   `json:"notification_id" binding:"required"`
		DeviceID       string `json:"device_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tracked, err := nc.Notifier.TrackClick(body.NotificationID, body.DeviceID)
	if err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	if tracked {
		utils.RespondJSON(c, http.StatusOK, "Click tracked", gin.H{"tracked": true})
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Recipient not found or already tracked", gin.H{"tracked": false})
}

// notificationAnalytics is one row of the admin analytics listing.
type notificationAnalytics struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Message      string `json:"message"`
	SentCount    int    `json:"sent_count"`
	FailedCount  int    `json:"failed_count"`
	ClickedCount int64  `json:"clicked_count"`
	CreatedAt    string `json:"created_at"`
}

// GetAnalytics -> per-notification delivery and click counters, newest first.
func (nc *NotificationController) GetAnalytics(c *gin.Context) {
	skip, _ := strconv.Atoi(c.DefaultQuery("skip", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	if limit <= 0 {
		limit = 100
	}

	var notifications []models.Notification
	if err := nc.DB.Order("created_at DESC").Offset(skip).Limit(limit).Find(&notifications).Error; err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	result := make([]notificationAnalytics, 0, len(notifications))
	for _, n := range notifications {
		var clicked int64
		nc.DB.Model(&models.NotificationRecipient{}).
			Where("notification_id = ? AND is_clicked = ?", n.ID, true).
			Count(&clicked)

		result = append(result, notificationAnalytics{
			ID:           n.ID,
			Title:        n.Title,
			Message:      n.Message,
			SentCount:    n.SentCount,
			FailedCount:  n.FailedCount,
			ClickedCount: clicked,
			CreatedAt:    n.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	utils.RespondJSON(c, http.StatusOK, "Notification analytics", result)
}

// GetAnalyticsDetail -> recipient-level detail with click rate.
func (nc *NotificationController) GetAnalyticsDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("notification_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid notification id"))
		return
	}

	var notification models.Notification
	if err := nc.DB.First(&notification, id).Error; err != nil {
		utils.RespondServiceError(c, utils.NewNotFoundError("notification", id))
		return
	}

	var recipients []models.NotificationRecipient
	if err := nc.DB.Where("notification_id = ?", notification.ID).Find(&recipients).Error; err != nil {
		utils.RespondServiceError(c, err)
		return
	}

	clicked := 0
	for _, r := range recipients {
		if r.IsClicked {
			clicked++
		}
	}

	clickRate := 0.0
	if len(recipients) > 0 {
		clickRate = float64(clicked) / float64(len(recipients)) * 100
	}

	utils.RespondJSON(c, http.StatusOK, "Notification detail analytics", gin.H{
		"notification":     notification,
		"total_recipients": len(recipients),
		"clicked_count":    clicked,
		"click_rate":       clickRate,
		"recipients":       recipients,
	})
}
