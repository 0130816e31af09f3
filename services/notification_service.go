package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/mufufarm/farmstore-api/models"
	"github.com/mufufarm/farmstore-api/push"
	"github.com/mufufarm/farmstore-api/utils"
)

// NotificationService fans one logical notification out to registered device
// tokens and records a delivery row per attempted send.
type NotificationService struct {
	DB     *gorm.DB
	Sender push.Sender
}

func NewNotificationService(db *gorm.DB, sender push.Sender) *NotificationService {
	if sender == nil {
		sender = push.Disabled{}
	}
	return &NotificationService{DB: db, Sender: sender}
}

// RegisterToken upserts a device token. Tokens are unique; a concurrent
// duplicate insert is retried as an update, last writer wins.
func (ns *NotificationService) RegisterToken(token, deviceID string, isAdmin bool) error {
	if token == "" {
		return utils.NewValidationError("token", "must not be empty")
	}
	if deviceID == "" {
		return utils.NewValidationError("device_id", "must not be empty")
	}

	if updated, err := ns.updateExisting(token, deviceID, isAdmin); err != nil || updated {
		return err
	}

	dt := models.DeviceToken{
		DeviceID: deviceID,
		Token:    token,
		IsAdmin:  isAdmin,
	}
	if err := ns.DB.Create(&dt).Error; err != nil {
		// Another request won the insert race; fall back to an update.
		if updated, uerr := ns.updateExisting(token, deviceID, isAdmin); uerr == nil && updated {
			return nil
		}
		return err
	}
	return nil
}

func (ns *NotificationService) updateExisting(token, deviceID string, isAdmin bool) (bool, error) {
	var existing models.DeviceToken
	err := ns.DB.Where("token = ?", token).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	existing.DeviceID = deviceID
	if isAdmin {
		existing.IsAdmin = true
	}
	existing.UpdatedAt = time.Now()
	if err := ns.DB.Save(&existing).Error; err != nil {
		return false, err
	}
	return true, nil
}

// UnsubscribeToken removes a token. Recipient rows keep their history; the
// token reference is nullified first to satisfy the foreign key.
func (ns *NotificationService) UnsubscribeToken(token string) (bool, error) {
	var existing models.DeviceToken
	err := ns.DB.Where("token = ?", token).First(&existing).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	if err := ns.removeToken(&existing); err != nil {
		return false, err
	}
	return true, nil
}

func (ns *NotificationService) removeToken(dt *models.DeviceToken) error {
	if err := ns.DB.Model(&models.NotificationRecipient{}).
		Where("device_token_id = ?", dt.ID).
		Update("device_token_id", nil).Error; err != nil {
		return err
	}
	return ns.DB.Delete(&models.DeviceToken{}, dt.ID).Error
}

// SendToAll broadcasts to every registered token.
func (ns *NotificationService) SendToAll(ctx context.Context, title, message string) (*models.Notification, error) {
	var tokens []models.DeviceToken
	if err := ns.DB.Find(&tokens).Error; err != nil {
		return nil, err
	}
	return ns.fanOut(ctx, title, message, tokens, nil)
}

// SendToAdmins broadcasts to admin devices only. Returns (nil, nil) when no
// admin token is registered.
func (ns *NotificationService) SendToAdmins(ctx context.Context, title, message, redirectURL string) (*models.Notification, error) {
	var tokens []models.DeviceToken
	if err := ns.DB.Where("is_admin = ?", true).Find(&tokens).Error; err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		utils.InfoLogger.Println("No admin tokens registered, skipping admin notification")
		return nil, nil
	}

	extra := map[string]string{"is_admin": "true"}
	if redirectURL != "" {
		extra["redirect_url"] = redirectURL
	}
	return ns.fanOut(ctx, title, message, tokens, extra)
}

// fanOut creates the broadcast row, attempts delivery per token and records
// one recipient per attempt. Tokens the provider reports as dead are removed;
// any other delivery error only bumps the failed counter.
func (ns *NotificationService) fanOut(ctx context.Context, title, message string, tokens []models.DeviceToken, extra map[string]string) (*models.Notification, error) {
	notification := models.Notification{
		Title:   title,
		Message: message,
	}
	if err := ns.DB.Create(&notification).Error; err != nil {
		return nil, err
	}

	sent, failed := 0, 0
	for i := range tokens {
		dt := tokens[i]

		data := map[string]string{
			"notification_id": strconv.FormatUint(uint64(notification.ID), 10),
			"device_id":       dt.DeviceID,
			"click_action":    "FLUTTER_NOTIFICATION_CLICK",
		}
		for k, v := range extra {
			data[k] = v
		}

		err := ns.Sender.Send(ctx, dt.Token, push.Message{
			Title: title,
			Body:  message,
			Data:  data,
		})

		tokenID := dt.ID
		recipient := models.NotificationRecipient{
			NotificationID: notification.ID,
			DeviceID:       dt.DeviceID,
			DeviceTokenID:  &tokenID,
			SentAt:         time.Now(),
		}
		if rerr := ns.DB.Create(&recipient).Error; rerr != nil {
			utils.ErrorLogger.Printf("Failed to record recipient for notification %d: %v", notification.ID, rerr)
		}

		if err != nil {
			failed++
			utils.ErrorLogger.Printf("Failed to send notification to token %d: %v", dt.ID, err)
			if errors.Is(err, push.ErrTokenNotRegistered) {
				if derr := ns.removeToken(&dt); derr != nil {
					utils.ErrorLogger.Printf("Failed to remove dead token %d: %v", dt.ID, derr)
				}
			}
			continue
		}
		sent++
	}

	notification.SentCount = sent
	notification.FailedCount = failed
	if err := ns.DB.Save(&notification).Error; err != nil {
		return nil, err
	}
	return &notification, nil
}

// TrackClick marks the matching recipient clicked exactly once. A second call
// for the same pair is a no-op and returns false.
func (ns *NotificationService) TrackClick(notificationID uint, deviceID string) (bool, error) {
	var recipient models.NotificationRecipient
	err := ns.DB.Where("notification_id = ? AND device_id = ? AND is_clicked = ?",
		notificationID, deviceID, false).First(&recipient).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	now := time.Now()
	recipient.IsClicked = true
	recipient.ClickedAt = &now
	if err := ns.DB.Save(&recipient).Error; err != nil {
		return false, err
	}
	return true, nil
}
