package models

import "time"

// DeviceToken is one registered push target. Token is unique: re-registering
// the same token updates the owning device instead of inserting a duplicate.
type DeviceToken struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	DeviceID  string    `gorm:"type:varchar(255);not null;index" json:"device_id"`
	Token     string    `gorm:"type:varchar(500);not null;uniqueIndex" json:"token"`
	IsAdmin   bool      `gorm:"not null;default:false;index" json:"is_admin"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// Notification is a single broadcast with delivery counters.
type Notification struct {
	ID          uint                    `gorm:"primaryKey" json:"id"`
	Title       string                  `gorm:"type:varchar(255);not null" json:"title"`
	Message     string                  `gorm:"type:text;not null" json:"message"`
	SentCount   int                     `gorm:"not null;default:0" json:"sent_count"`
	FailedCount int                     `gorm:"not null;default:0" json:"failed_count"`
	CreatedAt   time.Time               `gorm:"not null" json:"created_at"`
	Recipients  []NotificationRecipient `gorm:"foreignKey:NotificationID;constraint:OnDelete:CASCADE" json:"-"`
}

// NotificationRecipient is one (notification, device) delivery record.
// DeviceTokenID is nullable so that removing a dead token does not lose
// the delivery history.
type NotificationRecipient struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	NotificationID uint       `gorm:"not null;index" json:"notification_id"`
	DeviceID       string     `gorm:"type:varchar(255);not null;index" json:"device_id"`
	DeviceTokenID  *uint      `json:"device_token_id,omitempty"`
	SentAt         time.Time  `gorm:"not null" json:"sent_at"`
	ClickedAt      *time.Time `json:"clicked_at,omitempty"`
	IsClicked      bool       `gorm:"not null;default:false" json:"is_clicked"`
}
