package models

import "time"

type Product struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description string    `gorm:"type:text;not null" json:"description"`
	Price       float64   `gorm:"type:decimal(10,2);not null" json:"price"`
	Unit        string    `gorm:"type:varchar(50);not null;default:'kg'" json:"unit"`
	Icon        string    `gorm:"type:varchar(100);not null" json:"icon"`
	ImageURL    *string   `gorm:"type:varchar(500)" json:"image_url,omitempty"`
	Available   bool      `gorm:"not null;default:true" json:"available"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}
