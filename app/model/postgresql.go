package model

import (
	"time"

	"github.com/google/uuid"
)

// ContactMessage menyimpan pesan dari form kontak (tabel contact_messages).
type ContactMessage struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name       string    `gorm:"type:varchar(200);not null"`
	Email      string    `gorm:"type:varchar(320);not null;index"`
	Subject    string    `gorm:"type:varchar(300)"`
	Message    string    `gorm:"type:text;not null"`
	EmailSent  bool      `gorm:"default:false"`
	EmailError *string   // pesan error EmailJS jika pengiriman gagal
	CreatedAt  time.Time `gorm:"autoCreateTime"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime"`
}
