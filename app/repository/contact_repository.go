package repository

import (
	"context"

	"ecolibres-backend/app/model"

	"gorm.io/gorm"
)

// ContactRepository menyimpan pesan form kontak ke PostgreSQL.
type ContactRepository interface {
	Create(ctx context.Context, msg *model.ContactMessage) error
	UpdateDelivery(ctx context.Context, msg *model.ContactMessage) error
	Ping(ctx context.Context) error
}

type contactRepository struct {
	db *gorm.DB
}

// NewContactRepository membuat instance baru contactRepository.
func NewContactRepository(db *gorm.DB) ContactRepository {
	return &contactRepository{db}
}

func (r *contactRepository) Create(ctx context.Context, msg *model.ContactMessage) error {
	return r.db.WithContext(ctx).Create(msg).Error
}

// UpdateDelivery mencatat hasil pengiriman email (email_sent, email_error).
func (r *contactRepository) UpdateDelivery(ctx context.Context, msg *model.ContactMessage) error {
	return r.db.WithContext(ctx).
		Model(&model.ContactMessage{}).
		Where("id = ?", msg.ID).
		Updates(map[string]any{
			"email_sent":  msg.EmailSent,
			"email_error": msg.EmailError,
		}).Error
}

func (r *contactRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
