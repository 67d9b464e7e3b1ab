package repository

import (
	"context"

	"telehealth-consult/internal/domain/entity"
	domainRepo "telehealth-consult/internal/domain/repository"

	"gorm.io/gorm"
)

type messageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) domainRepo.MessageRepository {
	return &messageRepository{db: db}
}

func (r *messageRepository) Create(ctx context.Context, message *entity.Message) error {
	return r.db.WithContext(ctx).Create(message).Error
}

// FindByConsultation lists the thread in send order. afterID > 0 skips
// everything the caller has already seen.
func (r *messageRepository) FindByConsultation(ctx context.Context, consultationID int64, afterID int64) ([]entity.Message, error) {
	var messages []entity.Message
	query := r.db.WithContext(ctx).Where("consultation_id = ?", consultationID)
	if afterID > 0 {
		query = query.Where("id > ?", afterID)
	}
	err := query.Order("created_at ASC, id ASC").Find(&messages).Error
	if err != nil {
		return nil, err
	}
	return messages, nil
}
