package repository

import (
	"context"

	"telehealth-consult/internal/domain/entity"
)

type MessageRepository interface {
	Create(ctx context.Context, message *entity.Message) error
	FindByConsultation(ctx context.Context, consultationID int64, afterID int64) ([]entity.Message, error)
}
