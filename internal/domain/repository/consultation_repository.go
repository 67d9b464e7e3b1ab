package repository

import (
	"context"

	"telehealth-consult/internal/domain/entity"

	"github.com/google/uuid"
)

type ConsultationRepository interface {
	Create(ctx context.Context, consultation *entity.Consultation) error
	FindByID(ctx context.Context, id int64) (*entity.Consultation, error)
	FindByPatient(ctx context.Context, patientID uuid.UUID, modality entity.Modality) ([]entity.Consultation, error)
	FindByModality(ctx context.Context, modality entity.Modality) ([]entity.Consultation, error)
	UpdateStatus(ctx context.Context, id int64, status entity.ConsultationStatus, doctorComments *string) (int64, error)
}
