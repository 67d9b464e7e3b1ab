package repository

import (
	"context"
	"errors"

	"telehealth-consult/internal/domain/entity"
	domainRepo "telehealth-consult/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type consultationRepository struct {
	db *gorm.DB
}

func NewConsultationRepository(db *gorm.DB) domainRepo.ConsultationRepository {
	return &consultationRepository{db: db}
}

func (r *consultationRepository) Create(ctx context.Context, consultation *entity.Consultation) error {
	return r.db.WithContext(ctx).Omit("Patient").Create(consultation).Error
}

func (r *consultationRepository) FindByID(ctx context.Context, id int64) (*entity.Consultation, error) {
	var consultation entity.Consultation
	err := r.db.WithContext(ctx).Preload("Patient").Where("id = ?", id).First(&consultation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &consultation, nil
}

// FindByPatient returns the patient's consultations oldest first.
func (r *consultationRepository) FindByPatient(ctx context.Context, patientID uuid.UUID, modality entity.Modality) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	err := r.db.WithContext(ctx).
		Where("patient_id = ? AND modality = ?", patientID, modality).
		Order("id ASC").
		Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

func (r *consultationRepository) FindByModality(ctx context.Context, modality entity.Modality) ([]entity.Consultation, error) {
	var consultations []entity.Consultation
	err := r.db.WithContext(ctx).
		Preload("Patient").
		Where("modality = ?", modality).
		Order("id ASC").
		Find(&consultations).Error
	if err != nil {
		return nil, err
	}
	return consultations, nil
}

// UpdateStatus overwrites status and doctor comments without looking at the
// previous status. Returns affected rows: 0 means the consultation does not exist.
func (r *consultationRepository) UpdateStatus(ctx context.Context, id int64, status entity.ConsultationStatus, doctorComments *string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&entity.Consultation{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":          status,
			"doctor_comments": doctorComments,
		})
	return result.RowsAffected, result.Error
}
