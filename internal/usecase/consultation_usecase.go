package usecase

import (
	"context"
	"errors"
	"strconv"

	"telehealth-consult/internal/converter"
	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/domain/repository"
	"telehealth-consult/internal/service"

	"github.com/sirupsen/logrus"
)

var (
	ErrConsultationNotFound     = errors.New("consultation not found")
	ErrConsultationNotAvailable = errors.New("consultation is not available")
	ErrInvalidModality          = errors.New("modality must be chat or video")
	ErrInvalidStatus            = errors.New("status must be Processing, Available or Unavailable")
)

type ConsultationUsecase interface {
	CreateConsultation(ctx context.Context, session *entity.Session, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error)
	ListByPatient(ctx context.Context, session *entity.Session, modality entity.Modality) (*dto.ConsultationListResponse, error)
	ListByModality(ctx context.Context, session *entity.Session, modality entity.Modality) (*dto.ConsultationListResponse, error)
	GetConsultation(ctx context.Context, session *entity.Session, id int64) (*dto.ConsultationResponse, error)
	UpdateStatus(ctx context.Context, session *entity.Session, id int64, req *dto.UpdateConsultationStatusRequest) (*dto.ConsultationResponse, error)
}

type consultationUsecase struct {
	log              *logrus.Logger
	consultationRepo repository.ConsultationRepository
	auditService     service.AuditService
}

func NewConsultationUsecase(
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	auditService service.AuditService,
) ConsultationUsecase {
	return &consultationUsecase{
		log:              log,
		consultationRepo: consultationRepo,
		auditService:     auditService,
	}
}

func (u *consultationUsecase) CreateConsultation(ctx context.Context, session *entity.Session, req *dto.CreateConsultationRequest) (*dto.ConsultationResponse, error) {
	if !session.IsPatient() {
		return nil, ErrForbidden
	}

	modality := entity.Modality(req.Modality)
	if !modality.Valid() {
		return nil, ErrInvalidModality
	}

	consultation := &entity.Consultation{
		PatientID:  session.UserID,
		Modality:   modality,
		Symptoms:   req.Symptoms,
		History:    req.History,
		BloodGroup: req.BloodGroup,
		Comments:   req.Comments,
		Status:     entity.ConsultationStatusProcessing,
	}

	if err := u.consultationRepo.Create(ctx, consultation); err != nil {
		u.log.Warnf("Failed to create consultation: %+v", err)
		return nil, err
	}

	u.auditService.LogCreate(ctx, &session.UserID, entity.AuditActionConsultationCreate, "consultation",
		strconv.FormatInt(consultation.ID, 10), consultation)

	return converter.ConsultationToResponse(consultation), nil
}

func (u *consultationUsecase) ListByPatient(ctx context.Context, session *entity.Session, modality entity.Modality) (*dto.ConsultationListResponse, error) {
	if !session.IsPatient() {
		return nil, ErrForbidden
	}
	if !modality.Valid() {
		return nil, ErrInvalidModality
	}

	consultations, err := u.consultationRepo.FindByPatient(ctx, session.UserID, modality)
	if err != nil {
		u.log.Warnf("Failed to find consultations by patient: %+v", err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Total:         len(consultations),
	}, nil
}

func (u *consultationUsecase) ListByModality(ctx context.Context, session *entity.Session, modality entity.Modality) (*dto.ConsultationListResponse, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}
	if !modality.Valid() {
		return nil, ErrInvalidModality
	}

	consultations, err := u.consultationRepo.FindByModality(ctx, modality)
	if err != nil {
		u.log.Warnf("Failed to find consultations by modality: %+v", err)
		return nil, err
	}

	return &dto.ConsultationListResponse{
		Consultations: converter.ConsultationsToResponses(consultations),
		Total:         len(consultations),
	}, nil
}

func (u *consultationUsecase) GetConsultation(ctx context.Context, session *entity.Session, id int64) (*dto.ConsultationResponse, error) {
	consultation, err := findAccessibleConsultation(ctx, u.consultationRepo, session, id)
	if err != nil {
		if !errors.Is(err, ErrForbidden) && !errors.Is(err, ErrConsultationNotFound) {
			u.log.Warnf("Failed to find consultation: %+v", err)
		}
		return nil, err
	}

	return converter.ConsultationToResponse(consultation), nil
}

// UpdateStatus overwrites the status and doctor comments. Concurrent updates
// are not ordered, the last one to reach the store wins.
func (u *consultationUsecase) UpdateStatus(ctx context.Context, session *entity.Session, id int64, req *dto.UpdateConsultationStatusRequest) (*dto.ConsultationResponse, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}

	status := entity.ConsultationStatus(req.Status)
	if !status.Valid() {
		return nil, ErrInvalidStatus
	}

	consultation, err := u.consultationRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find consultation: %+v", err)
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}
	oldValue := map[string]interface{}{
		"status":          consultation.Status,
		"doctor_comments": consultation.DoctorComments,
	}

	affected, err := u.consultationRepo.UpdateStatus(ctx, id, status, req.DoctorComments)
	if err != nil {
		u.log.Warnf("Failed to update consultation status: %+v", err)
		return nil, err
	}
	if affected == 0 {
		return nil, ErrConsultationNotFound
	}

	consultation.Status = status
	consultation.DoctorComments = req.DoctorComments

	u.auditService.LogUpdate(ctx, &session.UserID, entity.AuditActionConsultationStatusUpdate, "consultation",
		strconv.FormatInt(id, 10), oldValue, map[string]interface{}{
			"status":          status,
			"doctor_comments": req.DoctorComments,
		})

	return converter.ConsultationToResponse(consultation), nil
}

// findAccessibleConsultation loads a consultation the caller may act on:
// admins see every consultation, patients only their own.
func findAccessibleConsultation(ctx context.Context, repo repository.ConsultationRepository, session *entity.Session, id int64) (*entity.Consultation, error) {
	if session == nil {
		return nil, ErrForbidden
	}

	consultation, err := repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if consultation == nil {
		return nil, ErrConsultationNotFound
	}

	if session.IsAdmin() {
		return consultation, nil
	}
	if session.IsPatient() && consultation.OwnedBy(session.UserID) {
		return consultation, nil
	}
	return nil, ErrForbidden
}
