package usecase

import (
	"context"
	"errors"
	"strconv"
	"time"

	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/domain/repository"
	"telehealth-consult/internal/media"
	"telehealth-consult/internal/service"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var ErrInvalidRecordingRole = errors.New("recording role must be doctor or patient")

type RecordingUsecase interface {
	RecordFixedDuration(ctx context.Context, session *entity.Session, consultationID int64, duration time.Duration) (*dto.RecordingResponse, error)
	FetchIfExists(ctx context.Context, session *entity.Session, consultationID int64, role entity.RecordingRole) (*entity.MediaRecording, error)
	Status(ctx context.Context, session *entity.Session, consultationID int64) (*dto.RecordingStatusResponse, error)
}

type RecordingOptions struct {
	DefaultDuration time.Duration
	MaxDuration     time.Duration
}

type recordingUsecase struct {
	log              *logrus.Logger
	consultationRepo repository.ConsultationRepository
	store            *media.Store
	auditService     service.AuditService
	opts             RecordingOptions
}

func NewRecordingUsecase(
	log *logrus.Logger,
	consultationRepo repository.ConsultationRepository,
	store *media.Store,
	auditService service.AuditService,
	opts RecordingOptions,
) RecordingUsecase {
	if opts.DefaultDuration <= 0 {
		opts.DefaultDuration = media.DefaultDuration
	}
	return &recordingUsecase{
		log:              log,
		consultationRepo: consultationRepo,
		store:            store,
		auditService:     auditService,
		opts:             opts,
	}
}

// RecordFixedDuration captures the caller's side of a video consultation.
// It blocks for up to duration and stops early when ctx is cancelled.
func (u *recordingUsecase) RecordFixedDuration(ctx context.Context, session *entity.Session, consultationID int64, duration time.Duration) (*dto.RecordingResponse, error) {
	consultation, err := u.findVideoConsultation(ctx, session, consultationID)
	if err != nil {
		return nil, err
	}
	if session.IsPatient() && !consultation.IsAvailable() {
		return nil, ErrConsultationNotAvailable
	}

	if duration <= 0 {
		duration = u.opts.DefaultDuration
	}
	if u.opts.MaxDuration > 0 && duration > u.opts.MaxDuration {
		duration = u.opts.MaxDuration
	}

	role := session.Role.RecordingSide()
	if err := u.store.Record(ctx, consultationID, role, duration); err != nil {
		if !errors.Is(err, media.ErrCaptureCancelled) {
			u.log.Warnf("Failed to record consultation %d: %+v", consultationID, err)
		}
		return nil, err
	}

	recording, err := u.store.Fetch(consultationID, role)
	if err != nil {
		u.log.Warnf("Failed to read recording: %+v", err)
		return nil, err
	}
	size := 0
	if recording != nil {
		size = len(recording.Data)
	}

	u.auditService.LogCreate(ctx, &session.UserID, entity.AuditActionRecordingCreate, "recording",
		strconv.FormatInt(consultationID, 10), map[string]interface{}{
			"role":     role,
			"duration": duration.String(),
			"size":     size,
		})

	return &dto.RecordingResponse{
		ConsultationID: consultationID,
		Role:           string(role),
		Size:           size,
	}, nil
}

// FetchIfExists returns nil, nil when the side has not been recorded yet.
func (u *recordingUsecase) FetchIfExists(ctx context.Context, session *entity.Session, consultationID int64, role entity.RecordingRole) (*entity.MediaRecording, error) {
	if !role.Valid() {
		return nil, ErrInvalidRecordingRole
	}
	if _, err := u.findVideoConsultation(ctx, session, consultationID); err != nil {
		return nil, err
	}

	recording, err := u.store.Fetch(consultationID, role)
	if err != nil {
		u.log.Warnf("Failed to read recording: %+v", err)
		return nil, err
	}
	return recording, nil
}

// Status reports which sides of a consultation have been recorded.
func (u *recordingUsecase) Status(ctx context.Context, session *entity.Session, consultationID int64) (*dto.RecordingStatusResponse, error) {
	if _, err := u.findVideoConsultation(ctx, session, consultationID); err != nil {
		return nil, err
	}

	res := &dto.RecordingStatusResponse{ConsultationID: consultationID}
	var g errgroup.Group
	g.Go(func() error {
		ok, err := u.store.Exists(consultationID, entity.RecordingRoleDoctor)
		res.Doctor = ok
		return err
	})
	g.Go(func() error {
		ok, err := u.store.Exists(consultationID, entity.RecordingRolePatient)
		res.Patient = ok
		return err
	})
	if err := g.Wait(); err != nil {
		u.log.Warnf("Failed to check recordings: %+v", err)
		return nil, err
	}

	return res, nil
}

func (u *recordingUsecase) findVideoConsultation(ctx context.Context, session *entity.Session, consultationID int64) (*entity.Consultation, error) {
	consultation, err := findAccessibleConsultation(ctx, u.consultationRepo, session, consultationID)
	if err != nil {
		if !errors.Is(err, ErrForbidden) && !errors.Is(err, ErrConsultationNotFound) {
			u.log.Warnf("Failed to find consultation: %+v", err)
		}
		return nil, err
	}
	if consultation.Modality != entity.ModalityVideo {
		return nil, ErrInvalidModality
	}
	return consultation, nil
}
