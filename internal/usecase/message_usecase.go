package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"telehealth-consult/internal/converter"
	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/domain/repository"
	"telehealth-consult/internal/service"

	"github.com/sirupsen/logrus"
)

var ErrEmptyMessage = errors.New("message body must not be blank")

// DefaultPollTimeout bounds WaitForMessages when no timeout is configured.
const DefaultPollTimeout = 25 * time.Second

type MessageUsecase interface {
	Append(ctx context.Context, session *entity.Session, consultationID int64, body string) (*dto.MessageResponse, error)
	ListByConsultation(ctx context.Context, session *entity.Session, consultationID int64, afterID int64) (*dto.MessageListResponse, error)
	WaitForMessages(ctx context.Context, session *entity.Session, consultationID int64, afterID int64, timeout time.Duration) (*dto.MessageListResponse, error)
}

type messageUsecase struct {
	log              *logrus.Logger
	messageRepo      repository.MessageRepository
	consultationRepo repository.ConsultationRepository
	notifier         service.MessageNotifier
	pollTimeout      time.Duration
}

func NewMessageUsecase(
	log *logrus.Logger,
	messageRepo repository.MessageRepository,
	consultationRepo repository.ConsultationRepository,
	notifier service.MessageNotifier,
	pollTimeout time.Duration,
) MessageUsecase {
	if pollTimeout <= 0 {
		pollTimeout = DefaultPollTimeout
	}
	return &messageUsecase{
		log:              log,
		messageRepo:      messageRepo,
		consultationRepo: consultationRepo,
		notifier:         notifier,
		pollTimeout:      pollTimeout,
	}
}

// Append stores a message on an open chat consultation. The sender label comes
// from the caller's role: admins write as the doctor.
func (u *messageUsecase) Append(ctx context.Context, session *entity.Session, consultationID int64, body string) (*dto.MessageResponse, error) {
	if strings.TrimSpace(body) == "" {
		return nil, ErrEmptyMessage
	}

	consultation, err := u.findConsultation(ctx, session, consultationID)
	if err != nil {
		return nil, err
	}
	if consultation.Modality != entity.ModalityChat {
		return nil, ErrInvalidModality
	}
	if !consultation.IsAvailable() {
		return nil, ErrConsultationNotAvailable
	}

	msg := &entity.Message{
		ConsultationID: consultationID,
		Sender:         session.Role.MessageSender(),
		Body:           body,
	}
	if err := u.messageRepo.Create(ctx, msg); err != nil {
		u.log.Warnf("Failed to create message: %+v", err)
		return nil, err
	}

	// Readers still see the message on their next poll if the publish is lost.
	if err := u.notifier.Publish(ctx, msg); err != nil {
		u.log.Warnf("Failed to publish message %d: %+v", msg.ID, err)
	}

	return converter.MessageToResponse(msg), nil
}

func (u *messageUsecase) ListByConsultation(ctx context.Context, session *entity.Session, consultationID int64, afterID int64) (*dto.MessageListResponse, error) {
	if _, err := u.findConsultation(ctx, session, consultationID); err != nil {
		return nil, err
	}

	messages, err := u.messageRepo.FindByConsultation(ctx, consultationID, afterID)
	if err != nil {
		u.log.Warnf("Failed to find messages: %+v", err)
		return nil, err
	}

	return converter.MessagesToListResponse(messages, afterID), nil
}

// WaitForMessages returns as soon as the thread holds a message newer than
// afterID, or an empty page once timeout elapses. The timeout is capped at the
// configured poll timeout.
func (u *messageUsecase) WaitForMessages(ctx context.Context, session *entity.Session, consultationID int64, afterID int64, timeout time.Duration) (*dto.MessageListResponse, error) {
	if timeout <= 0 || timeout > u.pollTimeout {
		timeout = u.pollTimeout
	}

	page, err := u.ListByConsultation(ctx, session, consultationID, afterID)
	if err != nil || page.Total > 0 {
		return page, err
	}

	sub, err := u.notifier.Subscribe(ctx, consultationID)
	if err != nil {
		u.log.Warnf("Failed to subscribe to consultation %d: %+v", consultationID, err)
		return nil, err
	}
	defer sub.Close()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		// A message appended between the first read and the subscription is
		// only visible through the store.
		messages, err := u.messageRepo.FindByConsultation(ctx, consultationID, afterID)
		if err != nil {
			u.log.Warnf("Failed to find messages: %+v", err)
			return nil, err
		}
		if len(messages) > 0 {
			return converter.MessagesToListResponse(messages, afterID), nil
		}

		select {
		case <-sub.C():
		case <-timer.C:
			return converter.MessagesToListResponse(nil, afterID), nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (u *messageUsecase) findConsultation(ctx context.Context, session *entity.Session, consultationID int64) (*entity.Consultation, error) {
	consultation, err := findAccessibleConsultation(ctx, u.consultationRepo, session, consultationID)
	if err != nil {
		if !errors.Is(err, ErrForbidden) && !errors.Is(err, ErrConsultationNotFound) {
			u.log.Warnf("Failed to find consultation: %+v", err)
		}
		return nil, err
	}
	return consultation, nil
}
