package usecase

import (
	"context"
	"errors"

	"telehealth-consult/internal/converter"
	"telehealth-consult/internal/delivery/dto"
	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/domain/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrAuditLogNotFound = errors.New("audit log not found")
)

type AuditLogUsecase interface {
	GetAllAuditLogs(ctx context.Context, session *entity.Session) (*dto.AuditLogListResponse, error)
	GetAuditLog(ctx context.Context, session *entity.Session, id int64) (*dto.AuditLogResponse, error)
}

type auditLogUsecase struct {
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditLogUsecase(
	log *logrus.Logger,
	auditLogRepo repository.AuditLogRepository,
) AuditLogUsecase {
	return &auditLogUsecase{
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (u *auditLogUsecase) GetAllAuditLogs(ctx context.Context, session *entity.Session) (*dto.AuditLogListResponse, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}

	logs, err := u.auditLogRepo.FindAll(ctx)
	if err != nil {
		u.log.Warnf("Failed to find all audit logs: %+v", err)
		return nil, err
	}

	return &dto.AuditLogListResponse{
		Logs:  converter.AuditLogsToResponses(logs),
		Total: len(logs),
	}, nil
}

func (u *auditLogUsecase) GetAuditLog(ctx context.Context, session *entity.Session, id int64) (*dto.AuditLogResponse, error) {
	if !session.IsAdmin() {
		return nil, ErrForbidden
	}

	auditLog, err := u.auditLogRepo.FindByID(ctx, id)
	if err != nil {
		u.log.Warnf("Failed to find audit log: %+v", err)
		return nil, err
	}
	if auditLog == nil {
		return nil, ErrAuditLogNotFound
	}

	return converter.AuditLogToResponse(auditLog), nil
}
