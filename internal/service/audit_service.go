package service

import (
	"context"

	"telehealth-consult/internal/domain/entity"
	"telehealth-consult/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditService records audit entries on a best-effort basis. A failed write
// is logged and never fails the operation being audited.
type AuditService interface {
	LogCreate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{})
	LogUpdate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{})
	LogEvent(ctx context.Context, userID *uuid.UUID, action string, metadata entity.JSON)
}

type auditService struct {
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		log:       log,
		auditRepo: auditRepo,
	}
}

// LogCreate logs a create action
func (s *auditService) LogCreate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, newValue interface{}) {
	s.LogEvent(ctx, userID, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": nil,
		"new_value": newValue,
	})
}

// LogUpdate logs an update action with old and new values
func (s *auditService) LogUpdate(ctx context.Context, userID *uuid.UUID, action string, entityName string, entityID string, oldValue, newValue interface{}) {
	s.LogEvent(ctx, userID, action, entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"old_value": oldValue,
		"new_value": newValue,
	})
}

// LogEvent logs an action that does not change a stored entity, like a login.
func (s *auditService) LogEvent(ctx context.Context, userID *uuid.UUID, action string, metadata entity.JSON) {
	auditLog := &entity.AuditLog{
		UserID:   userID,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(ctx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
	}
}
