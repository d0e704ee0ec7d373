package service

import (
	"context"

	"go-clinic-appointment/internal/domain/entity"
	"go-clinic-appointment/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuditService writes the audit trail for clinic mutations. Failures are
// logged and reported but callers treat them as non-fatal: a lost audit row
// never rolls back the business write.
type AuditService interface {
	LogAction(ctx context.Context, tx *gorm.DB, actorID *uuid.UUID, action string, entityName string, entityID string, detail interface{}) error
}

type auditService struct {
	db        *gorm.DB
	log       *logrus.Logger
	auditRepo repository.AuditLogRepository
}

func NewAuditService(db *gorm.DB, log *logrus.Logger, auditRepo repository.AuditLogRepository) AuditService {
	return &auditService{
		db:        db,
		log:       log,
		auditRepo: auditRepo,
	}
}

func (s *auditService) LogAction(ctx context.Context, tx *gorm.DB, actorID *uuid.UUID, action string, entityName string, entityID string, detail interface{}) error {
	metadata := entity.JSON{
		"entity":    entityName,
		"entity_id": entityID,
		"detail":    detail,
	}

	auditLog := &entity.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Metadata: metadata,
	}

	if err := s.auditRepo.Create(tx, auditLog); err != nil {
		s.log.Warnf("Failed to create audit log: %+v", err)
		return err
	}

	return nil
}
