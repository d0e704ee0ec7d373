package repository

import (
	"go-clinic-appointment/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PrescriptionRepository interface {
	Create(db *gorm.DB, prescription *entity.Prescription) error
	FindByAppointmentID(db *gorm.DB, appointmentID uuid.UUID) ([]entity.Prescription, error)
}
