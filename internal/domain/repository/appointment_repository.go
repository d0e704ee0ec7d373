package repository

import (
	"time"

	"go-clinic-appointment/internal/domain/entity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AppointmentRepository interface {
	Create(db *gorm.DB, appointment *entity.Appointment) error
	FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error)
	Update(db *gorm.DB, appointment *entity.Appointment) error
	Delete(db *gorm.DB, id uuid.UUID) (int64, error)
	UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error)

	FindByDoctorAndDateRange(db *gorm.DB, doctorID uuid.UUID, start, end time.Time) ([]entity.Appointment, error)
	FindByDoctorPatientNameAndDateRange(db *gorm.DB, doctorID uuid.UUID, patientName string, start, end time.Time) ([]entity.Appointment, error)
	FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error)
	FindByPatientIDAndStatus(db *gorm.DB, patientID uuid.UUID, status entity.AppointmentStatus) ([]entity.Appointment, error)
	FindByPatientAndDoctorName(db *gorm.DB, patientID uuid.UUID, doctorName string) ([]entity.Appointment, error)
	FindByPatientDoctorNameAndStatus(db *gorm.DB, patientID uuid.UUID, doctorName string, status entity.AppointmentStatus) ([]entity.Appointment, error)
	DeleteAllByDoctorID(db *gorm.DB, doctorID uuid.UUID) error
}
