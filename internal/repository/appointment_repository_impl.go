package repository

import (
	"errors"
	"strings"
	"time"

	"go-clinic-appointment/internal/domain/entity"
	domainRepo "go-clinic-appointment/internal/domain/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type appointmentRepository struct{}

func NewAppointmentRepository() domainRepo.AppointmentRepository {
	return &appointmentRepository{}
}

func (r *appointmentRepository) Create(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Create(appointment).Error
}

func (r *appointmentRepository) FindByID(db *gorm.DB, id uuid.UUID) (*entity.Appointment, error) {
	var appointment entity.Appointment
	err := db.Preload("Doctor").Preload("Patient").Where("id = ?", id).First(&appointment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(db *gorm.DB, appointment *entity.Appointment) error {
	return db.Omit("Doctor", "Patient").Save(appointment).Error
}

// Delete hard-removes the appointment. Cancellation is a row deletion, not a
// status change; rows affected distinguishes success from already-gone.
func (r *appointmentRepository) Delete(db *gorm.DB, id uuid.UUID) (int64, error) {
	result := db.Where("id = ?", id).Delete(&entity.Appointment{})
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) UpdateStatus(db *gorm.DB, id uuid.UUID, status entity.AppointmentStatus) (int64, error) {
	result := db.Model(&entity.Appointment{}).
		Where("id = ?", id).
		Update("status", status)
	return result.RowsAffected, result.Error
}

func (r *appointmentRepository) FindByDoctorAndDateRange(db *gorm.DB, doctorID uuid.UUID, start, end time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Where("doctor_id = ? AND appointment_time BETWEEN ? AND ?", doctorID, start, end).
		Order("appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByDoctorPatientNameAndDateRange(db *gorm.DB, doctorID uuid.UUID, patientName string, start, end time.Time) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.
		Joins("JOIN patients ON patients.id = appointments.patient_id").
		Where("appointments.doctor_id = ? AND appointments.appointment_time BETWEEN ? AND ?", doctorID, start, end).
		Where("LOWER(patients.name) LIKE ?", "%"+strings.ToLower(patientName)+"%").
		Preload("Patient").
		Order("appointments.appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientID(db *gorm.DB, patientID uuid.UUID) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("Doctor").
		Where("patient_id = ?", patientID).
		Order("appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientIDAndStatus(db *gorm.DB, patientID uuid.UUID, status entity.AppointmentStatus) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.Preload("Doctor").
		Where("patient_id = ? AND status = ?", patientID, status).
		Order("appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientAndDoctorName(db *gorm.DB, patientID uuid.UUID, doctorName string) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.
		Joins("JOIN doctors ON doctors.id = appointments.doctor_id").
		Where("appointments.patient_id = ?", patientID).
		Where("LOWER(doctors.name) LIKE ?", "%"+strings.ToLower(doctorName)+"%").
		Preload("Doctor").
		Order("appointments.appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

func (r *appointmentRepository) FindByPatientDoctorNameAndStatus(db *gorm.DB, patientID uuid.UUID, doctorName string, status entity.AppointmentStatus) ([]entity.Appointment, error) {
	var appointments []entity.Appointment
	err := db.
		Joins("JOIN doctors ON doctors.id = appointments.doctor_id").
		Where("appointments.patient_id = ? AND appointments.status = ?", patientID, status).
		Where("LOWER(doctors.name) LIKE ?", "%"+strings.ToLower(doctorName)+"%").
		Preload("Doctor").
		Order("appointments.appointment_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, err
	}
	return appointments, nil
}

// DeleteAllByDoctorID removes every appointment of a doctor. Used when the
// doctor itself is deleted.
func (r *appointmentRepository) DeleteAllByDoctorID(db *gorm.DB, doctorID uuid.UUID) error {
	return db.Where("doctor_id = ?", doctorID).Delete(&entity.Appointment{}).Error
}
