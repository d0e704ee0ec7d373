package entity

import (
	"time"

	"github.com/google/uuid"
)

// Prescription is the record a doctor issues against an appointment. Saving
// one moves the appointment to AppointmentStatusPrescribed.
type Prescription struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AppointmentID uuid.UUID `gorm:"type:uuid;not null;index" json:"appointment_id"`
	PatientName   string    `gorm:"type:varchar(255);not null" json:"patient_name"`
	Medication    string    `gorm:"type:varchar(255);not null" json:"medication"`
	Dosage        string    `gorm:"type:varchar(100);not null" json:"dosage"`
	DoctorNotes   string    `gorm:"type:text" json:"doctor_notes,omitempty"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`

	// Relationships
	Appointment Appointment `gorm:"foreignKey:AppointmentID" json:"appointment,omitempty"`
}

func (Prescription) TableName() string {
	return "prescriptions"
}
