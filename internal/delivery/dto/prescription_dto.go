package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type SavePrescriptionRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
	PatientName   string    `json:"patient_name" validate:"required,min=3,max=255"`
	Medication    string    `json:"medication" validate:"required,min=2,max=255"`
	Dosage        string    `json:"dosage" validate:"required,min=1,max=100"`
	DoctorNotes   string    `json:"doctor_notes" validate:"omitempty,max=1000"`
}

// Response DTOs

type PrescriptionResponse struct {
	ID            uuid.UUID `json:"id"`
	AppointmentID uuid.UUID `json:"appointment_id"`
	PatientName   string    `json:"patient_name"`
	Medication    string    `json:"medication"`
	Dosage        string    `json:"dosage"`
	DoctorNotes   string    `json:"doctor_notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

type PrescriptionListResponse struct {
	Prescriptions []PrescriptionResponse `json:"prescriptions"`
	Total         int                    `json:"total"`
}
