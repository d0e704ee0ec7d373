package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

type BookAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" validate:"required"`
	AppointmentTime time.Time `json:"appointment_time" validate:"required"`
}

type UpdateAppointmentRequest struct {
	DoctorID        uuid.UUID `json:"doctor_id" validate:"required"`
	AppointmentTime time.Time `json:"appointment_time" validate:"required"`
}

// Response DTOs

type AppointmentResponse struct {
	ID              uuid.UUID `json:"id"`
	DoctorID        uuid.UUID `json:"doctor_id"`
	DoctorName      string    `json:"doctor_name,omitempty"`
	PatientID       uuid.UUID `json:"patient_id"`
	PatientName     string    `json:"patient_name,omitempty"`
	PatientEmail    string    `json:"patient_email,omitempty"`
	PatientPhone    string    `json:"patient_phone,omitempty"`
	AppointmentTime time.Time `json:"appointment_time"`
	Status          int       `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}

type AvailabilityResponse struct {
	DoctorID       uuid.UUID `json:"doctor_id"`
	Date           string    `json:"date"`
	AvailableSlots []string  `json:"available_slots"`
}
