package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request DTOs

type CreateDoctorRequest struct {
	Name            string   `json:"name" validate:"required,min=3,max=255"`
	Specialty       string   `json:"specialty" validate:"required,min=3,max=100"`
	Email           string   `json:"email" validate:"required,email"`
	Password        string   `json:"password" validate:"required,min=8"`
	Phone           string   `json:"phone" validate:"omitempty,min=8,max=20"`
	ConsultationFee string   `json:"consultation_fee" validate:"omitempty"`
	AvailableTimes  []string `json:"available_times" validate:"required,min=1,dive,timeslot"`
}

type UpdateDoctorRequest struct {
	Name            string   `json:"name" validate:"omitempty,min=3,max=255"`
	Specialty       string   `json:"specialty" validate:"omitempty,min=3,max=100"`
	Phone           string   `json:"phone" validate:"omitempty,min=8,max=20"`
	ConsultationFee string   `json:"consultation_fee" validate:"omitempty"`
	AvailableTimes  []string `json:"available_times" validate:"omitempty,min=1,dive,timeslot"`
}

// Response DTOs

type DoctorResponse struct {
	ID              uuid.UUID       `json:"id"`
	Name            string          `json:"name"`
	Specialty       string          `json:"specialty"`
	Email           string          `json:"email"`
	Phone           string          `json:"phone,omitempty"`
	ConsultationFee decimal.Decimal `json:"consultation_fee"`
	AvailableTimes  []string        `json:"available_times"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

type DoctorListResponse struct {
	Doctors []DoctorResponse `json:"doctors"`
	Total   int              `json:"total"`
}
