package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus is persisted as an integer and must round-trip unchanged.
// Cancellation has no status: a cancelled appointment is a deleted row.
type AppointmentStatus int

const (
	AppointmentStatusScheduled  AppointmentStatus = 0
	AppointmentStatusCompleted  AppointmentStatus = 1
	AppointmentStatusPrescribed AppointmentStatus = 2
)

// Appointment links one patient to one doctor at a single timestamp.
// At most one non-cancelled appointment may exist per (doctor, start-hour,
// date) tuple.
type Appointment struct {
	ID              uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	DoctorID        uuid.UUID         `gorm:"type:uuid;not null;index" json:"doctor_id"`
	PatientID       uuid.UUID         `gorm:"type:uuid;not null;index" json:"patient_id"`
	AppointmentTime time.Time         `gorm:"not null;index" json:"appointment_time"`
	Status          AppointmentStatus `gorm:"not null;default:0;index" json:"status"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Doctor  Doctor  `gorm:"foreignKey:DoctorID" json:"doctor,omitempty"`
	Patient Patient `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsUpcoming reports whether the appointment time is strictly in the future.
func (a *Appointment) IsUpcoming() bool {
	return a.AppointmentTime.After(time.Now())
}

// IsScheduled checks if the appointment is still in its initial state.
func (a *Appointment) IsScheduled() bool {
	return a.Status == AppointmentStatusScheduled
}

// StartHour returns the two-digit start hour used for slot collision checks.
func (a *Appointment) StartHour() string {
	return HourOf(a.AppointmentTime)
}

// DateOf truncates a timestamp to its calendar date.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// DayRange returns the inclusive [00:00:00, 23:59:59.999999999] bounds of the
// date's day, used for per-day appointment range queries.
func DayRange(date time.Time) (time.Time, time.Time) {
	start := DateOf(date)
	end := start.Add(24*time.Hour - time.Nanosecond)
	return start, end
}
