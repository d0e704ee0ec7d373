package usecase

import (
	"context"
	"time"

	"go-clinic-appointment/internal/domain/entity"
	"go-clinic-appointment/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// SlotValidation classifies a requested appointment time against current
// availability. The check is advisory at read time; the write-time guarantee
// is enforced by AppointmentUsecase re-deriving availability before persist.
type SlotValidation int

const (
	SlotValid SlotValidation = iota
	SlotUnavailable
	DoctorUnknown
)

type AvailabilityUsecase interface {
	GetDoctorAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error)
	ValidateAppointment(ctx context.Context, doctorID uuid.UUID, at time.Time) (SlotValidation, error)
}

type availabilityUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
}

func NewAvailabilityUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
) AvailabilityUsecase {
	return &availabilityUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
	}
}

// GetDoctorAvailability returns the doctor's template slots not yet consumed
// by an appointment on the given date, in template order. An unknown doctor
// yields an empty list, not an error. Collision is hour-granular: a booked
// appointment consumes the template slot sharing its two-digit start hour.
func (u *availabilityUsecase) GetDoctorAvailability(ctx context.Context, doctorID uuid.UUID, date time.Time) ([]string, error) {
	db := u.db.WithContext(ctx)
	return availableSlots(db, u.log, u.doctorRepo, u.appointmentRepo, doctorID, date)
}

// ValidateAppointment checks whether the requested time lands on a free slot
// of the doctor on that date.
func (u *availabilityUsecase) ValidateAppointment(ctx context.Context, doctorID uuid.UUID, at time.Time) (SlotValidation, error) {
	db := u.db.WithContext(ctx)
	return validateSlot(db, u.log, u.doctorRepo, u.appointmentRepo, doctorID, at)
}

// availableSlots is the shared derivation. It takes the db handle explicitly
// so lifecycle operations can run it inside their own transaction.
func availableSlots(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	doctorID uuid.UUID,
	date time.Time,
) ([]string, error) {
	doctor, err := doctorRepo.FindByID(db, doctorID)
	if err != nil {
		log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return []string{}, nil
	}

	start, end := entity.DayRange(date)
	booked, err := appointmentRepo.FindByDoctorAndDateRange(db, doctorID, start, end)
	if err != nil {
		log.Warnf("Failed to find appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	busy := make(map[string]bool, len(booked))
	for _, appointment := range booked {
		busy[appointment.StartHour()] = true
	}

	free := make([]string, 0, len(doctor.AvailableTimes))
	for _, slot := range doctor.AvailableTimes {
		if !busy[entity.SlotHour(slot)] {
			free = append(free, slot)
		}
	}
	return free, nil
}

func validateSlot(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	doctorID uuid.UUID,
	at time.Time,
) (SlotValidation, error) {
	doctor, err := doctorRepo.FindByID(db, doctorID)
	if err != nil {
		log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return SlotUnavailable, err
	}
	if doctor == nil {
		return DoctorUnknown, nil
	}

	free, err := availableSlots(db, log, doctorRepo, appointmentRepo, doctorID, at)
	if err != nil {
		return SlotUnavailable, err
	}

	hour := entity.HourOf(at)
	for _, slot := range free {
		if entity.SlotHour(slot) == hour {
			return SlotValid, nil
		}
	}
	return SlotUnavailable, nil
}
