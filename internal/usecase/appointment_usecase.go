package usecase

import (
	"context"
	"errors"
	"time"

	"go-clinic-appointment/internal/converter"
	"go-clinic-appointment/internal/delivery/dto"
	"go-clinic-appointment/internal/delivery/http/middleware"
	"go-clinic-appointment/internal/domain/entity"
	"go-clinic-appointment/internal/domain/repository"
	"go-clinic-appointment/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	ErrDoctorNotFound          = errors.New("doctor not found")
	ErrPatientNotFound         = errors.New("patient not found")
	ErrAppointmentNotFound     = errors.New("appointment not found")
	ErrSlotUnavailable         = errors.New("requested slot is not available")
	ErrNotAppointmentOwner     = errors.New("appointment does not belong to you")
	ErrAppointmentNotUpdatable = errors.New("appointment can no longer be changed")
)

type AppointmentUsecase interface {
	Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error)
	Update(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error)
	Cancel(ctx context.Context, appointmentID uuid.UUID) error
	ChangeStatus(ctx context.Context, appointmentID uuid.UUID, status entity.AppointmentStatus) error
	GetDoctorAppointments(ctx context.Context, doctorID uuid.UUID, patientName string, date time.Time) (*dto.AppointmentListResponse, error)
}

type appointmentUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	slotLock        *service.SlotLockService
	auditService    service.AuditService
}

func NewAppointmentUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	slotLock *service.SlotLockService,
	auditService service.AuditService,
) AppointmentUsecase {
	return &appointmentUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		slotLock:        slotLock,
		auditService:    auditService,
	}
}

// Book creates an appointment for the logged-in patient.
//
// Flow:
// 1. Resolve the caller to a patient row
// 2. Acquire the (doctor, date) slot lock
// 3. Open a transaction and re-derive availability inside it
// 4. Insert with status Scheduled and commit
//
// The lock is held across validation and insert so two concurrent requests
// for the same doctor-hour serialize: the second one re-validates after the
// first commit and sees the slot taken.
func (u *appointmentUsecase) Book(ctx context.Context, req *dto.BookAppointmentRequest) (*dto.AppointmentResponse, error) {
	identity, ok := middleware.GetIdentityFromContext(ctx)
	if !ok {
		return nil, errors.New("identity not found in context")
	}

	patient, err := u.patientRepo.FindByEmail(u.db.WithContext(ctx), identity.Email)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", identity.Email, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	unlock := u.slotLock.Lock(req.DoctorID, req.AppointmentTime)
	defer unlock()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	verdict, err := validateSlot(tx, u.log, u.doctorRepo, u.appointmentRepo, req.DoctorID, req.AppointmentTime)
	if err != nil {
		return nil, err
	}
	switch verdict {
	case DoctorUnknown:
		return nil, ErrDoctorNotFound
	case SlotUnavailable:
		return nil, ErrSlotUnavailable
	}

	appointment := &entity.Appointment{
		ID:              uuid.New(),
		DoctorID:        req.DoctorID,
		PatientID:       patient.ID,
		AppointmentTime: req.AppointmentTime,
		Status:          entity.AppointmentStatusScheduled,
	}

	if err := u.appointmentRepo.Create(tx, appointment); err != nil {
		u.log.Warnf("Failed to create appointment: %+v", err)
		return nil, err
	}

	u.auditService.LogAction(ctx, tx, &patient.ID, entity.AuditActionAppointmentBook, "appointment", appointment.ID.String(), entity.JSON{
		"doctor_id":        req.DoctorID.String(),
		"appointment_time": req.AppointmentTime,
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit appointment booking: %+v", err)
		return nil, err
	}

	u.log.Infof("Appointment booked: id=%s, doctor=%s, patient=%s, time=%s",
		appointment.ID, req.DoctorID, patient.ID, req.AppointmentTime.Format(time.RFC3339))

	full, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointment.ID)
	if err != nil || full == nil {
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

// Update moves an upcoming appointment of the logged-in patient to a new
// doctor and/or time. An appointment someone else owns is reported as not
// found, never as forbidden, so callers cannot probe other patients' ids.
func (u *appointmentUsecase) Update(ctx context.Context, appointmentID uuid.UUID, req *dto.UpdateAppointmentRequest) (*dto.AppointmentResponse, error) {
	identity, ok := middleware.GetIdentityFromContext(ctx)
	if !ok {
		return nil, errors.New("identity not found in context")
	}

	patient, err := u.patientRepo.FindByEmail(u.db.WithContext(ctx), identity.Email)
	if err != nil {
		u.log.Warnf("Failed to find patient %s: %+v", identity.Email, err)
		return nil, err
	}
	if patient == nil {
		return nil, ErrPatientNotFound
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil || appointment.PatientID != patient.ID {
		return nil, ErrAppointmentNotFound
	}
	if !appointment.IsUpcoming() || !appointment.IsScheduled() {
		return nil, ErrAppointmentNotUpdatable
	}

	// The appointment keeps its own slot while being moved. When doctor,
	// date and hour are all unchanged the target slot is the one this
	// appointment already occupies, so the collision check must be skipped
	// or the move would always conflict with itself.
	sameSlot := appointment.DoctorID == req.DoctorID &&
		entity.DateOf(appointment.AppointmentTime).Equal(entity.DateOf(req.AppointmentTime)) &&
		appointment.StartHour() == entity.HourOf(req.AppointmentTime)

	unlock := u.slotLock.Lock(req.DoctorID, req.AppointmentTime)
	defer unlock()

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if sameSlot {
		doctor, err := u.doctorRepo.FindByID(tx, req.DoctorID)
		if err != nil {
			return nil, err
		}
		if doctor == nil {
			return nil, ErrDoctorNotFound
		}
	} else {
		verdict, err := validateSlot(tx, u.log, u.doctorRepo, u.appointmentRepo, req.DoctorID, req.AppointmentTime)
		if err != nil {
			return nil, err
		}
		switch verdict {
		case DoctorUnknown:
			return nil, ErrDoctorNotFound
		case SlotUnavailable:
			return nil, ErrSlotUnavailable
		}
	}

	appointment.DoctorID = req.DoctorID
	appointment.AppointmentTime = req.AppointmentTime

	if err := u.appointmentRepo.Update(tx, appointment); err != nil {
		u.log.Warnf("Failed to update appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	u.auditService.LogAction(ctx, tx, &patient.ID, entity.AuditActionAppointmentUpdate, "appointment", appointment.ID.String(), entity.JSON{
		"doctor_id":        req.DoctorID.String(),
		"appointment_time": req.AppointmentTime,
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit appointment update: %+v", err)
		return nil, err
	}

	full, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointment.ID)
	if err != nil || full == nil {
		return converter.AppointmentToResponse(appointment), nil
	}
	return converter.AppointmentToResponse(full), nil
}

// Cancel removes an appointment of the logged-in patient. Cancellation is a
// hard delete: the row disappears and the slot immediately reappears in
// availability. Exactly one outcome is reported per call: success, not
// found, or not owned.
func (u *appointmentUsecase) Cancel(ctx context.Context, appointmentID uuid.UUID) error {
	identity, ok := middleware.GetIdentityFromContext(ctx)
	if !ok {
		return errors.New("identity not found in context")
	}

	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}

	if appointment.Patient.Email != identity.Email {
		return ErrNotAppointmentOwner
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	rows, err := u.appointmentRepo.Delete(tx, appointmentID)
	if err != nil {
		u.log.Warnf("Failed to delete appointment %s: %+v", appointmentID, err)
		return err
	}
	if rows == 0 {
		// Raced with another cancel; the row is already gone.
		return ErrAppointmentNotFound
	}

	u.auditService.LogAction(ctx, tx, &appointment.PatientID, entity.AuditActionAppointmentCancel, "appointment", appointmentID.String(), entity.JSON{
		"doctor_id":        appointment.DoctorID.String(),
		"appointment_time": appointment.AppointmentTime,
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit appointment cancel: %+v", err)
		return err
	}

	u.log.Infof("Appointment cancelled: id=%s, patient=%s", appointmentID, appointment.PatientID)
	return nil
}

// ChangeStatus moves an appointment to a new lifecycle status. Setting a
// status the appointment already has succeeds without a write, which makes
// prescription issuing idempotent at this level.
func (u *appointmentUsecase) ChangeStatus(ctx context.Context, appointmentID uuid.UUID, status entity.AppointmentStatus) error {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return err
	}
	if appointment == nil {
		return ErrAppointmentNotFound
	}
	if appointment.Status == status {
		return nil
	}

	rows, err := u.appointmentRepo.UpdateStatus(u.db.WithContext(ctx), appointmentID, status)
	if err != nil {
		u.log.Warnf("Failed to update status for appointment %s: %+v", appointmentID, err)
		return err
	}
	if rows == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}

// GetDoctorAppointments returns a doctor's appointments for one calendar
// day, optionally narrowed by patient name substring. An empty patientName
// means no filter.
func (u *appointmentUsecase) GetDoctorAppointments(ctx context.Context, doctorID uuid.UUID, patientName string, date time.Time) (*dto.AppointmentListResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	start, end := entity.DayRange(date)

	var appointments []entity.Appointment
	if patientName == "" {
		appointments, err = u.appointmentRepo.FindByDoctorAndDateRange(u.db.WithContext(ctx), doctorID, start, end)
	} else {
		appointments, err = u.appointmentRepo.FindByDoctorPatientNameAndDateRange(u.db.WithContext(ctx), doctorID, patientName, start, end)
	}
	if err != nil {
		u.log.Warnf("Failed to find appointments for doctor %s: %+v", doctorID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}
