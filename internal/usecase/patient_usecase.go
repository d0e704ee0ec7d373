package usecase

import (
	"context"
	"errors"

	"go-clinic-appointment/internal/converter"
	"go-clinic-appointment/internal/delivery/dto"
	"go-clinic-appointment/internal/delivery/http/middleware"
	"go-clinic-appointment/internal/domain/entity"
	"go-clinic-appointment/internal/domain/repository"
	"go-clinic-appointment/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var ErrPatientExists = errors.New("patient with this email or phone already exists")

type PatientUsecase interface {
	Register(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error)
	GetPatientDetails(ctx context.Context) (*dto.PatientResponse, error)
	GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error)
	GetFilteredAppointments(ctx context.Context, condition entity.HistoryCondition, doctorName string) (*dto.AppointmentListResponse, error)
}

type patientUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	patientRepo     repository.PatientRepository
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
}

func NewPatientUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	patientRepo repository.PatientRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) PatientUsecase {
	return &patientUsecase{
		db:              db,
		log:             log,
		patientRepo:     patientRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
	}
}

// Register creates a patient account. A match on either email or phone of
// an existing patient is a duplicate.
func (u *patientUsecase) Register(ctx context.Context, req *dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	existing, err := u.patientRepo.FindByEmailOrPhone(u.db.WithContext(ctx), req.Email, req.Phone)
	if err != nil {
		u.log.Warnf("Failed to check existing patient: %+v", err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrPatientExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	patient := &entity.Patient{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		Phone:    req.Phone,
		Address:  req.Address,
	}

	if err := u.patientRepo.Create(tx, patient); err != nil {
		if isDuplicateKeyError(err, "email") || isDuplicateKeyError(err, "phone") {
			return nil, ErrPatientExists
		}
		u.log.Warnf("Failed to create patient: %+v", err)
		return nil, err
	}

	u.auditService.LogAction(ctx, tx, &patient.ID, entity.AuditActionPatientRegister, "patient", patient.ID.String(), entity.JSON{
		"email": patient.Email,
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit patient registration: %+v", err)
		return nil, err
	}

	u.log.Infof("Patient registered: id=%s, email=%s", patient.ID, patient.Email)
	return converter.PatientToResponse(patient), nil
}

// GetPatientDetails returns the profile of the logged-in patient.
func (u *patientUsecase) GetPatientDetails(ctx context.Context) (*dto.PatientResponse, error) {
	patient, err := u.currentPatient(ctx)
	if err != nil {
		return nil, err
	}
	return converter.PatientToResponse(patient), nil
}

// GetMyAppointments returns every appointment of the logged-in patient.
func (u *patientUsecase) GetMyAppointments(ctx context.Context) (*dto.AppointmentListResponse, error) {
	patient, err := u.currentPatient(ctx)
	if err != nil {
		return nil, err
	}

	appointments, err := u.appointmentRepo.FindByPatientID(u.db.WithContext(ctx), patient.ID)
	if err != nil {
		u.log.Warnf("Failed to find appointments for patient %s: %+v", patient.ID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

// GetFilteredAppointments narrows the patient's history by condition and/or
// doctor name. Condition "past" selects completed visits, "future" scheduled
// ones; empty strings mean no filter.
func (u *patientUsecase) GetFilteredAppointments(ctx context.Context, condition entity.HistoryCondition, doctorName string) (*dto.AppointmentListResponse, error) {
	patient, err := u.currentPatient(ctx)
	if err != nil {
		return nil, err
	}

	db := u.db.WithContext(ctx)

	var appointments []entity.Appointment
	switch {
	case condition == entity.HistoryConditionAny && doctorName == "":
		appointments, err = u.appointmentRepo.FindByPatientID(db, patient.ID)
	case condition == entity.HistoryConditionAny:
		appointments, err = u.appointmentRepo.FindByPatientAndDoctorName(db, patient.ID, doctorName)
	case doctorName == "":
		appointments, err = u.appointmentRepo.FindByPatientIDAndStatus(db, patient.ID, condition.Status())
	default:
		appointments, err = u.appointmentRepo.FindByPatientDoctorNameAndStatus(db, patient.ID, doctorName, condition.Status())
	}
	if err != nil {
		u.log.Warnf("Failed to filter appointments for patient %s: %+v", patient.ID, err)
		return nil, err
	}

	return &dto.AppointmentListResponse{
		Appointments: converter.AppointmentsToResponses(appointments),
		Total:        len(appointments),
	}, nil
}

func (u *patientUsecase) currentPatient(ctx context.Context) (*entity.Patient, error) {
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
	return patient, nil
}
