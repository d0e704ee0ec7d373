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
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrDoctorEmailExists = errors.New("doctor email already exists")
	ErrInvalidSlotList   = errors.New("invalid slot template")
	ErrInvalidFee        = errors.New("invalid consultation fee")
)

type DoctorUsecase interface {
	CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error)
	UpdateDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error)
	DeleteDoctor(ctx context.Context, doctorID uuid.UUID) error
	GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error)
	FilterDoctors(ctx context.Context, filter entity.DoctorFilter) (*dto.DoctorListResponse, error)
}

type doctorUsecase struct {
	db              *gorm.DB
	log             *logrus.Logger
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	auditService    service.AuditService
}

func NewDoctorUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	auditService service.AuditService,
) DoctorUsecase {
	return &doctorUsecase{
		db:              db,
		log:             log,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		auditService:    auditService,
	}
}

// CreateDoctor registers a new doctor with their recurring slot template.
func (u *doctorUsecase) CreateDoctor(ctx context.Context, req *dto.CreateDoctorRequest) (*dto.DoctorResponse, error) {
	if err := entity.ValidateSlotTemplate(req.AvailableTimes); err != nil {
		u.log.Warnf("Rejected slot template: %+v", err)
		return nil, ErrInvalidSlotList
	}

	fee := decimal.Zero
	if req.ConsultationFee != "" {
		parsed, err := decimal.NewFromString(req.ConsultationFee)
		if err != nil || parsed.IsNegative() {
			return nil, ErrInvalidFee
		}
		fee = parsed
	}

	existing, err := u.doctorRepo.FindByEmail(u.db.WithContext(ctx), req.Email)
	if err != nil {
		u.log.Warnf("Failed to check doctor email %s: %+v", req.Email, err)
		return nil, err
	}
	if existing != nil {
		return nil, ErrDoctorEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		u.log.Warnf("Failed to hash password: %+v", err)
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	doctor := &entity.Doctor{
		ID:              uuid.New(),
		Name:            req.Name,
		Specialty:       req.Specialty,
		Email:           req.Email,
		Password:        string(hashedPassword),
		Phone:           req.Phone,
		ConsultationFee: fee,
		AvailableTimes:  entity.StringList(req.AvailableTimes),
	}

	if err := u.doctorRepo.Create(tx, doctor); err != nil {
		if isDuplicateKeyError(err, "email") {
			return nil, ErrDoctorEmailExists
		}
		u.log.Warnf("Failed to create doctor: %+v", err)
		return nil, err
	}

	actorID := actorFromContext(ctx)
	u.auditService.LogAction(ctx, tx, actorID, entity.AuditActionDoctorCreate, "doctor", doctor.ID.String(), entity.JSON{
		"name":      doctor.Name,
		"specialty": doctor.Specialty,
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit doctor creation: %+v", err)
		return nil, err
	}

	u.log.Infof("Doctor created: id=%s, name=%s", doctor.ID, doctor.Name)
	return converter.DoctorToResponse(doctor), nil
}

// UpdateDoctor applies partial changes; empty request fields keep current
// values. Slot template replacement takes effect for all future dates at
// once, booked appointments on removed hours keep existing.
func (u *doctorUsecase) UpdateDoctor(ctx context.Context, doctorID uuid.UUID, req *dto.UpdateDoctorRequest) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}

	if req.Name != "" {
		doctor.Name = req.Name
	}
	if req.Specialty != "" {
		doctor.Specialty = req.Specialty
	}
	if req.Phone != "" {
		doctor.Phone = req.Phone
	}
	if req.ConsultationFee != "" {
		fee, err := decimal.NewFromString(req.ConsultationFee)
		if err != nil || fee.IsNegative() {
			return nil, ErrInvalidFee
		}
		doctor.ConsultationFee = fee
	}
	if req.AvailableTimes != nil {
		if err := entity.ValidateSlotTemplate(req.AvailableTimes); err != nil {
			u.log.Warnf("Rejected slot template: %+v", err)
			return nil, ErrInvalidSlotList
		}
		doctor.AvailableTimes = entity.StringList(req.AvailableTimes)
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.doctorRepo.Update(tx, doctor); err != nil {
		u.log.Warnf("Failed to update doctor %s: %+v", doctorID, err)
		return nil, err
	}

	actorID := actorFromContext(ctx)
	u.auditService.LogAction(ctx, tx, actorID, entity.AuditActionDoctorUpdate, "doctor", doctor.ID.String(), nil)

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit doctor update: %+v", err)
		return nil, err
	}

	return converter.DoctorToResponse(doctor), nil
}

// DeleteDoctor removes a doctor and every appointment booked with them, in
// one transaction. Appointments go first so the foreign key never dangles.
func (u *doctorUsecase) DeleteDoctor(ctx context.Context, doctorID uuid.UUID) error {
	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	if err := u.appointmentRepo.DeleteAllByDoctorID(tx, doctorID); err != nil {
		u.log.Warnf("Failed to delete appointments for doctor %s: %+v", doctorID, err)
		return err
	}

	rows, err := u.doctorRepo.Delete(tx, doctorID)
	if err != nil {
		u.log.Warnf("Failed to delete doctor %s: %+v", doctorID, err)
		return err
	}
	if rows == 0 {
		return ErrDoctorNotFound
	}

	actorID := actorFromContext(ctx)
	u.auditService.LogAction(ctx, tx, actorID, entity.AuditActionDoctorDelete, "doctor", doctorID.String(), nil)

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit doctor deletion: %+v", err)
		return err
	}

	u.log.Infof("Doctor deleted: id=%s", doctorID)
	return nil
}

func (u *doctorUsecase) GetDoctor(ctx context.Context, doctorID uuid.UUID) (*dto.DoctorResponse, error) {
	doctor, err := u.doctorRepo.FindByID(u.db.WithContext(ctx), doctorID)
	if err != nil {
		u.log.Warnf("Failed to find doctor %s: %+v", doctorID, err)
		return nil, err
	}
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	return converter.DoctorToResponse(doctor), nil
}

// FilterDoctors searches doctors by any combination of name substring,
// specialty and time-of-day. Name and specialty are pushed to SQL; the
// AM/PM check walks the slot template in memory since it is an existence
// test over a JSON column. No criteria returns all doctors in stable
// creation order.
func (u *doctorUsecase) FilterDoctors(ctx context.Context, filter entity.DoctorFilter) (*dto.DoctorListResponse, error) {
	var (
		doctors []entity.Doctor
		err     error
	)
	if filter.IsEmpty() {
		doctors, err = u.doctorRepo.FindAll(u.db.WithContext(ctx))
	} else {
		doctors, err = u.doctorRepo.FindFiltered(u.db.WithContext(ctx), filter.Name, filter.Specialty)
	}
	if err != nil {
		u.log.Warnf("Failed to filter doctors: %+v", err)
		return nil, err
	}

	if filter.TimeOfDay != entity.TimeOfDayAny {
		matched := doctors[:0]
		for _, doctor := range doctors {
			if doctor.AvailableDuring(filter.TimeOfDay) {
				matched = append(matched, doctor)
			}
		}
		doctors = matched
	}

	return &dto.DoctorListResponse{
		Doctors: converter.DoctorsToResponses(doctors),
		Total:   len(doctors),
	}, nil
}

// actorFromContext resolves the audit actor. Unauthenticated internal calls
// produce a nil actor, which the audit log stores as such.
func actorFromContext(ctx context.Context) *uuid.UUID {
	identity, ok := middleware.GetIdentityFromContext(ctx)
	if !ok {
		return nil
	}
	return &identity.Subject
}
