package usecase

import (
	"context"

	"go-clinic-appointment/internal/converter"
	"go-clinic-appointment/internal/delivery/dto"
	"go-clinic-appointment/internal/domain/entity"
	"go-clinic-appointment/internal/domain/repository"
	"go-clinic-appointment/internal/service"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type PrescriptionUsecase interface {
	SavePrescription(ctx context.Context, req *dto.SavePrescriptionRequest) (*dto.PrescriptionResponse, error)
	GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.PrescriptionListResponse, error)
}

type prescriptionUsecase struct {
	db                 *gorm.DB
	log                *logrus.Logger
	prescriptionRepo   repository.PrescriptionRepository
	appointmentRepo    repository.AppointmentRepository
	appointmentUsecase AppointmentUsecase
	auditService       service.AuditService
}

func NewPrescriptionUsecase(
	db *gorm.DB,
	log *logrus.Logger,
	prescriptionRepo repository.PrescriptionRepository,
	appointmentRepo repository.AppointmentRepository,
	appointmentUsecase AppointmentUsecase,
	auditService service.AuditService,
) PrescriptionUsecase {
	return &prescriptionUsecase{
		db:                 db,
		log:                log,
		prescriptionRepo:   prescriptionRepo,
		appointmentRepo:    appointmentRepo,
		appointmentUsecase: appointmentUsecase,
		auditService:       auditService,
	}
}

// SavePrescription records a prescription against an appointment and moves
// the appointment to Prescribed. The status change happens first and is
// idempotent; issuing a second prescription for the same appointment adds a
// row without disturbing the status.
func (u *prescriptionUsecase) SavePrescription(ctx context.Context, req *dto.SavePrescriptionRequest) (*dto.PrescriptionResponse, error) {
	if err := u.appointmentUsecase.ChangeStatus(ctx, req.AppointmentID, entity.AppointmentStatusPrescribed); err != nil {
		return nil, err
	}

	tx := u.db.WithContext(ctx).Begin()
	defer tx.Rollback()

	prescription := &entity.Prescription{
		ID:            uuid.New(),
		AppointmentID: req.AppointmentID,
		PatientName:   req.PatientName,
		Medication:    req.Medication,
		Dosage:        req.Dosage,
		DoctorNotes:   req.DoctorNotes,
	}

	if err := u.prescriptionRepo.Create(tx, prescription); err != nil {
		u.log.Warnf("Failed to create prescription: %+v", err)
		// The appointment can be cancelled between the status change and
		// the insert; the foreign key then rejects the row.
		if isForeignKeyError(err, "appointment") {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	actorID := actorFromContext(ctx)
	u.auditService.LogAction(ctx, tx, actorID, entity.AuditActionPrescriptionIssue, "prescription", prescription.ID.String(), entity.JSON{
		"appointment_id": req.AppointmentID.String(),
		"medication":     req.Medication,
	})

	if err := tx.Commit().Error; err != nil {
		u.log.Warnf("Failed to commit prescription: %+v", err)
		return nil, err
	}

	u.log.Infof("Prescription issued: id=%s, appointment=%s", prescription.ID, req.AppointmentID)
	return converter.PrescriptionToResponse(prescription), nil
}

// GetByAppointment lists every prescription issued for one appointment.
func (u *prescriptionUsecase) GetByAppointment(ctx context.Context, appointmentID uuid.UUID) (*dto.PrescriptionListResponse, error) {
	appointment, err := u.appointmentRepo.FindByID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find appointment %s: %+v", appointmentID, err)
		return nil, err
	}
	if appointment == nil {
		return nil, ErrAppointmentNotFound
	}

	prescriptions, err := u.prescriptionRepo.FindByAppointmentID(u.db.WithContext(ctx), appointmentID)
	if err != nil {
		u.log.Warnf("Failed to find prescriptions for appointment %s: %+v", appointmentID, err)
		return nil, err
	}

	return &dto.PrescriptionListResponse{
		Prescriptions: converter.PrescriptionsToResponses(prescriptions),
		Total:         len(prescriptions),
	}, nil
}
