package usecase

import (
	"context"
	"io"
	"testing"
	"time"

	"go-clinic-appointment/internal/delivery/http/middleware"
	"go-clinic-appointment/internal/domain/entity"
	"go-clinic-appointment/internal/repository"
	"go-clinic-appointment/internal/service"
	"go-clinic-appointment/pkg/jwt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// newTestDB opens an in-memory sqlite database with the full schema. The
// pool is capped at one connection so every goroutine sees the same
// in-memory database.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := entity.AutoMigrate(db); err != nil {
		t.Fatalf("migrate schema: %v", err)
	}

	return db
}

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type testEnv struct {
	db           *gorm.DB
	log          *logrus.Logger
	slotLock     *service.SlotLockService
	availability AvailabilityUsecase
	appointments AppointmentUsecase
	doctors      DoctorUsecase
	patients     PatientUsecase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := newTestDB(t)
	log := newTestLogger()

	doctorRepo := repository.NewDoctorRepository()
	patientRepo := repository.NewPatientRepository()
	appointmentRepo := repository.NewAppointmentRepository()
	auditLogRepo := repository.NewAuditLogRepository()

	slotLock := service.NewSlotLockService(log)
	t.Cleanup(slotLock.Stop)
	auditService := service.NewAuditService(db, log, auditLogRepo)

	return &testEnv{
		db:           db,
		log:          log,
		slotLock:     slotLock,
		availability: NewAvailabilityUsecase(db, log, doctorRepo, appointmentRepo),
		appointments: NewAppointmentUsecase(db, log, doctorRepo, patientRepo, appointmentRepo, slotLock, auditService),
		doctors:      NewDoctorUsecase(db, log, doctorRepo, appointmentRepo, auditService),
		patients:     NewPatientUsecase(db, log, patientRepo, appointmentRepo, auditService),
	}
}

func (e *testEnv) createDoctor(t *testing.T, name, specialty, email string, slots []string) *entity.Doctor {
	t.Helper()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	doctor := &entity.Doctor{
		ID:             uuid.New(),
		Name:           name,
		Specialty:      specialty,
		Email:          email,
		Password:       string(hash),
		AvailableTimes: entity.StringList(slots),
	}
	if err := e.db.Create(doctor).Error; err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	return doctor
}

func (e *testEnv) createPatient(t *testing.T, name, email, phone string) *entity.Patient {
	t.Helper()

	hash, _ := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	patient := &entity.Patient{
		ID:       uuid.New(),
		Name:     name,
		Email:    email,
		Password: string(hash),
		Phone:    phone,
	}
	if err := e.db.Create(patient).Error; err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return patient
}

func patientContext(patient *entity.Patient) context.Context {
	return middleware.ContextWithIdentity(context.Background(), &jwt.Identity{
		Subject: patient.ID,
		Email:   patient.Email,
		Role:    entity.RolePatient,
	})
}

// tomorrowAt returns tomorrow at the given hour, always in the future.
func tomorrowAt(hour int) time.Time {
	day := time.Now().AddDate(0, 0, 1)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, 0, 0, 0, time.UTC)
}
