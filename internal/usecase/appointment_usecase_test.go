package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go-clinic-appointment/internal/delivery/dto"
	"go-clinic-appointment/internal/domain/entity"

	"github.com/google/uuid"
)

func TestBook_Succeeds(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	resp, err := env.appointments.Book(patientContext(patient), &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	if resp.Status != int(entity.AppointmentStatusScheduled) {
		t.Errorf("status = %d, want %d", resp.Status, entity.AppointmentStatusScheduled)
	}
	if resp.PatientID != patient.ID {
		t.Errorf("patient = %s, want %s", resp.PatientID, patient.ID)
	}

	slots, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, tomorrowAt(0))
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("slot still available after booking: %v", slots)
	}
}

func TestBook_UnknownDoctorRejected(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	_, err := env.appointments.Book(patientContext(patient), &dto.BookAppointmentRequest{
		DoctorID:        uuid.New(),
		AppointmentTime: tomorrowAt(9),
	})
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("err = %v, want ErrDoctorNotFound", err)
	}
}

func TestBook_UnknownPatientRejected(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})

	ghost := &entity.Patient{ID: uuid.New(), Email: "ghost@mail.test"}
	_, err := env.appointments.Book(patientContext(ghost), &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9),
	})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("err = %v, want ErrPatientNotFound", err)
	}
}

func TestBook_TakenHourRejected(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})
	first := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")
	second := env.createPatient(t, "Carol Danes", "carol@mail.test", "555-0002")

	if _, err := env.appointments.Book(patientContext(first), &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9),
	}); err != nil {
		t.Fatalf("first book: %v", err)
	}

	// Same hour, different minutes. Hour granularity makes this a collision.
	_, err := env.appointments.Book(patientContext(second), &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9).Add(30 * time.Minute),
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("err = %v, want ErrSlotUnavailable", err)
	}
}

// Two concurrent requests for the same doctor-hour: exactly one must win.
func TestBook_ConcurrentRequestsExactlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})
	first := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")
	second := env.createPatient(t, "Carol Danes", "carol@mail.test", "555-0002")

	at := tomorrowAt(9)
	results := make([]error, 2)

	var wg sync.WaitGroup
	for i, patient := range []*entity.Patient{first, second} {
		wg.Add(1)
		go func(i int, p *entity.Patient) {
			defer wg.Done()
			_, results[i] = env.appointments.Book(patientContext(p), &dto.BookAppointmentRequest{
				DoctorID:        doctor.ID,
				AppointmentTime: at,
			})
		}(i, patient)
	}
	wg.Wait()

	var wins, losses int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, ErrSlotUnavailable):
			losses++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if wins != 1 || losses != 1 {
		t.Fatalf("wins = %d, losses = %d, want exactly one of each", wins, losses)
	}

	var count int64
	if err := env.db.Model(&entity.Appointment{}).Where("doctor_id = ?", doctor.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("appointments = %d, want 1", count)
	}
}

func TestUpdate_MovesAppointment(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00", "14:00-15:00"})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")
	ctx := patientContext(patient)

	booked, err := env.appointments.Book(ctx, &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	updated, err := env.appointments.Update(ctx, booked.ID, &dto.UpdateAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(14),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AppointmentTime.Hour() != 14 {
		t.Errorf("hour = %d, want 14", updated.AppointmentTime.Hour())
	}

	slots, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, tomorrowAt(0))
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if len(slots) != 1 || slots[0] != "09:00-10:00" {
		t.Errorf("slots = %v, want the vacated [09:00-10:00]", slots)
	}
}

// Keeping the same doctor, date and hour must not conflict with the
// appointment's own slot.
func TestUpdate_SameSlotDoesNotSelfCollide(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")
	ctx := patientContext(patient)

	booked, err := env.appointments.Book(ctx, &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if _, err := env.appointments.Update(ctx, booked.ID, &dto.UpdateAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9).Add(15 * time.Minute),
	}); err != nil {
		t.Fatalf("same-slot update: %v", err)
	}
}

func TestUpdate_CollisionWithOtherAppointmentRejected(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00", "14:00-15:00"})
	first := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")
	second := env.createPatient(t, "Carol Reyes", "carol@mail.test", "555-0002")

	booked, err := env.appointments.Book(patientContext(first), &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9),
	})
	if err != nil {
		t.Fatalf("book first: %v", err)
	}
	if _, err := env.appointments.Book(patientContext(second), &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(14),
	}); err != nil {
		t.Fatalf("book second: %v", err)
	}

	_, err = env.appointments.Update(patientContext(first), booked.ID, &dto.UpdateAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(14),
	})
	if !errors.Is(err, ErrSlotUnavailable) {
		t.Fatalf("err = %v, want ErrSlotUnavailable", err)
	}

	slots, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, tomorrowAt(0))
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if len(slots) != 0 {
		t.Errorf("slots = %v, want both hours still held after rejected move", slots)
	}
}

func TestUpdate_OtherPatientsAppointmentLooksAbsent(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00", "14:00-15:00"})
	owner := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")
	intruder := env.createPatient(t, "Carol Danes", "carol@mail.test", "555-0002")

	booked, err := env.appointments.Book(patientContext(owner), &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	_, err = env.appointments.Update(patientContext(intruder), booked.ID, &dto.UpdateAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(14),
	})
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("err = %v, want ErrAppointmentNotFound", err)
	}
}

func TestUpdate_PastAppointmentRejected(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00", "14:00-15:00"})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	past := &entity.Appointment{
		ID:              uuid.New(),
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		AppointmentTime: time.Now().Add(-24 * time.Hour),
		Status:          entity.AppointmentStatusScheduled,
	}
	if err := env.db.Create(past).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	_, err := env.appointments.Update(patientContext(patient), past.ID, &dto.UpdateAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(14),
	})
	if !errors.Is(err, ErrAppointmentNotUpdatable) {
		t.Fatalf("err = %v, want ErrAppointmentNotUpdatable", err)
	}
}

func TestUpdate_CompletedAppointmentRejected(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00", "14:00-15:00"})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	done := &entity.Appointment{
		ID:              uuid.New(),
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		AppointmentTime: tomorrowAt(9),
		Status:          entity.AppointmentStatusCompleted,
	}
	if err := env.db.Create(done).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	_, err := env.appointments.Update(patientContext(patient), done.ID, &dto.UpdateAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(14),
	})
	if !errors.Is(err, ErrAppointmentNotUpdatable) {
		t.Fatalf("err = %v, want ErrAppointmentNotUpdatable", err)
	}
}

func TestCancel_DeletesRowAndFreesSlot(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")
	ctx := patientContext(patient)

	booked, err := env.appointments.Book(ctx, &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := env.appointments.Cancel(ctx, booked.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	var count int64
	if err := env.db.Model(&entity.Appointment{}).Where("id = ?", booked.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatal("cancelled appointment row still present")
	}

	slots, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, tomorrowAt(0))
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if len(slots) != 1 {
		t.Errorf("slots = %v, want the slot back", slots)
	}
}

func TestCancel_MissingAppointment(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	err := env.appointments.Cancel(patientContext(patient), uuid.New())
	if !errors.Is(err, ErrAppointmentNotFound) {
		t.Fatalf("err = %v, want ErrAppointmentNotFound", err)
	}
}

func TestCancel_WrongOwnerRejected(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})
	owner := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")
	intruder := env.createPatient(t, "Carol Danes", "carol@mail.test", "555-0002")

	booked, err := env.appointments.Book(patientContext(owner), &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	err = env.appointments.Cancel(patientContext(intruder), booked.ID)
	if !errors.Is(err, ErrNotAppointmentOwner) {
		t.Fatalf("err = %v, want ErrNotAppointmentOwner", err)
	}

	// The appointment survives a rejected cancel.
	var count int64
	if err := env.db.Model(&entity.Appointment{}).Where("id = ?", booked.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatal("appointment deleted despite rejection")
	}
}

func TestChangeStatus_IsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	booked, err := env.appointments.Book(patientContext(patient), &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9),
	})
	if err != nil {
		t.Fatalf("book: %v", err)
	}

	for i := 0; i < 2; i++ {
		if err := env.appointments.ChangeStatus(context.Background(), booked.ID, entity.AppointmentStatusPrescribed); err != nil {
			t.Fatalf("change status attempt %d: %v", i+1, err)
		}
	}

	var appointment entity.Appointment
	if err := env.db.First(&appointment, "id = ?", booked.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if appointment.Status != entity.AppointmentStatusPrescribed {
		t.Errorf("status = %d, want %d", appointment.Status, entity.AppointmentStatusPrescribed)
	}
}

func TestGetDoctorAppointments_FiltersByPatientNameAndDate(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00", "10:00-11:00"})
	bob := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")
	carol := env.createPatient(t, "Carol Danes", "carol@mail.test", "555-0002")

	for _, booking := range []struct {
		patient *entity.Patient
		hour    int
	}{
		{bob, 9},
		{carol, 10},
	} {
		if _, err := env.appointments.Book(patientContext(booking.patient), &dto.BookAppointmentRequest{
			DoctorID:        doctor.ID,
			AppointmentTime: tomorrowAt(booking.hour),
		}); err != nil {
			t.Fatalf("book for %s: %v", booking.patient.Name, err)
		}
	}

	all, err := env.appointments.GetDoctorAppointments(context.Background(), doctor.ID, "", tomorrowAt(0))
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if all.Total != 2 {
		t.Fatalf("total = %d, want 2", all.Total)
	}

	filtered, err := env.appointments.GetDoctorAppointments(context.Background(), doctor.ID, "bob", tomorrowAt(0))
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if filtered.Total != 1 {
		t.Fatalf("total = %d, want 1", filtered.Total)
	}
	if filtered.Appointments[0].PatientID != bob.ID {
		t.Errorf("patient = %s, want %s", filtered.Appointments[0].PatientID, bob.ID)
	}
}
