package usecase

import (
	"context"
	"testing"
	"time"

	"go-clinic-appointment/internal/domain/entity"

	"github.com/google/uuid"
)

func TestGetDoctorAvailability_FullTemplateWhenNoBookings(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{
		"09:00-10:00", "10:00-11:00", "14:00-15:00",
	})

	slots, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, tomorrowAt(0))
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}

	want := []string{"09:00-10:00", "10:00-11:00", "14:00-15:00"}
	if len(slots) != len(want) {
		t.Fatalf("got %d slots, want %d: %v", len(slots), len(want), slots)
	}
	for i, slot := range want {
		if slots[i] != slot {
			t.Errorf("slot %d = %q, want %q", i, slots[i], slot)
		}
	}
}

func TestGetDoctorAvailability_BookedHourDisappears(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{
		"09:00-10:00", "10:00-11:00",
	})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	appointment := &entity.Appointment{
		ID:              uuid.New(),
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		AppointmentTime: tomorrowAt(9),
		Status:          entity.AppointmentStatusScheduled,
	}
	if err := env.db.Create(appointment).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	slots, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, tomorrowAt(0))
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}

	if len(slots) != 1 || slots[0] != "10:00-11:00" {
		t.Fatalf("got %v, want [10:00-11:00]", slots)
	}
}

// Collision is hour-granular: an appointment at 09:30 consumes the whole
// 09:00-10:00 template slot.
func TestGetDoctorAvailability_HourGranularCollision(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{
		"09:00-10:00", "10:00-11:00",
	})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	at := tomorrowAt(9).Add(30 * time.Minute)
	appointment := &entity.Appointment{
		ID:              uuid.New(),
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		AppointmentTime: at,
		Status:          entity.AppointmentStatusScheduled,
	}
	if err := env.db.Create(appointment).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	slots, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, tomorrowAt(0))
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if len(slots) != 1 || slots[0] != "10:00-11:00" {
		t.Fatalf("got %v, want [10:00-11:00]", slots)
	}
}

func TestGetDoctorAvailability_UnknownDoctorYieldsEmptyList(t *testing.T) {
	env := newTestEnv(t)

	slots, err := env.availability.GetDoctorAvailability(context.Background(), uuid.New(), tomorrowAt(0))
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("got %v, want empty list", slots)
	}
}

func TestGetDoctorAvailability_BookingsOnOtherDatesDoNotInterfere(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{
		"09:00-10:00",
	})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	appointment := &entity.Appointment{
		ID:              uuid.New(),
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		AppointmentTime: tomorrowAt(9).AddDate(0, 0, 1),
		Status:          entity.AppointmentStatusScheduled,
	}
	if err := env.db.Create(appointment).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	slots, err := env.availability.GetDoctorAvailability(context.Background(), doctor.ID, tomorrowAt(0))
	if err != nil {
		t.Fatalf("get availability: %v", err)
	}
	if len(slots) != 1 {
		t.Fatalf("got %v, want the full template", slots)
	}
}

func TestValidateAppointment(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{
		"09:00-10:00", "14:00-15:00",
	})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	appointment := &entity.Appointment{
		ID:              uuid.New(),
		DoctorID:        doctor.ID,
		PatientID:       patient.ID,
		AppointmentTime: tomorrowAt(9),
		Status:          entity.AppointmentStatusScheduled,
	}
	if err := env.db.Create(appointment).Error; err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	cases := []struct {
		name     string
		doctorID uuid.UUID
		at       time.Time
		want     SlotValidation
	}{
		{"free slot", doctor.ID, tomorrowAt(14), SlotValid},
		{"taken hour", doctor.ID, tomorrowAt(9), SlotUnavailable},
		{"hour outside template", doctor.ID, tomorrowAt(11), SlotUnavailable},
		{"unknown doctor", uuid.New(), tomorrowAt(14), DoctorUnknown},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := env.availability.ValidateAppointment(context.Background(), tc.doctorID, tc.at)
			if err != nil {
				t.Fatalf("validate: %v", err)
			}
			if got != tc.want {
				t.Errorf("got %v, want %v", got, tc.want)
			}
		})
	}
}
