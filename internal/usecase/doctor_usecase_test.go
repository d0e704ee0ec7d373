package usecase

import (
	"context"
	"errors"
	"testing"

	"go-clinic-appointment/internal/delivery/dto"
	"go-clinic-appointment/internal/domain/entity"
)

func TestCreateDoctor_HashesPasswordAndStoresTemplate(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.doctors.CreateDoctor(context.Background(), &dto.CreateDoctorRequest{
		Name:           "Alice Moore",
		Specialty:      "Cardiology",
		Email:          "alice@clinic.test",
		Password:       "secret123",
		AvailableTimes: []string{"09:00-10:00", "14:00-15:00"},
	})
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	if len(resp.AvailableTimes) != 2 {
		t.Errorf("template = %v, want 2 slots", resp.AvailableTimes)
	}

	var doctor entity.Doctor
	if err := env.db.First(&doctor, "id = ?", resp.ID).Error; err != nil {
		t.Fatalf("reload: %v", err)
	}
	if doctor.Password == "secret123" {
		t.Error("password stored in plaintext")
	}
}

func TestCreateDoctor_DuplicateEmailRejected(t *testing.T) {
	env := newTestEnv(t)
	env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})

	_, err := env.doctors.CreateDoctor(context.Background(), &dto.CreateDoctorRequest{
		Name:           "Alice Other",
		Specialty:      "Neurology",
		Email:          "alice@clinic.test",
		Password:       "secret123",
		AvailableTimes: []string{"09:00-10:00"},
	})
	if !errors.Is(err, ErrDoctorEmailExists) {
		t.Fatalf("err = %v, want ErrDoctorEmailExists", err)
	}
}

func TestCreateDoctor_BadTemplatesRejected(t *testing.T) {
	env := newTestEnv(t)

	for _, slots := range [][]string{
		{"9am-10am"},
		{"09:00-10:00", "09:30-10:30"}, // duplicate hour
		{"14:00-15:00", "09:00-10:00"}, // out of order
	} {
		_, err := env.doctors.CreateDoctor(context.Background(), &dto.CreateDoctorRequest{
			Name:           "Alice Moore",
			Specialty:      "Cardiology",
			Email:          "alice@clinic.test",
			Password:       "secret123",
			AvailableTimes: slots,
		})
		if !errors.Is(err, ErrInvalidSlotList) {
			t.Errorf("slots %v: err = %v, want ErrInvalidSlotList", slots, err)
		}
	}
}

func TestDeleteDoctor_CascadesAppointments(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	if _, err := env.appointments.Book(patientContext(patient), &dto.BookAppointmentRequest{
		DoctorID:        doctor.ID,
		AppointmentTime: tomorrowAt(9),
	}); err != nil {
		t.Fatalf("book: %v", err)
	}

	if err := env.doctors.DeleteDoctor(context.Background(), doctor.ID); err != nil {
		t.Fatalf("delete doctor: %v", err)
	}

	var count int64
	if err := env.db.Model(&entity.Appointment{}).Where("doctor_id = ?", doctor.ID).Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatalf("appointments left behind: %d", count)
	}
}

func TestDeleteDoctor_Missing(t *testing.T) {
	env := newTestEnv(t)
	patient := env.createPatient(t, "Bob Stone", "bob@mail.test", "555-0001")

	err := env.doctors.DeleteDoctor(context.Background(), patient.ID)
	if !errors.Is(err, ErrDoctorNotFound) {
		t.Fatalf("err = %v, want ErrDoctorNotFound", err)
	}
}

func TestFilterDoctors(t *testing.T) {
	env := newTestEnv(t)
	env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})
	env.createDoctor(t, "Bob Maloney", "Neurology", "bobm@clinic.test", []string{"14:00-15:00"})
	env.createDoctor(t, "Carla Reyes", "Cardiology", "carla@clinic.test", []string{"09:00-10:00", "15:00-16:00"})

	cases := []struct {
		name   string
		filter entity.DoctorFilter
		want   []string
	}{
		{
			name:   "no filters returns all in creation order",
			filter: entity.DoctorFilter{},
			want:   []string{"Alice Moore", "Bob Maloney", "Carla Reyes"},
		},
		{
			name:   "name substring is case-insensitive",
			filter: entity.DoctorFilter{Name: "ALO"},
			want:   []string{"Bob Maloney"},
		},
		{
			name:   "specialty exact is case-insensitive",
			filter: entity.DoctorFilter{Specialty: "cardiology"},
			want:   []string{"Alice Moore", "Carla Reyes"},
		},
		{
			name:   "specialty substring does not match",
			filter: entity.DoctorFilter{Specialty: "cardio"},
			want:   []string{},
		},
		{
			name:   "AM keeps doctors with at least one morning slot",
			filter: entity.DoctorFilter{TimeOfDay: entity.TimeOfDayAM},
			want:   []string{"Alice Moore", "Carla Reyes"},
		},
		{
			name:   "PM keeps doctors with at least one afternoon slot",
			filter: entity.DoctorFilter{TimeOfDay: entity.TimeOfDayPM},
			want:   []string{"Bob Maloney", "Carla Reyes"},
		},
		{
			name:   "combined filters intersect",
			filter: entity.DoctorFilter{Specialty: "Cardiology", TimeOfDay: entity.TimeOfDayPM},
			want:   []string{"Carla Reyes"},
		},
		{
			name:   "no match yields empty list",
			filter: entity.DoctorFilter{Name: "zzz"},
			want:   []string{},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := env.doctors.FilterDoctors(context.Background(), tc.filter)
			if err != nil {
				t.Fatalf("filter: %v", err)
			}
			if resp.Total != len(tc.want) {
				t.Fatalf("total = %d, want %d", resp.Total, len(tc.want))
			}
			for i, name := range tc.want {
				if resp.Doctors[i].Name != name {
					t.Errorf("doctor %d = %q, want %q", i, resp.Doctors[i].Name, name)
				}
			}
		})
	}
}

func TestUpdateDoctor_ReplacesTemplate(t *testing.T) {
	env := newTestEnv(t)
	doctor := env.createDoctor(t, "Alice Moore", "Cardiology", "alice@clinic.test", []string{"09:00-10:00"})

	resp, err := env.doctors.UpdateDoctor(context.Background(), doctor.ID, &dto.UpdateDoctorRequest{
		AvailableTimes: []string{"10:00-11:00", "15:00-16:00"},
	})
	if err != nil {
		t.Fatalf("update doctor: %v", err)
	}
	if len(resp.AvailableTimes) != 2 || resp.AvailableTimes[0] != "10:00-11:00" {
		t.Errorf("template = %v, want the replacement", resp.AvailableTimes)
	}
	// Untouched fields keep current values.
	if resp.Name != "Alice Moore" {
		t.Errorf("name = %q, want unchanged", resp.Name)
	}
}
