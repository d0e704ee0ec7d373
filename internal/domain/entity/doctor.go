package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Doctor represents a doctor who offers a recurring daily set of time slots.
// AvailableTimes holds the slot template in canonical "HH:MM-HH:MM" form,
// ordered, unique and non-overlapping. The template is mutated only through
// doctor updates, never derived from appointments.
type Doctor struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	Name            string          `gorm:"type:varchar(255);not null;index" json:"name"`
	Specialty       string          `gorm:"type:varchar(100);not null;index" json:"specialty"`
	Email           string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password        string          `gorm:"type:text;not null" json:"-"`
	Phone           string          `gorm:"type:varchar(20)" json:"phone,omitempty"`
	ConsultationFee decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"consultation_fee"`
	AvailableTimes  StringList      `gorm:"type:jsonb" json:"available_times"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Appointments []Appointment `gorm:"foreignKey:DoctorID" json:"appointments,omitempty"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// AvailableDuring reports whether any slot in the template starts in the
// given period. This is an existence check over the template, independent of
// date: one AM slot makes the doctor an AM doctor.
func (d *Doctor) AvailableDuring(period TimeOfDay) bool {
	if period == TimeOfDayAny {
		return true
	}
	for _, slot := range d.AvailableTimes {
		hour, err := SlotStartHour(slot)
		if err != nil {
			continue
		}
		if period == TimeOfDayAM && hour < 12 {
			return true
		}
		if period == TimeOfDayPM && hour >= 12 {
			return true
		}
	}
	return false
}

// SlotHour returns the leading two-digit hour component of a slot string.
// Slot identity is hour-granular: two slots collide when these prefixes
// match, regardless of minutes. This coarse granularity is the booking
// contract and is kept intentionally.
func SlotHour(slot string) string {
	if len(slot) < 2 {
		return slot
	}
	return slot[:2]
}

// SlotStartHour parses the start hour of a slot string as an integer.
func SlotStartHour(slot string) (int, error) {
	if len(slot) < 2 {
		return 0, fmt.Errorf("slot %q too short", slot)
	}
	return strconv.Atoi(slot[:2])
}

// HourOf formats a timestamp's hour the way slot prefixes are written.
func HourOf(t time.Time) string {
	return fmt.Sprintf("%02d", t.Hour())
}

// ValidateSlotTemplate checks that every slot parses, start hours are unique
// and the list is in ascending start order.
func ValidateSlotTemplate(slots []string) error {
	seen := make(map[int]bool, len(slots))
	prev := -1
	for _, slot := range slots {
		if _, err := time.Parse("15:04", SlotStart(slot)); err != nil {
			return fmt.Errorf("invalid slot %q: %w", slot, err)
		}
		hour, err := SlotStartHour(slot)
		if err != nil {
			return fmt.Errorf("invalid slot %q: %w", slot, err)
		}
		if seen[hour] {
			return fmt.Errorf("duplicate slot hour %02d", hour)
		}
		seen[hour] = true
		if hour < prev {
			return fmt.Errorf("slots out of order at %q", slot)
		}
		prev = hour
	}
	return nil
}

// SlotStart returns the "HH:MM" start component of a slot string.
func SlotStart(slot string) string {
	if len(slot) < 5 {
		return slot
	}
	return slot[:5]
}

// StringList is an ordered list of strings stored as JSONB.
type StringList []string

// Value returns json value, implements driver.Valuer interface
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]string{})
	}
	return json.Marshal([]string(l))
}

// Scan scans value into StringList, implements sql.Scanner interface
func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = nil
		return nil
	}
	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return errors.New(fmt.Sprint("Failed to unmarshal JSONB value:", value))
	}

	var result []string
	if err := json.Unmarshal(bytes, &result); err != nil {
		return err
	}
	*l = StringList(result)
	return nil
}
