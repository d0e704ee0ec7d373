package entity

import "strings"

// TimeOfDay restricts doctor search to doctors with at least one template
// slot starting in the period. The zero value means no restriction.
type TimeOfDay string

const (
	TimeOfDayAny TimeOfDay = ""
	TimeOfDayAM  TimeOfDay = "AM"
	TimeOfDayPM  TimeOfDay = "PM"
)

// ParseTimeOfDay maps a wire value to a TimeOfDay. The literal "null" and
// the empty string mean no filter; anything else must be AM or PM.
func ParseTimeOfDay(s string) (TimeOfDay, bool) {
	switch strings.ToUpper(s) {
	case "", "NULL":
		return TimeOfDayAny, true
	case "AM":
		return TimeOfDayAM, true
	case "PM":
		return TimeOfDayPM, true
	}
	return TimeOfDayAny, false
}

// DoctorFilter is the domain-level search filter for doctors. Empty string
// fields mean "no filter"; the "null" wire sentinel never reaches this type.
type DoctorFilter struct {
	Name      string    // case-insensitive substring match
	Specialty string    // case-insensitive exact match
	TimeOfDay TimeOfDay // existence check over the slot template
}

// IsEmpty reports whether no criteria are set.
func (f DoctorFilter) IsEmpty() bool {
	return f.Name == "" && f.Specialty == "" && f.TimeOfDay == TimeOfDayAny
}

// HistoryCondition filters a patient's appointment history by status.
type HistoryCondition string

const (
	HistoryConditionAny    HistoryCondition = ""
	HistoryConditionPast   HistoryCondition = "past"   // Completed
	HistoryConditionFuture HistoryCondition = "future" // Scheduled
)

// ParseHistoryCondition maps a wire value to a HistoryCondition, treating
// "null" and "" as no filter.
func ParseHistoryCondition(s string) (HistoryCondition, bool) {
	switch strings.ToLower(s) {
	case "", "null":
		return HistoryConditionAny, true
	case "past":
		return HistoryConditionPast, true
	case "future":
		return HistoryConditionFuture, true
	}
	return HistoryConditionAny, false
}

// Status returns the appointment status a condition selects.
func (c HistoryCondition) Status() AppointmentStatus {
	if c == HistoryConditionPast {
		return AppointmentStatusCompleted
	}
	return AppointmentStatusScheduled
}
