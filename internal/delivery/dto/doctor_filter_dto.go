package dto

import (
	"errors"
	"strings"

	"go-clinic-appointment/internal/domain/entity"
)

// NoFilter is the wire sentinel clients send for an omitted search
// criterion. It arrives as a literal path/query value, not an absent field,
// and is decoded here so the scheduling core only ever sees typed filters.
const NoFilter = "null"

var ErrInvalidTimeOfDay = errors.New("time filter must be AM or PM")

// ParseDoctorFilter maps raw wire values to a domain DoctorFilter.
func ParseDoctorFilter(name, specialty, timeOfDay string) (entity.DoctorFilter, error) {
	filter := entity.DoctorFilter{}

	if !IsNoFilter(name) {
		filter.Name = name
	}
	if !IsNoFilter(specialty) {
		filter.Specialty = specialty
	}

	period, ok := entity.ParseTimeOfDay(timeOfDay)
	if !ok {
		return entity.DoctorFilter{}, ErrInvalidTimeOfDay
	}
	filter.TimeOfDay = period

	return filter, nil
}

// IsNoFilter reports whether a wire value means "no filter".
func IsNoFilter(value string) bool {
	return value == "" || strings.EqualFold(value, NoFilter)
}
