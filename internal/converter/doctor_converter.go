package converter

import (
	"go-clinic-appointment/internal/delivery/dto"
	"go-clinic-appointment/internal/domain/entity"
)

// DoctorToResponse converts a Doctor entity to its response DTO
func DoctorToResponse(doctor *entity.Doctor) *dto.DoctorResponse {
	if doctor == nil {
		return nil
	}

	return &dto.DoctorResponse{
		ID:              doctor.ID,
		Name:            doctor.Name,
		Specialty:       doctor.Specialty,
		Email:           doctor.Email,
		Phone:           doctor.Phone,
		ConsultationFee: doctor.ConsultationFee,
		AvailableTimes:  []string(doctor.AvailableTimes),
		CreatedAt:       doctor.CreatedAt,
		UpdatedAt:       doctor.UpdatedAt,
	}
}

// DoctorsToResponses converts a slice of Doctor entities
func DoctorsToResponses(doctors []entity.Doctor) []dto.DoctorResponse {
	responses := make([]dto.DoctorResponse, len(doctors))
	for i, doctor := range doctors {
		responses[i] = *DoctorToResponse(&doctor)
	}
	return responses
}
