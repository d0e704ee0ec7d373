package converter

import (
	"go-clinic-appointment/internal/delivery/dto"
	"go-clinic-appointment/internal/domain/entity"
)

// PrescriptionToResponse converts a Prescription entity to its response DTO
func PrescriptionToResponse(prescription *entity.Prescription) *dto.PrescriptionResponse {
	if prescription == nil {
		return nil
	}

	return &dto.PrescriptionResponse{
		ID:            prescription.ID,
		AppointmentID: prescription.AppointmentID,
		PatientName:   prescription.PatientName,
		Medication:    prescription.Medication,
		Dosage:        prescription.Dosage,
		DoctorNotes:   prescription.DoctorNotes,
		CreatedAt:     prescription.CreatedAt,
	}
}

// PrescriptionsToResponses converts a slice of Prescription entities
func PrescriptionsToResponses(prescriptions []entity.Prescription) []dto.PrescriptionResponse {
	responses := make([]dto.PrescriptionResponse, len(prescriptions))
	for i, prescription := range prescriptions {
		responses[i] = *PrescriptionToResponse(&prescription)
	}
	return responses
}
