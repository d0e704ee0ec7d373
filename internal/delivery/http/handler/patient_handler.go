package handler

import (
	"encoding/json"
	"net/http"

	"go-clinic-appointment/internal/delivery/dto"
	"go-clinic-appointment/internal/domain/entity"
	"go-clinic-appointment/internal/usecase"
	"go-clinic-appointment/pkg/response"
	"go-clinic-appointment/pkg/validator"
)

type PatientHandler struct {
	patientUsecase usecase.PatientUsecase
	validator      *validator.CustomValidator
}

func NewPatientHandler(patientUsecase usecase.PatientUsecase, validator *validator.CustomValidator) *PatientHandler {
	return &PatientHandler{
		patientUsecase: patientUsecase,
		validator:      validator,
	}
}

func (h *PatientHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.CreatePatientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	patient, err := h.patientUsecase.Register(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrPatientExists:
			response.Conflict(w, "Patient with this email or phone already exists")
		default:
			response.InternalServerError(w, "Failed to register patient")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Patient registered successfully", patient)
}

func (h *PatientHandler) GetDetails(w http.ResponseWriter, r *http.Request) {
	patient, err := h.patientUsecase.GetPatientDetails(r.Context())
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to get patient details")
		}
		return
	}

	response.Success(w, http.StatusOK, "Patient retrieved successfully", patient)
}

// GetAppointments lists the logged-in patient's history. Query parameters
// condition ("past"/"future") and doctor accept the literal "null" or
// absence as "no filter".
func (h *PatientHandler) GetAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	condition, ok := entity.ParseHistoryCondition(query.Get("condition"))
	if !ok {
		response.BadRequest(w, "Condition must be past or future")
		return
	}

	doctorName := query.Get("doctor")
	if dto.IsNoFilter(doctorName) {
		doctorName = ""
	}

	var (
		appointments *dto.AppointmentListResponse
		err          error
	)
	if condition == entity.HistoryConditionAny && doctorName == "" {
		appointments, err = h.patientUsecase.GetMyAppointments(r.Context())
	} else {
		appointments, err = h.patientUsecase.GetFilteredAppointments(r.Context(), condition, doctorName)
	}
	if err != nil {
		switch err {
		case usecase.ErrPatientNotFound:
			response.NotFound(w, "Patient not found")
		default:
			response.InternalServerError(w, "Failed to get appointments")
		}
		return
	}

	response.Success(w, http.StatusOK, "Appointments retrieved successfully", appointments)
}
