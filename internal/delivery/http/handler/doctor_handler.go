package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"go-clinic-appointment/internal/delivery/dto"
	"go-clinic-appointment/internal/usecase"
	"go-clinic-appointment/pkg/response"
	"go-clinic-appointment/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DoctorHandler struct {
	doctorUsecase       usecase.DoctorUsecase
	availabilityUsecase usecase.AvailabilityUsecase
	validator           *validator.CustomValidator
}

func NewDoctorHandler(
	doctorUsecase usecase.DoctorUsecase,
	availabilityUsecase usecase.AvailabilityUsecase,
	validator *validator.CustomValidator,
) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase:       doctorUsecase,
		availabilityUsecase: availabilityUsecase,
		validator:           validator,
	}
}

func (h *DoctorHandler) CreateDoctor(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.CreateDoctor(r.Context(), &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorEmailExists:
			response.Conflict(w, "Doctor email already exists")
		case usecase.ErrInvalidSlotList:
			response.BadRequest(w, "Invalid slot template")
		case usecase.ErrInvalidFee:
			response.BadRequest(w, "Invalid consultation fee")
		default:
			response.InternalServerError(w, "Failed to create doctor")
		}
		return
	}

	response.Success(w, http.StatusCreated, "Doctor created successfully", doctor)
}

func (h *DoctorHandler) UpdateDoctor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	var req dto.UpdateDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.UpdateDoctor(r.Context(), doctorID, &req)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		case usecase.ErrInvalidSlotList:
			response.BadRequest(w, "Invalid slot template")
		case usecase.ErrInvalidFee:
			response.BadRequest(w, "Invalid consultation fee")
		default:
			response.InternalServerError(w, "Failed to update doctor")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor updated successfully", doctor)
}

func (h *DoctorHandler) DeleteDoctor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	if err := h.doctorUsecase.DeleteDoctor(r.Context(), doctorID); err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to delete doctor")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor deleted successfully", nil)
}

func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	doctor, err := h.doctorUsecase.GetDoctor(r.Context(), doctorID)
	if err != nil {
		switch err {
		case usecase.ErrDoctorNotFound:
			response.NotFound(w, "Doctor not found")
		default:
			response.InternalServerError(w, "Failed to get doctor")
		}
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

// FilterDoctors handles the doctor search. Query parameters name, specialty
// and time accept the literal "null" (or absence) as "no filter".
func (h *DoctorHandler) FilterDoctors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter, err := dto.ParseDoctorFilter(query.Get("name"), query.Get("specialty"), query.Get("time"))
	if err != nil {
		response.BadRequest(w, "Time filter must be AM or PM")
		return
	}

	doctors, err := h.doctorUsecase.FilterDoctors(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to search doctors")
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

// GetAvailability returns the free slots of a doctor on one date. An
// unknown doctor yields an empty list with 200, matching the search-facing
// contract rather than the admin-facing one.
func (h *DoctorHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	doctorID, err := uuid.Parse(vars["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	date, err := time.Parse("2006-01-02", r.URL.Query().Get("date"))
	if err != nil {
		response.BadRequest(w, "Invalid date, use YYYY-MM-DD")
		return
	}

	slots, err := h.availabilityUsecase.GetDoctorAvailability(r.Context(), doctorID, date)
	if err != nil {
		response.InternalServerError(w, "Failed to get availability")
		return
	}

	response.Success(w, http.StatusOK, "Availability retrieved successfully", &dto.AvailabilityResponse{
		DoctorID:       doctorID,
		Date:           date.Format("2006-01-02"),
		AvailableSlots: slots,
	})
}
