package validator

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// timeSlotPattern matches the canonical "HH:MM-HH:MM" slot form.
var timeSlotPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]-([01][0-9]|2[0-3]):[0-5][0-9]$`)

type CustomValidator struct {
	validator *validator.Validate
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("timeslot", validateTimeSlot)
	return &CustomValidator{
		validator: v,
	}
}

func validateTimeSlot(fl validator.FieldLevel) bool {
	return timeSlotPattern.MatchString(fl.Field().String())
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

func (cv *CustomValidator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "min":
				errors[field] = field + " must be at least " + e.Param() + " characters"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "gte":
				errors[field] = field + " must be greater than or equal to " + e.Param()
			case "lte":
				errors[field] = field + " must be less than or equal to " + e.Param()
			case "timeslot":
				errors[field] = field + " must be in HH:MM-HH:MM form"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}
