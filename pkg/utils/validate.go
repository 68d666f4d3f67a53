package utils

import (
	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	err := validate.RegisterValidation("maintenance_status", validateMaintenanceStatus)
	if err != nil {
		return
	}
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateMaintenanceStatus(fl validator.FieldLevel) bool {
	status := fl.Field().String()
	validStatuses := []string{"NONE", "HAS_PROBLEM", "NEEDS_REPAIR", "IN_MAINTENANCE", "DAMAGED"}

	for _, validStatus := range validStatuses {
		if status == validStatus {
			return true
		}
	}
	return false
}
