package lifecycle

import (
	"strings"

	"lifedrop/models"
	"lifedrop/utils"
)

func validateCreateInput(in models.CreateRequestInput) error {
	if !models.ValidID(in.RequesterID) {
		return utils.NewValidationError("malformed requester id %q", in.RequesterID)
	}
	if strings.TrimSpace(in.PatientName) == "" {
		return utils.NewValidationError("patient name is required")
	}
	if strings.TrimSpace(in.ContactNumber) == "" {
		return utils.NewValidationError("contact number is required")
	}
	if !in.BloodGroup.Valid() {
		return utils.NewValidationError("unknown blood group %q", in.BloodGroup)
	}
	if in.Units <= 0 {
		return utils.NewValidationError("units must be positive")
	}
	if in.Urgency < 1 || in.Urgency > 5 {
		return utils.NewValidationError("urgency must be between 1 and 5")
	}
	if strings.TrimSpace(in.Hospital) == "" {
		return utils.NewValidationError("hospital is required")
	}
	if in.Lat < -90 || in.Lat > 90 || in.Lng < -180 || in.Lng > 180 {
		return utils.NewValidationError("coordinates out of range")
	}
	return nil
}
