package middleware

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/clinicops/frontdesk-api/internal/schedule"
)

// RegisterValidators installs custom binding validators. "timekey"
// accepts only "HH:MM" values that sit on the schedule grid.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	return v.RegisterValidation("timekey", func(fl validator.FieldLevel) bool {
		return schedule.SlotIndex(fl.Field().String()) >= 0
	})
}
