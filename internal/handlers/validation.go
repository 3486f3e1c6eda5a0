package handlers

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"events-admin/internal/filter"
	"events-admin/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the dashboard tags to gin's binding validator.
// It must run before any request is bound.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("venue_type", func(fl validator.FieldLevel) bool {
			return models.IsValidVenueType(fl.Field().String())
		})
		_ = v.RegisterValidation("ecosystem_focus", func(fl validator.FieldLevel) bool {
			return models.IsValidEcosystemFocus(fl.Field().String())
		})
		_ = v.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
			_, err := time.Parse(filter.DateLayout, fl.Field().String())
			return err == nil
		})
	})
}
