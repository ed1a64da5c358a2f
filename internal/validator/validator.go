// Package validator provides custom validation functions for Gin's binding engine.
package validator

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var clockTimeRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("posture_category", validatePostureCategory)
		_ = v.RegisterValidation("activity_type", validateActivityType)
		_ = v.RegisterValidation("sensitivity", validateSensitivity)
		_ = v.RegisterValidation("alert_response", validateAlertResponse)
		_ = v.RegisterValidation("clock_time", validateClockTime)
		_ = v.RegisterValidation("weekday", validateWeekday)
		_ = v.RegisterValidation("theme", validateTheme)
	}
}

func validatePostureCategory(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "good", "moderate", "poor":
		return true
	}
	return false
}

func validateActivityType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "working", "gaming", "studying", "watching", "reading", "browsing", "other":
		return true
	}
	return false
}

func validateSensitivity(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "low", "medium", "high":
		return true
	}
	return false
}

func validateAlertResponse(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "corrected", "ignored", "dismissed", "snoozed":
		return true
	}
	return false
}

func validateClockTime(fl validator.FieldLevel) bool {
	return clockTimeRegex.MatchString(fl.Field().String())
}

func validateWeekday(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday":
		return true
	}
	return false
}

func validateTheme(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "light", "dark", "system":
		return true
	}
	return false
}
