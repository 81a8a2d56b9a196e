package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal"
	"github.com/Nikesh-Uprety/HydroSleep-Tracker/internal/calendar"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks struct tags and reports the first failure as a ValidationError.
func Validate(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return internal.NewValidationError("", err.Error())
	}
	fe := verrs[0]
	return internal.NewValidationError(fe.Field(), describe(fe))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "datetime":
		return "must be a date in YYYY-MM-DD format"
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// resolveDay turns an optional "YYYY-MM-DD" into a calendar day, defaulting to now's day.
// Days after today are rejected.
func resolveDay(field, raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return calendar.DayStart(now), nil
	}
	day, err := calendar.ParseDay(raw)
	if err != nil {
		return time.Time{}, internal.NewValidationError(field, "must be a date in YYYY-MM-DD format")
	}
	if calendar.IsAfterDay(day, now) {
		return time.Time{}, internal.NewValidationError(field, "cannot be in the future")
	}
	return day, nil
}
