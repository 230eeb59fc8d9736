package handlers

import (
	"errors"

	"github.com/go-playground/validator/v10"
)

// isFieldError reports whether err is a binding failure of tag on field.
func isFieldError(err error, field, tag string) bool {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return false
	}
	for _, fe := range verrs {
		if fe.Field() == field && fe.Tag() == tag {
			return true
		}
	}
	return false
}
