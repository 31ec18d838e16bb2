package handlers

import (
	"github.com/go-playground/validator/v10"

	"github.com/herafoundry/hera_data_engine/internal/utils/smartcode"
)

// validateSmartCode backs the "smartcode" binding tag.
func validateSmartCode(fl validator.FieldLevel) bool {
	return smartcode.IsValid(fl.Field().String())
}
