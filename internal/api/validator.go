package api

import (
	"reflect"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Codecs lists the encoding variants the worker understands.
var Codecs = []string{"alac", "aac", "atmos", "ec3"}

// NewValidator returns a validator that reports JSON field names and knows
// the codec tag.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonFieldName)
	_ = v.RegisterValidation("codec", validateCodec)
	return v
}

func validateCodec(fl validator.FieldLevel) bool {
	return slices.Contains(Codecs, strings.ToLower(fl.Field().String()))
}

func jsonFieldName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "-" {
		return ""
	}
	if name == "" {
		return field.Name
	}
	return name
}
