// Package validation builds the request validator and turns its errors into
// per-field messages.
package validation

import (
	"errors"
	"reflect"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"

	"github.com/noah-isme/gema-assign/internal/lang"
)

// Validator validates DTOs and translates the failures.
type Validator struct {
	*validator.Validate
	translator ut.Translator
}

// New returns a validator whose messages are registered on the translator of strings.
func New(strings *lang.Strings) (*Validator, error) {
	validate := validator.New()
	translator := strings.Translator()
	if err := en_translations.RegisterDefaultTranslations(validate, translator); err != nil {
		return nil, err
	}

	validate.RegisterTagNameFunc(jsonName)
	return &Validator{Validate: validate, translator: translator}, nil
}

// Messages maps each invalid field to a readable message. It returns nil when
// err is not a validation failure.
func (v *Validator) Messages(err error) map[string]string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return nil
	}

	out := make(map[string]string, len(validationErrors))
	for _, fe := range validationErrors {
		out[fe.Field()] = fe.Translate(v.translator)
	}
	return out
}

func jsonName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	return name
}
