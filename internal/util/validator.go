package util

import (
	"academy_backend/internal/apperr"
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validatorOnce sync.Once
	translator    ut.Translator
)

// InitValidator configures gin's validator to report json field names with
// English messages. Safe to call more than once.
func InitValidator() {
	validatorOnce.Do(func() {
		english := en.New()
		translator, _ = ut.New(english, english).GetTranslator("en")

		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = en_translations.RegisterDefaultTranslations(v, translator)
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name == "" {
				name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
			}
			return name
		})
	})
}

// Validate runs struct validation outside of request binding.
func Validate(obj interface{}) error {
	InitValidator()
	if err := binding.Validator.ValidateStruct(obj); err != nil {
		return TranslateValidation(err)
	}
	return nil
}

// TranslateValidation turns validator errors into an apperr validation error.
func TranslateValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperr.Validation(err.Error())
	}
	fields := make([]apperr.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Error()
		if translator != nil {
			msg = fe.Translate(translator)
		}
		fields = append(fields, apperr.FieldError{Field: fe.Field(), Message: msg})
	}
	return apperr.Validation("invalid request", fields...)
}
