package api

import (
	"errors"
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/dusk-indust/codesense/internal/analysis"
)

var registerOnce sync.Once

// registerValidators adds the custom tags used by the request types to gin's
// validator engine. Safe to call more than once.
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("codelang", validateCodeLang)
		_ = v.RegisterValidation("notblank", validateNotBlank)
	})
}

// validateCodeLang accepts the language tags with an analysis variant.
func validateCodeLang(fl validator.FieldLevel) bool {
	_, ok := analysis.NormalizeLanguage(fl.Field().String())
	return ok && strings.TrimSpace(fl.Field().String()) != ""
}

func validateNotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// validationMessage turns a binding error into a client-facing message.
func validationMessage(err error) (string, string) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "Invalid request body", "INVALID_REQUEST"
	}
	for _, fe := range verrs {
		switch {
		case fe.Field() == "Code":
			return "Code cannot be empty.", "EMPTY_CODE"
		case fe.Field() == "Language" && fe.Tag() == "codelang":
			return "Invalid language. Use: python, javascript, cpp", "INVALID_LANGUAGE"
		case fe.Field() == "Language":
			return "Language is required.", "INVALID_LANGUAGE"
		}
	}
	return "Invalid request body", "INVALID_REQUEST"
}
