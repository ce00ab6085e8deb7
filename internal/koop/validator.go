// Валидация тел запросов через go-playground/validator.
// Имена полей в ошибках берутся из json тегов.
package koop

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator"

	"github.com/tarimkoop/koop/internal/koop/apierrors"
)

var (
	personNameRe = regexp.MustCompile(`^[\p{L} .'\-]+$`)
	phoneRe      = regexp.MustCompile(`^\+?[0-9 ()\-]{7,20}$`)
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	if err := v.RegisterValidation("personName", personNameValidator); err != nil {
		return nil
	}
	if err := v.RegisterValidation("phone", phoneValidator); err != nil {
		return nil
	}
	return &RequestValidator{v}
}

// Validate возвращает apierrors.ErrInvalidRequest со списком неверных полей.
func (rv *RequestValidator) Validate(i interface{}) error {
	err := rv.validator.Struct(i)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fe.Field())
	}
	return apierrors.ErrInvalidRequest.WithFormattedMessage(strings.Join(fields, ", "))
}

func personNameValidator(fl validator.FieldLevel) bool {
	value := strings.TrimSpace(fl.Field().String())
	if value == "" {
		return true
	}
	lenStr := utf8.RuneCountInString(value)
	return personNameRe.MatchString(value) && lenStr <= 100
}

func phoneValidator(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	if value == "" {
		return true
	}
	return phoneRe.MatchString(value)
}
