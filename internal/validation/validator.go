// Package validation wraps go-playground/validator for account requests.
//
// Field names in results are the json tag names, so handlers can return them
// to the client unchanged. Numeric answers arrive as free text from HTML
// forms, which is why the integer checks operate on strings.
package validation

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

// Messages overrides the text reported for a failed check. Keys are
// "<field>.<tag>" or just "<field>" to cover every tag of that field.
type Messages map[string]string

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		validate.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})

		_ = validate.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		_ = validate.RegisterValidation("integer", func(fl validator.FieldLevel) bool {
			_, ok := parseInt(fl.Field().String())
			return ok
		})
		_ = validate.RegisterValidation("intmin", func(fl validator.FieldLevel) bool {
			n, ok := parseInt(fl.Field().String())
			bound, err := strconv.Atoi(fl.Param())
			return ok && err == nil && n >= bound
		})
		_ = validate.RegisterValidation("intmax", func(fl validator.FieldLevel) bool {
			n, ok := parseInt(fl.Field().String())
			bound, err := strconv.Atoi(fl.Param())
			return ok && err == nil && n <= bound
		})
	})
	return validate
}

// Struct validates s and returns one message per failing field, or nil.
func Struct(s any, msgs Messages) map[string]string {
	err := Validator().Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"request": err.Error()}
	}
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(fe, msgs)
	}
	return out
}

func message(fe validator.FieldError, msgs Messages) string {
	field := fe.Field()
	if m, ok := msgs[field+"."+fe.Tag()]; ok {
		return m
	}
	if m, ok := msgs[field]; ok {
		return m
	}
	switch fe.Tag() {
	case "required":
		return Title(field) + " is required"
	case "nonblank":
		return Title(field) + " cannot be empty"
	case "email":
		return "Please enter a valid email address"
	case "min":
		return Title(field) + " must be at least " + fe.Param() + " characters"
	case "integer":
		return Title(field) + " must be a whole number"
	case "intmin":
		return Title(field) + " must be at least " + fe.Param()
	case "intmax":
		return Title(field) + " must be at most " + fe.Param()
	}
	return Title(field) + " is invalid"
}

// Title renders a snake_case field name the way form labels show it.
func Title(field string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(field, "_", " "))
}

// ParseInt accepts whole numbers written as integers or as floats with no
// fractional part, since JSON numbers decode to float64.
func ParseInt(s string) (int, bool) {
	return parseInt(s)
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return 0, false
	}
	return int(f), true
}
