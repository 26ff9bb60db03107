// Package validation wraps go-playground/validator with the custom rules used
// by request payloads and reports failures keyed by JSON field name.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

	reservedUsernames = map[string]struct{}{
		"admin":         {},
		"root":          {},
		"superuser":     {},
		"administrator": {},
	}
)

// Validator checks structs and single values.
type Validator struct {
	v *validator.Validate
}

// New builds a Validator with the custom tags registered.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	// ошибки регистрации возможны только при опечатке в имени тега
	_ = v.RegisterValidation("username_chars", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("not_reserved", func(fl validator.FieldLevel) bool {
		_, reserved := reservedUsernames[strings.ToLower(fl.Field().String())]
		return !reserved
	})
	_ = v.RegisterValidation("password_strength", func(fl validator.FieldLevel) bool {
		return IsStrongPassword(fl.Field().String())
	})
	// max считает руны, bcrypt ограничен байтами
	_ = v.RegisterValidation("max_bytes", func(fl validator.FieldLevel) bool {
		limit, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return len(fl.Field().String()) <= limit
	})

	return &Validator{v: v}
}

// Struct validates s and returns a field to message map, or nil when s is valid.
func (v *Validator) Struct(s interface{}) map[string]string {
	return v.collect(v.v.Struct(s), "")
}

// Var validates a single value against tag and reports failures under field.
func (v *Validator) Var(field string, value interface{}, tag string) map[string]string {
	return v.collect(v.v.Var(value, tag), field)
}

func (v *Validator) collect(err error, field string) map[string]string {
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		name := field
		if name == "" {
			name = "request"
		}
		return map[string]string{name: err.Error()}
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		name := fe.Field()
		if field != "" {
			name = field
		}
		if _, seen := fields[name]; seen {
			continue
		}
		fields[name] = message(fe)
	}
	return fields
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "max_bytes":
		return fmt.Sprintf("must be at most %s bytes", fe.Param())
	case "email":
		return "must be a valid email address"
	case "http_url", "url":
		return "must be a valid http or https URL"
	case "username_chars":
		return "may only contain letters, digits, underscores and hyphens"
	case "not_reserved":
		return "is reserved"
	case "password_strength":
		return "must contain an uppercase letter, a lowercase letter, a digit and a special character"
	default:
		return fmt.Sprintf("failed on the %q rule", fe.Tag())
	}
}

// IsStrongPassword reports whether password has at least one upper case
// letter, lower case letter, digit and special character.
func IsStrongPassword(password string) bool {
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(passwordSpecials, r):
			special = true
		}
	}
	return upper && lower && digit && special
}
