package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// ErrValidation matches any *Errors through errors.Is.
var ErrValidation = errors.New("validation_failed")

const (
	CodeRequired        = "required"
	CodeInvalid         = "invalid"
	CodeContextMismatch = "context_mismatch"
	CodeOwnership       = "ownership_mismatch"
	CodeDateOrder       = "date_order"
	CodeOutOfRange      = "out_of_range"
)

var phonePattern = regexp.MustCompile(`^\+380\d{9}$`)

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Errors carries every field that failed; callers surface it as a 400.
type Errors struct {
	Fields []FieldError `json:"errors"`
}

func New(field, code, message string) *Errors {
	return &Errors{Fields: []FieldError{{Field: field, Code: code, Message: message}}}
}

func (e *Errors) Add(field, code, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Code: code, Message: message})
}

func (e *Errors) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// OrNil returns nil when nothing was collected so the result can be returned as error.
func (e *Errors) OrNil() error {
	if e.Empty() {
		return nil
	}
	return e
}

func (e *Errors) Error() string {
	if e.Empty() {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Field, f.Message))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

func (e *Errors) Is(target error) bool {
	return target == ErrValidation
}

// Has reports whether a field failed with the given code.
func (e *Errors) Has(field, code string) bool {
	if e == nil {
		return false
	}
	for _, f := range e.Fields {
		if f.Field == field && f.Code == code {
			return true
		}
	}
	return false
}

func As(err error) (*Errors, bool) {
	var verr *Errors
	if errors.As(err, &verr) {
		return verr, true
	}
	return nil, false
}

func IsPhone(value string) bool {
	return phonePattern.MatchString(value)
}

var (
	defaultOnce     sync.Once
	defaultValidate *validator.Validate
)

// Struct validates tagged request structs and converts the result into *Errors.
func Struct(s any) error {
	defaultOnce.Do(func() {
		defaultValidate = newValidate()
	})
	err := defaultValidate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	out := &Errors{}
	for _, fe := range fieldErrs {
		out.Add(fe.Field(), codeFor(fe), messageFor(fe))
	}
	return out
}

func newValidate() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("ua_phone", func(fl validator.FieldLevel) bool {
		return IsPhone(fl.Field().String())
	})
	return v
}

func codeFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return CodeRequired
	case "gt", "gte", "lt", "lte", "min", "max":
		return CodeOutOfRange
	case "gtfield":
		return CodeDateOrder
	default:
		return CodeInvalid
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return "invalid email format"
	case "ua_phone":
		return "phone must be in format +380xxxxxxxxx"
	case "oneof":
		return fe.Field() + " must be one of: " + fe.Param()
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", fe.Field(), fe.Param())
	case "gtfield":
		return fmt.Sprintf("%s must be after %s", fe.Field(), fe.Param())
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
