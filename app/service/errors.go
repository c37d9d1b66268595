package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Sentinel error untuk dicek handler dengan errors.Is.
var (
	ErrValidation  = errors.New("validation failed")
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failed")
)

// ValidationError dikembalikan sebelum ada penulisan ke database.
// Fields berisi nama field (json) -> pesan.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError membuat ValidationError untuk satu field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+" "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NotFoundError menandakan user atau rute yang dicari tidak ada.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

func userNotFound(uid string) error {
	return &NotFoundError{Resource: "user", ID: uid}
}

func routeNotFound(id string) error {
	return &NotFoundError{Resource: "route", ID: id}
}

// PersistenceError membungkus error driver database apa adanya.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func persistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	// NotFoundError dari repository diteruskan tanpa dibungkus.
	if errors.Is(err, ErrNotFound) {
		return err
	}
	return &PersistenceError{Op: op, Err: err}
}

var validationMessages = map[string]string{
	"required": "is required",
	"email":    "must be a valid email address",
	"gte":      "must be greater than or equal to %s",
	"lte":      "must be less than or equal to %s",
	"oneof":    "must be one of: %s",
}

// fromValidator mengubah validator.ValidationErrors menjadi ValidationError.
// Error lain (misal InvalidValidationError) dikembalikan apa adanya.
func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg, ok := validationMessages[fe.Tag()]
		if !ok {
			msg = "is invalid"
		} else if strings.Contains(msg, "%s") {
			msg = fmt.Sprintf(msg, fe.Param())
		}
		fields[fieldPath(fe)] = msg
	}
	return &ValidationError{Fields: fields}
}

// fieldPath membuang nama struct teratas dari namespace, contoh
// "RouteInput.coordenadas[0].lat" -> "coordenadas[0].lat".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}
