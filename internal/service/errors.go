package service

import (
	"errors"
	"fmt"

	"zamora/internal/store"
)

// Error classes returned by every service. The API maps them to status codes
// with errors.Is.
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = store.ErrNotFound
	ErrConflict   = errors.New("conflict")
	ErrForbidden  = errors.New("forbidden")
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

// translate turns store failures into service error classes.
func translate(err error) error {
	var te *store.TransitionError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &te):
		return fmt.Errorf("%w: %s", ErrConflict, te.Error())
	case errors.Is(err, store.ErrDuplicate), errors.Is(err, store.ErrFolioNotOpen):
		return fmt.Errorf("%w: %s", ErrConflict, err.Error())
	}
	return err
}
