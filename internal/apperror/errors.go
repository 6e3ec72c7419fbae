// Package apperror defines the error taxonomy surfaced by services:
// validation failures, state conflicts, missing records, and deletions
// blocked by referential integrity.
package apperror

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Kind string

const (
	KindValidation Kind = "validation" // malformed input, rejected before persistence
	KindConflict   Kind = "conflict"   // precondition violated against current state
	KindNotFound   Kind = "not_found"  // lookup by identity failed
	KindInUse      Kind = "in_use"     // deletion blocked by a referencing record
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func Validationf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func Conflictf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func InUsef(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInUse, Message: fmt.Sprintf(format, args...)}
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// Postgres error codes relevant to the taxonomy.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// FromDB translates driver and gorm errors into the taxonomy. entity names
// the record being operated on, for the user-facing message.
func FromDB(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &Error{Kind: KindNotFound, Message: entity + " not found", Err: err}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return &Error{Kind: KindInUse, Message: "cannot delete " + entity + ", still in use", Err: err}
		case pgUniqueViolation:
			return &Error{Kind: KindConflict, Message: entity + " already exists", Err: err}
		}
	}
	return err
}

// HTTPStatus maps an error to the status code handlers should answer with.
func HTTPStatus(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindInUse:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
