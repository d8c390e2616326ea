package db

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Error kinds surfaced by repositories. Absent rows are not errors.
var (
	ErrConstraintViolation = errors.New("constraint violation")
	ErrStorageFault        = errors.New("storage fault")
)

// SQLSTATE codes the store is expected to raise.
const (
	codeNotNullViolation     = "23502"
	codeForeignKeyViolation  = "23503"
	codeUniqueViolation      = "23505"
	codeCheckViolation       = "23514"
	codeStringTooLong        = "22001"
	codeInvalidDatetime      = "22007"
	codeSerializationFailure = "40001"
)

// OpError records the repository operation that failed.
type OpError struct {
	Op     string
	Entity string
	ID     int64
	Kind   error
	Err    error
}

func (e *OpError) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("%s %s %d: %v: %v", e.Op, e.Entity, e.ID, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s %s: %v: %v", e.Op, e.Entity, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *OpError) Unwrap() []error {
	return []error{e.Kind, e.Err}
}

// Wrap classifies err and annotates it with the operation context. Errors
// already wrapped are returned unchanged.
func Wrap(op, entity string, id int64, err error) error {
	if err == nil {
		return nil
	}
	var opErr *OpError
	if errors.As(err, &opErr) {
		return err
	}
	return &OpError{Op: op, Entity: entity, ID: id, Kind: Classify(err), Err: err}
}

// Classify maps err to ErrConstraintViolation or ErrStorageFault.
func Classify(err error) error {
	if errors.Is(err, ErrConstraintViolation) {
		return ErrConstraintViolation
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeNotNullViolation, codeForeignKeyViolation, codeUniqueViolation,
			codeCheckViolation, codeStringTooLong, codeInvalidDatetime:
			return ErrConstraintViolation
		}
	}
	return ErrStorageFault
}

// IsSerializationFailure reports whether err is a serializable-isolation conflict.
func IsSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == codeSerializationFailure
}

// ConstraintName returns the violated constraint, if the store reported one.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}
