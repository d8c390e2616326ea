package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"foreign key", &pgconn.PgError{Code: codeForeignKeyViolation}, ErrConstraintViolation},
		{"not null", &pgconn.PgError{Code: codeNotNullViolation}, ErrConstraintViolation},
		{"check", &pgconn.PgError{Code: codeCheckViolation}, ErrConstraintViolation},
		{"too long", &pgconn.PgError{Code: codeStringTooLong}, ErrConstraintViolation},
		{"wrapped fk", fmt.Errorf("insert: %w", &pgconn.PgError{Code: codeForeignKeyViolation}), ErrConstraintViolation},
		{"serialization", &pgconn.PgError{Code: codeSerializationFailure}, ErrStorageFault},
		{"deadline", context.DeadlineExceeded, ErrStorageFault},
		{"plain", errors.New("connection reset"), ErrStorageFault},
		{"sentinel", fmt.Errorf("bad: %w", ErrConstraintViolation), ErrConstraintViolation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := &pgconn.PgError{Code: codeForeignKeyViolation, ConstraintName: "appointments_clinic_id_fkey"}
	err := Wrap("create", "appointment", 0, cause)

	if !errors.Is(err, ErrConstraintViolation) {
		t.Error("expected errors.Is ErrConstraintViolation")
	}
	if errors.Is(err, ErrStorageFault) {
		t.Error("did not expect ErrStorageFault")
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		t.Error("expected cause to remain reachable")
	}
	if ConstraintName(err) != "appointments_clinic_id_fkey" {
		t.Errorf("unexpected constraint name %q", ConstraintName(err))
	}

	var opErr *OpError
	if !errors.As(err, &opErr) {
		t.Fatal("expected *OpError")
	}
	if opErr.Op != "create" || opErr.Entity != "appointment" {
		t.Errorf("unexpected op error %+v", opErr)
	}
}

func TestWrap_KeepsID(t *testing.T) {
	err := Wrap("delete", "clinic", 42, errors.New("conn closed"))
	if !strings.Contains(err.Error(), "delete clinic 42") {
		t.Errorf("expected operation context in %q", err.Error())
	}
	if !errors.Is(err, ErrStorageFault) {
		t.Error("expected storage fault")
	}
}

func TestWrap_Idempotent(t *testing.T) {
	inner := Wrap("update", "doctor", 7, errors.New("boom"))
	outer := Wrap("update", "doctor", 7, fmt.Errorf("retry: %w", inner))
	var opErr *OpError
	if !errors.As(outer, &opErr) || opErr.ID != 7 {
		t.Fatalf("expected original op error, got %v", outer)
	}
}

func TestWrap_Nil(t *testing.T) {
	if Wrap("get", "patient", 1, nil) != nil {
		t.Error("expected nil")
	}
}

func TestIsSerializationFailure(t *testing.T) {
	if !IsSerializationFailure(&pgconn.PgError{Code: codeSerializationFailure}) {
		t.Error("expected serialization failure")
	}
	if IsSerializationFailure(errors.New("x")) {
		t.Error("did not expect serialization failure")
	}
}
