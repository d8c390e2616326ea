package clinic

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/clinicsys/clinic/internal/platform/db"
)

// FieldError describes one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned before a write reaches the store. It matches
// db.ErrConstraintViolation under errors.Is.
type ValidationError struct {
	Entity string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + " " + f.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Entity, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return db.ErrConstraintViolation }

type validator struct {
	entity string
	fields []FieldError
}

func (v *validator) fail(field, format string, args ...interface{}) {
	v.fields = append(v.fields, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
}

func (v *validator) required(field, value string, max int) {
	if strings.TrimSpace(value) == "" {
		v.fail(field, "is required")
		return
	}
	v.maxLen(field, &value, max)
}

func (v *validator) maxLen(field string, value *string, max int) {
	if value == nil || max <= 0 {
		return
	}
	if n := utf8.RuneCountInString(*value); n > max {
		v.fail(field, "must be at most %d characters, got %d", max, n)
	}
}

func (v *validator) positive(field string, id int64) {
	if id <= 0 {
		v.fail(field, "is required")
	}
}

func (v *validator) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return &ValidationError{Entity: v.entity, Fields: v.fields}
}

// Column widths of the persisted schema.
const (
	maxClinicName     = 100
	maxAddress        = 200
	maxPhone          = 20
	maxPersonName     = 50
	maxSpecialization = 100
	maxEmail          = 100
)

func (c *Clinic) Validate() error {
	v := &validator{entity: "clinic"}
	v.required("name", c.Name, maxClinicName)
	v.maxLen("address", c.Address, maxAddress)
	v.maxLen("phone_number", c.PhoneNumber, maxPhone)
	return v.err()
}

func (d *Doctor) Validate() error {
	v := &validator{entity: "doctor"}
	v.required("first_name", d.FirstName, maxPersonName)
	v.required("last_name", d.LastName, maxPersonName)
	v.required("specialization", d.Specialization, maxSpecialization)
	v.maxLen("email", d.Email, maxEmail)
	if d.Email != nil {
		if _, err := mail.ParseAddress(*d.Email); err != nil {
			v.fail("email", "must be a valid email address")
		}
	}
	return v.err()
}

func (p *Patient) Validate() error {
	v := &validator{entity: "patient"}
	v.required("first_name", p.FirstName, maxPersonName)
	v.required("last_name", p.LastName, maxPersonName)
	if p.DateOfBirth.IsZero() {
		v.fail("date_of_birth", "is required")
	}
	if !p.Gender.Valid() {
		v.fail("gender", "must be one of Male, Female, Other")
	}
	v.maxLen("phone_number", p.PhoneNumber, maxPhone)
	v.maxLen("email", p.Email, maxEmail)
	v.maxLen("address", p.Address, maxAddress)
	return v.err()
}

func (a *Appointment) Validate() error {
	v := &validator{entity: "appointment"}
	v.positive("patient_id", a.PatientID)
	v.positive("doctor_id", a.DoctorID)
	v.positive("clinic_id", a.ClinicID)
	if a.AppointmentDate.IsZero() {
		v.fail("appointment_date", "is required")
	}
	if !a.AppointmentTime.Valid() {
		v.fail("appointment_time", "must be within a single day")
	}
	if !a.Status.Valid() {
		v.fail("status", "must be one of Scheduled, Confirmed, Cancelled, Completed")
	}
	return v.err()
}

// CheckPage rejects a negative skip or a non-positive take.
func CheckPage(skip, take int) error {
	v := &validator{entity: "page"}
	if skip < 0 {
		v.fail("skip", "must not be negative")
	}
	if take <= 0 {
		v.fail("take", "must be positive")
	}
	return v.err()
}
