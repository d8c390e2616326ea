package clinic

import (
	"github.com/clinicsys/clinic/pkg/calendar"
)

// Clinic maps to the clinics table.
type Clinic struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Address     *string `json:"address,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// GetID returns the store-assigned identity.
func (c Clinic) GetID() int64 { return c.ID }

// Doctor maps to the doctors table.
type Doctor struct {
	ID             int64   `json:"id"`
	FirstName      string  `json:"first_name"`
	LastName       string  `json:"last_name"`
	Specialization string  `json:"specialization"`
	PhoneNumber    *string `json:"phone_number,omitempty"`
	Email          *string `json:"email,omitempty"`
}

// GetID returns the store-assigned identity.
func (d Doctor) GetID() int64 { return d.ID }

// Patient maps to the patients table.
type Patient struct {
	ID          int64         `json:"id"`
	FirstName   string        `json:"first_name"`
	LastName    string        `json:"last_name"`
	DateOfBirth calendar.Date `json:"date_of_birth"`
	Gender      Gender        `json:"gender"`
	PhoneNumber *string       `json:"phone_number,omitempty"`
	Email       *string       `json:"email,omitempty"`
	Address     *string       `json:"address,omitempty"`
}

// GetID returns the store-assigned identity.
func (p Patient) GetID() int64 { return p.ID }

// Appointment maps to the appointments table. Related records are referenced
// by id only; callers look them up through the owning repository.
type Appointment struct {
	ID              int64              `json:"id"`
	PatientID       int64              `json:"patient_id"`
	DoctorID        int64              `json:"doctor_id"`
	ClinicID        int64              `json:"clinic_id"`
	AppointmentDate calendar.Date      `json:"appointment_date"`
	AppointmentTime calendar.TimeOfDay `json:"appointment_time"`
	Status          AppointmentStatus  `json:"status"`
	Notes           *string            `json:"notes,omitempty"`
}

// GetID returns the store-assigned identity.
func (a Appointment) GetID() int64 { return a.ID }

// Entity is implemented by every record type a Repository stores.
type Entity interface {
	Clinic | Doctor | Patient | Appointment
	GetID() int64
}
