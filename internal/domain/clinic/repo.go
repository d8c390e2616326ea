package clinic

import (
	"context"
)

// Repository is the storage contract shared by every entity. A missing
// record is reported as a nil entity with a nil error, never as an error.
// Returned errors match db.ErrConstraintViolation or db.ErrStorageFault.
type Repository[E any] interface {
	// ListPaged returns up to take records after skipping skip, ordered by id.
	ListPaged(ctx context.Context, skip, take int) ([]*E, error)
	GetByID(ctx context.Context, id int64) (*E, error)
	// Create persists e and returns it with the assigned id. Any id on the
	// input is ignored.
	Create(ctx context.Context, e *E) (*E, error)
	// Update replaces every mutable field of the record identified by e's id.
	Update(ctx context.Context, e *E) (*E, error)
	// Delete removes the record and anything that depends on it. Deleting an
	// absent id succeeds without effect.
	Delete(ctx context.Context, id int64) error
}

type ClinicRepository = Repository[Clinic]

type DoctorRepository = Repository[Doctor]

type PatientRepository = Repository[Patient]

// AppointmentRepository adds lookups by the owning records.
type AppointmentRepository interface {
	Repository[Appointment]
	ListByClinic(ctx context.Context, clinicID int64, skip, take int) ([]*Appointment, error)
	ListByDoctor(ctx context.Context, doctorID int64, skip, take int) ([]*Appointment, error)
	ListByPatient(ctx context.Context, patientID int64, skip, take int) ([]*Appointment, error)
}

// Store bundles the repositories of one backing store.
type Store struct {
	Clinics      ClinicRepository
	Doctors      DoctorRepository
	Patients     PatientRepository
	Appointments AppointmentRepository
}
