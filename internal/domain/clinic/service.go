package clinic

import (
	"context"
	"fmt"
)

// Notifier delivers a text message to a phone number. Delivery is best
// effort; implementations log their own failures.
type Notifier interface {
	Send(ctx context.Context, phone, body string)
}

type Service struct {
	clinics      ClinicRepository
	doctors      DoctorRepository
	patients     PatientRepository
	appointments AppointmentRepository
	notifier     Notifier
}

func NewService(store *Store) *Service {
	return &Service{
		clinics:      store.Clinics,
		doctors:      store.Doctors,
		patients:     store.Patients,
		appointments: store.Appointments,
	}
}

// SetNotifier attaches an optional Notifier used to confirm new appointments.
func (s *Service) SetNotifier(n Notifier) {
	s.notifier = n
}

// -- Clinic --

func (s *Service) ListClinics(ctx context.Context, skip, take int) ([]*Clinic, error) {
	return s.clinics.ListPaged(ctx, skip, take)
}

func (s *Service) GetClinic(ctx context.Context, id int64) (*Clinic, error) {
	return s.clinics.GetByID(ctx, id)
}

func (s *Service) CreateClinic(ctx context.Context, c *Clinic) (*Clinic, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.clinics.Create(ctx, c)
}

func (s *Service) UpdateClinic(ctx context.Context, c *Clinic) (*Clinic, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return s.clinics.Update(ctx, c)
}

func (s *Service) DeleteClinic(ctx context.Context, id int64) error {
	return s.clinics.Delete(ctx, id)
}

// -- Doctor --

func (s *Service) ListDoctors(ctx context.Context, skip, take int) ([]*Doctor, error) {
	return s.doctors.ListPaged(ctx, skip, take)
}

func (s *Service) GetDoctor(ctx context.Context, id int64) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) (*Doctor, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return s.doctors.Create(ctx, d)
}

func (s *Service) UpdateDoctor(ctx context.Context, d *Doctor) (*Doctor, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return s.doctors.Update(ctx, d)
}

func (s *Service) DeleteDoctor(ctx context.Context, id int64) error {
	return s.doctors.Delete(ctx, id)
}

// -- Patient --

func (s *Service) ListPatients(ctx context.Context, skip, take int) ([]*Patient, error) {
	return s.patients.ListPaged(ctx, skip, take)
}

func (s *Service) GetPatient(ctx context.Context, id int64) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.patients.Create(ctx, p)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) (*Patient, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.patients.Update(ctx, p)
}

func (s *Service) DeletePatient(ctx context.Context, id int64) error {
	return s.patients.Delete(ctx, id)
}

// -- Appointment --

func (s *Service) ListAppointments(ctx context.Context, skip, take int) ([]*Appointment, error) {
	return s.appointments.ListPaged(ctx, skip, take)
}

func (s *Service) ListClinicAppointments(ctx context.Context, clinicID int64, skip, take int) ([]*Appointment, error) {
	return s.appointments.ListByClinic(ctx, clinicID, skip, take)
}

func (s *Service) ListDoctorAppointments(ctx context.Context, doctorID int64, skip, take int) ([]*Appointment, error) {
	return s.appointments.ListByDoctor(ctx, doctorID, skip, take)
}

func (s *Service) ListPatientAppointments(ctx context.Context, patientID int64, skip, take int) ([]*Appointment, error) {
	return s.appointments.ListByPatient(ctx, patientID, skip, take)
}

func (s *Service) GetAppointment(ctx context.Context, id int64) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// CreateAppointment stores a and, when a Notifier is attached and the
// patient has a phone number, sends a confirmation.
func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	refs, err := s.resolveRefs(ctx, a)
	if err != nil {
		return nil, err
	}

	created, err := s.appointments.Create(ctx, a)
	if err != nil {
		return nil, err
	}

	if s.notifier != nil && refs.patient.PhoneNumber != nil && *refs.patient.PhoneNumber != "" {
		s.notifier.Send(ctx, *refs.patient.PhoneNumber, confirmationMessage(created, refs))
	}
	return created, nil
}

func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) (*Appointment, error) {
	if err := a.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.resolveRefs(ctx, a); err != nil {
		return nil, err
	}
	return s.appointments.Update(ctx, a)
}

func (s *Service) DeleteAppointment(ctx context.Context, id int64) error {
	return s.appointments.Delete(ctx, id)
}

type appointmentRefs struct {
	patient *Patient
	doctor  *Doctor
	clinic  *Clinic
}

// resolveRefs loads the records a references so a missing one is reported
// as a field error. The store enforces the same rule on write.
func (s *Service) resolveRefs(ctx context.Context, a *Appointment) (*appointmentRefs, error) {
	var refs appointmentRefs
	var err error
	v := &validator{entity: "appointment"}

	if refs.patient, err = s.patients.GetByID(ctx, a.PatientID); err != nil {
		return nil, err
	}
	if refs.patient == nil {
		v.fail("patient_id", "references missing patient %d", a.PatientID)
	}
	if refs.doctor, err = s.doctors.GetByID(ctx, a.DoctorID); err != nil {
		return nil, err
	}
	if refs.doctor == nil {
		v.fail("doctor_id", "references missing doctor %d", a.DoctorID)
	}
	if refs.clinic, err = s.clinics.GetByID(ctx, a.ClinicID); err != nil {
		return nil, err
	}
	if refs.clinic == nil {
		v.fail("clinic_id", "references missing clinic %d", a.ClinicID)
	}

	if err := v.err(); err != nil {
		return nil, err
	}
	return &refs, nil
}

func confirmationMessage(a *Appointment, refs *appointmentRefs) string {
	return fmt.Sprintf("Hello %s, your appointment with Dr. %s at %s is booked for %s at %s.",
		refs.patient.FirstName, refs.doctor.LastName, refs.clinic.Name,
		a.AppointmentDate, a.AppointmentTime.String()[:5])
}
