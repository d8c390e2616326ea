package clinic

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/clinicsys/clinic/internal/platform/db"
	"github.com/clinicsys/clinic/pkg/calendar"
)

type sentMessage struct {
	Phone string
	Body  string
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (n *recordingNotifier) Send(_ context.Context, phone, body string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentMessage{Phone: phone, Body: body})
}

func newTestService() (*Service, *recordingNotifier) {
	svc := NewService(NewMemStore())
	n := &recordingNotifier{}
	svc.SetNotifier(n)
	return svc, n
}

func seedService(t *testing.T, svc *Service, phone *string) (*Clinic, *Doctor, *Patient) {
	t.Helper()
	ctx := context.Background()
	c, err := svc.CreateClinic(ctx, &Clinic{Name: "Riverside Clinic"})
	if err != nil {
		t.Fatalf("create clinic: %v", err)
	}
	d, err := svc.CreateDoctor(ctx, &Doctor{FirstName: "Grace", LastName: "Hopper", Specialization: "Neurology"})
	if err != nil {
		t.Fatalf("create doctor: %v", err)
	}
	p, err := svc.CreatePatient(ctx, &Patient{
		FirstName:   "Ada",
		LastName:    "Lovelace",
		DateOfBirth: calendar.NewDate(1985, 12, 10),
		Gender:      GenderFemale,
		PhoneNumber: phone,
	})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}
	return c, d, p
}

func TestService_CreateClinic_Validation(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.CreateClinic(context.Background(), &Clinic{})
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if ve.Fields[0].Field != "name" {
		t.Errorf("expected name field error, got %+v", ve.Fields)
	}
	if !errors.Is(err, db.ErrConstraintViolation) {
		t.Error("expected ValidationError to match ErrConstraintViolation")
	}
}

func TestService_CreateAppointment_SendsConfirmation(t *testing.T) {
	svc, n := newTestService()
	c, d, p := seedService(t, svc, strPtr("+15550100"))

	a, err := svc.CreateAppointment(context.Background(), &Appointment{
		PatientID:       p.ID,
		DoctorID:        d.ID,
		ClinicID:        c.ID,
		AppointmentDate: calendar.NewDate(2024, 5, 1),
		AppointmentTime: calendar.Clock(9, 30, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("expected default status Scheduled, got %s", a.Status)
	}

	if len(n.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(n.sent))
	}
	msg := n.sent[0]
	if msg.Phone != "+15550100" {
		t.Errorf("expected patient phone, got %s", msg.Phone)
	}
	for _, want := range []string{"Ada", "Dr. Hopper", "Riverside Clinic", "2024-05-01", "09:30"} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("expected message to contain %q, got %q", want, msg.Body)
		}
	}
}

func TestService_CreateAppointment_NoPhoneNoMessage(t *testing.T) {
	svc, n := newTestService()
	c, d, p := seedService(t, svc, nil)

	_, err := svc.CreateAppointment(context.Background(), &Appointment{
		PatientID:       p.ID,
		DoctorID:        d.ID,
		ClinicID:        c.ID,
		AppointmentDate: calendar.NewDate(2024, 5, 1),
		AppointmentTime: calendar.Clock(9, 30, 0),
		Status:          StatusConfirmed,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(n.sent) != 0 {
		t.Errorf("expected no message without a phone number, got %d", len(n.sent))
	}
}

func TestService_CreateAppointment_WithoutNotifier(t *testing.T) {
	svc := NewService(NewMemStore())
	c, d, p := seedService(t, svc, strPtr("+15550100"))

	_, err := svc.CreateAppointment(context.Background(), &Appointment{
		PatientID:       p.ID,
		DoctorID:        d.ID,
		ClinicID:        c.ID,
		AppointmentDate: calendar.NewDate(2024, 5, 1),
		AppointmentTime: calendar.Clock(9, 30, 0),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestService_CreateAppointment_MissingReferences(t *testing.T) {
	svc, n := newTestService()
	c, d, _ := seedService(t, svc, nil)

	_, err := svc.CreateAppointment(context.Background(), &Appointment{
		PatientID:       12345,
		DoctorID:        d.ID,
		ClinicID:        c.ID + 99,
		AppointmentDate: calendar.NewDate(2024, 5, 1),
		AppointmentTime: calendar.Clock(9, 30, 0),
	})

	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(ve.Fields) != 2 {
		t.Fatalf("expected patient and clinic field errors, got %+v", ve.Fields)
	}
	if ve.Fields[0].Field != "patient_id" || ve.Fields[1].Field != "clinic_id" {
		t.Errorf("unexpected fields: %+v", ve.Fields)
	}
	if len(n.sent) != 0 {
		t.Error("expected no message for a rejected appointment")
	}

	all, _ := svc.ListAppointments(context.Background(), 0, 10)
	if len(all) != 0 {
		t.Errorf("expected no appointment stored, got %d", len(all))
	}
}

func TestService_UpdateAppointment_Absent(t *testing.T) {
	svc, _ := newTestService()
	c, d, p := seedService(t, svc, nil)

	out, err := svc.UpdateAppointment(context.Background(), &Appointment{
		ID:              77,
		PatientID:       p.ID,
		DoctorID:        d.ID,
		ClinicID:        c.ID,
		AppointmentDate: calendar.NewDate(2024, 5, 1),
		AppointmentTime: calendar.Clock(9, 30, 0),
		Status:          StatusCancelled,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != nil {
		t.Errorf("expected nil for absent appointment, got %+v", out)
	}
}

func TestService_DeletePatient_Cascades(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	c, d, p := seedService(t, svc, nil)

	a, err := svc.CreateAppointment(ctx, &Appointment{
		PatientID:       p.ID,
		DoctorID:        d.ID,
		ClinicID:        c.ID,
		AppointmentDate: calendar.NewDate(2024, 5, 1),
		AppointmentTime: calendar.Clock(9, 30, 0),
	})
	if err != nil {
		t.Fatalf("create appointment: %v", err)
	}

	if err := svc.DeletePatient(ctx, p.ID); err != nil {
		t.Fatalf("delete patient: %v", err)
	}
	got, err := svc.GetAppointment(ctx, a.ID)
	if err != nil {
		t.Fatalf("get appointment: %v", err)
	}
	if got != nil {
		t.Error("expected appointment to be deleted with its patient")
	}
	byDoctor, _ := svc.ListDoctorAppointments(ctx, d.ID, 0, 10)
	if len(byDoctor) != 0 {
		t.Errorf("expected no appointments for doctor, got %d", len(byDoctor))
	}
}
