package clinic

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/clinicsys/clinic/internal/platform/db"
	"github.com/clinicsys/clinic/pkg/calendar"
)

func fieldNames(err error) []string {
	var ve *ValidationError
	if !errors.As(err, &ve) {
		return nil
	}
	names := make([]string, len(ve.Fields))
	for i, f := range ve.Fields {
		names[i] = f.Field
	}
	return names
}

func TestDoctor_Validate(t *testing.T) {
	tests := []struct {
		name   string
		doctor Doctor
		fields []string
	}{
		{"valid", Doctor{FirstName: "A", LastName: "B", Specialization: "GP"}, nil},
		{"missing names", Doctor{Specialization: "GP"}, []string{"first_name", "last_name"}},
		{"bad email", Doctor{FirstName: "A", LastName: "B", Specialization: "GP", Email: strPtr("nope")}, []string{"email"}},
		{"good email", Doctor{FirstName: "A", LastName: "B", Specialization: "GP", Email: strPtr("a@b.org")}, nil},
		{"long specialization", Doctor{FirstName: "A", LastName: "B", Specialization: strings.Repeat("s", 101)}, []string{"specialization"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := fieldNames(tt.doctor.Validate())
			if strings.Join(got, ",") != strings.Join(tt.fields, ",") {
				t.Errorf("expected fields %v, got %v", tt.fields, got)
			}
		})
	}
}

func TestPatient_Validate(t *testing.T) {
	p := Patient{FirstName: "A", LastName: "B"}
	got := fieldNames(p.Validate())
	if strings.Join(got, ",") != "date_of_birth,gender" {
		t.Errorf("expected date_of_birth and gender errors, got %v", got)
	}

	p.DateOfBirth = calendar.NewDate(2000, 1, 1)
	p.Gender = GenderOther
	if err := p.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLengthCountsRunes(t *testing.T) {
	c := Clinic{Name: strings.Repeat("é", 100)}
	if err := c.Validate(); err != nil {
		t.Errorf("100 two-byte runes should fit a 100 character column: %v", err)
	}
}

func TestAppointment_Validate(t *testing.T) {
	a := Appointment{AppointmentTime: calendar.TimeOfDay(calendar.Day)}
	got := fieldNames(a.Validate())
	want := "patient_id,doctor_id,clinic_id,appointment_date,appointment_time,status"
	if strings.Join(got, ",") != want {
		t.Errorf("expected %s, got %v", want, got)
	}
}

func TestCheckPage(t *testing.T) {
	if err := CheckPage(0, 1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := CheckPage(-1, 0); !errors.Is(err, db.ErrConstraintViolation) {
		t.Errorf("expected constraint violation, got %v", err)
	}
}

func TestEnums_JSON(t *testing.T) {
	var p struct {
		Gender Gender            `json:"gender"`
		Status AppointmentStatus `json:"status"`
	}

	if err := json.Unmarshal([]byte(`{"gender":"female","status":"CONFIRMED"}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Gender != GenderFemale || p.Status != StatusConfirmed {
		t.Errorf("expected Female/Confirmed, got %s/%s", p.Gender, p.Status)
	}

	if err := json.Unmarshal([]byte(`{"gender":2,"status":3}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.Gender != GenderOther || p.Status != StatusCompleted {
		t.Errorf("expected Other/Completed, got %s/%s", p.Gender, p.Status)
	}

	for _, bad := range []string{`{"gender":"unknown"}`, `{"gender":7}`, `{"status":-1}`, `{"status":true}`} {
		if err := json.Unmarshal([]byte(bad), &p); err == nil {
			t.Errorf("expected error for %s", bad)
		}
	}

	out, err := json.Marshal(Appointment{Status: StatusCancelled, AppointmentDate: calendar.NewDate(2024, 5, 1), AppointmentTime: calendar.Clock(8, 5, 0)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, want := range []string{`"status":"Cancelled"`, `"appointment_date":"2024-05-01"`, `"appointment_time":"08:05:00"`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("expected %s in %s", want, out)
		}
	}
}
