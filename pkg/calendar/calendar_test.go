package calendar

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{"2025-03-01", NewDate(2025, time.March, 1), false},
		{"2025-03-01T00:00:00Z", NewDate(2025, time.March, 1), false},
		{"2025-03-01T23:30:00", NewDate(2025, time.March, 1), false},
		{" 1990-12-31 ", NewDate(1990, time.December, 31), false},
		{"03/01/2025", Date{}, true},
		{"2025-02-30", Date{}, true},
		{"", Date{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDate(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDate(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDate(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDate_JSON(t *testing.T) {
	d := NewDate(2025, time.March, 1)
	b, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"2025-03-01"` {
		t.Errorf("marshal = %s", b)
	}

	var back Date
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != d {
		t.Errorf("round trip = %v, want %v", back, d)
	}

	var zero Date
	b, _ = json.Marshal(zero)
	if string(b) != "null" {
		t.Errorf("zero date marshal = %s, want null", b)
	}
	if err := json.Unmarshal([]byte(`12`), &back); err == nil {
		t.Error("expected error for numeric date")
	}
}

func TestDate_Helpers(t *testing.T) {
	d := DateOf(time.Date(2025, 3, 1, 22, 0, 0, 0, time.UTC))
	if d.String() != "2025-03-01" {
		t.Errorf("String() = %s", d.String())
	}
	if !d.Time().Equal(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Time() = %s", d.Time())
	}
	if !d.Before(NewDate(2025, 3, 2)) {
		t.Error("expected Before")
	}
	if !(Date{}).IsZero() || d.IsZero() {
		t.Error("IsZero mismatch")
	}
	if NewDate(2025, time.February, 29) != NewDate(2025, time.March, 1) {
		t.Error("expected NewDate to normalize")
	}
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{"09:00", Clock(9, 0, 0), false},
		{"09:00:00", Clock(9, 0, 0), false},
		{"23:59:59", Clock(23, 59, 59), false},
		{"00:00", 0, false},
		{"14:30:15.5", Clock(14, 30, 15) + TimeOfDay(500*time.Millisecond), false},
		{"24:00", 0, true},
		{"12:60", 0, true},
		{"12:5", 0, true},
		{"12", 0, true},
		{"ab:cd", 0, true},
		{"10:00:60", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseTimeOfDay(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseTimeOfDay(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseTimeOfDay(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseTimeOfDay(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTimeOfDay_StringAndValid(t *testing.T) {
	if s := Clock(9, 5, 0).String(); s != "09:05:00" {
		t.Errorf("String() = %s", s)
	}
	if s := (Clock(9, 5, 0) + TimeOfDay(250*time.Millisecond)).String(); s != "09:05:00.250000" {
		t.Errorf("String() = %s", s)
	}
	if !Clock(0, 0, 0).Valid() || !Clock(23, 59, 59).Valid() {
		t.Error("expected valid")
	}
	if TimeOfDay(Day).Valid() || TimeOfDay(-time.Second).Valid() {
		t.Error("expected invalid")
	}
}

func TestTimeOfDay_JSON(t *testing.T) {
	in := Clock(9, 0, 0)
	b, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != `"09:00:00"` {
		t.Errorf("marshal = %s", b)
	}
	var out TimeOfDay
	if err := json.Unmarshal([]byte(`"09:00"`), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out != in {
		t.Errorf("unmarshal = %v, want %v", out, in)
	}
	if err := json.Unmarshal([]byte(`900`), &out); err == nil {
		t.Error("expected error for numeric time")
	}
}
