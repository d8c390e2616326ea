package clinic

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Gender of a patient.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

var genders = []Gender{GenderMale, GenderFemale, GenderOther}

func (g Gender) Valid() bool {
	for _, v := range genders {
		if g == v {
			return true
		}
	}
	return false
}

// ParseGender matches names case-insensitively.
func ParseGender(s string) (Gender, error) {
	for _, v := range genders {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid gender %q", s)
}

// UnmarshalJSON accepts the name or its ordinal (0 = Male).
func (g *Gender) UnmarshalJSON(data []byte) error {
	s, err := enumValue(data, len(genders), func(i int) string { return string(genders[i]) })
	if err != nil {
		return fmt.Errorf("gender: %w", err)
	}
	parsed, err := ParseGender(s)
	if err != nil {
		return err
	}
	*g = parsed
	return nil
}

// AppointmentStatus is a plain field; any value may follow any other.
type AppointmentStatus string

const (
	StatusScheduled AppointmentStatus = "Scheduled"
	StatusConfirmed AppointmentStatus = "Confirmed"
	StatusCancelled AppointmentStatus = "Cancelled"
	StatusCompleted AppointmentStatus = "Completed"
)

var statuses = []AppointmentStatus{StatusScheduled, StatusConfirmed, StatusCancelled, StatusCompleted}

func (s AppointmentStatus) Valid() bool {
	for _, v := range statuses {
		if s == v {
			return true
		}
	}
	return false
}

// ParseAppointmentStatus matches names case-insensitively.
func ParseAppointmentStatus(s string) (AppointmentStatus, error) {
	for _, v := range statuses {
		if strings.EqualFold(s, string(v)) {
			return v, nil
		}
	}
	return "", fmt.Errorf("invalid appointment status %q", s)
}

// UnmarshalJSON accepts the name or its ordinal (0 = Scheduled).
func (s *AppointmentStatus) UnmarshalJSON(data []byte) error {
	v, err := enumValue(data, len(statuses), func(i int) string { return string(statuses[i]) })
	if err != nil {
		return fmt.Errorf("status: %w", err)
	}
	parsed, err := ParseAppointmentStatus(v)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// enumValue decodes a JSON string, or a JSON integer in [0, n) mapped through name.
func enumValue(data []byte, n int, name func(int) string) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return "", fmt.Errorf("must be a string or integer")
	}
	if i < 0 || i >= n {
		return "", fmt.Errorf("ordinal %d out of range", i)
	}
	return name(i), nil
}
