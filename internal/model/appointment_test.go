package model

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeStatus(t *testing.T) {
	assert.Equal(t, AppointmentStatusCancelled, NormalizeStatus("Cancelled"))
	assert.Equal(t, AppointmentStatusCompleted, NormalizeStatus("Completed"))
	assert.Equal(t, AppointmentStatusCheckedIn, NormalizeStatus("checked-in"))
	assert.Equal(t, AppointmentStatusCheckedIn, NormalizeStatus("Checked-In"))

	// Canonical values pass through untouched.
	assert.Equal(t, AppointmentStatusBooked, NormalizeStatus("Booked"))
	assert.Equal(t, AppointmentStatusPending, NormalizeStatus("pending"))
}

func TestStatusActive(t *testing.T) {
	assert.False(t, AppointmentStatusCancelled.Active())
	assert.True(t, AppointmentStatusBooked.Active())
	assert.True(t, AppointmentStatusCompleted.Active())
}

func TestAppointmentDuration(t *testing.T) {
	def := time.Hour
	start := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)

	apt := &Appointment{StartTime: start}
	assert.Equal(t, def, apt.Duration(def))

	end := start.Add(30 * time.Minute)
	apt.EndTime = &end
	assert.Equal(t, 30*time.Minute, apt.Duration(def))

	// Inverted intervals fall back to the default.
	bad := start.Add(-time.Hour)
	apt.EndTime = &bad
	assert.Equal(t, def, apt.Duration(def))
}

func TestPatientWithAppointmentClone(t *testing.T) {
	drID := uuid.New()
	end := time.Now().Add(time.Hour)

	orig := &PatientWithAppointment{
		Patient: Patient{SerialNo: 1, Name: "Asha", Priority: PriorityHigh},
		Appointment: &Appointment{
			PatientID: uuid.New(),
			DoctorID:  &drID,
			EndTime:   &end,
			Status:    AppointmentStatusBooked,
		},
		Doctor: &Doctor{Name: "Dr. Rao"},
	}

	cp := orig.Clone()
	cp.Name = "changed"
	cp.Appointment.Status = AppointmentStatusCancelled
	*cp.Appointment.DoctorID = uuid.New()
	cp.Doctor.Name = "changed"

	assert.Equal(t, "Asha", orig.Name)
	assert.Equal(t, AppointmentStatusBooked, orig.Appointment.Status)
	assert.Equal(t, drID, *orig.Appointment.DoctorID)
	assert.Equal(t, "Dr. Rao", orig.Doctor.Name)
}
