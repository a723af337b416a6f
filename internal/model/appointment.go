package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

// Canonical status vocabulary. The remote store still carries a few legacy
// spellings ("Cancelled", "Completed", mixed-case checked-in variants);
// NormalizeStatus folds those at the sync boundary so only these values
// circulate internally.
const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusConfirmed AppointmentStatus = "confirmed"
	AppointmentStatusBooked    AppointmentStatus = "Booked"
	AppointmentStatusCheckedIn AppointmentStatus = "Checked-in"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

func NormalizeStatus(raw string) AppointmentStatus {
	switch raw {
	case "Cancelled":
		return AppointmentStatusCancelled
	case "Completed":
		return AppointmentStatusCompleted
	case "checked-in", "Checked-In", "checked-In":
		return AppointmentStatusCheckedIn
	default:
		return AppointmentStatus(raw)
	}
}

// Active reports whether the appointment still occupies its time slot.
func (s AppointmentStatus) Active() bool {
	return s != AppointmentStatusCancelled
}

// Appointment is the central relation. A row with a nil DoctorID is a
// queued, unassigned request; at most one active doctor-linked row may
// exist per patient.
type Appointment struct {
	Base
	PatientID uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID  *uuid.UUID        `db:"doctor_id" json:"doctor_id,omitempty"`
	StartTime time.Time         `db:"appointment_date_time" json:"appointment_date_time"`
	EndTime   *time.Time        `db:"end_time" json:"end_time,omitempty"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Notes     *string           `db:"notes" json:"notes,omitempty"`
}

func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}
	cp := *a
	cp.DoctorID = clonePtr(a.DoctorID)
	cp.EndTime = clonePtr(a.EndTime)
	cp.Notes = clonePtr(a.Notes)
	return &cp
}

// Duration returns the booked length, or def when no end time is set.
func (a *Appointment) Duration(def time.Duration) time.Duration {
	if a == nil || a.EndTime == nil {
		return def
	}
	d := a.EndTime.Sub(a.StartTime)
	if d <= 0 {
		return def
	}
	return d
}

// AppointmentWithDetails is the typed join produced by the sync layer;
// raw nested rows from the backend never cross into the engine.
type AppointmentWithDetails struct {
	Appointment
	Patient *Patient `json:"patient"`
	Doctor  *Doctor  `json:"doctor,omitempty"`
}

// PatientWithAppointment is a patient plus their current active
// appointment, if any. Queue entries carry a nil or doctorless appointment.
type PatientWithAppointment struct {
	Patient
	Appointment *Appointment `json:"appointment,omitempty"`
	Doctor      *Doctor      `json:"assigned_doctor,omitempty"`
}

func (p *PatientWithAppointment) Clone() *PatientWithAppointment {
	if p == nil {
		return nil
	}
	return &PatientWithAppointment{
		Patient:     *p.Patient.Clone(),
		Appointment: p.Appointment.Clone(),
		Doctor:      p.Doctor.Clone(),
	}
}

type CreateAppointmentRequest struct {
	PatientID uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID  uuid.UUID  `json:"doctor_id" binding:"required"`
	StartTime time.Time  `json:"appointment_date_time" binding:"required"`
	EndTime   *time.Time `json:"end_time" binding:"omitempty,gtfield=StartTime"`
	Notes     *string    `json:"notes"`
}

type UpdateAppointmentRequest struct {
	StartTime *time.Time `json:"appointment_date_time"`
	EndTime   *time.Time `json:"end_time"`
	Status    *string    `json:"status"`
	Notes     *string    `json:"notes"`
}
