package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/frontdesk-api/internal/model"
)

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Patient, error)
		// GetUnassigned returns patients with no active doctor-linked
		// appointment, in serial order.
		GetUnassigned(ctx context.Context) ([]*model.Patient, error)
		NextSerialNo(ctx context.Context) (int, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		Update(ctx context.Context, doctor *model.Doctor) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Doctor, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Appointment, error)
		GetByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*model.Appointment, error)
		GetByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Appointment, error)
		GetByDate(ctx context.Context, date time.Time) ([]*model.Appointment, error)
		// AssignPatient upgrades the patient's existing doctorless row if
		// one exists, otherwise inserts. Never produces a second active
		// row for the same patient.
		AssignPatient(ctx context.Context, patientID, doctorID uuid.UUID, start time.Time, end *time.Time) (*model.Appointment, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
