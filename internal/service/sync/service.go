// Package sync is the boundary between the in-memory board and the
// backend. All reads come back as typed joins and all writes go through
// here; nothing else in the process talks to the repositories for board
// state.
package sync

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/frontdesk-api/internal/model"
	"github.com/clinicops/frontdesk-api/internal/repository"
	"github.com/clinicops/frontdesk-api/internal/store"
	apperrors "github.com/clinicops/frontdesk-api/pkg/errors"
	"github.com/clinicops/frontdesk-api/pkg/logger"
	"github.com/clinicops/frontdesk-api/pkg/metrics"
)

// State is the authoritative board contents produced by a full refetch.
type State struct {
	Queue        []*model.PatientWithAppointment
	Assigned     []*model.PatientWithAppointment
	Doctors      []*model.Doctor
	Appointments []*model.AppointmentWithDetails
}

type Service struct {
	patientRepo     repository.PatientRepository
	doctorRepo      repository.DoctorRepository
	appointmentRepo repository.AppointmentRepository
	outboxRepo      repository.OutboxRepository
	store           *store.Store
	logger          *logger.Logger
	metrics         *metrics.Metrics
}

func NewService(
	patientRepo repository.PatientRepository,
	doctorRepo repository.DoctorRepository,
	appointmentRepo repository.AppointmentRepository,
	outboxRepo repository.OutboxRepository,
	st *store.Store,
	log *logger.Logger,
	m *metrics.Metrics,
) *Service {
	return &Service{
		patientRepo:     patientRepo,
		doctorRepo:      doctorRepo,
		appointmentRepo: appointmentRepo,
		outboxRepo:      outboxRepo,
		store:           st,
		logger:          log,
		metrics:         m,
	}
}

// Reload refetches everything and rebuilds the board from scratch. This
// is the reconciliation path: any local drift is overwritten by backend
// truth. Returns the rebuilt state so callers can inspect it.
func (s *Service) Reload(ctx context.Context) (*State, error) {
	started := time.Now()

	patients, err := s.patientRepo.List(ctx)
	if err != nil {
		s.metrics.ReloadsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Remote("failed to fetch patients", err)
	}
	doctors, err := s.doctorRepo.List(ctx)
	if err != nil {
		s.metrics.ReloadsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Remote("failed to fetch doctors", err)
	}
	appointments, err := s.appointmentRepo.List(ctx)
	if err != nil {
		s.metrics.ReloadsTotal.WithLabelValues("error").Inc()
		return nil, apperrors.Remote("failed to fetch appointments", err)
	}

	state := s.build(patients, doctors, appointments)
	s.store.Replace(state.Queue, state.Assigned, state.Doctors)

	s.metrics.ReloadsTotal.WithLabelValues("success").Inc()
	s.metrics.ReloadDuration.Observe(time.Since(started).Seconds())
	s.metrics.BoardQueueSize.Set(float64(len(state.Queue)))
	s.metrics.BoardAssignedSize.Set(float64(len(state.Assigned)))

	s.logger.Info("board reloaded", map[string]interface{}{
		"queue":    len(state.Queue),
		"assigned": len(state.Assigned),
		"doctors":  len(state.Doctors),
	})
	return state, nil
}

// build joins raw rows into typed board state. Statuses are normalized
// here so legacy spellings never cross into the engine. A patient with
// more than one active doctor-linked row is inconsistent data; the most
// recently updated row wins and the anomaly is logged.
func (s *Service) build(patients []*model.Patient, doctors []*model.Doctor, appointments []*model.Appointment) *State {
	doctorByID := make(map[uuid.UUID]*model.Doctor, len(doctors))
	for _, d := range doctors {
		doctorByID[d.ID] = d
	}
	patientByID := make(map[uuid.UUID]*model.Patient, len(patients))
	for _, p := range patients {
		patientByID[p.ID] = p
	}

	details := make([]*model.AppointmentWithDetails, 0, len(appointments))
	activeByPatient := make(map[uuid.UUID]*model.Appointment)
	queuedByPatient := make(map[uuid.UUID]*model.Appointment)
	for _, apt := range appointments {
		apt.Status = model.NormalizeStatus(string(apt.Status))

		d := &model.AppointmentWithDetails{Appointment: *apt}
		if p, ok := patientByID[apt.PatientID]; ok {
			d.Patient = p
		}
		if apt.DoctorID != nil {
			d.Doctor = doctorByID[*apt.DoctorID]
		}
		details = append(details, d)

		if !apt.Status.Active() {
			continue
		}
		if apt.DoctorID == nil {
			// A doctorless row keeps the patient in the queue but its
			// window still matters for the next assignment.
			if prev, ok := queuedByPatient[apt.PatientID]; !ok || apt.UpdatedAt.After(prev.UpdatedAt) {
				queuedByPatient[apt.PatientID] = apt
			}
			continue
		}
		if prev, ok := activeByPatient[apt.PatientID]; ok {
			s.logger.Warn("patient has multiple active appointments", map[string]interface{}{
				"patient_id": apt.PatientID.String(),
				"kept":       prev.ID.String(),
				"dropped":    apt.ID.String(),
			})
			if !apt.UpdatedAt.After(prev.UpdatedAt) {
				continue
			}
		}
		activeByPatient[apt.PatientID] = apt
	}

	state := &State{Doctors: doctors, Appointments: details}
	for _, p := range patients {
		entry := &model.PatientWithAppointment{Patient: *p}
		apt, ok := activeByPatient[p.ID]
		if !ok {
			entry.Appointment = queuedByPatient[p.ID]
			state.Queue = append(state.Queue, entry)
			continue
		}
		entry.Appointment = apt
		entry.Doctor = doctorByID[*apt.DoctorID]
		state.Assigned = append(state.Assigned, entry)
	}
	return state
}

// AssignPatient books the patient with the doctor, upgrading their
// queued appointment row if one exists.
func (s *Service) AssignPatient(ctx context.Context, patientID, doctorID uuid.UUID, start time.Time, end *time.Time) (*model.Appointment, error) {
	started := time.Now()
	apt, err := s.appointmentRepo.AssignPatient(ctx, patientID, doctorID, start, end)
	s.metrics.RemoteWriteDuration.WithLabelValues("assign").Observe(time.Since(started).Seconds())
	if err != nil {
		s.metrics.DatabaseErrors.WithLabelValues("assign").Inc()
		return nil, apperrors.Remote("failed to assign patient", err)
	}

	s.emit(ctx, model.EventPatientAssigned, apt)
	return apt, nil
}

// UpdateAppointment writes a modified appointment back (reassignment,
// time change).
func (s *Service) UpdateAppointment(ctx context.Context, apt *model.Appointment) error {
	started := time.Now()
	err := s.appointmentRepo.Update(ctx, apt)
	s.metrics.RemoteWriteDuration.WithLabelValues("update").Observe(time.Since(started).Seconds())
	if err != nil {
		s.metrics.DatabaseErrors.WithLabelValues("update").Inc()
		return apperrors.Remote("failed to update appointment", err)
	}

	s.emit(ctx, model.EventPatientReassigned, apt)
	return nil
}

// Unassign returns the patient to the queue: the row keeps its identity
// but loses its doctor binding and reverts to pending.
func (s *Service) Unassign(ctx context.Context, apt *model.Appointment) error {
	apt.DoctorID = nil
	apt.EndTime = nil
	apt.Status = model.AppointmentStatusPending

	started := time.Now()
	err := s.appointmentRepo.Update(ctx, apt)
	s.metrics.RemoteWriteDuration.WithLabelValues("unassign").Observe(time.Since(started).Seconds())
	if err != nil {
		s.metrics.DatabaseErrors.WithLabelValues("unassign").Inc()
		return apperrors.Remote("failed to unassign patient", err)
	}

	s.emit(ctx, model.EventPatientUnassigned, apt)
	return nil
}

// UpdateStatus normalizes and persists a status change.
func (s *Service) UpdateStatus(ctx context.Context, appointmentID uuid.UUID, raw string) (*model.Appointment, error) {
	apt, err := s.appointmentRepo.Get(ctx, appointmentID)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}

	apt.Status = model.NormalizeStatus(raw)

	started := time.Now()
	err = s.appointmentRepo.Update(ctx, apt)
	s.metrics.RemoteWriteDuration.WithLabelValues("status").Observe(time.Since(started).Seconds())
	if err != nil {
		s.metrics.DatabaseErrors.WithLabelValues("status").Inc()
		return nil, apperrors.Remote("failed to update status", err)
	}

	s.emit(ctx, model.EventAppointmentStatusSet, apt)
	return apt, nil
}

// emit writes a domain event to the outbox. Event failures are logged
// and swallowed: the board mutation already succeeded and must not be
// undone because a notification could not be queued.
func (s *Service) emit(ctx context.Context, eventType string, apt *model.Appointment) {
	payload, err := json.Marshal(apt)
	if err != nil {
		s.logger.Error(err, "failed to marshal event payload", map[string]interface{}{
			"event_type": eventType,
		})
		return
	}

	event := &model.OutboxEvent{
		EventType: eventType,
		Payload:   payload,
	}
	if err := s.outboxRepo.Create(ctx, event); err != nil {
		s.logger.Error(err, "failed to write outbox event", map[string]interface{}{
			"event_type":     eventType,
			"appointment_id": apt.ID.String(),
		})
		return
	}
	s.metrics.OutboxEventsTotal.WithLabelValues(eventType, "pending").Inc()
}

// DeleteAppointment removes the row outright. Admin surface, not part
// of the board flow, so no domain event is emitted.
func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	if err := s.appointmentRepo.Delete(ctx, id); err != nil {
		return apperrors.NotFound("appointment", err)
	}
	return nil
}

// GetAppointment fetches a single appointment with its status normalized.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.appointmentRepo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("appointment", err)
	}
	apt.Status = model.NormalizeStatus(string(apt.Status))
	return apt, nil
}

// AppointmentsForDate returns the day's appointments as typed joins.
func (s *Service) AppointmentsForDate(ctx context.Context, date time.Time) ([]*model.AppointmentWithDetails, error) {
	appointments, err := s.appointmentRepo.GetByDate(ctx, date)
	if err != nil {
		return nil, apperrors.Remote("failed to fetch appointments", err)
	}
	patients, err := s.patientRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Remote("failed to fetch patients", err)
	}
	doctors, err := s.doctorRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Remote("failed to fetch doctors", err)
	}
	return s.build(patients, doctors, appointments).Appointments, nil
}
