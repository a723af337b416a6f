// Package assignment implements the booking engine: every board
// mutation is validated against the schedule grid, applied optimistically
// to the local store, written to the backend, and rolled back from a
// snapshot if the write fails.
package assignment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/frontdesk-api/internal/model"
	"github.com/clinicops/frontdesk-api/internal/schedule"
	syncsvc "github.com/clinicops/frontdesk-api/internal/service/sync"
	"github.com/clinicops/frontdesk-api/internal/store"
	apperrors "github.com/clinicops/frontdesk-api/pkg/errors"
	"github.com/clinicops/frontdesk-api/pkg/logger"
	"github.com/clinicops/frontdesk-api/pkg/metrics"
)

// Syncer is the backend boundary the engine writes through.
type Syncer interface {
	AssignPatient(ctx context.Context, patientID, doctorID uuid.UUID, start time.Time, end *time.Time) (*model.Appointment, error)
	UpdateAppointment(ctx context.Context, apt *model.Appointment) error
	Unassign(ctx context.Context, apt *model.Appointment) error
	UpdateStatus(ctx context.Context, appointmentID uuid.UUID, raw string) (*model.Appointment, error)
	Reload(ctx context.Context) (*syncsvc.State, error)
}

type Service struct {
	store   *store.Store
	syncer  Syncer
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewService(st *store.Store, syncer Syncer, log *logger.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   st,
		syncer:  syncer,
		logger:  log,
		metrics: m,
	}
}

// Assign books a queued patient into the doctor's column at the given
// slot. A zero date means today. The overlap check runs before any
// remote call; a conflicting request never reaches the backend.
func (s *Service) Assign(ctx context.Context, patientID, doctorID uuid.UUID, date time.Time, timeKey string) error {
	patient, ok := s.store.GetQueued(patientID)
	if !ok {
		// Stale drag source or a double-submit; nothing to do.
		s.logger.Warn("assign skipped, patient not in queue", map[string]interface{}{
			"patient_id": patientID.String(),
		})
		return nil
	}
	doctor, ok := s.store.GetDoctor(doctorID)
	if !ok {
		s.logger.Warn("assign skipped, unknown doctor", map[string]interface{}{
			"doctor_id": doctorID.String(),
		})
		return nil
	}

	// A patient waiting with a previously booked window keeps its length
	// when dropped onto the board.
	duration := schedule.DefaultDuration
	if patient.Appointment != nil {
		duration = patient.Appointment.Duration(schedule.DefaultDuration)
	}
	start, end, err := s.resolveSlot(date, timeKey, duration)
	if err != nil {
		return err
	}

	if err := s.checkOverlap(doctorID, start, end, patientID); err != nil {
		return err
	}

	snapshot := s.store.Snapshot()

	endCopy := end
	patient.Appointment = &model.Appointment{
		PatientID: patientID,
		DoctorID:  &doctorID,
		StartTime: start,
		EndTime:   &endCopy,
		Status:    model.AppointmentStatusBooked,
	}
	patient.Doctor = doctor
	s.store.MoveToAssigned(patient)

	created, err := s.syncer.AssignPatient(ctx, patientID, doctorID, start, &endCopy)
	if err != nil {
		s.rollback(snapshot, "assign", patientID)
		return err
	}
	// Adopt the backend row so the entry carries a real appointment id
	// even if the follow-up reload fails.
	patient.Appointment = created.Clone()
	s.store.UpdateAssigned(patient)

	s.metrics.AssignmentsTotal.WithLabelValues("assign", "success").Inc()
	s.refresh(ctx, "assign")
	return nil
}

// Reassign moves an already assigned patient to a new doctor or slot.
// The booked duration is preserved.
func (s *Service) Reassign(ctx context.Context, patientID, doctorID uuid.UUID, date time.Time, timeKey string) error {
	patient, ok := s.store.GetAssigned(patientID)
	if !ok || patient.Appointment == nil {
		s.logger.Warn("reassign skipped, patient not assigned", map[string]interface{}{
			"patient_id": patientID.String(),
		})
		return nil
	}
	doctor, ok := s.store.GetDoctor(doctorID)
	if !ok {
		s.logger.Warn("reassign skipped, unknown doctor", map[string]interface{}{
			"doctor_id": doctorID.String(),
		})
		return nil
	}

	duration := patient.Appointment.Duration(schedule.DefaultDuration)
	start, end, err := s.resolveSlot(date, timeKey, duration)
	if err != nil {
		return err
	}

	if err := s.checkOverlap(doctorID, start, end, patientID); err != nil {
		return err
	}

	snapshot := s.store.Snapshot()

	apt := patient.Appointment
	apt.DoctorID = &doctorID
	apt.StartTime = start
	endCopy := end
	apt.EndTime = &endCopy
	patient.Doctor = doctor
	s.store.UpdateAssigned(patient)

	if err := s.syncer.UpdateAppointment(ctx, apt); err != nil {
		s.rollback(snapshot, "reassign", patientID)
		return err
	}

	s.metrics.AssignmentsTotal.WithLabelValues("reassign", "success").Inc()
	s.refresh(ctx, "reassign")
	return nil
}

// Unassign returns an assigned patient to the queue. Their appointment
// row survives, doctorless and pending.
func (s *Service) Unassign(ctx context.Context, patientID uuid.UUID) error {
	patient, ok := s.store.GetAssigned(patientID)
	if !ok || patient.Appointment == nil {
		s.logger.Warn("unassign skipped, patient not assigned", map[string]interface{}{
			"patient_id": patientID.String(),
		})
		return nil
	}

	snapshot := s.store.Snapshot()

	apt := patient.Appointment.Clone()
	patient.Appointment.DoctorID = nil
	patient.Appointment.EndTime = nil
	patient.Appointment.Status = model.AppointmentStatusPending
	patient.Doctor = nil
	s.store.MoveToQueue(patient)

	if err := s.syncer.Unassign(ctx, apt); err != nil {
		s.rollback(snapshot, "unassign", patientID)
		return err
	}

	s.metrics.AssignmentsTotal.WithLabelValues("unassign", "success").Inc()
	s.refresh(ctx, "unassign")
	return nil
}

// CreateAppointment books a patient with an explicit start and end,
// bypassing the default duration. Used by the booking form rather than
// drag and drop.
func (s *Service) CreateAppointment(ctx context.Context, req *model.CreateAppointmentRequest) error {
	if _, ok := s.store.GetDoctor(req.DoctorID); !ok {
		return apperrors.NotFound("doctor", nil)
	}

	start := req.StartTime
	end := start.Add(schedule.DefaultDuration)
	if req.EndTime != nil {
		end = *req.EndTime
	}
	if end.Sub(start) < schedule.MinDuration {
		return apperrors.BadRequest(
			fmt.Sprintf("appointment must be at least %d minutes", schedule.SlotMinutes), nil)
	}

	if err := s.checkOverlap(req.DoctorID, start, end, req.PatientID); err != nil {
		return err
	}

	snapshot := s.store.Snapshot()
	patient, queued := s.store.GetQueued(req.PatientID)
	if queued {
		doctor, _ := s.store.GetDoctor(req.DoctorID)
		endCopy := end
		patient.Appointment = &model.Appointment{
			PatientID: req.PatientID,
			DoctorID:  &req.DoctorID,
			StartTime: start,
			EndTime:   &endCopy,
			Status:    model.AppointmentStatusBooked,
		}
		patient.Doctor = doctor
		s.store.MoveToAssigned(patient)
	}

	created, err := s.syncer.AssignPatient(ctx, req.PatientID, req.DoctorID, start, &end)
	if err != nil {
		s.rollback(snapshot, "create", req.PatientID)
		return err
	}
	if queued {
		patient.Appointment = created.Clone()
		s.store.UpdateAssigned(patient)
	}

	s.metrics.AssignmentsTotal.WithLabelValues("create", "success").Inc()
	s.refresh(ctx, "create")
	return nil
}

// Reschedule applies an explicit time, status or notes change to a
// booked appointment identified by its row id.
func (s *Service) Reschedule(ctx context.Context, appointmentID uuid.UUID, req *model.UpdateAppointmentRequest) error {
	var patient *model.PatientWithAppointment
	for _, p := range s.store.Assigned() {
		if p.Appointment != nil && p.Appointment.ID == appointmentID {
			patient = p
			break
		}
	}
	if patient == nil {
		s.logger.Warn("reschedule skipped, appointment not on board", map[string]interface{}{
			"appointment_id": appointmentID.String(),
		})
		return nil
	}

	apt := patient.Appointment
	if req.StartTime != nil {
		apt.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		apt.EndTime = req.EndTime
	}
	if req.Notes != nil {
		apt.Notes = req.Notes
	}
	if req.Status != nil {
		apt.Status = model.NormalizeStatus(*req.Status)
	}

	end := apt.StartTime.Add(apt.Duration(schedule.DefaultDuration))
	if err := s.checkOverlap(*apt.DoctorID, apt.StartTime, end, patient.ID); err != nil {
		return err
	}

	snapshot := s.store.Snapshot()
	s.store.UpdateAssigned(patient)

	if err := s.syncer.UpdateAppointment(ctx, apt); err != nil {
		s.rollback(snapshot, "reschedule", patient.ID)
		return err
	}

	s.metrics.AssignmentsTotal.WithLabelValues("reschedule", "success").Inc()
	s.refresh(ctx, "reschedule")
	return nil
}

// UpdateStatus changes an assigned patient's appointment status. A
// cancellation frees the slot and sends the patient back to the queue.
func (s *Service) UpdateStatus(ctx context.Context, patientID uuid.UUID, raw string) error {
	patient, ok := s.store.GetAssigned(patientID)
	if !ok || patient.Appointment == nil {
		s.logger.Warn("status update skipped, patient not assigned", map[string]interface{}{
			"patient_id": patientID.String(),
		})
		return nil
	}

	status := model.NormalizeStatus(raw)
	snapshot := s.store.Snapshot()

	patient.Appointment.Status = status
	if status == model.AppointmentStatusCancelled {
		patient.Doctor = nil
		s.store.MoveToQueue(patient)
	} else {
		s.store.UpdateAssigned(patient)
	}

	if _, err := s.syncer.UpdateStatus(ctx, patient.Appointment.ID, raw); err != nil {
		s.rollback(snapshot, "status", patientID)
		return err
	}

	s.metrics.AssignmentsTotal.WithLabelValues("status", "success").Inc()
	s.refresh(ctx, "status")
	return nil
}

// resolveSlot turns a board date and "HH:MM" slot key into concrete
// start and end times. A zero date falls back to today.
func (s *Service) resolveSlot(date time.Time, timeKey string, duration time.Duration) (time.Time, time.Time, error) {
	if schedule.SlotIndex(timeKey) < 0 {
		return time.Time{}, time.Time{}, apperrors.BadRequest(
			fmt.Sprintf("invalid time slot %q", timeKey), nil)
	}
	minutes, err := schedule.MinutesOfDay(timeKey)
	if err != nil {
		return time.Time{}, time.Time{}, apperrors.BadRequest(
			fmt.Sprintf("invalid time slot %q", timeKey), nil)
	}

	if date.IsZero() {
		date = time.Now()
	}
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.Local).
		Add(time.Duration(minutes) * time.Minute)
	return start, start.Add(duration), nil
}

// checkOverlap rejects the candidate if it collides with any active
// booking in the doctor's column on the candidate's date, ignoring the
// moving patient's own row. The store holds appointments across dates,
// so bookings on other days never block a slot.
func (s *Service) checkOverlap(doctorID uuid.UUID, start, end time.Time, excludePatient uuid.UUID) error {
	year, month, day := start.Date()

	existing := make([]model.Assignment, 0)
	for _, p := range s.store.Assigned() {
		if p.Appointment == nil {
			continue
		}
		ay, am, ad := p.Appointment.StartTime.Date()
		if ay != year || am != month || ad != day {
			continue
		}
		if a, ok := schedule.AssignmentFor(p.Appointment); ok {
			existing = append(existing, a)
		}
	}

	startMin := start.Hour()*60 + start.Minute()
	endMin := startMin + int(end.Sub(start).Minutes())

	if schedule.HasOverlap(doctorID, startMin, endMin, excludePatient, existing) {
		s.metrics.ConflictsRejected.Inc()
		return apperrors.Conflict("time slot conflicts with an existing appointment")
	}
	return nil
}

// rollback restores the pre-mutation snapshot after a failed write.
func (s *Service) rollback(snapshot *store.Snapshot, operation string, patientID uuid.UUID) {
	s.store.Restore(snapshot)
	s.metrics.RollbacksTotal.WithLabelValues(operation).Inc()
	s.metrics.AssignmentsTotal.WithLabelValues(operation, "error").Inc()
	s.logger.Warn("remote write failed, local state rolled back", map[string]interface{}{
		"operation":  operation,
		"patient_id": patientID.String(),
	})
}

// refresh reconciles with backend truth after a successful write. If
// the refetch itself fails the optimistic state stays; it already
// matches what the backend accepted.
func (s *Service) refresh(ctx context.Context, operation string) {
	if _, err := s.syncer.Reload(ctx); err != nil {
		s.logger.Error(err, "reload after write failed, keeping optimistic state", map[string]interface{}{
			"operation": operation,
		})
	}
}
