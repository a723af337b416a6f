package assignment

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicops/frontdesk-api/internal/model"
	syncsvc "github.com/clinicops/frontdesk-api/internal/service/sync"
	"github.com/clinicops/frontdesk-api/internal/store"
	apperrors "github.com/clinicops/frontdesk-api/pkg/errors"
	"github.com/clinicops/frontdesk-api/pkg/logger"
	"github.com/clinicops/frontdesk-api/pkg/metrics"
)

type fakeSyncer struct {
	failWrites bool

	assignCalls   int
	updateCalls   int
	unassignCalls int
	statusCalls   int
	reloadCalls   int

	lastAssignStart time.Time
	lastAssignEnd   *time.Time
	lastCreated     *model.Appointment
	lastUpdated     *model.Appointment
	lastStatus      string
}

func (f *fakeSyncer) AssignPatient(_ context.Context, patientID, doctorID uuid.UUID, start time.Time, end *time.Time) (*model.Appointment, error) {
	if f.failWrites {
		return nil, apperrors.Remote("backend down", nil)
	}
	f.assignCalls++
	f.lastAssignStart = start
	f.lastAssignEnd = end

	apt := &model.Appointment{
		PatientID: patientID,
		DoctorID:  &doctorID,
		StartTime: start,
		EndTime:   end,
		Status:    model.AppointmentStatusBooked,
	}
	apt.ID = uuid.New()
	f.lastCreated = apt
	return apt, nil
}

func (f *fakeSyncer) UpdateAppointment(_ context.Context, apt *model.Appointment) error {
	if f.failWrites {
		return apperrors.Remote("backend down", nil)
	}
	f.updateCalls++
	f.lastUpdated = apt.Clone()
	return nil
}

func (f *fakeSyncer) Unassign(_ context.Context, apt *model.Appointment) error {
	if f.failWrites {
		return apperrors.Remote("backend down", nil)
	}
	f.unassignCalls++
	return nil
}

func (f *fakeSyncer) UpdateStatus(_ context.Context, _ uuid.UUID, raw string) (*model.Appointment, error) {
	if f.failWrites {
		return nil, apperrors.Remote("backend down", nil)
	}
	f.statusCalls++
	f.lastStatus = raw
	return nil, nil
}

func (f *fakeSyncer) Reload(_ context.Context) (*syncsvc.State, error) {
	f.reloadCalls++
	return &syncsvc.State{}, nil
}

type fixture struct {
	engine  *Service
	store   *store.Store
	syncer  *fakeSyncer
	doctor  *model.Doctor
	patient *model.PatientWithAppointment
	date    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	st := store.New()

	doctor := &model.Doctor{Name: "Dr. Rao", Specialty: "Cardiology", IsAvailable: true}
	doctor.ID = uuid.New()
	st.SetDoctors([]*model.Doctor{doctor})

	patient := &model.PatientWithAppointment{}
	patient.ID = uuid.New()
	patient.SerialNo = 1
	patient.Name = "Asha"
	patient.Priority = model.PriorityMedium
	st.Replace([]*model.PatientWithAppointment{patient}, nil, st.Doctors())

	syncer := &fakeSyncer{}
	log := logger.NewLogger(&logger.Config{Level: logger.ErrorLevel, Output: io.Discard})
	m := metrics.NewMetrics(prometheus.NewRegistry())

	return &fixture{
		engine:  NewService(st, syncer, log, m),
		store:   st,
		syncer:  syncer,
		doctor:  doctor,
		patient: patient,
		date:    time.Date(2026, 8, 31, 0, 0, 0, 0, time.Local),
	}
}

func TestAssign(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:00")
	require.NoError(t, err)

	assert.True(t, f.store.IsAssigned(f.patient.ID))
	assert.Empty(t, f.store.Queue())
	assert.Equal(t, 1, f.syncer.assignCalls)
	assert.Equal(t, 1, f.syncer.reloadCalls)

	assert.Equal(t, 10, f.syncer.lastAssignStart.Hour())
	require.NotNil(t, f.syncer.lastAssignEnd)
	assert.Equal(t, time.Hour, f.syncer.lastAssignEnd.Sub(f.syncer.lastAssignStart))
}

func TestAssignConflictStopsBeforeRemote(t *testing.T) {
	f := newFixture(t)

	// Occupy 10:00-11:00 with another patient.
	other := &model.PatientWithAppointment{}
	other.ID = uuid.New()
	other.SerialNo = 2
	other.Name = "Bela"
	end := time.Date(2026, 8, 31, 11, 0, 0, 0, time.Local)
	other.Appointment = &model.Appointment{
		PatientID: other.ID,
		DoctorID:  &f.doctor.ID,
		StartTime: time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local),
		EndTime:   &end,
		Status:    model.AppointmentStatusBooked,
	}
	f.store.MoveToAssigned(other)

	err := f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:30")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrConflict))

	// Rejected locally: no write, no state change.
	assert.Equal(t, 0, f.syncer.assignCalls)
	assert.Equal(t, 0, f.syncer.reloadCalls)
	assert.False(t, f.store.IsAssigned(f.patient.ID))
}

func TestAssignBackToBackAllowed(t *testing.T) {
	f := newFixture(t)

	other := &model.PatientWithAppointment{}
	other.ID = uuid.New()
	other.SerialNo = 2
	end := time.Date(2026, 8, 31, 11, 0, 0, 0, time.Local)
	other.Appointment = &model.Appointment{
		PatientID: other.ID,
		DoctorID:  &f.doctor.ID,
		StartTime: time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local),
		EndTime:   &end,
		Status:    model.AppointmentStatusBooked,
	}
	f.store.MoveToAssigned(other)

	err := f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "11:00")
	require.NoError(t, err)
	assert.True(t, f.store.IsAssigned(f.patient.ID))
}

func TestAssignSameSlotNextDayAllowed(t *testing.T) {
	f := newFixture(t)

	// 09:00-10:00 is taken today; the same slot tomorrow is free.
	other := &model.PatientWithAppointment{}
	other.ID = uuid.New()
	other.SerialNo = 2
	end := time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)
	other.Appointment = &model.Appointment{
		PatientID: other.ID,
		DoctorID:  &f.doctor.ID,
		StartTime: time.Date(2026, 8, 31, 9, 0, 0, 0, time.Local),
		EndTime:   &end,
		Status:    model.AppointmentStatusBooked,
	}
	f.store.MoveToAssigned(other)

	err := f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date.AddDate(0, 0, 1), "09:00")
	require.NoError(t, err)
	assert.True(t, f.store.IsAssigned(f.patient.ID))
	assert.Equal(t, 1, f.syncer.assignCalls)
}

func TestAssignKeepsQueuedWindow(t *testing.T) {
	f := newFixture(t)

	// The patient waits in the queue with a 30 minute window from an
	// earlier booking.
	queuedEnd := time.Date(2026, 8, 30, 9, 30, 0, 0, time.Local)
	f.patient.Appointment = &model.Appointment{
		PatientID: f.patient.ID,
		StartTime: time.Date(2026, 8, 30, 9, 0, 0, 0, time.Local),
		EndTime:   &queuedEnd,
		Status:    model.AppointmentStatusPending,
	}
	f.store.MoveToQueue(f.patient)

	err := f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:00")
	require.NoError(t, err)

	require.NotNil(t, f.syncer.lastAssignEnd)
	assert.Equal(t, 30*time.Minute, f.syncer.lastAssignEnd.Sub(f.syncer.lastAssignStart))
}

func TestAssignAdoptsBackendRow(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:00"))

	// The entry must carry the backend row id even though the fake
	// reload returns nothing, so later status or time changes can
	// address the row.
	p, ok := f.store.GetAssigned(f.patient.ID)
	require.True(t, ok)
	require.NotNil(t, p.Appointment)
	require.NotNil(t, f.syncer.lastCreated)
	assert.Equal(t, f.syncer.lastCreated.ID, p.Appointment.ID)
	assert.NotEqual(t, uuid.Nil, p.Appointment.ID)
}

func TestAssignRollbackOnRemoteFailure(t *testing.T) {
	f := newFixture(t)
	f.syncer.failWrites = true

	wantQueue := f.store.Queue()
	wantAssigned := f.store.Assigned()

	err := f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:00")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrRemote))

	// Local state is exactly what it was before the attempt.
	assert.Equal(t, wantQueue, f.store.Queue())
	assert.Equal(t, wantAssigned, f.store.Assigned())
	assert.Equal(t, 0, f.syncer.reloadCalls)
}

func TestAssignUnknownPatientIsNoOp(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Assign(context.Background(), uuid.New(), f.doctor.ID, f.date, "10:00")
	require.NoError(t, err)
	assert.Equal(t, 0, f.syncer.assignCalls)
}

func TestAssignInvalidTimeKey(t *testing.T) {
	f := newFixture(t)

	for _, key := range []string{"07:00", "23:00", "10:07", "garbage"} {
		err := f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, key)
		require.Error(t, err, key)
		assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest), key)
	}
	assert.Equal(t, 0, f.syncer.assignCalls)
}

func TestAssignZeroDateDefaultsToToday(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, time.Time{}, "10:00")
	require.NoError(t, err)

	now := time.Now()
	assert.Equal(t, now.Year(), f.syncer.lastAssignStart.Year())
	assert.Equal(t, now.YearDay(), f.syncer.lastAssignStart.YearDay())
}

func TestReassignPreservesDuration(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:00"))

	// Shorten the booking to 30 minutes, then move it.
	p, ok := f.store.GetAssigned(f.patient.ID)
	require.True(t, ok)
	shortEnd := p.Appointment.StartTime.Add(30 * time.Minute)
	p.Appointment.EndTime = &shortEnd
	f.store.UpdateAssigned(p)

	err := f.engine.Reassign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "14:00")
	require.NoError(t, err)

	require.NotNil(t, f.syncer.lastUpdated)
	assert.Equal(t, 14, f.syncer.lastUpdated.StartTime.Hour())
	require.NotNil(t, f.syncer.lastUpdated.EndTime)
	assert.Equal(t, 30*time.Minute, f.syncer.lastUpdated.EndTime.Sub(f.syncer.lastUpdated.StartTime))
}

func TestReassignOwnSlotAllowed(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:00"))

	// Moving within your own interval must not self-conflict.
	err := f.engine.Reassign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:15")
	require.NoError(t, err)
}

func TestUnassign(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:00"))

	err := f.engine.Unassign(context.Background(), f.patient.ID)
	require.NoError(t, err)

	assert.False(t, f.store.IsAssigned(f.patient.ID))
	assert.Equal(t, 1, f.syncer.unassignCalls)

	q, ok := f.store.GetQueued(f.patient.ID)
	require.True(t, ok)
	require.NotNil(t, q.Appointment)
	assert.Nil(t, q.Appointment.DoctorID)
	assert.Equal(t, model.AppointmentStatusPending, q.Appointment.Status)
	assert.Nil(t, q.Doctor)
}

func TestUnassignRollbackOnRemoteFailure(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:00"))
	f.syncer.failWrites = true

	wantAssigned := f.store.Assigned()

	err := f.engine.Unassign(context.Background(), f.patient.ID)
	require.Error(t, err)
	assert.Equal(t, wantAssigned, f.store.Assigned())
	assert.True(t, f.store.IsAssigned(f.patient.ID))
}

func TestUpdateStatusCancelReturnsToQueue(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:00"))

	err := f.engine.UpdateStatus(context.Background(), f.patient.ID, "Cancelled")
	require.NoError(t, err)

	assert.False(t, f.store.IsAssigned(f.patient.ID))
	assert.Equal(t, "Cancelled", f.syncer.lastStatus)

	q, ok := f.store.GetQueued(f.patient.ID)
	require.True(t, ok)
	assert.Equal(t, model.AppointmentStatusCancelled, q.Appointment.Status)
}

func TestUpdateStatusCheckedIn(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:00"))

	err := f.engine.UpdateStatus(context.Background(), f.patient.ID, "checked-in")
	require.NoError(t, err)

	assert.True(t, f.store.IsAssigned(f.patient.ID))
	p, _ := f.store.GetAssigned(f.patient.ID)
	assert.Equal(t, model.AppointmentStatusCheckedIn, p.Appointment.Status)
}

func TestCreateAppointmentTooShort(t *testing.T) {
	f := newFixture(t)

	start := time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)
	end := start.Add(10 * time.Minute)

	err := f.engine.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		StartTime: start,
		EndTime:   &end,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrBadRequest))
	assert.Equal(t, 0, f.syncer.assignCalls)
}

func TestRescheduleMovesBookedAppointment(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.engine.Assign(context.Background(), f.patient.ID, f.doctor.ID, f.date, "10:00"))

	p, ok := f.store.GetAssigned(f.patient.ID)
	require.True(t, ok)

	start := time.Date(2026, 8, 31, 15, 0, 0, 0, time.Local)
	end := start.Add(45 * time.Minute)
	err := f.engine.Reschedule(context.Background(), p.Appointment.ID, &model.UpdateAppointmentRequest{
		StartTime: &start,
		EndTime:   &end,
	})
	require.NoError(t, err)

	require.NotNil(t, f.syncer.lastUpdated)
	assert.Equal(t, 15, f.syncer.lastUpdated.StartTime.Hour())
	assert.Equal(t, 45*time.Minute, f.syncer.lastUpdated.EndTime.Sub(f.syncer.lastUpdated.StartTime))
}

func TestRescheduleUnknownAppointmentIsNoOp(t *testing.T) {
	f := newFixture(t)

	err := f.engine.Reschedule(context.Background(), uuid.New(), &model.UpdateAppointmentRequest{})
	require.NoError(t, err)
	assert.Equal(t, 0, f.syncer.updateCalls)
}

func TestCreateAppointmentExplicitWindow(t *testing.T) {
	f := newFixture(t)

	start := time.Date(2026, 8, 31, 10, 0, 0, 0, time.Local)
	end := start.Add(90 * time.Minute)

	err := f.engine.CreateAppointment(context.Background(), &model.CreateAppointmentRequest{
		PatientID: f.patient.ID,
		DoctorID:  f.doctor.ID,
		StartTime: start,
		EndTime:   &end,
	})
	require.NoError(t, err)

	assert.Equal(t, 1, f.syncer.assignCalls)
	require.NotNil(t, f.syncer.lastAssignEnd)
	assert.Equal(t, 90*time.Minute, f.syncer.lastAssignEnd.Sub(f.syncer.lastAssignStart))
	assert.True(t, f.store.IsAssigned(f.patient.ID))
}
