package store

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicops/frontdesk-api/internal/model"
)

func queued(serial int, name string) *model.PatientWithAppointment {
	p := &model.PatientWithAppointment{}
	p.ID = uuid.New()
	p.SerialNo = serial
	p.Name = name
	p.Priority = model.PriorityMedium
	return p
}

func assigned(serial int, name string, doctorID uuid.UUID, start time.Time) *model.PatientWithAppointment {
	p := queued(serial, name)
	p.Appointment = &model.Appointment{
		PatientID: p.ID,
		DoctorID:  &doctorID,
		StartTime: start,
		Status:    model.AppointmentStatusBooked,
	}
	return p
}

func TestReplacePartitions(t *testing.T) {
	s := New()
	drID := uuid.New()

	q1 := queued(1, "Asha")
	a1 := assigned(2, "Bela", drID, time.Now())

	s.Replace(
		[]*model.PatientWithAppointment{q1},
		[]*model.PatientWithAppointment{a1},
		nil,
	)

	assert.Len(t, s.Queue(), 1)
	assert.Len(t, s.Assigned(), 1)
	assert.False(t, s.IsAssigned(q1.ID))
	assert.True(t, s.IsAssigned(a1.ID))
}

func TestReplaceAssignedWinsDuplicate(t *testing.T) {
	s := New()
	drID := uuid.New()

	p := assigned(1, "Asha", drID, time.Now())
	ghost := &model.PatientWithAppointment{Patient: p.Patient}

	// The same id in both inputs must settle in exactly one partition.
	s.Replace(
		[]*model.PatientWithAppointment{ghost},
		[]*model.PatientWithAppointment{p},
		nil,
	)

	assert.Empty(t, s.Queue())
	assert.Len(t, s.Assigned(), 1)
}

func TestQueueOrderedBySerial(t *testing.T) {
	s := New()
	s.Replace([]*model.PatientWithAppointment{
		queued(3, "Chitra"),
		queued(1, "Asha"),
		queued(2, "Bela"),
	}, nil, nil)

	q := s.Queue()
	require.Len(t, q, 3)
	assert.Equal(t, "Asha", q[0].Name)
	assert.Equal(t, "Bela", q[1].Name)
	assert.Equal(t, "Chitra", q[2].Name)
}

func TestAssignedOrderedByStart(t *testing.T) {
	s := New()
	drID := uuid.New()
	base := time.Date(2026, 8, 31, 8, 0, 0, 0, time.UTC)

	s.Replace(nil, []*model.PatientWithAppointment{
		assigned(1, "Late", drID, base.Add(2*time.Hour)),
		assigned(2, "Early", drID, base),
	}, nil)

	a := s.Assigned()
	require.Len(t, a, 2)
	assert.Equal(t, "Early", a[0].Name)
	assert.Equal(t, "Late", a[1].Name)
}

func TestMoveBetweenPartitions(t *testing.T) {
	s := New()
	drID := uuid.New()

	p := queued(1, "Asha")
	s.Replace([]*model.PatientWithAppointment{p}, nil, nil)

	p.Appointment = &model.Appointment{
		PatientID: p.ID,
		DoctorID:  &drID,
		StartTime: time.Now(),
		Status:    model.AppointmentStatusBooked,
	}
	s.MoveToAssigned(p)

	assert.Empty(t, s.Queue())
	assert.True(t, s.IsAssigned(p.ID))

	p.Appointment.DoctorID = nil
	p.Appointment.Status = model.AppointmentStatusPending
	s.MoveToQueue(p)

	assert.False(t, s.IsAssigned(p.ID))
	assert.Len(t, s.Queue(), 1)
}

func TestAccessorsReturnCopies(t *testing.T) {
	s := New()
	p := queued(1, "Asha")
	s.Replace([]*model.PatientWithAppointment{p}, nil, nil)

	got, ok := s.GetQueued(p.ID)
	require.True(t, ok)
	got.Name = "mutated"

	again, ok := s.GetQueued(p.ID)
	require.True(t, ok)
	assert.Equal(t, "Asha", again.Name)
}

func TestSnapshotRestore(t *testing.T) {
	s := New()
	drID := uuid.New()

	q1 := queued(1, "Asha")
	a1 := assigned(2, "Bela", drID, time.Now())
	s.Replace(
		[]*model.PatientWithAppointment{q1},
		[]*model.PatientWithAppointment{a1},
		nil,
	)

	before := s.Snapshot()
	wantQueue := s.Queue()
	wantAssigned := s.Assigned()

	// Mutate both partitions, then roll back.
	q1Copy, _ := s.GetQueued(q1.ID)
	q1Copy.Appointment = &model.Appointment{
		PatientID: q1.ID,
		DoctorID:  &drID,
		StartTime: time.Now(),
		Status:    model.AppointmentStatusBooked,
	}
	s.MoveToAssigned(q1Copy)

	a1Copy, _ := s.GetAssigned(a1.ID)
	a1Copy.Appointment.DoctorID = nil
	s.MoveToQueue(a1Copy)

	s.Restore(before)

	assert.Equal(t, wantQueue, s.Queue())
	assert.Equal(t, wantAssigned, s.Assigned())
}

func TestSnapshotIsDetached(t *testing.T) {
	s := New()
	p := queued(1, "Asha")
	s.Replace([]*model.PatientWithAppointment{p}, nil, nil)

	snap := s.Snapshot()

	// Mutations after the snapshot must not leak into it.
	got, _ := s.GetQueued(p.ID)
	got.Name = "changed"
	drID := uuid.New()
	got.Appointment = &model.Appointment{PatientID: p.ID, DoctorID: &drID, Status: model.AppointmentStatusBooked}
	s.MoveToAssigned(got)

	s.Restore(snap)

	restored, ok := s.GetQueued(p.ID)
	require.True(t, ok)
	assert.Equal(t, "Asha", restored.Name)
	assert.Nil(t, restored.Appointment)
}

func TestDoctorRoster(t *testing.T) {
	s := New()

	d1 := &model.Doctor{Name: "Dr. Rao", Specialty: "Cardiology", IsAvailable: true}
	d1.ID = uuid.New()
	d2 := &model.Doctor{Name: "Dr. Sen", Specialty: "Medicine", IsAvailable: true}
	d2.ID = uuid.New()

	s.SetDoctors([]*model.Doctor{d1, d2})

	assert.Equal(t, 0, s.DoctorIndex(d1.ID))
	assert.Equal(t, 1, s.DoctorIndex(d2.ID))
	assert.Equal(t, -1, s.DoctorIndex(uuid.New()))

	got, ok := s.GetDoctor(d2.ID)
	require.True(t, ok)
	assert.Equal(t, "Dr. Sen", got.Name)

	// Returned roster entries are copies.
	s.Doctors()[0].Name = "mutated"
	fresh, _ := s.GetDoctor(d1.ID)
	assert.Equal(t, "Dr. Rao", fresh.Name)
}
