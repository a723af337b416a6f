package schedule

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinicops/frontdesk-api/internal/model"
)

func TestLayout(t *testing.T) {
	m := model.GridMetrics{
		TimeColWidth:   80,
		HeaderHeight:   48,
		SlotHeight:     30,
		DoctorColWidth: 220,
	}

	a := model.Assignment{
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		StartKey:  "10:00",
		SpanSlots: 4,
	}

	rect, ok := Layout(a, 2, m)
	require.True(t, ok)

	// 10:00 is slot index 8 in an 08:00 grid.
	assert.Equal(t, 80.0+2*220, rect.Left)
	assert.Equal(t, 48.0+8*30, rect.Top)
	assert.Equal(t, 220.0, rect.Width)
	assert.Equal(t, 120.0, rect.Height)
}

func TestLayoutOffGrid(t *testing.T) {
	m := model.GridMetrics{SlotHeight: 30, DoctorColWidth: 220}

	_, ok := Layout(model.Assignment{StartKey: "07:00", SpanSlots: 4}, 0, m)
	assert.False(t, ok)

	_, ok = Layout(model.Assignment{StartKey: "10:00", SpanSlots: 4}, -1, m)
	assert.False(t, ok)
}

func TestLayoutMinimumSpan(t *testing.T) {
	m := model.GridMetrics{SlotHeight: 30, DoctorColWidth: 220}

	rect, ok := Layout(model.Assignment{StartKey: "08:00", SpanSlots: 0}, 0, m)
	require.True(t, ok)
	assert.Equal(t, 30.0, rect.Height)
}

func TestAssignmentFor(t *testing.T) {
	drID := uuid.New()
	end := mustTime(t, "2026-08-31T10:30:00")

	apt := &model.Appointment{
		PatientID: uuid.New(),
		DoctorID:  &drID,
		StartTime: mustTime(t, "2026-08-31T10:00:00"),
		EndTime:   &end,
		Status:    model.AppointmentStatusBooked,
	}

	a, ok := AssignmentFor(apt)
	require.True(t, ok)
	assert.Equal(t, "10:00", a.StartKey)
	assert.Equal(t, "10:30", a.EndKey)
	assert.Equal(t, 600, a.StartMinute)
	assert.Equal(t, 630, a.EndMinute)
	assert.Equal(t, 2, a.SpanSlots)
}

func mustTime(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := time.Parse("2006-01-02T15:04:05", s)
	require.NoError(t, err)
	return ts
}

func TestAssignmentForQueuedRow(t *testing.T) {
	_, ok := AssignmentFor(&model.Appointment{PatientID: uuid.New()})
	assert.False(t, ok)

	_, ok = AssignmentFor(nil)
	assert.False(t, ok)
}
