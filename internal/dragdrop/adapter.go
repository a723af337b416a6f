// Package dragdrop translates board drag events into engine calls. Drop
// zones are addressed by opaque string ids of the form
// "slot_<doctorID>_<HH:MM>" so the transport layer never needs to know
// grid geometry.
package dragdrop

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinicops/frontdesk-api/internal/model"
	"github.com/clinicops/frontdesk-api/internal/schedule"
	"github.com/clinicops/frontdesk-api/internal/store"
	apperrors "github.com/clinicops/frontdesk-api/pkg/errors"
)

const zonePrefix = "slot_"

// DropTarget is a parsed drop-zone id.
type DropTarget struct {
	DoctorID uuid.UUID
	TimeKey  string
}

// ParseDropZoneID parses "slot_<doctorID>_<HH:MM>". The doctor id is a
// UUID and the time key must sit on the grid.
func ParseDropZoneID(id string) (DropTarget, error) {
	if !strings.HasPrefix(id, zonePrefix) {
		return DropTarget{}, apperrors.BadRequest(fmt.Sprintf("malformed drop zone id %q", id), nil)
	}
	rest := strings.TrimPrefix(id, zonePrefix)

	// The time key follows the last underscore; the doctor UUID itself
	// contains hyphens but no underscores.
	sep := strings.LastIndex(rest, "_")
	if sep < 0 {
		return DropTarget{}, apperrors.BadRequest(fmt.Sprintf("malformed drop zone id %q", id), nil)
	}

	doctorID, err := uuid.Parse(rest[:sep])
	if err != nil {
		return DropTarget{}, apperrors.BadRequest(fmt.Sprintf("malformed drop zone id %q", id), err)
	}

	timeKey := rest[sep+1:]
	if schedule.SlotIndex(timeKey) < 0 {
		return DropTarget{}, apperrors.BadRequest(fmt.Sprintf("drop zone %q is off the grid", id), nil)
	}

	return DropTarget{DoctorID: doctorID, TimeKey: timeKey}, nil
}

// Engine is the subset of the assignment engine the dispatcher drives.
type Engine interface {
	Assign(ctx context.Context, patientID, doctorID uuid.UUID, date time.Time, timeKey string) error
	Reassign(ctx context.Context, patientID, doctorID uuid.UUID, date time.Time, timeKey string) error
}

// Dispatcher routes a completed drag to assign or reassign depending on
// which partition the patient currently occupies.
type Dispatcher struct {
	store  *store.Store
	engine Engine
}

func NewDispatcher(st *store.Store, engine Engine) *Dispatcher {
	return &Dispatcher{store: st, engine: engine}
}

// DragEnd handles a drop. Queued patients are assigned, already-placed
// patients are reassigned; drops from an unknown patient are rejected.
func (d *Dispatcher) DragEnd(ctx context.Context, patientID uuid.UUID, dropZoneID string, date time.Time) error {
	target, err := ParseDropZoneID(dropZoneID)
	if err != nil {
		return err
	}

	if d.store.IsAssigned(patientID) {
		return d.engine.Reassign(ctx, patientID, target.DoctorID, date, target.TimeKey)
	}
	if _, ok := d.store.GetQueued(patientID); ok {
		return d.engine.Assign(ctx, patientID, target.DoctorID, date, target.TimeKey)
	}
	return apperrors.NotFound("patient", nil)
}

// Preview computes where a card would land without mutating anything.
// Used for hover highlighting.
func (d *Dispatcher) Preview(patientID uuid.UUID, dropZoneID string, m model.GridMetrics) (model.Rect, error) {
	target, err := ParseDropZoneID(dropZoneID)
	if err != nil {
		return model.Rect{}, err
	}

	idx := d.store.DoctorIndex(target.DoctorID)
	if idx < 0 {
		return model.Rect{}, apperrors.NotFound("doctor", nil)
	}

	duration := schedule.DefaultDuration
	if p, ok := d.store.GetAssigned(patientID); ok && p.Appointment != nil {
		duration = p.Appointment.Duration(schedule.DefaultDuration)
	} else if p, ok := d.store.GetQueued(patientID); ok && p.Appointment != nil {
		duration = p.Appointment.Duration(schedule.DefaultDuration)
	}

	startMin, err := schedule.MinutesOfDay(target.TimeKey)
	if err != nil {
		return model.Rect{}, apperrors.BadRequest("invalid time key", err)
	}
	endMin := startMin + int(duration.Minutes())

	a := model.Assignment{
		PatientID:   patientID,
		DoctorID:    target.DoctorID,
		StartKey:    target.TimeKey,
		EndKey:      schedule.KeyFromMinutes(endMin),
		StartMinute: startMin,
		EndMinute:   endMin,
		SpanSlots:   schedule.SpanSlots(target.TimeKey, schedule.KeyFromMinutes(endMin), duration),
	}

	rect, ok := schedule.Layout(a, idx, m)
	if !ok {
		return model.Rect{}, apperrors.BadRequest("drop zone is off the grid", nil)
	}
	return rect, nil
}
