package schedule

import (
	"github.com/google/uuid"

	"github.com/clinicops/frontdesk-api/internal/model"
)

// HasOverlap reports whether the candidate interval [startMin, endMin)
// for doctorID intersects any active assignment in existing, ignoring
// excludePatientID (so a patient never conflicts with their own slot on
// reassignment). Intervals are half-open: an appointment ending at 10:00
// does not collide with one starting at 10:00.
//
// This is the sole gate protecting the no-double-booking invariant. It is
// synchronous and must run before any mutation is committed.
func HasOverlap(doctorID uuid.UUID, startMin, endMin int, excludePatientID uuid.UUID, existing []model.Assignment) bool {
	if endMin-startMin < SlotMinutes {
		endMin = startMin + SlotMinutes
	}
	for _, a := range existing {
		if a.DoctorID != doctorID || a.PatientID == excludePatientID {
			continue
		}
		if !a.Status.Active() {
			continue
		}
		exStart := a.StartMinute
		exEnd := a.EndMinute
		if exEnd <= exStart {
			exEnd = exStart + int(DefaultDuration.Minutes())
		}
		if startMin < exEnd && endMin > exStart {
			return true
		}
	}
	return false
}
