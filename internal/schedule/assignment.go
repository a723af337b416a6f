package schedule

import (
	"github.com/clinicops/frontdesk-api/internal/model"
)

// AssignmentFor derives the grid view of a doctor-linked appointment.
// Returns false for queued (doctorless) rows.
func AssignmentFor(apt *model.Appointment) (model.Assignment, bool) {
	if apt == nil || apt.DoctorID == nil {
		return model.Assignment{}, false
	}
	start := apt.StartTime.Hour()*60 + apt.StartTime.Minute()
	end := start + int(apt.Duration(DefaultDuration).Minutes())
	startKey := KeyFromMinutes(start)
	endKey := KeyFromMinutes(end)
	return model.Assignment{
		PatientID:   apt.PatientID,
		DoctorID:    *apt.DoctorID,
		StartKey:    startKey,
		EndKey:      endKey,
		StartMinute: start,
		EndMinute:   end,
		SpanSlots:   SpanSlots(startKey, endKey, DefaultDuration),
		Status:      apt.Status,
	}, true
}
