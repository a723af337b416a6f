package schedule

import (
	"github.com/clinicops/frontdesk-api/internal/model"
)

// Layout converts an assignment plus the measured grid geometry into an
// absolute screen rectangle for the spanning card renderer. doctorIndex
// is the doctor's column position on the board. The second return is
// false when the assignment starts outside the visible grid.
func Layout(a model.Assignment, doctorIndex int, m model.GridMetrics) (model.Rect, bool) {
	if doctorIndex < 0 {
		return model.Rect{}, false
	}
	idx := SlotIndex(a.StartKey)
	if idx < 0 {
		return model.Rect{}, false
	}
	span := a.SpanSlots
	if span < 1 {
		span = 1
	}
	return model.Rect{
		Left:   m.TimeColWidth + float64(doctorIndex)*m.DoctorColWidth,
		Top:    m.HeaderHeight + float64(idx)*m.SlotHeight,
		Width:  m.DoctorColWidth,
		Height: float64(span) * m.SlotHeight,
	}, true
}
