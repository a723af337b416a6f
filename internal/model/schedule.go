package model

import (
	"github.com/google/uuid"
)

// Assignment is the derived view the overlap validator and layout math
// operate on: a patient bound to a doctor for [StartMinute, EndMinute)
// minutes-of-day, spanning SpanSlots grid rows.
type Assignment struct {
	PatientID   uuid.UUID         `json:"patient_id"`
	DoctorID    uuid.UUID         `json:"doctor_id"`
	StartKey    string            `json:"start_time_key"`
	EndKey      string            `json:"end_time_key"`
	StartMinute int               `json:"start_minute"`
	EndMinute   int               `json:"end_minute"`
	SpanSlots   int               `json:"span_slots"`
	Status      AppointmentStatus `json:"status"`
}

// GridMetrics is the measured pixel geometry of the rendered schedule
// grid. It is reported by the client, not hardcoded, since column widths
// depend on the doctor roster length and container size.
type GridMetrics struct {
	TimeColWidth   float64 `json:"time_col_width" binding:"gte=0"`
	HeaderHeight   float64 `json:"header_height" binding:"gte=0"`
	SlotHeight     float64 `json:"slot_height" binding:"required,gt=0"`
	DoctorColWidth float64 `json:"doctor_col_width" binding:"required,gt=0"`
}

// DefaultGridMetrics is the fallback geometry used when the client has
// not reported measurements yet.
func DefaultGridMetrics() GridMetrics {
	return GridMetrics{
		TimeColWidth:   80,
		HeaderHeight:   48,
		SlotHeight:     30,
		DoctorColWidth: 220,
	}
}

// Rect is an absolute screen rectangle for one appointment card.
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}
