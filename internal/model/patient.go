package model

import (
	"time"
)

type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

// Patient is a registered walk-in or scheduled patient. SerialNo is the
// queue position assigned at registration and stays stable afterwards.
type Patient struct {
	Base
	SerialNo      int        `db:"serial_no" json:"serial_no"`
	Name          string     `db:"name" json:"name"`
	Age           *int       `db:"age" json:"age,omitempty"`
	Gender        *Gender    `db:"gender" json:"gender,omitempty"`
	Priority      Priority   `db:"priority" json:"priority"`
	Symptoms      *string    `db:"symptoms" json:"symptoms,omitempty"`
	Avatar        *string    `db:"avatar" json:"avatar,omitempty"`
	RequestedTime *time.Time `db:"requested_time" json:"requested_time,omitempty"`
}

// Clone returns a deep copy, including pointer fields.
func (p *Patient) Clone() *Patient {
	if p == nil {
		return nil
	}
	cp := *p
	cp.Age = clonePtr(p.Age)
	cp.Gender = clonePtr(p.Gender)
	cp.Symptoms = clonePtr(p.Symptoms)
	cp.Avatar = clonePtr(p.Avatar)
	cp.RequestedTime = clonePtr(p.RequestedTime)
	return &cp
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

type CreatePatientRequest struct {
	Name          string     `json:"name" binding:"required"`
	Age           *int       `json:"age" binding:"omitempty,gte=0,lte=150"`
	Gender        *Gender    `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	Priority      Priority   `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	Symptoms      *string    `json:"symptoms"`
	Avatar        *string    `json:"avatar"`
	RequestedTime *time.Time `json:"requested_time"`
}

type UpdatePatientRequest struct {
	Name     *string   `json:"name"`
	Age      *int      `json:"age" binding:"omitempty,gte=0,lte=150"`
	Gender   *Gender   `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	Priority *Priority `json:"priority" binding:"omitempty,oneof=Low Medium High"`
	Symptoms *string   `json:"symptoms"`
	Avatar   *string   `json:"avatar"`
}
