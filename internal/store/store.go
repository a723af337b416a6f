// Package store holds the process-wide board state: the patient queue,
// the assigned patients and the doctor roster. Only the assignment
// engine and the sync layer write to it; handlers read through the
// accessor methods and dispatch mutations through the engine.
package store

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/clinicops/frontdesk-api/internal/model"
)

// Store partitions patients into queue (no active doctor binding) and
// assigned. A patient id lives in exactly one partition at any settled
// moment; during an in-flight remote write the optimistic state is
// either reconciled by a reload or rolled back from a snapshot.
type Store struct {
	mu       sync.RWMutex
	queue    map[uuid.UUID]*model.PatientWithAppointment
	assigned map[uuid.UUID]*model.PatientWithAppointment
	doctors  []*model.Doctor
}

// Snapshot is a deep copy of the two partitions, taken before an
// optimistic mutation and restored verbatim if the remote write fails.
type Snapshot struct {
	queue    map[uuid.UUID]*model.PatientWithAppointment
	assigned map[uuid.UUID]*model.PatientWithAppointment
}

func New() *Store {
	return &Store{
		queue:    make(map[uuid.UUID]*model.PatientWithAppointment),
		assigned: make(map[uuid.UUID]*model.PatientWithAppointment),
	}
}

// Replace swaps in a freshly fetched authoritative state.
func (s *Store) Replace(queue, assigned []*model.PatientWithAppointment, doctors []*model.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = make(map[uuid.UUID]*model.PatientWithAppointment, len(queue))
	for _, p := range queue {
		s.queue[p.ID] = p
	}
	s.assigned = make(map[uuid.UUID]*model.PatientWithAppointment, len(assigned))
	for _, p := range assigned {
		// A patient id must not land in both partitions; assigned wins.
		delete(s.queue, p.ID)
		s.assigned[p.ID] = p
	}
	s.doctors = doctors
}

// Queue returns the unassigned patients ordered by serial number.
func (s *Store) Queue() []*model.PatientWithAppointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.PatientWithAppointment, 0, len(s.queue))
	for _, p := range s.queue {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNo < out[j].SerialNo })
	return out
}

// Assigned returns the assigned patients ordered by appointment start.
func (s *Store) Assigned() []*model.PatientWithAppointment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.PatientWithAppointment, 0, len(s.assigned))
	for _, p := range s.assigned {
		out = append(out, p.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].Appointment, out[j].Appointment
		if a == nil || b == nil {
			return out[i].SerialNo < out[j].SerialNo
		}
		return a.StartTime.Before(b.StartTime)
	})
	return out
}

func (s *Store) GetQueued(id uuid.UUID) (*model.PatientWithAppointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.queue[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (s *Store) GetAssigned(id uuid.UUID) (*model.PatientWithAppointment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.assigned[id]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

func (s *Store) IsAssigned(id uuid.UUID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.assigned[id]
	return ok
}

// MoveToAssigned commits the optimistic queue→assigned transition.
func (s *Store) MoveToAssigned(p *model.PatientWithAppointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.queue, p.ID)
	s.assigned[p.ID] = p.Clone()
}

// UpdateAssigned replaces an assigned entry in place (reassignment,
// status change).
func (s *Store) UpdateAssigned(p *model.PatientWithAppointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.assigned[p.ID]; ok {
		s.assigned[p.ID] = p.Clone()
	}
}

// MoveToQueue commits the optimistic assigned→queue transition.
func (s *Store) MoveToQueue(p *model.PatientWithAppointment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.assigned, p.ID)
	s.queue[p.ID] = p.Clone()
}

func (s *Store) SetDoctors(doctors []*model.Doctor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doctors = doctors
}

// Doctors returns the roster in board column order (by name).
func (s *Store) Doctors() []*model.Doctor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*model.Doctor, len(s.doctors))
	for i, d := range s.doctors {
		out[i] = d.Clone()
	}
	return out
}

func (s *Store) GetDoctor(id uuid.UUID) (*model.Doctor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.doctors {
		if d.ID == id {
			return d.Clone(), true
		}
	}
	return nil, false
}

// DoctorIndex returns the doctor's column position, or -1.
func (s *Store) DoctorIndex(id uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i, d := range s.doctors {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// Snapshot deep-copies both partitions. The doctor roster is read-only
// from the engine's perspective and is not part of rollback state.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &Snapshot{
		queue:    make(map[uuid.UUID]*model.PatientWithAppointment, len(s.queue)),
		assigned: make(map[uuid.UUID]*model.PatientWithAppointment, len(s.assigned)),
	}
	for id, p := range s.queue {
		snap.queue[id] = p.Clone()
	}
	for id, p := range s.assigned {
		snap.assigned[id] = p.Clone()
	}
	return snap
}

// Restore replaces the partitions with the snapshot's copies.
func (s *Store) Restore(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.queue = make(map[uuid.UUID]*model.PatientWithAppointment, len(snap.queue))
	for id, p := range snap.queue {
		s.queue[id] = p.Clone()
	}
	s.assigned = make(map[uuid.UUID]*model.PatientWithAppointment, len(snap.assigned))
	for id, p := range snap.assigned {
		s.assigned[id] = p.Clone()
	}
}
