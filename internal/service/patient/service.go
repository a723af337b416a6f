package patient

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinicops/frontdesk-api/internal/model"
	"github.com/clinicops/frontdesk-api/internal/repository"
	"github.com/clinicops/frontdesk-api/internal/store"
	apperrors "github.com/clinicops/frontdesk-api/pkg/errors"
	"github.com/clinicops/frontdesk-api/pkg/logger"
)

type Service struct {
	repo   repository.PatientRepository
	store  *store.Store
	logger *logger.Logger
}

func NewService(repo repository.PatientRepository, st *store.Store, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  st,
		logger: log,
	}
}

// Register creates a patient and appends them to the queue. The serial
// number is allocated by the backend so concurrent registrations stay
// ordered.
func (s *Service) Register(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	serial, err := s.repo.NextSerialNo(ctx)
	if err != nil {
		return nil, apperrors.Remote("failed to allocate serial number", err)
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	patient := &model.Patient{
		SerialNo:      serial,
		Name:          req.Name,
		Age:           req.Age,
		Gender:        req.Gender,
		Priority:      priority,
		Symptoms:      req.Symptoms,
		Avatar:        req.Avatar,
		RequestedTime: req.RequestedTime,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, apperrors.Remote("failed to create patient", err)
	}

	s.logger.Info("patient registered", map[string]interface{}{
		"patient_id": patient.ID.String(),
		"serial_no":  patient.SerialNo,
	})
	return patient, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("patient", err)
	}
	return patient, nil
}

func (s *Service) List(ctx context.Context) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Remote("failed to list patients", err)
	}
	return patients, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("patient", err)
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.Age != nil {
		patient.Age = req.Age
	}
	if req.Gender != nil {
		patient.Gender = req.Gender
	}
	if req.Priority != nil {
		patient.Priority = *req.Priority
	}
	if req.Symptoms != nil {
		patient.Symptoms = req.Symptoms
	}
	if req.Avatar != nil {
		patient.Avatar = req.Avatar
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, apperrors.Remote("failed to update patient", err)
	}
	return patient, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.NotFound("patient", err)
	}
	return nil
}

// Queue returns the waiting patients from the board state, ordered by
// serial number.
func (s *Service) Queue(_ context.Context) []*model.PatientWithAppointment {
	return s.store.Queue()
}

// Unassigned is the authoritative database view of the queue, bypassing
// the in-memory board.
func (s *Service) Unassigned(ctx context.Context) ([]*model.Patient, error) {
	patients, err := s.repo.GetUnassigned(ctx)
	if err != nil {
		return nil, apperrors.Remote("failed to list unassigned patients", err)
	}
	return patients, nil
}
