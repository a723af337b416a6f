package doctor

import (
	"context"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/clinicops/frontdesk-api/internal/model"
	"github.com/clinicops/frontdesk-api/internal/repository"
	"github.com/clinicops/frontdesk-api/internal/store"
	apperrors "github.com/clinicops/frontdesk-api/pkg/errors"
	"github.com/clinicops/frontdesk-api/pkg/logger"
)

const (
	rosterCacheKey = "doctor_roster"
	cacheTTL       = 5 * time.Minute
)

// Service manages the doctor roster. The roster changes rarely but is
// read on every board render, so List goes through a short-lived cache
// that every write invalidates.
type Service struct {
	repo   repository.DoctorRepository
	store  *store.Store
	cache  *gocache.Cache
	logger *logger.Logger
}

func NewService(repo repository.DoctorRepository, st *store.Store, log *logger.Logger) *Service {
	return &Service{
		repo:   repo,
		store:  st,
		cache:  gocache.New(cacheTTL, 10*time.Minute),
		logger: log,
	}
}

func (s *Service) Create(ctx context.Context, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	doctor := &model.Doctor{
		Name:           req.Name,
		Specialty:      req.Specialty,
		IsAvailable:    available,
		Avatar:         req.Avatar,
		Bio:            req.Bio,
		Education:      req.Education,
		Experience:     req.Experience,
		Certifications: req.Certifications,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, apperrors.Remote("failed to create doctor", err)
	}

	s.invalidate(ctx)
	return doctor, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("doctor", err)
	}
	return doctor, nil
}

// List returns the full roster, cached.
func (s *Service) List(ctx context.Context) ([]*model.Doctor, error) {
	if cached, found := s.cache.Get(rosterCacheKey); found {
		return cached.([]*model.Doctor), nil
	}

	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.Remote("failed to list doctors", err)
	}
	s.cache.Set(rosterCacheKey, doctors, cacheTTL)
	return doctors, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, req *model.UpdateDoctorRequest) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, apperrors.NotFound("doctor", err)
	}

	if req.Name != nil {
		doctor.Name = *req.Name
	}
	if req.Specialty != nil {
		doctor.Specialty = *req.Specialty
	}
	if req.IsAvailable != nil {
		doctor.IsAvailable = *req.IsAvailable
	}
	if req.Avatar != nil {
		doctor.Avatar = req.Avatar
	}
	if req.Bio != nil {
		doctor.Bio = req.Bio
	}
	if req.Education != nil {
		doctor.Education = req.Education
	}
	if req.Experience != nil {
		doctor.Experience = req.Experience
	}
	if req.Certifications != nil {
		doctor.Certifications = req.Certifications
	}

	if err := s.repo.Update(ctx, doctor); err != nil {
		return nil, apperrors.Remote("failed to update doctor", err)
	}

	s.invalidate(ctx)
	return doctor, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return apperrors.NotFound("doctor", err)
	}
	s.invalidate(ctx)
	return nil
}

// invalidate drops the cached roster and pushes the fresh one into the
// board store so column order stays current.
func (s *Service) invalidate(ctx context.Context) {
	s.cache.Delete(rosterCacheKey)

	doctors, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error(err, "failed to refresh doctor roster")
		return
	}
	s.cache.Set(rosterCacheKey, doctors, cacheTTL)
	s.store.SetDoctors(doctors)
}
