package site

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/guard-deployment/internal"
	siteDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/site"
)

type RepositoryAPI interface {
	Create(ctx context.Context, s *siteDatamodel.Site) error
	GetByID(ctx context.Context, id string) (*siteDatamodel.Site, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*siteDatamodel.Site, error)
	UpdateRequirements(ctx context.Context, id string, day, night int) error
	SetActive(ctx context.Context, id string, active bool) error
}

type Service struct {
	repo   RepositoryAPI
	logger *slog.Logger
}

func NewService(repo RepositoryAPI, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

func (s *Service) Create(ctx context.Context, dto CreateSiteDTO) (*Site, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("site validation failed", "error", err)
		return nil, err
	}

	row := ToDataModel(NewSite(dto))
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create site", "error", err)
		return nil, err
	}

	s.logger.Info("site created", "site_id", row.ID, "client", row.ClientName, "capacity", row.RequiredDay+row.RequiredNight)
	return FromDataModel(row), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Site, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get site", "error", err, "site_id", id)
		return nil, err
	}
	if row == nil {
		return nil, internal.NewNotFoundError("site not found", internal.ErrCodeSiteNotFound)
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Site, error) {
	rows, err := s.repo.List(ctx, activeOnly, limit, offset)
	if err != nil {
		s.logger.Error("failed to list sites", "error", err)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

// UpdateRequirements changes the headcount. Existing postings above the new
// capacity are kept; only new deployments see the lower limit.
func (s *Service) UpdateRequirements(ctx context.Context, id string, dto UpdateRequirementsDTO) (*Site, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateRequirements(ctx, id, dto.RequiredDay, dto.RequiredNight); err != nil {
		s.logger.Error("failed to update site requirements", "error", err, "site_id", id)
		return nil, err
	}

	s.logger.Info("site requirements updated", "site_id", id, "day", dto.RequiredDay, "night", dto.RequiredNight)
	return s.Get(ctx, id)
}

// SetActive toggles the site. Deactivation blocks new deployments and never
// ends existing ones.
func (s *Service) SetActive(ctx context.Context, id string, active bool) (*Site, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		s.logger.Error("failed to toggle site", "error", err, "site_id", id, "active", active)
		return nil, err
	}

	s.logger.Info("site active flag changed", "site_id", id, "active", active)
	return s.Get(ctx, id)
}
