package coverage

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	"github.com/frahmantamala/guard-deployment/internal/guard"
)

// MaxRangeDays bounds a single range query.
const MaxRangeDays = 92

type RepositoryAPI interface {
	LoadSnapshot(ctx context.Context, from, to time.Time) (*Snapshot, error)
	FreeRotatingGuards(ctx context.Context, day time.Time) ([]*guardDatamodel.Guard, error)
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

func (s *Service) SitesRequiringCoverage(ctx context.Context, day time.Time) ([]Gap, error) {
	day = dateutil.Normalize(day)

	snap, err := s.repo.LoadSnapshot(ctx, day, day)
	if err != nil {
		s.logger.Error("failed to load coverage snapshot", "error", err, "date", dateutil.Format(day))
		return nil, err
	}
	return Resolve(snap, day), nil
}

// SitesRequiringCoverageRange returns the gaps of every day in [from,to],
// resolved against a single snapshot.
func (s *Service) SitesRequiringCoverageRange(ctx context.Context, from, to time.Time) ([]Gap, error) {
	from, to = dateutil.Normalize(from), dateutil.Normalize(to)
	if to.Before(from) {
		return nil, internal.NewValidationError("range end is before its start", internal.ErrCodeInvalidRange)
	}
	if dateutil.DaysInclusive(from, to) > MaxRangeDays {
		return nil, internal.NewValidationError("coverage range is limited to 92 days", internal.ErrCodeInvalidRange)
	}

	snap, err := s.repo.LoadSnapshot(ctx, from, to)
	if err != nil {
		s.logger.Error("failed to load coverage snapshot", "error", err,
			"from", dateutil.Format(from), "to", dateutil.Format(to))
		return nil, err
	}

	gaps := make([]Gap, 0)
	err = dateutil.EachDay(from, to, func(day time.Time) error {
		gaps = append(gaps, Resolve(snap, day)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return gaps, nil
}

// FreeRotatingGuards lists active rotating guards with no live assignment and
// no approved leave on day.
func (s *Service) FreeRotatingGuards(ctx context.Context, day time.Time) ([]*guard.Guard, error) {
	day = dateutil.Normalize(day)

	rows, err := s.repo.FreeRotatingGuards(ctx, day)
	if err != nil {
		s.logger.Error("failed to list free rotating guards", "error", err, "date", dateutil.Format(day))
		return nil, err
	}
	return guard.FromDataModelSlice(rows), nil
}
