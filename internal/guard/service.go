package guard

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	"github.com/frahmantamala/guard-deployment/internal/core/events"
)

type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
	Create(ctx context.Context, g *guardDatamodel.Guard) error
	GetByID(ctx context.Context, id string) (*guardDatamodel.Guard, error)
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*guardDatamodel.Guard, error)
	UpdateStatus(ctx context.Context, id string, status guardDatamodel.Status) error
	UpdateRole(ctx context.Context, id string, role guardDatamodel.Role) error
	HasOpenDeployment(ctx context.Context, guardID string) (bool, error)
}

// Terminator ends a guard's employment together with their open posting, in
// one transaction.
type Terminator interface {
	Terminate(ctx context.Context, guardID string, effective time.Time) error
}

type Service struct {
	repo       RepositoryAPI
	publisher  events.Publisher
	terminator Terminator
	logger     *slog.Logger
	now        func() time.Time
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// WithClock replaces the clock used to date terminations.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithTerminator hands terminations to the deployment ledger. Without one, a
// posted guard cannot be terminated.
func (s *Service) WithTerminator(t Terminator) *Service {
	s.terminator = t
	return s
}

func (s *Service) Register(ctx context.Context, dto RegisterGuardDTO) (*Guard, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("guard validation failed", "error", err)
		return nil, err
	}

	row := ToDataModel(NewGuard(dto))
	if err := s.repo.Create(ctx, row); err != nil {
		s.logger.Error("failed to create guard", "error", err)
		return nil, err
	}

	s.logger.Info("guard registered", "guard_id", row.ID, "role", row.Role, "category", row.Category)
	return FromDataModel(row), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Guard, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get guard", "error", err, "guard_id", id)
		return nil, err
	}
	if row == nil {
		return nil, internal.NewNotFoundError("guard not found", internal.ErrCodeGuardNotFound)
	}
	return FromDataModel(row), nil
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Guard, error) {
	rows, err := s.repo.List(ctx, filter, limit, offset)
	if err != nil {
		s.logger.Error("failed to list guards", "error", err)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

// ChangeStatus applies an HR status change. Termination goes through the
// Terminator so the status and the closed posting commit together.
func (s *Service) ChangeStatus(ctx context.Context, id string, dto ChangeStatusDTO) (*Guard, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	status := guardDatamodel.Status(dto.Status)

	if status == guardDatamodel.StatusTerminated {
		return s.terminate(ctx, id, dto.EffectiveDate)
	}

	var updated *guardDatamodel.Guard
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		row, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if row == nil {
			return internal.NewNotFoundError("guard not found", internal.ErrCodeGuardNotFound)
		}
		if row.Status == guardDatamodel.StatusTerminated {
			return internal.NewStateError("a terminated guard cannot be reinstated", internal.ErrCodeGuardNotActive)
		}
		if err := tx.UpdateStatus(ctx, id, status); err != nil {
			return err
		}
		row.Status = status
		updated = row
		return nil
	})
	if err != nil {
		s.logger.Error("failed to change guard status", "error", err, "guard_id", id, "status", status)
		return nil, err
	}

	s.logger.Info("guard status changed", "guard_id", id, "status", status)
	return FromDataModel(updated), nil
}

func (s *Service) terminate(ctx context.Context, id string, effectiveDate *time.Time) (*Guard, error) {
	effective := dateutil.Normalize(s.now())
	if effectiveDate != nil {
		effective = dateutil.Normalize(*effectiveDate)
	}

	var err error
	if s.terminator != nil {
		err = s.terminator.Terminate(ctx, id, effective)
	} else {
		err = s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
			row, err := tx.GetByID(ctx, id)
			if err != nil {
				return err
			}
			if row == nil {
				return internal.NewNotFoundError("guard not found", internal.ErrCodeGuardNotFound)
			}
			open, err := tx.HasOpenDeployment(ctx, id)
			if err != nil {
				return err
			}
			if open {
				return internal.NewValidationError("end the guard's current posting before terminating", internal.ErrCodeGuardHasDeployment)
			}
			return tx.UpdateStatus(ctx, id, guardDatamodel.StatusTerminated)
		})
	}
	if err != nil {
		s.logger.Error("failed to terminate guard", "error", err, "guard_id", id)
		return nil, err
	}

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, internal.NewNotFoundError("guard not found", internal.ErrCodeGuardNotFound)
	}

	event := events.NewGuardTerminatedEvent(id, effective)
	if err := s.publisher.PublishSync(ctx, event); err != nil {
		s.logger.Error("event subscriber failed after commit", "error", err, "event_type", event.EventType(), "guard_id", id)
	}

	s.logger.Info("guard terminated", "guard_id", id, "effective_date", dateutil.Format(effective))
	return FromDataModel(row), nil
}

// ChangeRole converts a guard between fixed and rotating. The role in force at
// deployment time governs validation, so a guard cannot become rotating while posted.
func (s *Service) ChangeRole(ctx context.Context, id string, dto ChangeRoleDTO) (*Guard, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}
	role := guardDatamodel.Role(dto.Role)

	var updated *guardDatamodel.Guard
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		row, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if row == nil {
			return internal.NewNotFoundError("guard not found", internal.ErrCodeGuardNotFound)
		}
		if role == guardDatamodel.RoleRotating && row.Role != role {
			open, err := tx.HasOpenDeployment(ctx, id)
			if err != nil {
				return err
			}
			if open {
				return internal.NewValidationError("end the guard's current posting before converting to rotating", internal.ErrCodeGuardHasDeployment)
			}
		}
		if err := tx.UpdateRole(ctx, id, role); err != nil {
			return err
		}
		row.Role = role
		updated = row
		return nil
	})
	if err != nil {
		s.logger.Error("failed to change guard role", "error", err, "guard_id", id, "role", role)
		return nil, err
	}

	s.logger.Info("guard role changed", "guard_id", id, "role", role)
	return FromDataModel(updated), nil
}
