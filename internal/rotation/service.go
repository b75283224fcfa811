package rotation

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	leaveDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/leave"
	rotationDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/rotation"
	siteDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/site"
	"github.com/frahmantamala/guard-deployment/internal/core/events"
)

type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
	GetGuard(ctx context.Context, id string) (*guardDatamodel.Guard, error)
	GetSite(ctx context.Context, id string) (*siteDatamodel.Site, error)
	GetLeave(ctx context.Context, id string) (*leaveDatamodel.Request, error)
	HasOverlap(ctx context.Context, guardID string, start, end time.Time) (bool, error)
	HasApprovedLeave(ctx context.Context, guardID string, start, end time.Time) (bool, error)
	Create(ctx context.Context, a *rotationDatamodel.Assignment) error
	GetByID(ctx context.Context, id string) (*rotationDatamodel.Assignment, error)
	UpdateStatus(ctx context.Context, id string, status rotationDatamodel.Status) error
	CompleteEndedBefore(ctx context.Context, today time.Time) (int64, error)
	ActivateStartedBy(ctx context.Context, today time.Time) (int64, error)
	ListByGuard(ctx context.Context, guardID string, limit, offset int) ([]*rotationDatamodel.Assignment, error)
	ListBySite(ctx context.Context, siteID string, limit, offset int) ([]*rotationDatamodel.Assignment, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
	now       func() time.Time
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

// WithClock replaces the clock used to pick a new assignment's status.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// AssignCoverage posts a rotating guard to a site for an inclusive date range.
// It overlays the replaced guard's deployment and never touches it.
func (s *Service) AssignCoverage(ctx context.Context, dto AssignCoverageDTO) (*Assignment, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("rotation assignment validation failed", "error", err)
		return nil, err
	}
	start := dateutil.Normalize(dto.StartDate)
	end := dateutil.Normalize(dto.EndDate)
	today := dateutil.Normalize(s.now())

	var created *rotationDatamodel.Assignment
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		g, err := tx.GetGuard(ctx, dto.GuardID)
		if err != nil {
			return err
		}
		if g == nil {
			return internal.NewNotFoundError("guard not found", internal.ErrCodeGuardNotFound)
		}
		if g.Role != guardDatamodel.RoleRotating {
			return internal.NewValidationError("only rotating guards can be assigned to cover", internal.ErrCodeGuardNotRotating)
		}
		if g.Status != guardDatamodel.StatusActive {
			return internal.NewValidationError("guard is not active", internal.ErrCodeGuardNotActive)
		}

		site, err := tx.GetSite(ctx, dto.SiteID)
		if err != nil {
			return err
		}
		if site == nil {
			return internal.NewNotFoundError("site not found", internal.ErrCodeSiteNotFound)
		}
		if !site.Active {
			return internal.NewValidationError("site is inactive", internal.ErrCodeSiteInactive)
		}

		overlap, err := tx.HasOverlap(ctx, g.ID, start, end)
		if err != nil {
			return err
		}
		if overlap {
			return internal.NewValidationError("guard already has an assignment in this range", internal.ErrCodeAssignmentOverlap)
		}
		away, err := tx.HasApprovedLeave(ctx, g.ID, start, end)
		if err != nil {
			return err
		}
		if away {
			return internal.NewValidationError("guard is on approved leave in this range", internal.ErrCodeGuardOnLeave)
		}

		replaced := optional(dto.ReplacedGuardID)
		if replaced != nil {
			other, err := tx.GetGuard(ctx, *replaced)
			if err != nil {
				return err
			}
			if other == nil {
				return internal.NewNotFoundError("replaced guard not found", internal.ErrCodeGuardNotFound)
			}
		}

		leaveID := optional(dto.LeaveRequestID)
		if leaveID != nil {
			req, err := tx.GetLeave(ctx, *leaveID)
			if err != nil {
				return err
			}
			if req == nil {
				return internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveNotFound)
			}
			if req.Status != leaveDatamodel.StatusApproved {
				return internal.NewValidationError("leave request is not approved", internal.ErrCodeLeaveNotApproved)
			}
			if replaced == nil {
				replaced = &req.GuardID
			} else if *replaced != req.GuardID {
				return internal.NewValidationError("replaced guard does not match the leave request", internal.ErrCodeReplacedGuardMismatch)
			}
		}
		row := &rotationDatamodel.Assignment{
			GuardID:         g.ID,
			SiteID:          site.ID,
			Shift:           deploymentDatamodel.Shift(dto.Shift),
			StartDate:       start,
			EndDate:         end,
			LeaveRequestID:  leaveID,
			ReplacedGuardID: replaced,
			Status:          InitialStatus(start, end, today),
		}
		if err := tx.Create(ctx, row); err != nil {
			return err
		}
		created = row
		return nil
	})
	if err != nil {
		s.logger.Error("failed to assign coverage", "error", err, "guard_id", dto.GuardID, "site_id", dto.SiteID)
		return nil, err
	}

	leaveRef := ""
	if created.LeaveRequestID != nil {
		leaveRef = *created.LeaveRequestID
	}
	event := events.NewRotationAssignedEvent(created.ID, created.GuardID, created.SiteID, leaveRef)
	if err := s.publisher.PublishSync(ctx, event); err != nil {
		s.logger.Warn("rotation event subscriber failed", "error", err, "event_id", event.EventID())
	}

	s.logger.Info("coverage assigned",
		"assignment_id", created.ID,
		"guard_id", created.GuardID,
		"site_id", created.SiteID,
		"leave_id", leaveRef,
		"start_date", dateutil.Format(start),
		"end_date", dateutil.Format(end))
	return FromDataModel(created), nil
}

// Cancel is a no-op on an already cancelled assignment; a completed one stays completed.
func (s *Service) Cancel(ctx context.Context, id string) (*Assignment, error) {
	var result *rotationDatamodel.Assignment
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		row, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if row == nil {
			return internal.NewNotFoundError("rotation assignment not found", internal.ErrCodeAssignmentNotFound)
		}
		result = row

		switch row.Status {
		case rotationDatamodel.StatusCancelled:
			return nil
		case rotationDatamodel.StatusCompleted:
			return internal.NewStateError("a completed assignment cannot be cancelled", internal.ErrCodeAssignmentClosed)
		}

		if err := tx.UpdateStatus(ctx, id, rotationDatamodel.StatusCancelled); err != nil {
			return err
		}
		row.Status = rotationDatamodel.StatusCancelled
		return nil
	})
	if err != nil {
		s.logger.Error("failed to cancel rotation assignment", "error", err, "assignment_id", id)
		return nil, err
	}

	s.logger.Info("rotation assignment cancelled", "assignment_id", id)
	return FromDataModel(result), nil
}

// CompleteExpired marks live assignments that ended before today as completed
// and returns how many changed.
func (s *Service) CompleteExpired(ctx context.Context, today time.Time) (int, error) {
	today = dateutil.Normalize(today)

	var n int64
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		var err error
		n, err = tx.CompleteEndedBefore(ctx, today)
		return err
	})
	if err != nil {
		s.logger.Error("failed to complete expired assignments", "error", err, "today", dateutil.Format(today))
		return 0, err
	}

	s.logger.Info("expired assignments completed", "count", n, "today", dateutil.Format(today))
	return int(n), nil
}

// ActivateStarted moves planned assignments whose range contains today to in progress.
func (s *Service) ActivateStarted(ctx context.Context, today time.Time) (int, error) {
	today = dateutil.Normalize(today)

	var n int64
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		var err error
		n, err = tx.ActivateStartedBy(ctx, today)
		return err
	})
	if err != nil {
		s.logger.Error("failed to activate started assignments", "error", err, "today", dateutil.Format(today))
		return 0, err
	}

	s.logger.Info("started assignments activated", "count", n, "today", dateutil.Format(today))
	return int(n), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Assignment, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get rotation assignment", "error", err, "assignment_id", id)
		return nil, err
	}
	if row == nil {
		return nil, internal.NewNotFoundError("rotation assignment not found", internal.ErrCodeAssignmentNotFound)
	}
	return FromDataModel(row), nil
}

func (s *Service) ListByGuard(ctx context.Context, guardID string, limit, offset int) ([]*Assignment, error) {
	rows, err := s.repo.ListByGuard(ctx, guardID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list guard assignments", "error", err, "guard_id", guardID)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) ListBySite(ctx context.Context, siteID string, limit, offset int) ([]*Assignment, error) {
	rows, err := s.repo.ListBySite(ctx, siteID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list site assignments", "error", err, "site_id", siteID)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}
