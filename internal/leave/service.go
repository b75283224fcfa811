package leave

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	leaveDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/leave"
	"github.com/frahmantamala/guard-deployment/internal/core/events"
)

type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
	GetGuard(ctx context.Context, id string) (*guardDatamodel.Guard, error)
	Create(ctx context.Context, r *leaveDatamodel.Request) error
	GetByID(ctx context.Context, id string) (*leaveDatamodel.Request, error)
	HasOverlap(ctx context.Context, guardID string, start, end time.Time, statuses []leaveDatamodel.Status) (bool, error)
	Decide(ctx context.Context, id string, status leaveDatamodel.Status, approver, comment string, decidedAt time.Time) error
	UpdateStatus(ctx context.Context, id string, status leaveDatamodel.Status) error
	CancelAssignments(ctx context.Context, leaveID string) (int64, error)
	ListByGuard(ctx context.Context, guardID string, limit, offset int) ([]*leaveDatamodel.Request, error)
	ListByStatus(ctx context.Context, status leaveDatamodel.Status, limit, offset int) ([]*leaveDatamodel.Request, error)
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

// WithClock replaces the clock deciding "today" for cancellations.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CreateRequest(ctx context.Context, dto CreateRequestDTO) (*Request, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("leave request validation failed", "error", err)
		return nil, err
	}
	start := dateutil.Normalize(dto.StartDate)
	end := dateutil.Normalize(dto.EndDate)

	var created *leaveDatamodel.Request
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		g, err := tx.GetGuard(ctx, dto.GuardID)
		if err != nil {
			return err
		}
		if g == nil {
			return internal.NewNotFoundError("guard not found", internal.ErrCodeGuardNotFound)
		}

		if dto.SubstituteGuardID != nil && *dto.SubstituteGuardID != "" {
			sub, err := tx.GetGuard(ctx, *dto.SubstituteGuardID)
			if err != nil {
				return err
			}
			if sub == nil {
				return internal.NewNotFoundError("substitute guard not found", internal.ErrCodeGuardNotFound)
			}
			if sub.Role != guardDatamodel.RoleRotating {
				return internal.NewValidationError("substitute must be a rotating guard", internal.ErrCodeGuardNotRotating)
			}
		}

		overlap, err := tx.HasOverlap(ctx, g.ID, start, end, []leaveDatamodel.Status{
			leaveDatamodel.StatusPending,
			leaveDatamodel.StatusApproved,
		})
		if err != nil {
			return err
		}
		if overlap {
			return internal.NewValidationError("guard already has a pending or approved leave in this range", internal.ErrCodeLeaveOverlap)
		}

		row := &leaveDatamodel.Request{
			GuardID:   g.ID,
			Type:      leaveDatamodel.Type(dto.Type),
			StartDate: start,
			EndDate:   end,
			DayCount:  dateutil.DaysInclusive(start, end),
			Motive:    dto.Motive,
			Status:    leaveDatamodel.StatusPending,
		}
		if dto.SubstituteGuardID != nil && *dto.SubstituteGuardID != "" {
			row.SubstituteGuardID = dto.SubstituteGuardID
		}
		if err := tx.Create(ctx, row); err != nil {
			return err
		}
		created = row
		return nil
	})
	if err != nil {
		s.logger.Error("failed to create leave request", "error", err, "guard_id", dto.GuardID)
		return nil, err
	}

	s.logger.Info("leave requested", "leave_id", created.ID, "guard_id", created.GuardID, "days", created.DayCount)
	return FromDataModel(created), nil
}

func (s *Service) Approve(ctx context.Context, id string, dto DecisionDTO) (*Request, error) {
	approver := s.approver(ctx, dto)
	if approver == "" {
		return nil, internal.NewValidationFieldError("approver", "approver is required", internal.ErrCodeValidationFailed)
	}

	row, err := s.decide(ctx, id, leaveDatamodel.StatusApproved, approver, dto.Comment)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, events.NewLeaveEvent(events.EventTypeLeaveApproved, row.ID, row.GuardID, 0))

	s.logger.Info("leave approved", "leave_id", id, "approver", approver)
	return FromDataModel(row), nil
}

func (s *Service) Reject(ctx context.Context, id string, dto DecisionDTO) (*Request, error) {
	if err := dto.validateRejection(); err != nil {
		return nil, err
	}
	approver := s.approver(ctx, dto)
	if approver == "" {
		return nil, internal.NewValidationFieldError("approver", "approver is required", internal.ErrCodeValidationFailed)
	}

	row, err := s.decide(ctx, id, leaveDatamodel.StatusRejected, approver, dto.Comment)
	if err != nil {
		return nil, err
	}

	s.logger.Info("leave rejected", "leave_id", id, "approver", approver)
	return FromDataModel(row), nil
}

func (s *Service) approver(ctx context.Context, dto DecisionDTO) string {
	if a := strings.TrimSpace(dto.Approver); a != "" {
		return a
	}
	return internal.OperatorFromContext(ctx)
}

func (s *Service) decide(ctx context.Context, id string, status leaveDatamodel.Status, approver, comment string) (*leaveDatamodel.Request, error) {
	decidedAt := s.now().UTC()

	var updated *leaveDatamodel.Request
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		row, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if row == nil {
			return internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveNotFound)
		}
		if row.Status != leaveDatamodel.StatusPending {
			return internal.NewStateError("leave request is "+string(row.Status)+", only PENDING requests can be decided", internal.ErrCodeInvalidLeaveStatus)
		}
		if err := tx.Decide(ctx, id, status, approver, comment, decidedAt); err != nil {
			return err
		}

		row.Status = status
		row.Approver = &approver
		row.DecisionComment = &comment
		if status == leaveDatamodel.StatusApproved {
			row.ApprovedAt = &decidedAt
		}
		updated = row
		return nil
	})
	if err != nil {
		s.logger.Error("failed to decide leave request", "error", err, "leave_id", id, "status", status)
		return nil, err
	}
	return updated, nil
}

// Cancel withdraws a pending or approved request before it starts. Rotation
// assignments still covering it are cancelled in the same transaction.
func (s *Service) Cancel(ctx context.Context, id string) (*Request, error) {
	today := dateutil.Normalize(s.now())

	var (
		updated   *leaveDatamodel.Request
		cancelled int64
	)
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		row, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if row == nil {
			return internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveNotFound)
		}
		if row.Status != leaveDatamodel.StatusPending && row.Status != leaveDatamodel.StatusApproved {
			return internal.NewStateError("leave request is "+string(row.Status)+" and cannot be cancelled", internal.ErrCodeInvalidLeaveStatus)
		}
		if !FromDataModel(row).Cancellable(today) {
			return internal.NewStateError("leave has already started", internal.ErrCodeLeaveAlreadyStarted)
		}

		if err := tx.UpdateStatus(ctx, id, leaveDatamodel.StatusCancelled); err != nil {
			return err
		}
		n, err := tx.CancelAssignments(ctx, id)
		if err != nil {
			return err
		}

		row.Status = leaveDatamodel.StatusCancelled
		updated = row
		cancelled = n
		return nil
	})
	if err != nil {
		s.logger.Error("failed to cancel leave request", "error", err, "leave_id", id)
		return nil, err
	}

	s.notify(ctx, events.NewLeaveEvent(events.EventTypeLeaveCancelled, updated.ID, updated.GuardID, cancelled))

	s.logger.Info("leave cancelled", "leave_id", id, "cancelled_assignments", cancelled)
	return FromDataModel(updated), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Request, error) {
	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("failed to get leave request", "error", err, "leave_id", id)
		return nil, err
	}
	if row == nil {
		return nil, internal.NewNotFoundError("leave request not found", internal.ErrCodeLeaveNotFound)
	}
	return FromDataModel(row), nil
}

func (s *Service) ListByGuard(ctx context.Context, guardID string, limit, offset int) ([]*Request, error) {
	rows, err := s.repo.ListByGuard(ctx, guardID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list leave requests", "error", err, "guard_id", guardID)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) ListByStatus(ctx context.Context, status string, limit, offset int) ([]*Request, error) {
	if !ValidStatus(status) {
		return nil, internal.NewValidationFieldError("status", "unknown leave status "+status, internal.ErrCodeInvalidLeaveStatus)
	}
	rows, err := s.repo.ListByStatus(ctx, leaveDatamodel.Status(status), limit, offset)
	if err != nil {
		s.logger.Error("failed to list leave requests", "error", err, "status", status)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) notify(ctx context.Context, event events.Event) {
	if err := s.publisher.PublishSync(ctx, event); err != nil {
		s.logger.Warn("leave event subscriber failed", "error", err, "event_type", event.EventType())
	}
}
