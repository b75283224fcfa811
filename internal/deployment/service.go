package deployment

import (
	"context"
	"log/slog"
	"time"

	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	siteDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/site"
	"github.com/frahmantamala/guard-deployment/internal/core/events"
)

// RepositoryAPI is the ledger's view of the store. Getters return nil, nil
// when nothing matches.
type RepositoryAPI interface {
	Transaction(ctx context.Context, fn func(tx RepositoryAPI) error) error
	GetGuard(ctx context.Context, id string) (*guardDatamodel.Guard, error)
	GetSite(ctx context.Context, id string) (*siteDatamodel.Site, error)
	GetOpenByGuard(ctx context.Context, guardID string) (*deploymentDatamodel.Deployment, error)
	GetLatestClosedByGuard(ctx context.Context, guardID string) (*deploymentDatamodel.Deployment, error)
	CountOpenBySite(ctx context.Context, siteID string) (OpenCounts, error)
	UpdateGuardStatus(ctx context.Context, guardID string, status guardDatamodel.Status) error
	Create(ctx context.Context, d *deploymentDatamodel.Deployment) error
	Close(ctx context.Context, id string, endDate time.Time) error
	CreateAudit(ctx context.Context, a *deploymentDatamodel.AuditEntry) error
	ListByGuard(ctx context.Context, guardID string, limit, offset int) ([]*deploymentDatamodel.Deployment, error)
	ListBySite(ctx context.Context, siteID string, limit, offset int) ([]*deploymentDatamodel.Deployment, error)
	ListAudit(ctx context.Context, guardID string, limit, offset int) ([]*deploymentDatamodel.AuditEntry, error)
}

type Service struct {
	repo      RepositoryAPI
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, publisher events.Publisher, logger *slog.Logger) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Deploy posts a guard to a site. A guard already posted elsewhere is
// transferred: the open posting is closed on the new start date and the new
// one opened in the same transaction.
func (s *Service) Deploy(ctx context.Context, dto DeployDTO) (*Deployment, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Error("deployment validation failed", "error", err)
		return nil, err
	}

	start := dateutil.Normalize(dto.StartDate)
	shift := deploymentDatamodel.Shift(dto.Shift)
	actor := internal.OperatorFromContext(ctx)

	var (
		created    *deploymentDatamodel.Deployment
		fromSiteID string
	)
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		g, err := tx.GetGuard(ctx, dto.GuardID)
		if err != nil {
			return err
		}
		if err := checkDeployable(g); err != nil {
			return err
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

		open, err := tx.GetOpenByGuard(ctx, g.ID)
		if err != nil {
			return err
		}
		if open != nil {
			if open.SiteID == site.ID {
				return internal.NewDuplicateAssignmentError("guard is already deployed at this site", internal.ErrCodeAlreadyDeployedHere)
			}
			if start.Before(dateutil.Normalize(open.StartDate)) {
				return internal.NewValidationError("transfer date is before the current posting started", internal.ErrCodeDeploymentOverlap)
			}
		} else {
			last, err := tx.GetLatestClosedByGuard(ctx, g.ID)
			if err != nil {
				return err
			}
			if last != nil && start.Before(dateutil.Normalize(*last.EndDate)) {
				return internal.NewValidationError("start date overlaps the guard's previous posting", internal.ErrCodeDeploymentOverlap)
			}
		}

		counts, err := tx.CountOpenBySite(ctx, site.ID)
		if err != nil {
			return err
		}
		if !counts.HasRoom(shift, site.RequiredDay, site.RequiredNight) {
			return internal.NewValidationError("site is at full capacity for this shift", internal.ErrCodeSiteAtCapacity)
		}

		action := deploymentDatamodel.AuditDeploy
		if open != nil {
			if err := tx.Close(ctx, open.ID, start); err != nil {
				return err
			}
			action = deploymentDatamodel.AuditTransfer
			fromSiteID = open.SiteID
		}

		row := &deploymentDatamodel.Deployment{
			GuardID:   g.ID,
			SiteID:    site.ID,
			Shift:     shift,
			StartDate: start,
			Reason:    deploymentDatamodel.Reason(dto.Reason),
			Notes:     dto.Notes,
		}
		if err := tx.Create(ctx, row); err != nil {
			return err
		}

		audit := &deploymentDatamodel.AuditEntry{
			DeploymentID:  row.ID,
			GuardID:       g.ID,
			Action:        action,
			ToSiteID:      &row.SiteID,
			EffectiveDate: start,
			Reason:        row.Reason,
			Notes:         row.Notes,
			Actor:         actor,
		}
		if open != nil {
			audit.FromSiteID = &open.SiteID
		}
		if err := tx.CreateAudit(ctx, audit); err != nil {
			return err
		}

		created = row
		return nil
	})
	if err != nil {
		s.logger.Error("failed to deploy guard", "error", err, "guard_id", dto.GuardID, "site_id", dto.SiteID)
		return nil, err
	}

	event := events.NewDeploymentEvent(events.EventTypeDeploymentCreated, created.ID, created.GuardID, created.SiteID, "", start)
	if fromSiteID != "" {
		event = events.NewDeploymentEvent(events.EventTypeDeploymentTransferred, created.ID, created.GuardID, created.SiteID, fromSiteID, start)
	}
	s.notify(ctx, event)

	s.logger.Info("guard deployed",
		"deployment_id", created.ID,
		"guard_id", created.GuardID,
		"site_id", created.SiteID,
		"from_site_id", fromSiteID,
		"shift", created.Shift,
		"start_date", dateutil.Format(start))
	return FromDataModel(created), nil
}

func checkDeployable(g *guardDatamodel.Guard) error {
	if g == nil {
		return internal.NewNotFoundError("guard not found", internal.ErrCodeGuardNotFound)
	}
	if g.Role == guardDatamodel.RoleRotating {
		return internal.NewValidationError("rotating guards cannot hold a standing deployment", internal.ErrCodeGuardIsRotating)
	}
	if g.Status != guardDatamodel.StatusActive {
		return internal.NewValidationError("guard is not active", internal.ErrCodeGuardNotActive)
	}
	return nil
}

// EndDeployment closes the guard's open posting; afterwards the guard has no
// current site.
func (s *Service) EndDeployment(ctx context.Context, guardID string, dto EndDeploymentDTO) error {
	if err := dto.Validate(); err != nil {
		return err
	}
	_, err := s.end(ctx, guardID, dto.normalized())
	return err
}

// Terminate marks the guard TERMINATED and closes its open posting in one
// transaction. A termination dated before the posting started closes it on its
// start date. A guard with no posting only changes status.
func (s *Service) Terminate(ctx context.Context, guardID string, effective time.Time) error {
	actor := internal.OperatorFromContext(ctx)
	dto := EndDeploymentDTO{
		EndDate: dateutil.Normalize(effective),
		Reason:  string(deploymentDatamodel.ReasonOther),
		Notes:   "guard terminated",
	}

	var closed *deploymentDatamodel.Deployment
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		g, err := tx.GetGuard(ctx, guardID)
		if err != nil {
			return err
		}
		if g == nil {
			return internal.NewNotFoundError("guard not found", internal.ErrCodeGuardNotFound)
		}
		if err := tx.UpdateGuardStatus(ctx, guardID, guardDatamodel.StatusTerminated); err != nil {
			return err
		}

		open, err := tx.GetOpenByGuard(ctx, guardID)
		if err != nil {
			return err
		}
		if open == nil {
			return nil
		}
		closed, err = closeOpen(ctx, tx, open, dto, true, actor)
		return err
	})
	if err != nil {
		s.logger.Error("failed to terminate guard", "error", err, "guard_id", guardID)
		return err
	}
	if closed == nil {
		return nil
	}

	s.notify(ctx, events.NewDeploymentEvent(events.EventTypeDeploymentEnded, closed.ID, guardID, closed.SiteID, "", *closed.EndDate))
	s.logger.Info("posting closed on termination", "deployment_id", closed.ID, "guard_id", guardID, "end_date", dateutil.Format(*closed.EndDate))
	return nil
}

func (s *Service) end(ctx context.Context, guardID string, dto EndDeploymentDTO) (*deploymentDatamodel.Deployment, error) {
	actor := internal.OperatorFromContext(ctx)

	var closed *deploymentDatamodel.Deployment
	err := s.repo.Transaction(ctx, func(tx RepositoryAPI) error {
		g, err := tx.GetGuard(ctx, guardID)
		if err != nil {
			return err
		}
		if g == nil {
			return internal.NewNotFoundError("guard not found", internal.ErrCodeGuardNotFound)
		}

		open, err := tx.GetOpenByGuard(ctx, guardID)
		if err != nil {
			return err
		}
		if open == nil {
			return internal.NewNotFoundError("guard has no open deployment", internal.ErrCodeNoOpenDeployment)
		}

		closed, err = closeOpen(ctx, tx, open, dto, false, actor)
		return err
	})
	if err != nil {
		s.logger.Error("failed to end deployment", "error", err, "guard_id", guardID)
		return nil, err
	}

	s.notify(ctx, events.NewDeploymentEvent(events.EventTypeDeploymentEnded, closed.ID, guardID, closed.SiteID, "", *closed.EndDate))
	s.logger.Info("deployment ended", "deployment_id", closed.ID, "guard_id", guardID, "end_date", dateutil.Format(*closed.EndDate))
	return closed, nil
}

// closeOpen sets the posting's end date and appends its END audit row. With
// clamp, an end before the start is moved to the start instead of refused.
func closeOpen(ctx context.Context, tx RepositoryAPI, open *deploymentDatamodel.Deployment, dto EndDeploymentDTO, clamp bool, actor string) (*deploymentDatamodel.Deployment, error) {
	end := dto.EndDate
	started := dateutil.Normalize(open.StartDate)
	if end.Before(started) {
		if !clamp {
			return nil, internal.NewValidationError("end date is before the posting started", internal.ErrCodeInvalidRange)
		}
		end = started
	}

	if err := tx.Close(ctx, open.ID, end); err != nil {
		return nil, err
	}
	if err := tx.CreateAudit(ctx, &deploymentDatamodel.AuditEntry{
		DeploymentID:  open.ID,
		GuardID:       open.GuardID,
		Action:        deploymentDatamodel.AuditEnd,
		FromSiteID:    &open.SiteID,
		EffectiveDate: end,
		Reason:        deploymentDatamodel.Reason(dto.Reason),
		Notes:         dto.Notes,
		Actor:         actor,
	}); err != nil {
		return nil, err
	}

	open.EndDate = &end
	return open, nil
}

// notify publishes after commit. The ledger change already stands, so a
// failing subscriber is logged and not returned.
func (s *Service) notify(ctx context.Context, event events.Event) {
	if err := s.publisher.PublishSync(ctx, event); err != nil {
		s.logger.Error("event subscriber failed after commit",
			"error", err,
			"event_type", event.EventType(),
			"event_id", event.EventID())
	}
}

// CurrentDeployment returns the guard's open posting, or nil when unassigned.
func (s *Service) CurrentDeployment(ctx context.Context, guardID string) (*Deployment, error) {
	row, err := s.repo.GetOpenByGuard(ctx, guardID)
	if err != nil {
		s.logger.Error("failed to get current deployment", "error", err, "guard_id", guardID)
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return FromDataModel(row), nil
}

func (s *Service) HistoryByGuard(ctx context.Context, guardID string, limit, offset int) ([]*Deployment, error) {
	rows, err := s.repo.ListByGuard(ctx, guardID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list guard deployments", "error", err, "guard_id", guardID)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) HistoryBySite(ctx context.Context, siteID string, limit, offset int) ([]*Deployment, error) {
	rows, err := s.repo.ListBySite(ctx, siteID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list site deployments", "error", err, "site_id", siteID)
		return nil, err
	}
	return FromDataModelSlice(rows), nil
}

func (s *Service) AuditTrail(ctx context.Context, guardID string, limit, offset int) ([]*AuditEntry, error) {
	rows, err := s.repo.ListAudit(ctx, guardID, limit, offset)
	if err != nil {
		s.logger.Error("failed to list deployment audit", "error", err, "guard_id", guardID)
		return nil, err
	}
	return AuditFromDataModelSlice(rows), nil
}
