package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dbscope"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	leaveDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/leave"
	rotationDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/rotation"
	siteDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/site"
	"github.com/frahmantamala/guard-deployment/internal/rotation"
	"gorm.io/gorm"
)

var liveStatuses = []rotationDatamodel.Status{
	rotationDatamodel.StatusPlanned,
	rotationDatamodel.StatusInProgress,
}

type RotationRepository struct {
	db *gorm.DB
}

func NewRotationRepository(db *gorm.DB) rotation.RepositoryAPI {
	return &RotationRepository{db: db}
}

func (r *RotationRepository) Transaction(ctx context.Context, fn func(tx rotation.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&RotationRepository{db: tx})
	})
}

// GetGuard locks the rotating guard so overlap checks for one guard serialize.
func (r *RotationRepository) GetGuard(ctx context.Context, id string) (*guardDatamodel.Guard, error) {
	var g guardDatamodel.Guard
	if err := r.first(ctx, dbscope.ForUpdate, id, &g); err != nil {
		return nil, notFoundAsNil(err)
	}
	return &g, nil
}

func (r *RotationRepository) GetSite(ctx context.Context, id string) (*siteDatamodel.Site, error) {
	var s siteDatamodel.Site
	if err := r.first(ctx, nil, id, &s); err != nil {
		return nil, notFoundAsNil(err)
	}
	return &s, nil
}

func (r *RotationRepository) GetLeave(ctx context.Context, id string) (*leaveDatamodel.Request, error) {
	var l leaveDatamodel.Request
	if err := r.first(ctx, dbscope.ForUpdate, id, &l); err != nil {
		return nil, notFoundAsNil(err)
	}
	return &l, nil
}

func (r *RotationRepository) GetByID(ctx context.Context, id string) (*rotationDatamodel.Assignment, error) {
	var a rotationDatamodel.Assignment
	if err := r.first(ctx, dbscope.ForUpdate, id, &a); err != nil {
		return nil, notFoundAsNil(err)
	}
	return &a, nil
}

func (r *RotationRepository) first(ctx context.Context, scope func(*gorm.DB) *gorm.DB, id string, dst interface{}) error {
	q := r.db.WithContext(ctx)
	if scope != nil {
		q = q.Scopes(scope)
	}
	return q.Where("id = ?", id).First(dst).Error
}

// notFoundAsNil maps gorm's missing-row error to nil so callers see nil, nil.
func notFoundAsNil(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (r *RotationRepository) HasOverlap(ctx context.Context, guardID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&rotationDatamodel.Assignment{}).
		Where("guard_id = ? AND status <> ?", guardID, rotationDatamodel.StatusCancelled).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

// HasApprovedLeave reports whether the guard is away on approved leave on any day of the range.
func (r *RotationRepository) HasApprovedLeave(ctx context.Context, guardID string, start, end time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&leaveDatamodel.Request{}).
		Where("guard_id = ? AND status = ?", guardID, leaveDatamodel.StatusApproved).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

func (r *RotationRepository) Create(ctx context.Context, a *rotationDatamodel.Assignment) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *RotationRepository) UpdateStatus(ctx context.Context, id string, status rotationDatamodel.Status) error {
	return r.db.WithContext(ctx).Model(&rotationDatamodel.Assignment{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *RotationRepository) CompleteEndedBefore(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&rotationDatamodel.Assignment{}).
		Where("status IN ? AND end_date < ?", liveStatuses, today).
		Update("status", rotationDatamodel.StatusCompleted)
	return result.RowsAffected, result.Error
}

func (r *RotationRepository) ActivateStartedBy(ctx context.Context, today time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&rotationDatamodel.Assignment{}).
		Where("status = ? AND start_date <= ? AND end_date >= ?", rotationDatamodel.StatusPlanned, today, today).
		Update("status", rotationDatamodel.StatusInProgress)
	return result.RowsAffected, result.Error
}

func (r *RotationRepository) ListByGuard(ctx context.Context, guardID string, limit, offset int) ([]*rotationDatamodel.Assignment, error) {
	var rows []*rotationDatamodel.Assignment
	err := r.db.WithContext(ctx).
		Where("guard_id = ?", guardID).
		Order("start_date DESC").Order("id ASC").
		Scopes(dbscope.Paginate(limit, offset)).
		Find(&rows).Error
	return rows, err
}

func (r *RotationRepository) ListBySite(ctx context.Context, siteID string, limit, offset int) ([]*rotationDatamodel.Assignment, error) {
	var rows []*rotationDatamodel.Assignment
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("start_date DESC").Order("id ASC").
		Scopes(dbscope.Paginate(limit, offset)).
		Find(&rows).Error
	return rows, err
}
