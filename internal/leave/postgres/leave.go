package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dbscope"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	leaveDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/leave"
	rotationDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/rotation"
	"github.com/frahmantamala/guard-deployment/internal/leave"
	"gorm.io/gorm"
)

type LeaveRepository struct {
	db *gorm.DB
}

func NewLeaveRepository(db *gorm.DB) leave.RepositoryAPI {
	return &LeaveRepository{db: db}
}

func (r *LeaveRepository) Transaction(ctx context.Context, fn func(tx leave.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&LeaveRepository{db: tx})
	})
}

// GetGuard locks the guard so overlapping requests for one guard serialize.
func (r *LeaveRepository) GetGuard(ctx context.Context, id string) (*guardDatamodel.Guard, error) {
	var g guardDatamodel.Guard
	err := r.db.WithContext(ctx).Scopes(dbscope.ForUpdate).Where("id = ?", id).First(&g).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

func (r *LeaveRepository) Create(ctx context.Context, req *leaveDatamodel.Request) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *LeaveRepository) GetByID(ctx context.Context, id string) (*leaveDatamodel.Request, error) {
	var req leaveDatamodel.Request
	err := r.db.WithContext(ctx).Scopes(dbscope.ForUpdate).Where("id = ?", id).First(&req).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &req, nil
}

func (r *LeaveRepository) HasOverlap(ctx context.Context, guardID string, start, end time.Time, statuses []leaveDatamodel.Status) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&leaveDatamodel.Request{}).
		Where("guard_id = ? AND status IN ?", guardID, statuses).
		Where("start_date <= ? AND end_date >= ?", end, start).
		Count(&count).Error
	return count > 0, err
}

func (r *LeaveRepository) Decide(ctx context.Context, id string, status leaveDatamodel.Status, approver, comment string, decidedAt time.Time) error {
	updates := map[string]interface{}{
		"status":   status,
		"approver": approver,
	}
	if comment != "" {
		updates["decision_comment"] = comment
	}
	if status == leaveDatamodel.StatusApproved {
		updates["approved_at"] = decidedAt
	}
	return r.db.WithContext(ctx).Model(&leaveDatamodel.Request{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *LeaveRepository) UpdateStatus(ctx context.Context, id string, status leaveDatamodel.Status) error {
	return r.db.WithContext(ctx).Model(&leaveDatamodel.Request{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// CancelAssignments cancels the rotation assignments still covering the leave.
func (r *LeaveRepository) CancelAssignments(ctx context.Context, leaveID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&rotationDatamodel.Assignment{}).
		Where("leave_request_id = ? AND status IN ?", leaveID, []rotationDatamodel.Status{
			rotationDatamodel.StatusPlanned,
			rotationDatamodel.StatusInProgress,
		}).
		Update("status", rotationDatamodel.StatusCancelled)
	return result.RowsAffected, result.Error
}

func (r *LeaveRepository) ListByGuard(ctx context.Context, guardID string, limit, offset int) ([]*leaveDatamodel.Request, error) {
	var rows []*leaveDatamodel.Request
	err := r.db.WithContext(ctx).
		Where("guard_id = ?", guardID).
		Order("start_date DESC").Order("id ASC").
		Scopes(dbscope.Paginate(limit, offset)).
		Find(&rows).Error
	return rows, err
}

func (r *LeaveRepository) ListByStatus(ctx context.Context, status leaveDatamodel.Status, limit, offset int) ([]*leaveDatamodel.Request, error) {
	var rows []*leaveDatamodel.Request
	err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("start_date ASC").Order("id ASC").
		Scopes(dbscope.Paginate(limit, offset)).
		Find(&rows).Error
	return rows, err
}
