package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dbscope"
	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	siteDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/site"
	"github.com/frahmantamala/guard-deployment/internal/deployment"
	"gorm.io/gorm"
)

type DeploymentRepository struct {
	db *gorm.DB
}

func NewDeploymentRepository(db *gorm.DB) deployment.RepositoryAPI {
	return &DeploymentRepository{db: db}
}

func (r *DeploymentRepository) Transaction(ctx context.Context, fn func(tx deployment.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&DeploymentRepository{db: tx})
	})
}

// GetGuard locks the guard row so deploy and end calls for one guard serialize.
func (r *DeploymentRepository) GetGuard(ctx context.Context, id string) (*guardDatamodel.Guard, error) {
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

func (r *DeploymentRepository) UpdateGuardStatus(ctx context.Context, guardID string, status guardDatamodel.Status) error {
	return r.db.WithContext(ctx).Model(&guardDatamodel.Guard{}).
		Where("id = ?", guardID).
		Update("status", status).Error
}

func (r *DeploymentRepository) GetSite(ctx context.Context, id string) (*siteDatamodel.Site, error) {
	var s siteDatamodel.Site
	err := r.db.WithContext(ctx).Scopes(dbscope.ForUpdate).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *DeploymentRepository) GetOpenByGuard(ctx context.Context, guardID string) (*deploymentDatamodel.Deployment, error) {
	var d deploymentDatamodel.Deployment
	err := r.db.WithContext(ctx).
		Where("guard_id = ? AND end_date IS NULL", guardID).
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DeploymentRepository) GetLatestClosedByGuard(ctx context.Context, guardID string) (*deploymentDatamodel.Deployment, error) {
	var d deploymentDatamodel.Deployment
	err := r.db.WithContext(ctx).
		Where("guard_id = ? AND end_date IS NOT NULL", guardID).
		Order("end_date DESC").Order("created_at DESC").
		First(&d).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

func (r *DeploymentRepository) CountOpenBySite(ctx context.Context, siteID string) (deployment.OpenCounts, error) {
	var rows []struct {
		Shift deploymentDatamodel.Shift
		Total int
	}
	err := r.db.WithContext(ctx).Model(&deploymentDatamodel.Deployment{}).
		Select("shift, COUNT(*) AS total").
		Where("site_id = ? AND end_date IS NULL", siteID).
		Group("shift").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(deployment.OpenCounts, len(rows))
	for _, row := range rows {
		counts[row.Shift] = row.Total
	}
	return counts, nil
}

func (r *DeploymentRepository) Create(ctx context.Context, d *deploymentDatamodel.Deployment) error {
	return r.db.WithContext(ctx).Create(d).Error
}

// Close sets the end date of an open row; closed rows are never touched again.
func (r *DeploymentRepository) Close(ctx context.Context, id string, endDate time.Time) error {
	result := r.db.WithContext(ctx).Model(&deploymentDatamodel.Deployment{}).
		Where("id = ? AND end_date IS NULL", id).
		Update("end_date", endDate)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("deployment already closed")
	}
	return nil
}

func (r *DeploymentRepository) CreateAudit(ctx context.Context, a *deploymentDatamodel.AuditEntry) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *DeploymentRepository) ListByGuard(ctx context.Context, guardID string, limit, offset int) ([]*deploymentDatamodel.Deployment, error) {
	var rows []*deploymentDatamodel.Deployment
	err := r.db.WithContext(ctx).
		Where("guard_id = ?", guardID).
		Order("start_date DESC").Order("created_at DESC").
		Scopes(dbscope.Paginate(limit, offset)).
		Find(&rows).Error
	return rows, err
}

func (r *DeploymentRepository) ListBySite(ctx context.Context, siteID string, limit, offset int) ([]*deploymentDatamodel.Deployment, error) {
	var rows []*deploymentDatamodel.Deployment
	err := r.db.WithContext(ctx).
		Where("site_id = ?", siteID).
		Order("start_date DESC").Order("created_at DESC").
		Scopes(dbscope.Paginate(limit, offset)).
		Find(&rows).Error
	return rows, err
}

func (r *DeploymentRepository) ListAudit(ctx context.Context, guardID string, limit, offset int) ([]*deploymentDatamodel.AuditEntry, error) {
	var rows []*deploymentDatamodel.AuditEntry
	err := r.db.WithContext(ctx).
		Where("guard_id = ?", guardID).
		Order("created_at DESC").Order("id DESC").
		Scopes(dbscope.Paginate(limit, offset)).
		Find(&rows).Error
	return rows, err
}
