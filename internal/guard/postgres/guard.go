package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dbscope"
	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	"github.com/frahmantamala/guard-deployment/internal/guard"
	"gorm.io/gorm"
)

type GuardRepository struct {
	db *gorm.DB
}

func NewGuardRepository(db *gorm.DB) guard.RepositoryAPI {
	return &GuardRepository{db: db}
}

func (r *GuardRepository) Transaction(ctx context.Context, fn func(tx guard.RepositoryAPI) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GuardRepository{db: tx})
	})
}

func (r *GuardRepository) Create(ctx context.Context, g *guardDatamodel.Guard) error {
	return r.db.WithContext(ctx).Create(g).Error
}

// GetByID returns nil, nil when the guard does not exist. Inside a postgres
// transaction the row is locked so writers on the same guard serialize.
func (r *GuardRepository) GetByID(ctx context.Context, id string) (*guardDatamodel.Guard, error) {
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

func (r *GuardRepository) List(ctx context.Context, filter guard.ListFilter, limit, offset int) ([]*guardDatamodel.Guard, error) {
	q := r.db.WithContext(ctx).Model(&guardDatamodel.Guard{})
	if filter.Role != "" {
		q = q.Where("role = ?", filter.Role)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	var guards []*guardDatamodel.Guard
	err := q.Order("full_name ASC").Order("id ASC").
		Scopes(dbscope.Paginate(limit, offset)).
		Find(&guards).Error
	return guards, err
}

func (r *GuardRepository) UpdateStatus(ctx context.Context, id string, status guardDatamodel.Status) error {
	return r.db.WithContext(ctx).Model(&guardDatamodel.Guard{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *GuardRepository) UpdateRole(ctx context.Context, id string, role guardDatamodel.Role) error {
	return r.db.WithContext(ctx).Model(&guardDatamodel.Guard{}).
		Where("id = ?", id).
		Update("role", role).Error
}

func (r *GuardRepository) HasOpenDeployment(ctx context.Context, guardID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&deploymentDatamodel.Deployment{}).
		Where("guard_id = ? AND end_date IS NULL", guardID).
		Count(&count).Error
	return count > 0, err
}
