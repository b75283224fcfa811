package postgres

import (
	"context"
	"errors"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dbscope"
	siteDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/site"
	"github.com/frahmantamala/guard-deployment/internal/site"
	"gorm.io/gorm"
)

type SiteRepository struct {
	db *gorm.DB
}

func NewSiteRepository(db *gorm.DB) site.RepositoryAPI {
	return &SiteRepository{db: db}
}

func (r *SiteRepository) Create(ctx context.Context, s *siteDatamodel.Site) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SiteRepository) GetByID(ctx context.Context, id string) (*siteDatamodel.Site, error) {
	var s siteDatamodel.Site
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func (r *SiteRepository) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*siteDatamodel.Site, error) {
	q := r.db.WithContext(ctx).Model(&siteDatamodel.Site{})
	if activeOnly {
		q = q.Where("active = ?", true)
	}

	var sites []*siteDatamodel.Site
	err := q.Order("name ASC").Order("id ASC").
		Scopes(dbscope.Paginate(limit, offset)).
		Find(&sites).Error
	return sites, err
}

func (r *SiteRepository) UpdateRequirements(ctx context.Context, id string, day, night int) error {
	return r.db.WithContext(ctx).Model(&siteDatamodel.Site{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"required_day":   day,
			"required_night": night,
		}).Error
}

func (r *SiteRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.db.WithContext(ctx).Model(&siteDatamodel.Site{}).
		Where("id = ?", id).
		Update("active", active).Error
}
