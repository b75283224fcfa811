package postgres

import (
	"context"
	"database/sql"
	"time"

	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
	leaveDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/leave"
	rotationDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/rotation"
	"github.com/frahmantamala/guard-deployment/internal/coverage"
	"gorm.io/gorm"
)

type CoverageRepository struct {
	db *gorm.DB
}

func NewCoverageRepository(db *gorm.DB) coverage.RepositoryAPI {
	return &CoverageRepository{db: db}
}

// snapshotTx reads under repeatable read on postgres so every query of a
// snapshot sees the same committed state.
func (r *CoverageRepository) snapshotTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db := r.db.WithContext(ctx)
	if db.Dialector.Name() == "postgres" {
		return db.Transaction(fn, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	return db.Transaction(fn)
}

func (r *CoverageRepository) LoadSnapshot(ctx context.Context, from, to time.Time) (*coverage.Snapshot, error) {
	snap := &coverage.Snapshot{From: from, To: to}

	err := r.snapshotTx(ctx, func(tx *gorm.DB) error {
		if err := tx.Where("active = ?", true).
			Order("name ASC").Order("id ASC").
			Find(&snap.Sites).Error; err != nil {
			return err
		}

		// half-open postings overlapping [from,to]
		if err := tx.Where("start_date <= ? AND (end_date IS NULL OR end_date > ?)", to, from).
			Find(&snap.Deployments).Error; err != nil {
			return err
		}

		if err := tx.Where("status = ? AND start_date <= ? AND end_date >= ?", leaveDatamodel.StatusApproved, to, from).
			Find(&snap.Leaves).Error; err != nil {
			return err
		}

		return tx.Where("status IN ? AND start_date <= ? AND end_date >= ?", []rotationDatamodel.Status{
			rotationDatamodel.StatusPlanned,
			rotationDatamodel.StatusInProgress,
		}, to, from).
			Find(&snap.Assignments).Error
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (r *CoverageRepository) FreeRotatingGuards(ctx context.Context, day time.Time) ([]*guardDatamodel.Guard, error) {
	busy := r.db.Model(&rotationDatamodel.Assignment{}).
		Select("guard_id").
		Where("status <> ? AND start_date <= ? AND end_date >= ?", rotationDatamodel.StatusCancelled, day, day)
	away := r.db.Model(&leaveDatamodel.Request{}).
		Select("guard_id").
		Where("status = ? AND start_date <= ? AND end_date >= ?", leaveDatamodel.StatusApproved, day, day)

	var guards []*guardDatamodel.Guard
	err := r.db.WithContext(ctx).
		Where("role = ? AND status = ?", guardDatamodel.RoleRotating, guardDatamodel.StatusActive).
		Where("id NOT IN (?)", busy).
		Where("id NOT IN (?)", away).
		Order("full_name ASC").Order("id ASC").
		Find(&guards).Error
	return guards, err
}
