package rotation

import (
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Status string

const (
	StatusPlanned    Status = "PLANNED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Assignment is a temporary coverage posting over an inclusive date range.
// It overlays the replaced guard's deployment and never closes it.
type Assignment struct {
	ID              string           `gorm:"primaryKey;type:text"`
	GuardID         string           `gorm:"column:guard_id;not null;index"`
	SiteID          string           `gorm:"column:site_id;not null;index"`
	Shift           deployment.Shift `gorm:"column:shift;not null"`
	StartDate       time.Time        `gorm:"column:start_date;type:date;not null"`
	EndDate         time.Time        `gorm:"column:end_date;type:date;not null"`
	LeaveRequestID  *string          `gorm:"column:leave_request_id;index"`
	ReplacedGuardID *string          `gorm:"column:replaced_guard_id"`
	Status          Status           `gorm:"column:status;not null"`
	CreatedAt       time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}

func (Assignment) TableName() string {
	return "rotation_assignments"
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}

// Covering reports whether the assignment still counts toward site coverage.
func (a *Assignment) Covering() bool {
	return a.Status == StatusPlanned || a.Status == StatusInProgress
}
