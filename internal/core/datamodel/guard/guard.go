package guard

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Category string

const (
	CategoryGuard      Category = "GUARD"
	CategoryAdminStaff Category = "ADMIN_STAFF"
)

type Role string

const (
	RoleFixed    Role = "FIXED"
	RoleRotating Role = "ROTATING"
)

type Status string

const (
	StatusActive     Status = "ACTIVE"
	StatusInactive   Status = "INACTIVE"
	StatusSuspended  Status = "SUSPENDED"
	StatusTerminated Status = "TERMINATED"
)

type Guard struct {
	ID        string    `gorm:"primaryKey;type:text"`
	FullName  string    `gorm:"column:full_name;not null"`
	Category  Category  `gorm:"column:category;not null"`
	Role      Role      `gorm:"column:role;not null"`
	Status    Status    `gorm:"column:status;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Guard) TableName() string {
	return "guards"
}

func (g *Guard) BeforeCreate(tx *gorm.DB) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	return nil
}
