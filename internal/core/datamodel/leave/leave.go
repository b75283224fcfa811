package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Type string

const (
	TypeAnnual    Type = "ANNUAL"
	TypeSick      Type = "SICK"
	TypeMaternity Type = "MATERNITY"
	TypePaternity Type = "PATERNITY"
	TypeUnpaid    Type = "UNPAID"
)

type Status string

const (
	StatusPending   Status = "PENDING"
	StatusApproved  Status = "APPROVED"
	StatusRejected  Status = "REJECTED"
	StatusCancelled Status = "CANCELLED"
)

type Request struct {
	ID                string     `gorm:"primaryKey;type:text"`
	GuardID           string     `gorm:"column:guard_id;not null;index"`
	Type              Type       `gorm:"column:leave_type;not null"`
	StartDate         time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate           time.Time  `gorm:"column:end_date;type:date;not null"`
	DayCount          int        `gorm:"column:day_count;not null"`
	Motive            string     `gorm:"column:motive"`
	Status            Status     `gorm:"column:status;not null"`
	Approver          *string    `gorm:"column:approver"`
	DecisionComment   *string    `gorm:"column:decision_comment"`
	ApprovedAt        *time.Time `gorm:"column:approved_at"`
	SubstituteGuardID *string    `gorm:"column:substitute_guard_id"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Request) TableName() string {
	return "leave_requests"
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
