package deployment

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Shift string

const (
	ShiftDay   Shift = "DAY"
	ShiftNight Shift = "NIGHT"
	ShiftMixed Shift = "MIXED"
)

type Reason string

const (
	ReasonHire            Reason = "HIRE"
	ReasonTransfer        Reason = "TRANSFER"
	ReasonReplacement     Reason = "REPLACEMENT"
	ReasonRotation        Reason = "ROTATION"
	ReasonEmployeeRequest Reason = "EMPLOYEE_REQUEST"
	ReasonClientRequest   Reason = "CLIENT_REQUEST"
	ReasonDisciplinary    Reason = "DISCIPLINARY"
	ReasonSiteContractEnd Reason = "SITE_CONTRACT_END"
	ReasonOther           Reason = "OTHER"
)

// Deployment is one ledger row. EndDate nil marks the guard's current posting;
// the range is half-open, so a transfer closes the old row on the new start date.
type Deployment struct {
	ID        string     `gorm:"primaryKey;type:text"`
	GuardID   string     `gorm:"column:guard_id;not null;index"`
	SiteID    string     `gorm:"column:site_id;not null;index"`
	Shift     Shift      `gorm:"column:shift;not null"`
	StartDate time.Time  `gorm:"column:start_date;type:date;not null"`
	EndDate   *time.Time `gorm:"column:end_date;type:date"`
	Reason    Reason     `gorm:"column:reason;not null"`
	Notes     string     `gorm:"column:notes"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (Deployment) TableName() string {
	return "deployments"
}

func (d *Deployment) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}

type AuditAction string

const (
	AuditDeploy   AuditAction = "DEPLOY"
	AuditTransfer AuditAction = "TRANSFER"
	AuditEnd      AuditAction = "END"
)

// AuditEntry is append-only; rows are never updated.
type AuditEntry struct {
	ID            string      `gorm:"primaryKey;type:text"`
	DeploymentID  string      `gorm:"column:deployment_id;not null"`
	GuardID       string      `gorm:"column:guard_id;not null;index"`
	Action        AuditAction `gorm:"column:action;not null"`
	FromSiteID    *string     `gorm:"column:from_site_id"`
	ToSiteID      *string     `gorm:"column:to_site_id"`
	EffectiveDate time.Time   `gorm:"column:effective_date;type:date;not null"`
	Reason        Reason      `gorm:"column:reason"`
	Notes         string      `gorm:"column:notes"`
	Actor         string      `gorm:"column:actor"`
	CreatedAt     time.Time   `gorm:"column:created_at;autoCreateTime"`
}

func (AuditEntry) TableName() string {
	return "deployment_audit"
}

func (a *AuditEntry) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
