package deployment

import (
	"time"

	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
)

type Deployment struct {
	ID        string                     `json:"id"`
	GuardID   string                     `json:"guard_id"`
	SiteID    string                     `json:"site_id"`
	Shift     deploymentDatamodel.Shift  `json:"shift"`
	StartDate time.Time                  `json:"start_date"`
	EndDate   *time.Time                 `json:"end_date,omitempty"`
	Reason    deploymentDatamodel.Reason `json:"reason"`
	Notes     string                     `json:"notes,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
}

func (d *Deployment) IsOpen() bool {
	return d.EndDate == nil
}

type AuditEntry struct {
	ID            string                          `json:"id"`
	DeploymentID  string                          `json:"deployment_id"`
	GuardID       string                          `json:"guard_id"`
	Action        deploymentDatamodel.AuditAction `json:"action"`
	FromSiteID    *string                         `json:"from_site_id,omitempty"`
	ToSiteID      *string                         `json:"to_site_id,omitempty"`
	EffectiveDate time.Time                       `json:"effective_date"`
	Reason        deploymentDatamodel.Reason      `json:"reason,omitempty"`
	Notes         string                          `json:"notes,omitempty"`
	Actor         string                          `json:"actor,omitempty"`
	CreatedAt     time.Time                       `json:"created_at"`
}

func FromDataModel(d *deploymentDatamodel.Deployment) *Deployment {
	return &Deployment{
		ID:        d.ID,
		GuardID:   d.GuardID,
		SiteID:    d.SiteID,
		Shift:     d.Shift,
		StartDate: d.StartDate,
		EndDate:   d.EndDate,
		Reason:    d.Reason,
		Notes:     d.Notes,
		CreatedAt: d.CreatedAt,
	}
}

func FromDataModelSlice(rows []*deploymentDatamodel.Deployment) []*Deployment {
	result := make([]*Deployment, len(rows))
	for i, d := range rows {
		result[i] = FromDataModel(d)
	}
	return result
}

func AuditFromDataModelSlice(rows []*deploymentDatamodel.AuditEntry) []*AuditEntry {
	result := make([]*AuditEntry, len(rows))
	for i, a := range rows {
		result[i] = &AuditEntry{
			ID:            a.ID,
			DeploymentID:  a.DeploymentID,
			GuardID:       a.GuardID,
			Action:        a.Action,
			FromSiteID:    a.FromSiteID,
			ToSiteID:      a.ToSiteID,
			EffectiveDate: a.EffectiveDate,
			Reason:        a.Reason,
			Notes:         a.Notes,
			Actor:         a.Actor,
			CreatedAt:     a.CreatedAt,
		}
	}
	return result
}

// OpenCounts is the number of open postings at a site per shift.
type OpenCounts map[deploymentDatamodel.Shift]int

func (c OpenCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// HasRoom reports whether one more posting on shift fits the site's headcount.
// DAY and NIGHT are bounded by their own requirement and by the total; MIXED
// only by the total.
func (c OpenCounts) HasRoom(shift deploymentDatamodel.Shift, requiredDay, requiredNight int) bool {
	total := requiredDay + requiredNight
	if c.Total() >= total {
		return false
	}
	switch shift {
	case deploymentDatamodel.ShiftDay:
		return c[deploymentDatamodel.ShiftDay] < requiredDay
	case deploymentDatamodel.ShiftNight:
		return c[deploymentDatamodel.ShiftNight] < requiredNight
	default:
		return true
	}
}
