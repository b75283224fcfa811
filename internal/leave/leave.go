package leave

import (
	"time"

	leaveDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/leave"
)

type Request struct {
	ID                string                `json:"id"`
	GuardID           string                `json:"guard_id"`
	Type              leaveDatamodel.Type   `json:"type"`
	StartDate         time.Time             `json:"start_date"`
	EndDate           time.Time             `json:"end_date"`
	DayCount          int                   `json:"day_count"`
	Motive            string                `json:"motive,omitempty"`
	Status            leaveDatamodel.Status `json:"status"`
	Approver          *string               `json:"approver,omitempty"`
	DecisionComment   *string               `json:"decision_comment,omitempty"`
	ApprovedAt        *time.Time            `json:"approved_at,omitempty"`
	SubstituteGuardID *string               `json:"substitute_guard_id,omitempty"`
	CreatedAt         time.Time             `json:"created_at"`
	UpdatedAt         time.Time             `json:"updated_at"`
}

// Cancellable reports whether the request may still be cancelled on today.
func (r *Request) Cancellable(today time.Time) bool {
	if r.Status != leaveDatamodel.StatusPending && r.Status != leaveDatamodel.StatusApproved {
		return false
	}
	return r.StartDate.After(today)
}

func FromDataModel(r *leaveDatamodel.Request) *Request {
	return &Request{
		ID:                r.ID,
		GuardID:           r.GuardID,
		Type:              r.Type,
		StartDate:         r.StartDate,
		EndDate:           r.EndDate,
		DayCount:          r.DayCount,
		Motive:            r.Motive,
		Status:            r.Status,
		Approver:          r.Approver,
		DecisionComment:   r.DecisionComment,
		ApprovedAt:        r.ApprovedAt,
		SubstituteGuardID: r.SubstituteGuardID,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*leaveDatamodel.Request) []*Request {
	result := make([]*Request, len(rows))
	for i, r := range rows {
		result[i] = FromDataModel(r)
	}
	return result
}
