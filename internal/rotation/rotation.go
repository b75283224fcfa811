package rotation

import (
	"time"

	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
	rotationDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/rotation"
)

type Assignment struct {
	ID              string                    `json:"id"`
	GuardID         string                    `json:"guard_id"`
	SiteID          string                    `json:"site_id"`
	Shift           deploymentDatamodel.Shift `json:"shift"`
	StartDate       time.Time                 `json:"start_date"`
	EndDate         time.Time                 `json:"end_date"`
	LeaveRequestID  *string                   `json:"leave_request_id,omitempty"`
	ReplacedGuardID *string                   `json:"replaced_guard_id,omitempty"`
	Status          rotationDatamodel.Status  `json:"status"`
	CreatedAt       time.Time                 `json:"created_at"`
	UpdatedAt       time.Time                 `json:"updated_at"`
}

// InitialStatus is the status a new assignment over [start,end] takes on today.
func InitialStatus(start, end, today time.Time) rotationDatamodel.Status {
	if dateutil.ContainsInclusive(start, end, today) {
		return rotationDatamodel.StatusInProgress
	}
	return rotationDatamodel.StatusPlanned
}

func FromDataModel(a *rotationDatamodel.Assignment) *Assignment {
	return &Assignment{
		ID:              a.ID,
		GuardID:         a.GuardID,
		SiteID:          a.SiteID,
		Shift:           a.Shift,
		StartDate:       a.StartDate,
		EndDate:         a.EndDate,
		LeaveRequestID:  a.LeaveRequestID,
		ReplacedGuardID: a.ReplacedGuardID,
		Status:          a.Status,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}

func FromDataModelSlice(rows []*rotationDatamodel.Assignment) []*Assignment {
	result := make([]*Assignment, len(rows))
	for i, a := range rows {
		result[i] = FromDataModel(a)
	}
	return result
}
