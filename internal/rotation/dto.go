package rotation

import (
	"time"

	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/internal/core/common/validation"
	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
)

var shifts = []string{
	string(deploymentDatamodel.ShiftDay),
	string(deploymentDatamodel.ShiftNight),
	string(deploymentDatamodel.ShiftMixed),
}

type AssignCoverageDTO struct {
	GuardID         string    `json:"guard_id"`
	SiteID          string    `json:"site_id"`
	Shift           string    `json:"shift"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	LeaveRequestID  *string   `json:"leave_request_id,omitempty"`
	ReplacedGuardID *string   `json:"replaced_guard_id,omitempty"`
}

func (dto AssignCoverageDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("guard_id", dto.GuardID).Required()
	v.Field("site_id", dto.SiteID).Required()
	v.Field("shift", dto.Shift).OneOf(shifts, internal.ErrCodeInvalidShift)
	v.Field("start_date", dto.StartDate).Required()
	v.Field("end_date", dto.EndDate).Required().NotBefore(dto.StartDate, "start_date")
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func optional(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
