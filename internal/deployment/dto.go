package deployment

import (
	"time"

	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/internal/core/common/dateutil"
	"github.com/frahmantamala/guard-deployment/internal/core/common/validation"
	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
)

var (
	shifts = []string{
		string(deploymentDatamodel.ShiftDay),
		string(deploymentDatamodel.ShiftNight),
		string(deploymentDatamodel.ShiftMixed),
	}
	reasons = []string{
		string(deploymentDatamodel.ReasonHire),
		string(deploymentDatamodel.ReasonTransfer),
		string(deploymentDatamodel.ReasonReplacement),
		string(deploymentDatamodel.ReasonRotation),
		string(deploymentDatamodel.ReasonEmployeeRequest),
		string(deploymentDatamodel.ReasonClientRequest),
		string(deploymentDatamodel.ReasonDisciplinary),
		string(deploymentDatamodel.ReasonSiteContractEnd),
		string(deploymentDatamodel.ReasonOther),
	}
)

type DeployDTO struct {
	GuardID   string    `json:"guard_id"`
	SiteID    string    `json:"site_id"`
	Shift     string    `json:"shift"`
	StartDate time.Time `json:"start_date"`
	Reason    string    `json:"reason"`
	Notes     string    `json:"notes"`
}

func (dto DeployDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("guard_id", dto.GuardID).Required()
	v.Field("site_id", dto.SiteID).Required()
	v.Field("shift", dto.Shift).OneOf(shifts, internal.ErrCodeInvalidShift)
	v.Field("start_date", dto.StartDate).Required()
	v.Field("reason", dto.Reason).OneOf(reasons, internal.ErrCodeInvalidReason)
	v.Field("notes", dto.Notes).MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type EndDeploymentDTO struct {
	EndDate time.Time `json:"end_date"`
	Reason  string    `json:"reason,omitempty"`
	Notes   string    `json:"notes"`
}

func (dto EndDeploymentDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("end_date", dto.EndDate).Required()
	if dto.Reason != "" {
		v.Field("reason", dto.Reason).OneOf(reasons, internal.ErrCodeInvalidReason)
	}
	v.Field("notes", dto.Notes).MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func (dto EndDeploymentDTO) normalized() EndDeploymentDTO {
	dto.EndDate = dateutil.Normalize(dto.EndDate)
	return dto
}
