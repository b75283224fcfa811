package guard

import (
	"time"

	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/internal/core/common/validation"
	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
)

var (
	categories = []string{string(guardDatamodel.CategoryGuard), string(guardDatamodel.CategoryAdminStaff)}
	roles      = []string{string(guardDatamodel.RoleFixed), string(guardDatamodel.RoleRotating)}
	statuses   = []string{
		string(guardDatamodel.StatusActive),
		string(guardDatamodel.StatusInactive),
		string(guardDatamodel.StatusSuspended),
		string(guardDatamodel.StatusTerminated),
	}
)

type RegisterGuardDTO struct {
	FullName string `json:"full_name"`
	Category string `json:"category"`
	Role     string `json:"role"`
}

func (dto RegisterGuardDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("full_name", dto.FullName).Required().MaxLength(200)
	v.Field("category", dto.Category).OneOf(categories, internal.ErrCodeValidationFailed)
	v.Field("role", dto.Role).OneOf(roles, internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ChangeStatusDTO carries an HR status change. EffectiveDate defaults to today
// and is the date an open posting is closed on termination.
type ChangeStatusDTO struct {
	Status        string     `json:"status"`
	EffectiveDate *time.Time `json:"effective_date,omitempty"`
}

func (dto ChangeStatusDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("status", dto.Status).OneOf(statuses, internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type ChangeRoleDTO struct {
	Role string `json:"role"`
}

func (dto ChangeRoleDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("role", dto.Role).OneOf(roles, internal.ErrCodeValidationFailed)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// ListFilter narrows List; empty fields match everything.
type ListFilter struct {
	Role   guardDatamodel.Role
	Status guardDatamodel.Status
}
