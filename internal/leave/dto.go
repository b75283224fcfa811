package leave

import (
	"strings"
	"time"

	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/internal/core/common/validation"
	leaveDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/leave"
)

var (
	leaveTypes = []string{
		string(leaveDatamodel.TypeAnnual),
		string(leaveDatamodel.TypeSick),
		string(leaveDatamodel.TypeMaternity),
		string(leaveDatamodel.TypePaternity),
		string(leaveDatamodel.TypeUnpaid),
	}
	leaveStatuses = []string{
		string(leaveDatamodel.StatusPending),
		string(leaveDatamodel.StatusApproved),
		string(leaveDatamodel.StatusRejected),
		string(leaveDatamodel.StatusCancelled),
	}
)

type CreateRequestDTO struct {
	GuardID           string    `json:"guard_id"`
	Type              string    `json:"type"`
	StartDate         time.Time `json:"start_date"`
	EndDate           time.Time `json:"end_date"`
	Motive            string    `json:"motive"`
	SubstituteGuardID *string   `json:"substitute_guard_id,omitempty"`
}

func (dto CreateRequestDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("guard_id", dto.GuardID).Required()
	v.Field("type", dto.Type).OneOf(leaveTypes, internal.ErrCodeInvalidLeaveType)
	v.Field("start_date", dto.StartDate).Required()
	v.Field("end_date", dto.EndDate).Required().NotBefore(dto.StartDate, "start_date")
	v.Field("motive", dto.Motive).MaxLength(1000)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// DecisionDTO carries an approval or rejection. Approver falls back to the
// operator on the request context.
type DecisionDTO struct {
	Approver string `json:"approver"`
	Comment  string `json:"comment"`
}

func (dto DecisionDTO) validateRejection() error {
	v := validation.NewValidator()
	v.Field("comment", dto.Comment).Custom(func(value interface{}) *internal.AppError {
		if s, _ := value.(string); strings.TrimSpace(s) == "" {
			return internal.NewValidationFieldError("comment", "a rejection needs a comment", internal.ErrCodeCommentRequired)
		}
		return nil
	})
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func ValidStatus(status string) bool {
	for _, s := range leaveStatuses {
		if s == status {
			return true
		}
	}
	return false
}
