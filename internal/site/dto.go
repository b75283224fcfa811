package site

import (
	"github.com/frahmantamala/guard-deployment/internal"
	"github.com/frahmantamala/guard-deployment/internal/core/common/validation"
)

type CreateSiteDTO struct {
	ClientName    string `json:"client_name"`
	Name          string `json:"name"`
	RequiredDay   int    `json:"required_day"`
	RequiredNight int    `json:"required_night"`
}

func (dto CreateSiteDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("client_name", dto.ClientName).Required().MaxLength(200)
	v.Field("name", dto.Name).Required().MaxLength(200)
	v.Field("required_day", dto.RequiredDay).MinInt(0, internal.ErrCodeInvalidHeadcount)
	v.Field("required_night", dto.RequiredNight).MinInt(0, internal.ErrCodeInvalidHeadcount)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type UpdateRequirementsDTO struct {
	RequiredDay   int `json:"required_day"`
	RequiredNight int `json:"required_night"`
}

func (dto UpdateRequirementsDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("required_day", dto.RequiredDay).MinInt(0, internal.ErrCodeInvalidHeadcount)
	v.Field("required_night", dto.RequiredNight).MinInt(0, internal.ErrCodeInvalidHeadcount)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

type SetActiveDTO struct {
	Active bool `json:"active"`
}
