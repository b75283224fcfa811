package site

import (
	"time"

	deploymentDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/deployment"
	siteDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/site"
)

type Site struct {
	ID            string    `json:"id"`
	ClientName    string    `json:"client_name"`
	Name          string    `json:"name"`
	RequiredDay   int       `json:"required_day"`
	RequiredNight int       `json:"required_night"`
	Active        bool      `json:"active"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Capacity is the total headcount the site requires across both shifts.
func (s *Site) Capacity() int {
	return s.RequiredDay + s.RequiredNight
}

// RequiredFor returns the headcount required for a shift; MIXED spans both.
func (s *Site) RequiredFor(shift deploymentDatamodel.Shift) int {
	return RequiredFor(ToDataModel(s), shift)
}

func RequiredFor(s *siteDatamodel.Site, shift deploymentDatamodel.Shift) int {
	switch shift {
	case deploymentDatamodel.ShiftDay:
		return s.RequiredDay
	case deploymentDatamodel.ShiftNight:
		return s.RequiredNight
	default:
		return s.RequiredDay + s.RequiredNight
	}
}

func NewSite(dto CreateSiteDTO) *Site {
	return &Site{
		ClientName:    dto.ClientName,
		Name:          dto.Name,
		RequiredDay:   dto.RequiredDay,
		RequiredNight: dto.RequiredNight,
		Active:        true,
	}
}

func ToDataModel(s *Site) *siteDatamodel.Site {
	return &siteDatamodel.Site{
		ID:            s.ID,
		ClientName:    s.ClientName,
		Name:          s.Name,
		RequiredDay:   s.RequiredDay,
		RequiredNight: s.RequiredNight,
		Active:        s.Active,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func FromDataModel(s *siteDatamodel.Site) *Site {
	return &Site{
		ID:            s.ID,
		ClientName:    s.ClientName,
		Name:          s.Name,
		RequiredDay:   s.RequiredDay,
		RequiredNight: s.RequiredNight,
		Active:        s.Active,
		CreatedAt:     s.CreatedAt,
		UpdatedAt:     s.UpdatedAt,
	}
}

func FromDataModelSlice(sites []*siteDatamodel.Site) []*Site {
	result := make([]*Site, len(sites))
	for i, s := range sites {
		result[i] = FromDataModel(s)
	}
	return result
}
