package guard

import (
	"time"

	guardDatamodel "github.com/frahmantamala/guard-deployment/internal/core/datamodel/guard"
)

type Guard struct {
	ID        string                  `json:"id"`
	FullName  string                  `json:"full_name"`
	Category  guardDatamodel.Category `json:"category"`
	Role      guardDatamodel.Role     `json:"role"`
	Status    guardDatamodel.Status   `json:"status"`
	CreatedAt time.Time               `json:"created_at"`
	UpdatedAt time.Time               `json:"updated_at"`
}

func (g *Guard) IsRotating() bool {
	return g.Role == guardDatamodel.RoleRotating
}

func (g *Guard) IsActive() bool {
	return g.Status == guardDatamodel.StatusActive
}

func NewGuard(dto RegisterGuardDTO) *Guard {
	return &Guard{
		FullName: dto.FullName,
		Category: guardDatamodel.Category(dto.Category),
		Role:     guardDatamodel.Role(dto.Role),
		Status:   guardDatamodel.StatusActive,
	}
}

func ToDataModel(g *Guard) *guardDatamodel.Guard {
	return &guardDatamodel.Guard{
		ID:        g.ID,
		FullName:  g.FullName,
		Category:  g.Category,
		Role:      g.Role,
		Status:    g.Status,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func FromDataModel(g *guardDatamodel.Guard) *Guard {
	return &Guard{
		ID:        g.ID,
		FullName:  g.FullName,
		Category:  g.Category,
		Role:      g.Role,
		Status:    g.Status,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func FromDataModelSlice(guards []*guardDatamodel.Guard) []*Guard {
	result := make([]*Guard, len(guards))
	for i, g := range guards {
		result[i] = FromDataModel(g)
	}
	return result
}
