package site

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Site struct {
	ID            string    `gorm:"primaryKey;type:text"`
	ClientName    string    `gorm:"column:client_name;not null"`
	Name          string    `gorm:"column:name;not null"`
	RequiredDay   int       `gorm:"column:required_day;not null"`
	RequiredNight int       `gorm:"column:required_night;not null"`
	Active        bool      `gorm:"column:active;not null"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Site) TableName() string {
	return "sites"
}

func (s *Site) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}
