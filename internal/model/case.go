package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Case is an investigation record owning evidence items
type Case struct {
	ID             uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string      `gorm:"type:varchar(255);not null" json:"name"`
	Description    string      `gorm:"type:text" json:"description"`
	InvestigatorID uuid.UUID   `gorm:"type:uuid;not null;index" json:"investigator_id"`
	Investigator   *User       `gorm:"foreignKey:InvestigatorID" json:"investigator,omitempty"`
	CreatorID      *uuid.UUID  `gorm:"type:uuid;index" json:"creator_id"`
	Creator        *User       `gorm:"foreignKey:CreatorID;constraint:OnDelete:SET NULL;" json:"creator,omitempty"`
	DepartmentID   *uuid.UUID  `gorm:"type:uuid;index" json:"department_id"`
	Department     *Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL;" json:"department,omitempty"`
	Active         bool        `gorm:"default:true" json:"active"`
	CreatedAt      time.Time   `gorm:"column:created;autoCreateTime" json:"created"`
	UpdatedAt      time.Time   `gorm:"column:updated;autoUpdateTime" json:"updated"`
}

func (c *Case) BeforeCreate(*gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
