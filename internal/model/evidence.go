package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Custody statuses a material evidence item can be in. Custody events draw
// their action values from the same set.
const (
	StatusInStorage     = "IN_STORAGE"
	StatusDestroyed     = "DESTROYED"
	StatusTaken         = "TAKEN"
	StatusOnExamination = "ON_EXAMINATION"
	StatusArchived      = "ARCHIVED"
)

// ValidEvidenceStatus reports whether s is a known custody status
func ValidEvidenceStatus(s string) bool {
	switch s {
	case StatusInStorage, StatusDestroyed, StatusTaken, StatusOnExamination, StatusArchived:
		return true
	}
	return false
}

// EvidenceGroup bundles evidence items belonging to a case
type EvidenceGroup struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string     `gorm:"type:varchar(255);not null" json:"name"`
	CaseID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"case_id"`
	Case        *Case      `gorm:"foreignKey:CaseID;constraint:OnDelete:CASCADE;" json:"case,omitempty"`
	CreatedByID *uuid.UUID `gorm:"type:uuid;index" json:"created_by_id"`
	CreatedBy   *User      `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL;" json:"created_by,omitempty"`
	// items currently assigned to the group
	MaterialEvidences []MaterialEvidence `gorm:"foreignKey:GroupID" json:"material_evidences,omitempty"`
	Active            bool               `gorm:"default:true" json:"active"`
	CreatedAt         time.Time          `gorm:"column:created;autoCreateTime" json:"created"`
	UpdatedAt         time.Time          `gorm:"column:updated;autoUpdateTime" json:"updated"`
}

// MaterialEvidence is a physical item tracked by barcode through a custody
// lifecycle. It outlives its case: deleting the case nulls the foreign key.
type MaterialEvidence struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"type:varchar(255);not null" json:"name"`
	Description string         `gorm:"type:text" json:"description"`
	CaseID      *uuid.UUID     `gorm:"type:uuid;index" json:"case_id"`
	Case        *Case          `gorm:"foreignKey:CaseID;constraint:OnDelete:SET NULL;" json:"case,omitempty"`
	GroupID     *uuid.UUID     `gorm:"type:uuid;index" json:"group_id"`
	Group       *EvidenceGroup `gorm:"foreignKey:GroupID;constraint:OnDelete:SET NULL;" json:"group,omitempty"`
	CreatedByID *uuid.UUID     `gorm:"type:uuid;index" json:"created_by_id"`
	CreatedBy   *User          `gorm:"foreignKey:CreatedByID;constraint:OnDelete:SET NULL;" json:"created_by,omitempty"`
	Status      string         `gorm:"type:varchar(20);not null;default:IN_STORAGE" json:"status"`
	Barcode     string         `gorm:"type:varchar(255);uniqueIndex;not null" json:"barcode"`
	Active      bool           `gorm:"default:true" json:"active"`
	CreatedAt   time.Time      `gorm:"column:created;autoCreateTime" json:"created"`
	UpdatedAt   time.Time      `gorm:"column:updated;autoUpdateTime" json:"updated"`
}

// MaterialEvidenceEvent is an append-only custody record. Recording one does
// not change the evidence row's stored status.
type MaterialEvidenceEvent struct {
	ID                 uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	UserID             uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User               *User             `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"user,omitempty"`
	MaterialEvidenceID uuid.UUID         `gorm:"type:uuid;not null;index" json:"material_evidence_id"`
	MaterialEvidence   *MaterialEvidence `gorm:"foreignKey:MaterialEvidenceID;constraint:OnDelete:CASCADE;" json:"material_evidence,omitempty"`
	Action             string            `gorm:"type:varchar(20);not null" json:"action"`
	CreatedAt          time.Time         `gorm:"column:created;autoCreateTime" json:"created"`
}

func (g *EvidenceGroup) BeforeCreate(*gorm.DB) error {
	if g.ID == uuid.Nil {
		g.ID = uuid.New()
	}
	return nil
}

func (m *MaterialEvidence) BeforeCreate(*gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (e *MaterialEvidenceEvent) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
