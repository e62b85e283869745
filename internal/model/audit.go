package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions
const (
	AuditActionCreate = "CREATE"
	AuditActionUpdate = "UPDATE"
	AuditActionDelete = "DELETE"
)

// AuditEntry tracks who changed what and when, as an append-only free-text log
type AuditEntry struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	ObjectID  string     `gorm:"type:varchar(50);not null;index" json:"object_id"`
	TableName string     `gorm:"type:varchar(255);not null" json:"table_name"`
	ClassName string     `gorm:"type:varchar(255);not null" json:"class_name"`
	Action    string     `gorm:"type:varchar(10);not null" json:"action"`
	Fields    string     `gorm:"type:text" json:"fields"`
	Data      string     `gorm:"type:text" json:"data"` // serialized JSON payload of the change
	UserID    *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User      *User      `gorm:"foreignKey:UserID;constraint:OnDelete:SET NULL;" json:"user,omitempty"`
	CreatedAt time.Time  `gorm:"column:created;autoCreateTime;index" json:"created"`
}

func (e *AuditEntry) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
