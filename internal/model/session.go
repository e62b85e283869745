package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session records a login/logout pair for a user
type Session struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"user,omitempty"`
	Login  time.Time  `gorm:"autoCreateTime" json:"login"`
	Logout *time.Time `json:"logout"`
	Active bool       `gorm:"default:true" json:"active"`
}

func (s *Session) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
