package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Camera types
const (
	CameraFaceID  = "FACE_ID"
	CameraRec     = "REC"
	CameraDefault = "DEFAULT"
)

// ValidCameraType reports whether t is a known camera type
func ValidCameraType(t string) bool {
	return t == CameraFaceID || t == CameraRec || t == CameraDefault
}

// Camera is a physical device in the camera inventory
type Camera struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	DeviceID  int       `gorm:"uniqueIndex;not null" json:"device_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Type      string    `gorm:"type:varchar(20);not null;default:DEFAULT" json:"type"`
	Active    bool      `gorm:"default:true" json:"active"`
	CreatedAt time.Time `gorm:"column:created;autoCreateTime" json:"created"`
	UpdatedAt time.Time `gorm:"column:updated;autoUpdateTime" json:"updated"`
}

func (cam *Camera) BeforeCreate(*gorm.DB) error {
	if cam.ID == uuid.Nil {
		cam.ID = uuid.New()
	}
	return nil
}
