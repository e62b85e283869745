package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Region codes of the 17 administrative regions a department can belong to
const (
	RegionAkmola          = "AKMOLA"
	RegionAktobe          = "AKTOBE"
	RegionAlmatyRegion    = "ALMATY_REGION"
	RegionAtyrau          = "ATYRAU"
	RegionEastKazakhstan  = "EAST_KAZAKHSTAN"
	RegionZhambyl         = "ZHAMBYL"
	RegionWestKazakhstan  = "WEST_KAZAKHSTAN"
	RegionKaraganda       = "KARAGANDA"
	RegionKostanay        = "KOSTANAY"
	RegionKyzylorda       = "KYZYLORDA"
	RegionMangystau       = "MANGYSTAU"
	RegionPavlodar        = "PAVLODAR"
	RegionNorthKazakhstan = "NORTH_KAZAKHSTAN"
	RegionTurkestan       = "TURKESTAN"
	RegionAstana          = "ASTANA"
	RegionAlmatyCity      = "ALMATY_CITY"
	RegionShymkent        = "SHYMKENT"
)

// Regions lists every valid region code
var Regions = []string{
	RegionAkmola, RegionAktobe, RegionAlmatyRegion, RegionAtyrau,
	RegionEastKazakhstan, RegionZhambyl, RegionWestKazakhstan, RegionKaraganda,
	RegionKostanay, RegionKyzylorda, RegionMangystau, RegionPavlodar,
	RegionNorthKazakhstan, RegionTurkestan, RegionAstana, RegionAlmatyCity,
	RegionShymkent,
}

// ValidRegion reports whether code is one of the fixed region codes
func ValidRegion(code string) bool {
	for _, r := range Regions {
		if r == code {
			return true
		}
	}
	return false
}

// User roles, evaluated in fixed order REGION_HEAD -> DEPARTMENT_HEAD -> USER
const (
	RoleRegionHead     = "REGION_HEAD"
	RoleDepartmentHead = "DEPARTMENT_HEAD"
	RoleUser           = "USER"
)

// ValidRole reports whether role is one of the three known roles
func ValidRole(role string) bool {
	return role == RoleRegionHead || role == RoleDepartmentHead || role == RoleUser
}

// Department is an organizational unit inside a region
type Department struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name   string    `gorm:"type:varchar(255);not null" json:"name"`
	Region string    `gorm:"type:varchar(50);not null;index" json:"region"`
}

// User represents an officer account scoped by role/region/department
type User struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string      `gorm:"type:varchar(255);uniqueIndex;not null" json:"username"`
	Password     string      `gorm:"type:varchar(255);not null" json:"-"` // bcrypt hash, never serialized
	FirstName    string      `gorm:"type:varchar(150)" json:"first_name"`
	LastName     string      `gorm:"type:varchar(150)" json:"last_name"`
	Email        string      `gorm:"type:varchar(255)" json:"email"`
	PhoneNumber  string      `gorm:"type:varchar(20)" json:"phone_number"`
	Rank         string      `gorm:"type:varchar(50)" json:"rank"`
	FaceData     []byte      `gorm:"type:bytea" json:"-"` // reserved for biometric enrollment
	DepartmentID *uuid.UUID  `gorm:"type:uuid;index" json:"department_id"`
	Department   *Department `gorm:"foreignKey:DepartmentID;constraint:OnDelete:SET NULL;" json:"department,omitempty"`
	Region       string      `gorm:"type:varchar(50);index" json:"region"`
	Role         string      `gorm:"type:varchar(20);not null;default:USER" json:"role"`
	IsActive     bool        `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

// FullName joins first and last name for display
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// RefreshToken stores long-lived tokens allowing users to request new access tokens
type RefreshToken struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Token     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"token"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// BeforeCreate assigns the primary key when the caller has not
func (d *Department) BeforeCreate(*gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

func (t *RefreshToken) BeforeCreate(*gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
