// Package scope centralizes role-based visibility for every resource.
//
// All rules share one dispatch order: REGION_HEAD, then DEPARTMENT_HEAD, then
// everything else is treated as a regular user. A scoped role whose region or
// department is unset matches nothing rather than failing.
package scope

import (
	"gorm.io/gorm"

	"evidence-backend/internal/model"
)

// none yields an empty result set
func none(db *gorm.DB) *gorm.DB {
	return db.Where("1 = 0")
}

// VisibleUsers limits users to the caller's region, department, or self
func VisibleUsers(actor *model.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Role {
		case model.RoleRegionHead:
			if actor.Region == "" {
				return none(db)
			}
			return db.Joins("JOIN departments ON departments.id = users.department_id").
				Where("departments.region = ?", actor.Region)
		case model.RoleDepartmentHead:
			if actor.DepartmentID == nil {
				return none(db)
			}
			return db.Where("users.department_id = ?", *actor.DepartmentID)
		default:
			return db.Where("users.id = ?", actor.ID)
		}
	}
}

// VisibleDepartments limits departments to the caller's region; only
// REGION_HEAD may see departments at all, which handlers enforce before
// querying.
func VisibleDepartments(actor *model.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if actor.Role != model.RoleRegionHead || actor.Region == "" {
			return none(db)
		}
		return db.Where("departments.region = ?", actor.Region)
	}
}

// VisibleCases limits cases to the caller's region, department, or own created cases
func VisibleCases(actor *model.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Role {
		case model.RoleRegionHead:
			if actor.Region == "" {
				return none(db)
			}
			return db.Joins("JOIN departments ON departments.id = cases.department_id").
				Where("departments.region = ?", actor.Region)
		case model.RoleDepartmentHead:
			if actor.DepartmentID == nil {
				return none(db)
			}
			return db.Where("cases.department_id = ?", *actor.DepartmentID)
		default:
			return db.Where("cases.creator_id = ?", actor.ID)
		}
	}
}

// VisibleEvidence limits evidence through its case's department for heads, or
// to the caller's own items. The join drops case-less evidence for heads, the
// same way filtering through the case relation does.
func VisibleEvidence(actor *model.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Role {
		case model.RoleRegionHead:
			if actor.Region == "" {
				return none(db)
			}
			return db.Joins("JOIN cases ON cases.id = material_evidences.case_id").
				Joins("JOIN departments ON departments.id = cases.department_id").
				Where("departments.region = ?", actor.Region)
		case model.RoleDepartmentHead:
			if actor.DepartmentID == nil {
				return none(db)
			}
			return db.Joins("JOIN cases ON cases.id = material_evidences.case_id").
				Where("cases.department_id = ?", *actor.DepartmentID)
		default:
			return db.Where("material_evidences.created_by_id = ?", actor.ID)
		}
	}
}

// VisibleEvidenceGroups applies the evidence rule to groups via their case
func VisibleEvidenceGroups(actor *model.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Role {
		case model.RoleRegionHead:
			if actor.Region == "" {
				return none(db)
			}
			return db.Joins("JOIN cases ON cases.id = evidence_groups.case_id").
				Joins("JOIN departments ON departments.id = cases.department_id").
				Where("departments.region = ?", actor.Region)
		case model.RoleDepartmentHead:
			if actor.DepartmentID == nil {
				return none(db)
			}
			return db.Joins("JOIN cases ON cases.id = evidence_groups.case_id").
				Where("cases.department_id = ?", *actor.DepartmentID)
		default:
			return db.Where("evidence_groups.created_by_id = ?", actor.ID)
		}
	}
}

// VisibleEvidenceEvents limits custody events to events on the caller's
// visible evidence set
func VisibleEvidenceEvents(actor *model.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Joins("JOIN material_evidences ON material_evidences.id = material_evidence_events.material_evidence_id")
		switch actor.Role {
		case model.RoleRegionHead:
			if actor.Region == "" {
				return none(db)
			}
			return db.Joins("JOIN cases ON cases.id = material_evidences.case_id").
				Joins("JOIN departments ON departments.id = cases.department_id").
				Where("departments.region = ?", actor.Region)
		case model.RoleDepartmentHead:
			if actor.DepartmentID == nil {
				return none(db)
			}
			return db.Joins("JOIN cases ON cases.id = material_evidences.case_id").
				Where("cases.department_id = ?", *actor.DepartmentID)
		default:
			return db.Where("material_evidences.created_by_id = ?", actor.ID)
		}
	}
}

// VisibleSessions limits sessions through the owning user's own region field,
// not the department's region: session and audit visibility follow the user
// row directly.
func VisibleSessions(actor *model.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Role {
		case model.RoleRegionHead:
			if actor.Region == "" {
				return none(db)
			}
			return db.Joins("JOIN users ON users.id = sessions.user_id").
				Where("users.region = ?", actor.Region)
		case model.RoleDepartmentHead:
			if actor.DepartmentID == nil {
				return none(db)
			}
			return db.Joins("JOIN users ON users.id = sessions.user_id").
				Where("users.department_id = ?", *actor.DepartmentID)
		default:
			return db.Where("sessions.user_id = ?", actor.ID)
		}
	}
}

// VisibleAuditEntries limits audit entries through the entry's user, same rule
// as sessions
func VisibleAuditEntries(actor *model.User) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		switch actor.Role {
		case model.RoleRegionHead:
			if actor.Region == "" {
				return none(db)
			}
			return db.Joins("JOIN users ON users.id = audit_entries.user_id").
				Where("users.region = ?", actor.Region)
		case model.RoleDepartmentHead:
			if actor.DepartmentID == nil {
				return none(db)
			}
			return db.Joins("JOIN users ON users.id = audit_entries.user_id").
				Where("users.department_id = ?", *actor.DepartmentID)
		default:
			return db.Where("audit_entries.user_id = ?", actor.ID)
		}
	}
}

// CanManageUser reports whether actor may flip another user's is_active flag:
// the target must sit inside the actor's scope.
func CanManageUser(actor, target *model.User) bool {
	switch actor.Role {
	case model.RoleRegionHead:
		return actor.Region != "" && target.Department != nil && target.Department.Region == actor.Region
	case model.RoleDepartmentHead:
		return actor.DepartmentID != nil && target.DepartmentID != nil && *target.DepartmentID == *actor.DepartmentID
	default:
		return false
	}
}
