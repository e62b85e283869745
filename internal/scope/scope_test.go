package scope

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"evidence-backend/internal/database"
	"evidence-backend/internal/model"
)

// fixture wires two regions with three departments so every branch of the
// visibility rules has data on both sides of the fence.
type fixture struct {
	db *gorm.DB

	deptAlpha   model.Department // AKMOLA
	deptBravo   model.Department // AKMOLA
	deptCharlie model.Department // AKTOBE

	rhAkmola model.User // REGION_HEAD of AKMOLA, member of alpha
	dhAlpha  model.User // DEPARTMENT_HEAD of alpha
	uAlpha   model.User // regular user in alpha
	uDrifter model.User // in alpha, but user row region says AKTOBE
	uCharlie model.User // regular user in charlie

	caseAlpha   model.Case
	caseBravo   model.Case
	caseCharlie model.Case

	evAlpha   model.MaterialEvidence
	evCharlie model.MaterialEvidence
	evOrphan  model.MaterialEvidence // no case attached
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// a new connection would see a fresh empty :memory: database
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db))
	return db
}

func seed(t *testing.T) *fixture {
	t.Helper()
	db := openTestDB(t)
	f := &fixture{db: db}

	f.deptAlpha = model.Department{Name: "Alpha", Region: model.RegionAkmola}
	f.deptBravo = model.Department{Name: "Bravo", Region: model.RegionAkmola}
	f.deptCharlie = model.Department{Name: "Charlie", Region: model.RegionAktobe}
	require.NoError(t, db.Create(&f.deptAlpha).Error)
	require.NoError(t, db.Create(&f.deptBravo).Error)
	require.NoError(t, db.Create(&f.deptCharlie).Error)

	f.rhAkmola = model.User{
		Username: "rh_akmola", Password: "x",
		Role: model.RoleRegionHead, Region: model.RegionAkmola,
		DepartmentID: &f.deptAlpha.ID, IsActive: true,
	}
	f.dhAlpha = model.User{
		Username: "dh_alpha", Password: "x",
		Role: model.RoleDepartmentHead, Region: model.RegionAkmola,
		DepartmentID: &f.deptAlpha.ID, IsActive: true,
	}
	f.uAlpha = model.User{
		Username: "u_alpha", Password: "x",
		Role: model.RoleUser, Region: model.RegionAkmola,
		DepartmentID: &f.deptAlpha.ID, IsActive: true,
	}
	// department says AKMOLA, user row says AKTOBE: sessions and audit
	// entries follow the user row, everything else follows the department
	f.uDrifter = model.User{
		Username: "u_drifter", Password: "x",
		Role: model.RoleUser, Region: model.RegionAktobe,
		DepartmentID: &f.deptAlpha.ID, IsActive: true,
	}
	f.uCharlie = model.User{
		Username: "u_charlie", Password: "x",
		Role: model.RoleUser, Region: model.RegionAktobe,
		DepartmentID: &f.deptCharlie.ID, IsActive: true,
	}
	for _, u := range []*model.User{&f.rhAkmola, &f.dhAlpha, &f.uAlpha, &f.uDrifter, &f.uCharlie} {
		require.NoError(t, db.Create(u).Error)
	}

	f.caseAlpha = model.Case{
		Name: "alpha case", InvestigatorID: f.uAlpha.ID,
		CreatorID: &f.uAlpha.ID, DepartmentID: &f.deptAlpha.ID, Active: true,
	}
	f.caseBravo = model.Case{
		Name: "bravo case", InvestigatorID: f.dhAlpha.ID,
		CreatorID: &f.dhAlpha.ID, DepartmentID: &f.deptBravo.ID, Active: true,
	}
	f.caseCharlie = model.Case{
		Name: "charlie case", InvestigatorID: f.uCharlie.ID,
		CreatorID: &f.uCharlie.ID, DepartmentID: &f.deptCharlie.ID, Active: true,
	}
	for _, c := range []*model.Case{&f.caseAlpha, &f.caseBravo, &f.caseCharlie} {
		require.NoError(t, db.Create(c).Error)
	}

	f.evAlpha = model.MaterialEvidence{
		Name: "knife", CaseID: &f.caseAlpha.ID, CreatedByID: &f.uAlpha.ID,
		Status: model.StatusInStorage, Barcode: uuid.NewString(), Active: true,
	}
	f.evCharlie = model.MaterialEvidence{
		Name: "phone", CaseID: &f.caseCharlie.ID, CreatedByID: &f.uCharlie.ID,
		Status: model.StatusInStorage, Barcode: uuid.NewString(), Active: true,
	}
	f.evOrphan = model.MaterialEvidence{
		Name: "loose item", CreatedByID: &f.uAlpha.ID,
		Status: model.StatusInStorage, Barcode: uuid.NewString(), Active: true,
	}
	for _, ev := range []*model.MaterialEvidence{&f.evAlpha, &f.evCharlie, &f.evOrphan} {
		require.NoError(t, db.Create(ev).Error)
	}

	return f
}

func userIDs(t *testing.T, db *gorm.DB, sc func(*gorm.DB) *gorm.DB) map[uuid.UUID]bool {
	t.Helper()
	var users []model.User
	require.NoError(t, db.Model(&model.User{}).Scopes(sc).Find(&users).Error)
	out := make(map[uuid.UUID]bool, len(users))
	for _, u := range users {
		out[u.ID] = true
	}
	return out
}

func TestVisibleUsersRegionHead(t *testing.T) {
	f := seed(t)

	got := userIDs(t, f.db, VisibleUsers(&f.rhAkmola))

	require.True(t, got[f.rhAkmola.ID])
	require.True(t, got[f.dhAlpha.ID])
	require.True(t, got[f.uAlpha.ID])
	// scoped through the department's region, the user row region is ignored
	require.True(t, got[f.uDrifter.ID])
	require.False(t, got[f.uCharlie.ID])
}

func TestVisibleUsersDepartmentHead(t *testing.T) {
	f := seed(t)

	got := userIDs(t, f.db, VisibleUsers(&f.dhAlpha))

	require.True(t, got[f.uAlpha.ID])
	require.True(t, got[f.dhAlpha.ID])
	require.False(t, got[f.uCharlie.ID])
}

func TestVisibleUsersRegularUserSeesOnlySelf(t *testing.T) {
	f := seed(t)

	got := userIDs(t, f.db, VisibleUsers(&f.uAlpha))

	require.Len(t, got, 1)
	require.True(t, got[f.uAlpha.ID])
}

func TestVisibleUsersUnsetScopeKeyMatchesNothing(t *testing.T) {
	f := seed(t)

	headless := model.User{ID: uuid.New(), Role: model.RoleRegionHead}
	require.Empty(t, userIDs(t, f.db, VisibleUsers(&headless)))

	deptless := model.User{ID: uuid.New(), Role: model.RoleDepartmentHead}
	require.Empty(t, userIDs(t, f.db, VisibleUsers(&deptless)))
}

func TestVisibleDepartments(t *testing.T) {
	f := seed(t)

	var depts []model.Department
	require.NoError(t, f.db.Model(&model.Department{}).Scopes(VisibleDepartments(&f.rhAkmola)).Find(&depts).Error)
	require.Len(t, depts, 2)
	for _, d := range depts {
		require.Equal(t, model.RegionAkmola, d.Region)
	}

	// the rule itself locks out every other role
	require.NoError(t, f.db.Model(&model.Department{}).Scopes(VisibleDepartments(&f.dhAlpha)).Find(&depts).Error)
	require.Empty(t, depts)
}

func TestVisibleCases(t *testing.T) {
	f := seed(t)

	var cases []model.Case
	require.NoError(t, f.db.Model(&model.Case{}).Scopes(VisibleCases(&f.rhAkmola)).Find(&cases).Error)
	require.Len(t, cases, 2) // alpha and bravo, both AKMOLA

	require.NoError(t, f.db.Model(&model.Case{}).Scopes(VisibleCases(&f.dhAlpha)).Find(&cases).Error)
	require.Len(t, cases, 1)
	require.Equal(t, f.caseAlpha.ID, cases[0].ID)

	// regular users see the cases they created, not their department's
	require.NoError(t, f.db.Model(&model.Case{}).Scopes(VisibleCases(&f.uAlpha)).Find(&cases).Error)
	require.Len(t, cases, 1)
	require.Equal(t, f.caseAlpha.ID, cases[0].ID)
}

func TestVisibleEvidence(t *testing.T) {
	f := seed(t)

	var items []model.MaterialEvidence
	require.NoError(t, f.db.Model(&model.MaterialEvidence{}).Scopes(VisibleEvidence(&f.rhAkmola)).Find(&items).Error)
	require.Len(t, items, 1)
	require.Equal(t, f.evAlpha.ID, items[0].ID) // the join drops case-less items

	require.NoError(t, f.db.Model(&model.MaterialEvidence{}).Scopes(VisibleEvidence(&f.uAlpha)).Find(&items).Error)
	require.Len(t, items, 2) // own items, including the one without a case
}

func TestVisibleEvidenceEvents(t *testing.T) {
	f := seed(t)

	evtAlpha := model.MaterialEvidenceEvent{
		UserID: f.uAlpha.ID, MaterialEvidenceID: f.evAlpha.ID, Action: model.StatusTaken,
	}
	evtCharlie := model.MaterialEvidenceEvent{
		UserID: f.uCharlie.ID, MaterialEvidenceID: f.evCharlie.ID, Action: model.StatusArchived,
	}
	require.NoError(t, f.db.Create(&evtAlpha).Error)
	require.NoError(t, f.db.Create(&evtCharlie).Error)

	var events []model.MaterialEvidenceEvent
	require.NoError(t, f.db.Model(&model.MaterialEvidenceEvent{}).Scopes(VisibleEvidenceEvents(&f.rhAkmola)).Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, evtAlpha.ID, events[0].ID)

	require.NoError(t, f.db.Model(&model.MaterialEvidenceEvent{}).Scopes(VisibleEvidenceEvents(&f.uCharlie)).Find(&events).Error)
	require.Len(t, events, 1)
	require.Equal(t, evtCharlie.ID, events[0].ID)
}

func TestVisibleSessionsFollowUserRowRegion(t *testing.T) {
	f := seed(t)

	for _, u := range []model.User{f.rhAkmola, f.dhAlpha, f.uAlpha, f.uDrifter, f.uCharlie} {
		require.NoError(t, f.db.Create(&model.Session{UserID: u.ID, Active: true}).Error)
	}

	var sessions []model.Session
	require.NoError(t, f.db.Model(&model.Session{}).Scopes(VisibleSessions(&f.rhAkmola)).Find(&sessions).Error)

	seen := map[uuid.UUID]bool{}
	for _, s := range sessions {
		seen[s.UserID] = true
	}
	require.True(t, seen[f.uAlpha.ID])
	// the drifter sits in an AKMOLA department but their user row says
	// AKTOBE, and sessions follow the user row
	require.False(t, seen[f.uDrifter.ID])
	require.False(t, seen[f.uCharlie.ID])
}

func TestVisibleAuditEntries(t *testing.T) {
	f := seed(t)

	for _, u := range []model.User{f.uAlpha, f.uDrifter, f.uCharlie} {
		id := u.ID
		require.NoError(t, f.db.Create(&model.AuditEntry{
			ObjectID: uuid.NewString(), TableName: "cases", ClassName: "Case",
			Action: model.AuditActionCreate, UserID: &id,
		}).Error)
	}

	var entries []model.AuditEntry
	require.NoError(t, f.db.Model(&model.AuditEntry{}).Scopes(VisibleAuditEntries(&f.rhAkmola)).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, f.uAlpha.ID, *entries[0].UserID)

	require.NoError(t, f.db.Model(&model.AuditEntry{}).Scopes(VisibleAuditEntries(&f.uCharlie)).Find(&entries).Error)
	require.Len(t, entries, 1)
	require.Equal(t, f.uCharlie.ID, *entries[0].UserID)
}

func TestCanManageUser(t *testing.T) {
	f := seed(t)

	target := f.uAlpha
	target.Department = &f.deptAlpha

	require.True(t, CanManageUser(&f.rhAkmola, &target))
	require.True(t, CanManageUser(&f.dhAlpha, &target))
	require.False(t, CanManageUser(&f.uAlpha, &target))

	outsider := f.uCharlie
	outsider.Department = &f.deptCharlie
	require.False(t, CanManageUser(&f.rhAkmola, &outsider))
	require.False(t, CanManageUser(&f.dhAlpha, &outsider))
}
