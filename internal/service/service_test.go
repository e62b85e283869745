package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"evidence-backend/internal/database"
	"evidence-backend/internal/model"
	"evidence-backend/internal/repository"
)

// harness runs the services against real repositories on an in-memory
// database, so scoping and transactions behave the way they do in production.
type harness struct {
	db *gorm.DB

	users      UserService
	depts      DepartmentService
	cases      CaseService
	evidence   EvidenceService
	auth       AuthService
	sessions   SessionService
	audit      AuditService
	notifier   *recordingNotifier
	deptAlpha  model.Department
	deptBravo  model.Department
	regionHead model.User
	deptHead   model.User
	officer    model.User
}

type recordingNotifier struct {
	messages [][]byte
}

func (n *recordingNotifier) Notify(message []byte) {
	n.messages = append(n.messages, message)
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.Migrate(db))

	h := &harness{db: db, notifier: &recordingNotifier{}}

	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	deptRepo := repository.NewDepartmentRepository(db)
	caseRepo := repository.NewCaseRepository(db)
	evidenceRepo := repository.NewEvidenceRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	h.audit = NewAuditService(auditRepo)
	h.users = NewUserService(userRepo)
	h.depts = NewDepartmentService(deptRepo)
	h.cases = NewCaseService(caseRepo, h.audit, txManager)
	h.evidence = NewEvidenceService(evidenceRepo, caseRepo, h.audit, txManager, h.notifier)
	h.sessions = NewSessionService(sessionRepo)
	h.auth = NewAuthService(userRepo, sessionRepo)

	h.deptAlpha = model.Department{Name: "Alpha", Region: model.RegionAstana}
	h.deptBravo = model.Department{Name: "Bravo", Region: model.RegionAstana}
	require.NoError(t, db.Create(&h.deptAlpha).Error)
	require.NoError(t, db.Create(&h.deptBravo).Error)

	hash, err := bcrypt.GenerateFromPassword([]byte("sekret1"), bcrypt.DefaultCost)
	require.NoError(t, err)

	h.regionHead = model.User{
		Username: "head_astana", Password: string(hash),
		Role: model.RoleRegionHead, Region: model.RegionAstana,
		DepartmentID: &h.deptAlpha.ID, IsActive: true,
	}
	h.deptHead = model.User{
		Username: "head_alpha", Password: string(hash),
		Role: model.RoleDepartmentHead, Region: model.RegionAstana,
		DepartmentID: &h.deptAlpha.ID, IsActive: true,
	}
	h.officer = model.User{
		Username: "officer", Password: string(hash),
		Role: model.RoleUser, Region: model.RegionAstana,
		DepartmentID: &h.deptAlpha.ID, IsActive: true,
	}
	for _, u := range []*model.User{&h.regionHead, &h.deptHead, &h.officer} {
		require.NoError(t, db.Create(u).Error)
	}
	// reload with department for scope checks that follow the relation
	for _, u := range []*model.User{&h.regionHead, &h.deptHead, &h.officer} {
		require.NoError(t, db.Preload("Department").First(u, "id = ?", u.ID).Error)
	}

	return h
}

func strPtr(s string) *string { return &s }

func mustParse(t *testing.T, s string) uuid.UUID {
	t.Helper()
	id, err := uuid.Parse(s)
	require.NoError(t, err)
	return id
}

func (h *harness) createCase(t *testing.T, actor *model.User, name string) *CaseResponse {
	t.Helper()
	res, err := h.cases.Create(context.Background(), actor, CreateCaseRequest{Name: name})
	require.NoError(t, err)
	return res
}

func TestCaseCreateForcesOwnership(t *testing.T) {
	h := newHarness(t)

	res := h.createCase(t, &h.officer, "stolen bicycle")

	var c model.Case
	require.NoError(t, h.db.First(&c, "name = ?", "stolen bicycle").Error)
	require.NotNil(t, c.CreatorID)
	require.Equal(t, h.officer.ID, *c.CreatorID)
	require.Equal(t, h.officer.ID, c.InvestigatorID)
	require.NotNil(t, c.DepartmentID)
	require.Equal(t, h.deptAlpha.ID, *c.DepartmentID)
	require.True(t, res.Active)

	// case creation leaves an audit trail
	var entry model.AuditEntry
	require.NoError(t, h.db.First(&entry, "table_name = ? AND object_id = ?", "cases", res.ID).Error)
	require.Equal(t, model.AuditActionCreate, entry.Action)
	require.Equal(t, h.officer.ID, *entry.UserID)
}

func TestCaseUpdateIsCreatorOnly(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	res := h.createCase(t, &h.officer, "burglary")
	id := mustParse(t, res.ID)

	// the region head can see the case but did not create it
	newName := "renamed"
	_, err := h.cases.Update(ctx, &h.regionHead, id, UpdateCaseRequest{Name: &newName})
	require.ErrorIs(t, err, ErrPermissionDenied)

	err = h.cases.Delete(ctx, &h.regionHead, id)
	require.ErrorIs(t, err, ErrPermissionDenied)

	updated, err := h.cases.Update(ctx, &h.officer, id, UpdateCaseRequest{Name: &newName})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Name)
}

func TestEvidenceCreateForcesServerFields(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cs := h.createCase(t, &h.officer, "arson")

	res, err := h.evidence.CreateEvidence(ctx, &h.officer, CreateEvidenceRequest{
		Name:   "lighter",
		CaseID: cs.ID,
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.Barcode)
	require.Equal(t, model.StatusInStorage, res.Status)

	var ev model.MaterialEvidence
	require.NoError(t, h.db.First(&ev, "name = ?", "lighter").Error)
	require.NotNil(t, ev.CreatedByID)
	require.Equal(t, h.officer.ID, *ev.CreatedByID)
}

func TestEvidenceCreateRequiresCaseCreator(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cs := h.createCase(t, &h.officer, "fraud")

	// heads see the case, creating evidence on it still needs ownership
	_, err := h.evidence.CreateEvidence(ctx, &h.deptHead, CreateEvidenceRequest{
		Name:   "ledger",
		CaseID: cs.ID,
	})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, err = h.evidence.CreateGroup(ctx, &h.deptHead, CreateGroupRequest{
		Name:   "documents",
		CaseID: cs.ID,
	})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestEvidenceBarcodesAreServerAssignedAndDistinct(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cs := h.createCase(t, &h.officer, "smuggling")

	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		res, err := h.evidence.CreateEvidence(ctx, &h.officer, CreateEvidenceRequest{
			Name:   "parcel",
			CaseID: cs.ID,
		})
		require.NoError(t, err)
		require.NotEmpty(t, res.Barcode)
		require.False(t, seen[res.Barcode], "barcode %s issued twice", res.Barcode)
		seen[res.Barcode] = true
	}
}

func TestGroupResponseNestsEvidence(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cs := h.createCase(t, &h.officer, "counterfeiting")
	group, err := h.evidence.CreateGroup(ctx, &h.officer, CreateGroupRequest{
		Name:   "printing gear",
		CaseID: cs.ID,
	})
	require.NoError(t, err)

	ev, err := h.evidence.CreateEvidence(ctx, &h.officer, CreateEvidenceRequest{
		Name:    "press",
		CaseID:  cs.ID,
		GroupID: &group.ID,
	})
	require.NoError(t, err)

	got, err := h.evidence.GetGroup(ctx, &h.officer, mustParse(t, group.ID))
	require.NoError(t, err)
	require.Len(t, got.MaterialEvidences, 1)
	require.Equal(t, ev.ID, got.MaterialEvidences[0].ID)
}

func TestEvidenceCreateRejectsUnknownStatus(t *testing.T) {
	h := newHarness(t)

	cs := h.createCase(t, &h.officer, "vandalism")

	_, err := h.evidence.CreateEvidence(context.Background(), &h.officer, CreateEvidenceRequest{
		Name:   "spray can",
		CaseID: cs.ID,
		Status: "LOST",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestCustodyEventLeavesStatusAlone(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cs := h.createCase(t, &h.officer, "assault")
	ev, err := h.evidence.CreateEvidence(ctx, &h.officer, CreateEvidenceRequest{
		Name:   "bat",
		CaseID: cs.ID,
	})
	require.NoError(t, err)

	event, err := h.evidence.CreateEvent(ctx, &h.officer, CreateEventRequest{
		MaterialEvidenceID: ev.ID,
		Action:             model.StatusTaken,
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusTaken, event.Action)

	// the event log and the stored status are independent
	var stored model.MaterialEvidence
	require.NoError(t, h.db.First(&stored, "id = ?", ev.ID).Error)
	require.Equal(t, model.StatusInStorage, stored.Status)

	// connected clients hear about the event
	require.Len(t, h.notifier.messages, 1)
	require.Contains(t, string(h.notifier.messages[0]), "custody_event")
	require.Contains(t, string(h.notifier.messages[0]), ev.Barcode)
}

func TestCustodyEventRejectsUnknownAction(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	cs := h.createCase(t, &h.officer, "theft")
	ev, err := h.evidence.CreateEvidence(ctx, &h.officer, CreateEvidenceRequest{
		Name:   "wallet",
		CaseID: cs.ID,
	})
	require.NoError(t, err)

	_, err = h.evidence.CreateEvent(ctx, &h.officer, CreateEventRequest{
		MaterialEvidenceID: ev.ID,
		Action:             "MISPLACED",
	})
	require.ErrorIs(t, err, ErrValidation)
}

func TestDepartmentCreateForcesRegion(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// the request's region field is ignored
	res, err := h.depts.Create(ctx, &h.regionHead, CreateDepartmentRequest{
		Name:   "Charlie",
		Region: model.RegionShymkent,
	})
	require.NoError(t, err)
	require.Equal(t, model.RegionAstana, res.Region)

	_, err = h.depts.Create(ctx, &h.deptHead, CreateDepartmentRequest{Name: "Delta"})
	require.ErrorIs(t, err, ErrPermissionDenied)

	_, _, err = h.depts.List(ctx, &h.officer, 1, 20)
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestUserUpdateActivationNeedsScope(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	inactive := false

	// department head may deactivate a member of their own department
	res, err := h.users.Update(ctx, &h.deptHead, h.officer.ID, UpdateUserRequest{IsActive: &inactive})
	require.NoError(t, err)
	require.False(t, res.IsActive)

	// a regular user cannot flip anyone's flag, not even their own
	active := true
	_, err = h.users.Update(ctx, &h.officer, h.officer.ID, UpdateUserRequest{IsActive: &active})
	require.ErrorIs(t, err, ErrPermissionDenied)

	// submitting the field is what is forbidden, an unchanged value is no excuse
	unchanged := false
	_, err = h.users.Update(ctx, &h.officer, h.officer.ID, UpdateUserRequest{IsActive: &unchanged})
	require.ErrorIs(t, err, ErrPermissionDenied)
}

func TestSessionLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	// manual creation defaults to the caller
	created, err := h.sessions.Create(ctx, &h.officer, CreateSessionRequest{})
	require.NoError(t, err)
	require.True(t, created.Active)
	require.Nil(t, created.Logout)

	id := mustParse(t, created.ID)

	// a department head may close a member's session by hand
	closed := false
	logout := "2026-08-29T10:00:00Z"
	updated, err := h.sessions.Update(ctx, &h.deptHead, id, UpdateSessionRequest{
		Logout: &logout,
		Active: &closed,
	})
	require.NoError(t, err)
	require.False(t, updated.Active)
	require.NotNil(t, updated.Logout)

	_, err = h.sessions.Update(ctx, &h.deptHead, id, UpdateSessionRequest{Logout: strPtr("yesterday")})
	require.ErrorIs(t, err, ErrValidation)

	require.NoError(t, h.sessions.Delete(ctx, &h.deptHead, id))

	var count int64
	require.NoError(t, h.db.Model(&model.Session{}).Where("id = ?", id).Count(&count).Error)
	require.Zero(t, count)
}

func TestSessionMutationIsScoped(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	headSession, err := h.sessions.Create(ctx, &h.deptHead, CreateSessionRequest{})
	require.NoError(t, err)
	id := mustParse(t, headSession.ID)

	// a regular user only sees their own sessions, so someone else's row
	// reads as missing
	closed := false
	_, err = h.sessions.Update(ctx, &h.officer, id, UpdateSessionRequest{Active: &closed})
	require.ErrorIs(t, err, ErrNotFound)

	err = h.sessions.Delete(ctx, &h.officer, id)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestLoginOpensSessionRow(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	user, tokens, err := h.auth.Login(ctx, LoginRequest{Username: "officer", Password: "sekret1"})
	require.NoError(t, err)
	require.Equal(t, h.officer.ID, user.ID)
	require.NotEmpty(t, tokens.Token)
	require.NotEmpty(t, tokens.RefreshToken)

	var session model.Session
	require.NoError(t, h.db.First(&session, "user_id = ?", h.officer.ID).Error)
	require.True(t, session.Active)
	require.Nil(t, session.Logout)

	require.NoError(t, h.auth.Logout(ctx, user, tokens.RefreshToken))
	require.NoError(t, h.db.First(&session, "user_id = ?", h.officer.ID).Error)
	require.False(t, session.Active)
	require.NotNil(t, session.Logout)
}

func TestLoginRejectsBadCredentialsAndInactive(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, _, err := h.auth.Login(ctx, LoginRequest{Username: "officer", Password: "wrong"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = h.auth.Login(ctx, LoginRequest{Username: "ghost", Password: "sekret1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, h.db.Model(&model.User{}).Where("id = ?", h.officer.ID).Update("is_active", false).Error)
	_, _, err = h.auth.Login(ctx, LoginRequest{Username: "officer", Password: "sekret1"})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRefreshTokenRotates(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	_, tokens, err := h.auth.Login(ctx, LoginRequest{Username: "officer", Password: "sekret1"})
	require.NoError(t, err)

	refreshed, err := h.auth.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	require.NotEqual(t, tokens.RefreshToken, refreshed.RefreshToken)

	// the old token is spent
	_, err = h.auth.RefreshToken(ctx, RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.ErrorIs(t, err, ErrInvalidCredentials)
}
