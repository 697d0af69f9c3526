package accountability

import (
	"testing"
	"time"

	"taskflow-api/internal/httperr"
	"taskflow-api/internal/models"
	"taskflow-api/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, id, email string) *models.User {
	t.Helper()
	u := models.User{ID: id, Email: email, Username: id, Password: "x"}
	require.NoError(t, db.Create(&u).Error)
	return &u
}

func seedTask(t *testing.T, db *gorm.DB, task models.Task) *models.Task {
	t.Helper()
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	if task.Status == "" {
		task.Status = models.StatusPending
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	require.NoError(t, db.Create(&task).Error)
	return &task
}

func partnerIDs(t *testing.T, db *gorm.DB, taskID string) []string {
	t.Helper()
	var rows []models.TaskAccountability
	require.NoError(t, db.Where("task_id = ?", taskID).Order("partner_id asc").Find(&rows).Error)
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.PartnerID)
	}
	return ids
}

func TestRequest_DuplicateConflict(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	seedUser(t, db, "alice", "alice@req.test")
	seedUser(t, db, "bob", "bob@req.test")

	rec, err := Request(db, "alice", "bob")
	require.NoError(t, err)
	require.Equal(t, models.PartnershipPending, rec.Status)

	// Duplicate check is unconditional on status.
	_, err = Request(db, "alice", "bob")
	require.Error(t, err)
	require.Equal(t, httperr.KindConflict, httperr.KindOf(err))

	// The reverse direction is a distinct record.
	_, err = Request(db, "bob", "alice")
	require.NoError(t, err)
}

func TestRequest_UnknownPartner(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	seedUser(t, db, "alice", "alice@unknown.test")

	_, err = Request(db, "alice", "ghost")
	require.Error(t, err)
	require.Equal(t, httperr.KindValidation, httperr.KindOf(err))
}

func TestRespond(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	seedUser(t, db, "alice", "alice@resp.test")
	seedUser(t, db, "bob", "bob@resp.test")
	seedUser(t, db, "carol", "carol@resp.test")

	rec, err := Request(db, "alice", "bob")
	require.NoError(t, err)

	// Only the addressed partner may respond; the requester cannot, and
	// neither can a bystander.
	_, err = Respond(db, rec.ID, "alice", true)
	require.True(t, httperr.IsForbidden(err))
	_, err = Respond(db, rec.ID, "carol", false)
	require.True(t, httperr.IsForbidden(err))

	accepted, err := Respond(db, rec.ID, "bob", true)
	require.NoError(t, err)
	require.Equal(t, models.PartnershipAccepted, accepted.Status)

	_, err = Respond(db, "missing", "bob", true)
	require.Equal(t, httperr.KindNotFound, httperr.KindOf(err))
}

func TestAttachPartners_CapAndSkips(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	free := seedUser(t, db, "free", "free@cap.test")
	seedUser(t, db, "bob", "bob@cap.test")
	seedUser(t, db, "carol", "carol@cap.test")
	task := seedTask(t, db, models.Task{OwnerID: "free"})

	now := time.Now()

	// Two emails in one call blow the free-tier cap; the whole batch fails.
	err = CheckPartnerCap(free, []string{"bob@cap.test", "carol@cap.test"}, now)
	require.Error(t, err)
	require.Equal(t, httperr.KindValidation, httperr.KindOf(err))

	// One succeeds.
	require.NoError(t, CheckPartnerCap(free, []string{"bob@cap.test"}, now))

	// Premium users have no cap.
	ends := now.Add(time.Hour)
	trial := &models.User{ID: "trial", IsOnTrial: true, TrialEndsAt: &ends}
	require.NoError(t, CheckPartnerCap(trial, []string{"bob@cap.test", "carol@cap.test"}, now))

	// Unknown emails are skipped, not errors.
	attached, err := AttachPartners(db, task.ID, []string{"bob@cap.test", "ghost@cap.test"})
	require.NoError(t, err)
	require.Len(t, attached, 1)
	require.Equal(t, []string{"bob"}, partnerIDs(t, db, task.ID))

	// Re-attaching an existing pair is a no-op, not a conflict.
	attached, err = AttachPartners(db, task.ID, []string{"bob@cap.test"})
	require.NoError(t, err)
	require.Empty(t, attached)
	require.Equal(t, []string{"bob"}, partnerIDs(t, db, task.ID))
}

func TestReplacePartners_Idempotent(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	seedUser(t, db, "owner", "owner@repl.test")
	seedUser(t, db, "bob", "bob@repl.test")
	seedUser(t, db, "carol", "carol@repl.test")
	task := seedTask(t, db, models.Task{OwnerID: "owner"})

	require.NoError(t, ReplacePartners(db, task.ID, []string{"bob@repl.test"}))
	require.Equal(t, []string{"bob"}, partnerIDs(t, db, task.ID))

	require.NoError(t, ReplacePartners(db, task.ID, []string{"bob@repl.test", "carol@repl.test"}))
	require.Equal(t, []string{"bob", "carol"}, partnerIDs(t, db, task.ID))

	// Same list again yields the same final set.
	require.NoError(t, ReplacePartners(db, task.ID, []string{"bob@repl.test", "carol@repl.test"}))
	require.Equal(t, []string{"bob", "carol"}, partnerIDs(t, db, task.ID))

	require.NoError(t, ReplacePartners(db, task.ID, nil))
	require.Empty(t, partnerIDs(t, db, task.ID))
}

func TestEnsureManagerPartnership(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Organization{ID: "org1", Name: "Org"}).Error)
	seedUser(t, db, "boss", "boss@auto.test")
	seedUser(t, db, "worker", "worker@auto.test")
	require.NoError(t, db.Create(&models.Membership{
		ID: uuid.NewString(), UserID: "boss", OrganizationID: "org1", Role: models.OrgRoleManager,
	}).Error)

	task := seedTask(t, db, models.Task{
		OwnerID:        "boss",
		AssigneeID:     strPtr("worker"),
		OrganizationID: strPtr("org1"),
	})

	require.NoError(t, EnsureManagerPartnership(db, task))

	var recs []models.AccountabilityPartner
	require.NoError(t, db.Find(&recs).Error)
	require.Len(t, recs, 1)
	require.Equal(t, "worker", recs[0].RequesterID)
	require.Equal(t, "boss", recs[0].PartnerID)
	require.Equal(t, models.PartnershipAccepted, recs[0].Status)

	// Running it again creates no duplicate.
	require.NoError(t, EnsureManagerPartnership(db, task))
	require.NoError(t, db.Find(&recs).Error)
	require.Len(t, recs, 1)
}

func TestEnsureManagerPartnership_NeverOverwrites(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Organization{ID: "org1", Name: "Org"}).Error)
	seedUser(t, db, "boss", "boss@keep.test")
	seedUser(t, db, "worker", "worker@keep.test")
	require.NoError(t, db.Create(&models.Membership{
		ID: uuid.NewString(), UserID: "boss", OrganizationID: "org1", Role: models.OrgRoleAdmin,
	}).Error)
	// Worker already asked and was rejected.
	require.NoError(t, db.Create(&models.AccountabilityPartner{
		ID: uuid.NewString(), RequesterID: "worker", PartnerID: "boss", Status: models.PartnershipRejected,
	}).Error)

	task := seedTask(t, db, models.Task{
		OwnerID:        "boss",
		AssigneeID:     strPtr("worker"),
		OrganizationID: strPtr("org1"),
	})
	require.NoError(t, EnsureManagerPartnership(db, task))

	var rec models.AccountabilityPartner
	require.NoError(t, db.First(&rec, "requester_id = ? AND partner_id = ?", "worker", "boss").Error)
	require.Equal(t, models.PartnershipRejected, rec.Status)
}

func TestEnsureManagerPartnership_SkipsNonManagers(t *testing.T) {
	db, err := testutil.NewInMemoryDB()
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Organization{ID: "org1", Name: "Org"}).Error)
	seedUser(t, db, "peer", "peer@skip.test")
	seedUser(t, db, "worker", "worker@skip.test")
	require.NoError(t, db.Create(&models.Membership{
		ID: uuid.NewString(), UserID: "peer", OrganizationID: "org1", Role: models.OrgRoleMember,
	}).Error)

	task := seedTask(t, db, models.Task{
		OwnerID:        "peer",
		AssigneeID:     strPtr("worker"),
		OrganizationID: strPtr("org1"),
	})
	require.NoError(t, EnsureManagerPartnership(db, task))

	var n int64
	require.NoError(t, db.Model(&models.AccountabilityPartner{}).Count(&n).Error)
	require.Zero(t, n)
}

func strPtr(s string) *string { return &s }
