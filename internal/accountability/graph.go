package accountability

import (
	"errors"
	"time"

	"taskflow-api/internal/cache"
	"taskflow-api/internal/entitlement"
	"taskflow-api/internal/httperr"
	"taskflow-api/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Partner-email resolution is identity lookup, not an authorization
// decision, so short-lived positive caching is safe. Misses are never
// cached: an email unknown one second may be registered the next.
const emailCacheTTL = 30 * time.Second

var emailCache = cache.New[string, string]()

// Request creates a pending partner request from requester to partnerID.
// The ordered pair is unique regardless of status: a second request to the
// same partner is a conflict even after a rejection.
func Request(db *gorm.DB, requesterID, partnerID string) (*models.AccountabilityPartner, error) {
	var partner models.User
	if err := db.First(&partner, "id = ?", partnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.Validation("Partner not found.")
		}
		return nil, err
	}

	var n int64
	if err := db.Model(&models.AccountabilityPartner{}).
		Where("requester_id = ? AND partner_id = ?", requesterID, partnerID).
		Count(&n).Error; err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, httperr.Conflict("Accountability partner request already sent.")
	}

	rec := models.AccountabilityPartner{
		ID:          uuid.NewString(),
		RequesterID: requesterID,
		PartnerID:   partnerID,
		Status:      models.PartnershipPending,
	}
	if err := db.Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// Respond accepts or rejects a partner request. Only the addressed partner
// may respond; anyone else is rejected with Forbidden.
func Respond(db *gorm.DB, requestID, responderID string, accept bool) (*models.AccountabilityPartner, error) {
	var rec models.AccountabilityPartner
	if err := db.First(&rec, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.NotFound("Partner request not found.")
		}
		return nil, err
	}
	if rec.PartnerID != responderID {
		if accept {
			return nil, httperr.Forbidden("You are not authorized to accept this request.")
		}
		return nil, httperr.Forbidden("You are not authorized to reject this request.")
	}

	rec.Status = models.PartnershipRejected
	if accept {
		rec.Status = models.PartnershipAccepted
	}
	if err := db.Save(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListForUser returns every partner record the user appears in, as
// requester or as partner.
func ListForUser(db *gorm.DB, userID string) ([]models.AccountabilityPartner, error) {
	var recs []models.AccountabilityPartner
	err := db.Where("requester_id = ? OR partner_id = ?", userID, userID).
		Order("created_at asc").Find(&recs).Error
	return recs, err
}

// CheckPartnerCap enforces the free-tier limit on a partner email list.
// The limit is judged on the length of the input list, not on rows already
// attached.
func CheckPartnerCap(requester *models.User, emails []string, now time.Time) error {
	if !entitlement.HasPremiumAccess(requester, now) && len(emails) > 1 {
		return httperr.Validation("Free users can only add one accountability partner per task.")
	}
	return nil
}

// AttachPartners resolves each email to a user and attaches them to the
// task. Unknown emails are skipped; partial success is the contract. The
// insert is conditional on the (task, partner) pair so a concurrent
// duplicate is a no-op rather than an error.
func AttachPartners(db *gorm.DB, taskID string, emails []string) ([]models.TaskAccountability, error) {
	attached := make([]models.TaskAccountability, 0, len(emails))
	for _, email := range emails {
		partnerID, ok := resolveEmail(db, email)
		if !ok {
			continue
		}
		rec := models.TaskAccountability{
			ID:        uuid.NewString(),
			TaskID:    taskID,
			PartnerID: partnerID,
		}
		res := db.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "partner_id"}},
			DoNothing: true,
		}).Create(&rec)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected > 0 {
			attached = append(attached, rec)
		}
	}
	return attached, nil
}

// ReplacePartners swaps the task's partner set for the resolved email list
// in one transaction, so no reader observes a window with zero partners.
func ReplacePartners(db *gorm.DB, taskID string, emails []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", taskID).
			Delete(&models.TaskAccountability{}).Error; err != nil {
			return err
		}
		_, err := AttachPartners(tx, taskID, emails)
		return err
	})
}

// EnsureManagerPartnership auto-creates an accepted partner record between
// a task's assignee (requester) and its owner (partner) when the owner is a
// manager or admin in the task's organization. The insert is conditional on
// the pair, so an existing record of any status is left untouched and
// concurrent creations cannot produce duplicates.
func EnsureManagerPartnership(db *gorm.DB, task *models.Task) error {
	if task.AssigneeID == nil || *task.AssigneeID == task.OwnerID || task.OrganizationID == nil {
		return nil
	}

	var m models.Membership
	err := db.Where("user_id = ? AND organization_id = ?", task.OwnerID, *task.OrganizationID).
		First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if m.Role != models.OrgRoleManager && m.Role != models.OrgRoleAdmin {
		return nil
	}

	rec := models.AccountabilityPartner{
		ID:          uuid.NewString(),
		RequesterID: *task.AssigneeID,
		PartnerID:   task.OwnerID,
		Status:      models.PartnershipAccepted,
	}
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "requester_id"}, {Name: "partner_id"}},
		DoNothing: true,
	}).Create(&rec).Error
}

func resolveEmail(db *gorm.DB, email string) (string, bool) {
	if id, ok := emailCache.Get(email); ok {
		return id, true
	}
	var user models.User
	if err := db.First(&user, "email = ?", email).Error; err != nil {
		return "", false
	}
	emailCache.Set(email, user.ID, emailCacheTTL)
	return user.ID, true
}
