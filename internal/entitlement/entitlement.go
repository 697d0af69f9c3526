package entitlement

import (
	"time"

	"taskflow-api/internal/httperr"
	"taskflow-api/internal/models"

	"gorm.io/gorm"
)

// HasPremiumAccess reports whether the user currently holds premium-grade
// privileges: an explicit premium flag, or a trial still running at now.
func HasPremiumAccess(user *models.User, now time.Time) bool {
	if user.IsPremium {
		return true
	}
	return user.IsOnTrial && user.TrialEndsAt != nil && user.TrialEndsAt.After(now)
}

// StartTrial begins a time-boxed trial on the user. It fails when the user
// is already premium or has a trial still running.
func StartTrial(user *models.User, now time.Time, days int) error {
	if user.IsPremium || (user.IsOnTrial && user.TrialEndsAt != nil && user.TrialEndsAt.After(now)) {
		return httperr.Validation("You are not eligible for a trial.")
	}
	ends := now.Add(time.Duration(days) * 24 * time.Hour)
	user.IsOnTrial = true
	user.TrialStartDate = &now
	user.TrialEndsAt = &ends
	return nil
}

// ExpireTrials turns off trial and premium flags for every user and
// organization whose trial has run out. It is idempotent and safe to run
// repeatedly; it only ever flips flags off for already-expired trials.
func ExpireTrials(db *gorm.DB, now time.Time) (users int64, orgs int64, err error) {
	res := db.Model(&models.User{}).
		Where("is_on_trial = ? AND trial_ends_at < ?", true, now).
		Updates(map[string]any{"is_on_trial": false, "is_premium": false})
	if res.Error != nil {
		return 0, 0, res.Error
	}
	users = res.RowsAffected

	res = db.Model(&models.Organization{}).
		Where("is_on_trial = ? AND trial_ends_at < ?", true, now).
		Updates(map[string]any{"is_on_trial": false, "is_premium": false})
	if res.Error != nil {
		return users, 0, res.Error
	}
	orgs = res.RowsAffected
	return users, orgs, nil
}
