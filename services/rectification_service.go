package services

import (
	"errors"
	"fmt"
	"time"

	"athena_privacy_go/models"

	"gorm.io/gorm"
)

// RectifiableFields is the allow-list of directly correctable account fields.
// Anything outside it is silently dropped: a rectification request must never
// become a side door for mutating non-profile state.
var RectifiableFields = []string{
	"first_name",
	"last_name",
	"email",
	"city",
	"state",
	"country",
	"bio",
	"headline",
}

var rectifiableSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(RectifiableFields))
	for _, field := range RectifiableFields {
		set[field] = struct{}{}
	}
	return set
}()

// ProcessRectificationRequest applies an allow-listed field correction map to
// the subject's account record, capturing before/after values in the audit
// trail.
func ProcessRectificationRequest(db *gorm.DB, requestID string, corrections map[string]interface{}) error {
	request, err := GetDSARRequest(db, requestID)
	if err != nil {
		return err
	}
	if request.Type != models.DSARTypeRectification {
		return NewValidationError("request %s is %s, not %s", request.ID, request.Type, models.DSARTypeRectification)
	}
	if request.IsTerminal() {
		return NewValidationError("request %s is already %s", request.ID, request.Status)
	}

	filtered := make(map[string]interface{})
	for field, value := range corrections {
		if _, allowed := rectifiableSet[field]; allowed {
			filtered[field] = value
		}
	}
	if len(filtered) == 0 {
		return NewValidationError("correction payload contains no allow-listed fields")
	}

	var user models.User
	if err := db.First(&user, "id = ?", request.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to load user: %w", err)
	}

	if request.Status == models.DSARStatusPending {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := applyTransition(tx, request, models.DSARStatusInProgress, nil); err != nil {
				return err
			}
			return LogPrivacyAction(tx, PrivacyAuditEntry{
				UserID:       request.UserID,
				Action:       models.PrivacyActionProcessingStarted,
				ResourceType: "DSARRequest",
				ResourceID:   request.ID,
			})
		})
		if err != nil {
			return err
		}
	}

	previous := rectifiableSnapshot(&user)
	now := time.Now()

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(filtered).Error; err != nil {
			return fmt.Errorf("failed to apply corrections: %w", err)
		}
		if err := applyTransition(tx, request, models.DSARStatusCompleted, map[string]interface{}{"completed_at": now}); err != nil {
			return err
		}
		request.CompletedAt = &now
		return LogPrivacyAction(tx, PrivacyAuditEntry{
			UserID:        request.UserID,
			Action:        models.PrivacyActionRectificationCompleted,
			ResourceType:  "User",
			ResourceID:    request.UserID,
			PreviousValue: previous,
			NewValue:      filtered,
		})
	})
}

// rectifiableSnapshot captures the current values of the allow-listed fields
func rectifiableSnapshot(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"email":      user.Email,
		"city":       user.City,
		"state":      user.State,
		"country":    user.Country,
		"bio":        user.Bio,
		"headline":   user.Headline,
	}
}
