package services

import (
	"errors"
	"fmt"
	"time"

	"athena_privacy_go/models"

	"gorm.io/gorm"
)

// FindActiveHoldForUser returns the first active legal hold whose affected
// set contains the user, or nil when the user is clear for deletion.
// Membership is checked in Go because the affected set is a JSON column.
func FindActiveHoldForUser(db *gorm.DB, userID string) (*models.LegalHold, error) {
	var holds []models.LegalHold
	if err := db.Where("is_active = ?", true).Find(&holds).Error; err != nil {
		return nil, fmt.Errorf("failed to query legal holds: %w", err)
	}

	for i := range holds {
		if holds[i].Contains(userID) {
			return &holds[i], nil
		}
	}
	return nil, nil
}

// PlaceLegalHold creates an active hold over the given users. Placed by the
// compliance team; the deletion orchestrator only ever reads holds.
func PlaceLegalHold(db *gorm.DB, adminID, reason, caseReference string, userIDs []string) (*models.LegalHold, error) {
	if reason == "" {
		return nil, NewValidationError("legal hold reason is required")
	}
	if len(userIDs) == 0 {
		return nil, NewValidationError("legal hold must name at least one user")
	}

	hold := models.LegalHold{
		Reason:        reason,
		CaseReference: caseReference,
		IsActive:      true,
		PlacedByID:    adminID,
	}
	if err := hold.SetAffectedUserIDs(userIDs); err != nil {
		return nil, fmt.Errorf("failed to encode affected users: %w", err)
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&hold).Error; err != nil {
			return fmt.Errorf("failed to create legal hold: %w", err)
		}
		return LogPrivacyAction(tx, PrivacyAuditEntry{
			AdminID:      adminID,
			Action:       models.PrivacyActionHoldPlaced,
			ResourceType: "LegalHold",
			ResourceID:   hold.ID,
			Details:      map[string]interface{}{"affected_users": len(userIDs), "case_reference": caseReference},
		})
	})
	if err != nil {
		return nil, err
	}

	return &hold, nil
}

// ReleaseLegalHold deactivates a hold, unblocking deletion for its users
func ReleaseLegalHold(db *gorm.DB, adminID, holdID string) error {
	var hold models.LegalHold
	if err := db.First(&hold, "id = ?", holdID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHoldNotFound
		}
		return fmt.Errorf("failed to load legal hold: %w", err)
	}

	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&hold).Updates(map[string]interface{}{
			"is_active":   false,
			"released_at": now,
		}).Error
		if err != nil {
			return fmt.Errorf("failed to release legal hold: %w", err)
		}
		return LogPrivacyAction(tx, PrivacyAuditEntry{
			AdminID:      adminID,
			Action:       models.PrivacyActionHoldReleased,
			ResourceType: "LegalHold",
			ResourceID:   hold.ID,
		})
	})
}

// GetLegalHolds lists all holds, newest first
func GetLegalHolds(db *gorm.DB) ([]models.LegalHold, error) {
	var holds []models.LegalHold
	if err := db.Order("created_at DESC").Find(&holds).Error; err != nil {
		return nil, fmt.Errorf("failed to list legal holds: %w", err)
	}
	return holds, nil
}
