package services

import (
	"errors"
	"fmt"
	"time"

	"athena_privacy_go/models"

	"gorm.io/gorm"
)

// ConsentUpdate is one entry of a bulk consent change
type ConsentUpdate struct {
	Type    models.ConsentType `json:"type"`
	Granted bool               `json:"granted"`
}

// RecordConsent upserts the consent record for (userID, consentType) and
// appends the matching audit entry. There is at most one record per pair;
// re-recording updates it in place while the audit trail keeps the history.
func RecordConsent(db *gorm.DB, userID string, consentType models.ConsentType, granted bool, capture CaptureContext) (*models.ConsentRecord, error) {
	if !models.ValidConsentType(consentType) {
		return nil, NewValidationError("unknown consent type %q", consentType)
	}

	now := time.Now()
	status := models.ConsentStatusDenied
	action := models.PrivacyActionConsentWithdrawn
	if granted {
		status = models.ConsentStatusGranted
		action = models.PrivacyActionConsentGranted
	}

	var record models.ConsentRecord
	err := db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("user_id = ? AND consent_type = ?", userID, consentType).First(&record).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.ConsentRecord{
				UserID:      userID,
				ConsentType: consentType,
				Status:      status,
				Version:     models.CurrentConsentVersion,
				IPAddress:   capture.IPAddress,
				UserAgent:   capture.UserAgent,
				Region:      capture.Region,
			}
			if granted {
				record.GrantedAt = &now
			} else {
				record.WithdrawnAt = &now
			}
			if err := tx.Create(&record).Error; err != nil {
				return fmt.Errorf("failed to create consent record: %w", err)
			}
		case err != nil:
			return fmt.Errorf("failed to load consent record: %w", err)
		default:
			updates := map[string]interface{}{
				"status":       status,
				"ip_address":   capture.IPAddress,
				"user_agent":   capture.UserAgent,
				"region":       capture.Region,
				"granted_at":   nil,
				"withdrawn_at": nil,
			}
			if granted {
				updates["granted_at"] = now
				record.GrantedAt = &now
				record.WithdrawnAt = nil
			} else {
				updates["withdrawn_at"] = now
				record.WithdrawnAt = &now
				record.GrantedAt = nil
			}
			if err := tx.Model(&record).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update consent record: %w", err)
			}
			record.Status = status
		}

		return LogPrivacyAction(tx, PrivacyAuditEntry{
			UserID:       userID,
			Action:       action,
			ResourceType: "ConsentRecord",
			ResourceID:   record.ID,
			Details:      map[string]interface{}{"consent_type": consentType, "status": status},
			IPAddress:    capture.IPAddress,
			UserAgent:    capture.UserAgent,
			Region:       capture.Region,
		})
	})
	if err != nil {
		return nil, err
	}

	return &record, nil
}

// BulkUpdateConsents applies RecordConsent once per entry, sequentially. Each
// entry commits independently with its own audit record; a failure partway
// through leaves prior entries committed.
func BulkUpdateConsents(db *gorm.DB, userID string, updates []ConsentUpdate, capture CaptureContext) error {
	for _, update := range updates {
		if _, err := RecordConsent(db, userID, update.Type, update.Granted, capture); err != nil {
			return fmt.Errorf("bulk consent update stopped at %s: %w", update.Type, err)
		}
	}
	return nil
}

// GetUserConsents retrieves a user's consent records, ordered by type
func GetUserConsents(db *gorm.DB, userID string) ([]models.ConsentRecord, error) {
	var records []models.ConsentRecord
	err := db.Where("user_id = ?", userID).
		Order("consent_type ASC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get user consents: %w", err)
	}
	return records, nil
}

// HasGrantedConsent checks whether a user currently grants the given type
func HasGrantedConsent(db *gorm.DB, userID string, consentType models.ConsentType) (bool, error) {
	var record models.ConsentRecord
	err := db.Where("user_id = ? AND consent_type = ?", userID, consentType).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check consent: %w", err)
	}
	return record.Status == models.ConsentStatusGranted, nil
}
