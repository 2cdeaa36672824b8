package services

import (
	"fmt"
	"time"

	"athena_privacy_go/models"

	"gorm.io/gorm"
)

// ProcessDeletionRequest executes a right-to-be-forgotten request.
//
// The legal hold check runs strictly before any mutation: a held user's
// request is rejected with nothing touched. The purge itself is one
// transaction walking DeletionOrder, so a failure at any step rolls back
// every step and leaves the request IN_PROGRESS for retry. The caller must
// guarantee at most one concurrent processor per request id.
func ProcessDeletionRequest(db *gorm.DB, requestID string) error {
	request, err := GetDSARRequest(db, requestID)
	if err != nil {
		return err
	}
	if request.Type != models.DSARTypeDeletion {
		return NewValidationError("request %s is %s, not %s", request.ID, request.Type, models.DSARTypeDeletion)
	}
	if request.IsTerminal() {
		return NewValidationError("request %s is already %s", request.ID, request.Status)
	}

	userID := request.UserID

	hold, err := FindActiveHoldForUser(db, userID)
	if err != nil {
		return err
	}
	if hold != nil {
		note := fmt.Sprintf("Cannot delete: active legal hold (%s)", hold.ID)
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := applyTransition(tx, request, models.DSARStatusRejected, map[string]interface{}{"processing_notes": note}); err != nil {
				return err
			}
			return LogPrivacyAction(tx, PrivacyAuditEntry{
				UserID:       userID,
				Action:       models.PrivacyActionDeletionRejected,
				ResourceType: "DSARRequest",
				ResourceID:   request.ID,
				Details:      map[string]interface{}{"hold_id": hold.ID},
			})
		})
		if err != nil {
			return err
		}
		request.ProcessingNotes = note
		return &LegalHoldBlockedError{HoldID: hold.ID}
	}

	// A request already IN_PROGRESS is a retry after a rolled-back attempt
	if request.Status == models.DSARStatusPending {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := applyTransition(tx, request, models.DSARStatusInProgress, nil); err != nil {
				return err
			}
			return LogPrivacyAction(tx, PrivacyAuditEntry{
				UserID:       userID,
				Action:       models.PrivacyActionProcessingStarted,
				ResourceType: "DSARRequest",
				ResourceID:   request.ID,
			})
		})
		if err != nil {
			return err
		}
	}

	ref := PseudonymizeUserID(userID)

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, key := range DeletionOrder {
			adapter, ok := Registry[key]
			if !ok {
				return &TransactionFailure{Step: key, Err: fmt.Errorf("no adapter registered")}
			}
			if anonymizer, ok := adapter.(OwnerAnonymizer); ok {
				if err := anonymizer.AnonymizeByOwner(tx, userID, ref); err != nil {
					return &TransactionFailure{Step: key, Err: err}
				}
				continue
			}
			if err := adapter.DeleteByOwner(tx, userID); err != nil {
				return &TransactionFailure{Step: key, Err: err}
			}
		}
		return nil
	})
	if err != nil {
		if _, ok := err.(*TransactionFailure); ok {
			return err
		}
		return &TransactionFailure{Step: "commit", Err: err}
	}

	now := time.Now()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := applyTransition(tx, request, models.DSARStatusCompleted, map[string]interface{}{"completed_at": now}); err != nil {
			return err
		}
		request.CompletedAt = &now
		// The subject no longer exists, so the entry carries the one-way
		// reference instead of a user id
		return LogPrivacyAction(tx, PrivacyAuditEntry{
			Action:       models.PrivacyActionDeletionCompleted,
			ResourceType: "DSARRequest",
			ResourceID:   request.ID,
			Details:      map[string]interface{}{"deleted_user_ref": ref},
		})
	})
}
