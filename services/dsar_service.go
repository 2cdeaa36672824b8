package services

import (
	"errors"
	"fmt"
	"time"

	"athena_privacy_go/models"

	"gorm.io/gorm"
)

// CreateDSARRequest registers a new data subject rights request. The
// regulatory due date is fixed here, at creation, and never recomputed.
func CreateDSARRequest(db *gorm.DB, userID string, dsarType models.DSARType, details string, capture CaptureContext) (*models.DSARRequest, error) {
	if !models.ValidDSARType(dsarType) {
		return nil, NewValidationError("unknown request type %q", dsarType)
	}

	var user models.User
	if err := db.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	now := time.Now()
	request := models.DSARRequest{
		UserID:         userID,
		Type:           dsarType,
		Status:         models.DSARStatusPending,
		RequestDetails: details,
		DueDate:        now.AddDate(0, 0, models.DSARDeadlineDays),
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&request).Error; err != nil {
			return fmt.Errorf("failed to create dsar request: %w", err)
		}
		return LogPrivacyAction(tx, PrivacyAuditEntry{
			UserID:       userID,
			Action:       models.PrivacyActionRequestCreated,
			ResourceType: "DSARRequest",
			ResourceID:   request.ID,
			Details:      map[string]interface{}{"type": dsarType},
			IPAddress:    capture.IPAddress,
			UserAgent:    capture.UserAgent,
			Region:       capture.Region,
		})
	})
	if err != nil {
		return nil, err
	}

	return &request, nil
}

// GetDSARRequest retrieves a single request by id
func GetDSARRequest(db *gorm.DB, requestID string) (*models.DSARRequest, error) {
	var request models.DSARRequest
	if err := db.First(&request, "id = ?", requestID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to load dsar request: %w", err)
	}
	return &request, nil
}

// GetUserDSARRequests retrieves all requests for a user, newest first
func GetUserDSARRequests(db *gorm.DB, userID string) ([]models.DSARRequest, error) {
	var requests []models.DSARRequest
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list dsar requests: %w", err)
	}
	return requests, nil
}

// GetRequestByExportToken resolves a download token to its request
func GetRequestByExportToken(db *gorm.DB, token string) (*models.DSARRequest, error) {
	var request models.DSARRequest
	if err := db.First(&request, "export_token = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to resolve export token: %w", err)
	}
	return &request, nil
}

// canTransition encodes the monotonic request lifecycle. Terminal states
// never transition again.
func canTransition(from, to models.DSARStatus) bool {
	switch from {
	case models.DSARStatusPending:
		return to == models.DSARStatusInProgress || to == models.DSARStatusRejected
	case models.DSARStatusInProgress:
		return to == models.DSARStatusCompleted || to == models.DSARStatusRejected
	default:
		return false
	}
}

// applyTransition moves a request to a new status, applying any extra column
// updates atomically with the status change. Only the orchestrators call
// this; the tracker itself never auto-progresses a request. Callers write the
// matching audit entry in the same transaction.
func applyTransition(tx *gorm.DB, request *models.DSARRequest, to models.DSARStatus, updates map[string]interface{}) error {
	if !canTransition(request.Status, to) {
		return NewValidationError("request %s cannot transition from %s to %s", request.ID, request.Status, to)
	}

	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = to

	result := tx.Model(&models.DSARRequest{}).Where("id = ?", request.ID).Updates(updates)
	if result.Error != nil {
		return fmt.Errorf("failed to transition request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrRequestNotFound
	}

	request.Status = to
	return nil
}
