package services

import (
	"encoding/json"
	"fmt"

	"athena_privacy_go/models"

	"gorm.io/gorm"
)

// CaptureContext carries request metadata recorded for legal evidence
type CaptureContext struct {
	IPAddress string
	UserAgent string
	Region    string
}

// PrivacyAuditEntry carries the fields of an audit append. Details,
// PreviousValue and NewValue are JSON encoded before persistence.
type PrivacyAuditEntry struct {
	UserID        string
	AdminID       string
	Action        models.PrivacyAction
	ResourceType  string
	ResourceID    string
	Details       interface{}
	PreviousValue interface{}
	NewValue      interface{}
	IPAddress     string
	UserAgent     string
	Region        string
}

// LogPrivacyAction appends one entry to the privacy audit trail. The write is
// synchronous and its error must propagate: a privacy action that cannot be
// logged is treated as a failed action, so callers run this inside the same
// transaction as the action itself.
func LogPrivacyAction(db *gorm.DB, entry PrivacyAuditEntry) error {
	record := models.PrivacyAuditLog{
		UserID:        ptrIfNotEmpty(entry.UserID),
		AdminID:       ptrIfNotEmpty(entry.AdminID),
		Action:        entry.Action,
		ResourceType:  entry.ResourceType,
		ResourceID:    entry.ResourceID,
		Details:       encodeJSON(entry.Details),
		PreviousValue: encodeJSON(entry.PreviousValue),
		NewValue:      encodeJSON(entry.NewValue),
		IPAddress:     entry.IPAddress,
		UserAgent:     entry.UserAgent,
		Region:        entry.Region,
	}

	if err := db.Create(&record).Error; err != nil {
		return fmt.Errorf("failed to write privacy audit entry: %w", err)
	}
	return nil
}

// GetUserPrivacyAuditLogs retrieves a user's audit history, newest first
func GetUserPrivacyAuditLogs(db *gorm.DB, userID string) ([]models.PrivacyAuditLog, error) {
	var logs []models.PrivacyAuditLog
	err := db.Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&logs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get privacy audit logs: %w", err)
	}
	return logs, nil
}

// ptrIfNotEmpty returns a pointer to the string if not empty, nil otherwise
func ptrIfNotEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// encodeJSON marshals v into a JSON string, empty when v is nil
func encodeJSON(v interface{}) string {
	if v == nil {
		return ""
	}
	bytes, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(bytes)
}
