package models

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrivacyAction identifies a privacy-relevant operation in the audit trail
type PrivacyAction string

const (
	PrivacyActionRequestCreated         PrivacyAction = "DSAR_REQUEST_CREATED"
	PrivacyActionProcessingStarted      PrivacyAction = "DSAR_PROCESSING_STARTED"
	PrivacyActionExportCompleted        PrivacyAction = "DSAR_EXPORT_COMPLETED"
	PrivacyActionDeletionCompleted      PrivacyAction = "DSAR_DELETION_COMPLETED"
	PrivacyActionDeletionRejected       PrivacyAction = "DSAR_DELETION_REJECTED"
	PrivacyActionRectificationCompleted PrivacyAction = "DSAR_RECTIFICATION_COMPLETED"
	PrivacyActionConsentGranted         PrivacyAction = "CONSENT_GRANTED"
	PrivacyActionConsentWithdrawn       PrivacyAction = "CONSENT_WITHDRAWN"
	PrivacyActionHoldPlaced             PrivacyAction = "LEGAL_HOLD_PLACED"
	PrivacyActionHoldReleased           PrivacyAction = "LEGAL_HOLD_RELEASED"
)

// ErrAuditLogImmutable is returned by the GORM hooks guarding the audit trail
var ErrAuditLogImmutable = errors.New("privacy audit log entries are immutable")

// PrivacyAuditLog is an append-only record of a privacy-relevant action.
// Entries are never updated or deleted; when their subject exercises the right
// to be forgotten, the actor reference is replaced with a one-way hash and the
// entry itself survives.
type PrivacyAuditLog struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_privacy_audit_created_at" json:"created_at"`

	// Actor identification. UserID is nulled by anonymization; the one-way
	// hash of the original id then lives in AnonymizedRef.
	UserID        *string `gorm:"type:uuid;index:idx_privacy_audit_user" json:"user_id,omitempty"`
	AdminID       *string `gorm:"type:uuid" json:"admin_id,omitempty"`
	AnonymizedRef string  `gorm:"index:idx_privacy_audit_anon" json:"anonymized_ref,omitempty"`

	Action       PrivacyAction `gorm:"not null;index:idx_privacy_audit_action" json:"action"`
	ResourceType string        `gorm:"not null;index:idx_privacy_audit_resource" json:"resource_type"`
	ResourceID   string        `gorm:"index:idx_privacy_audit_resource" json:"resource_id,omitempty"`

	// JSON encoded payloads
	Details       string `gorm:"type:text" json:"details,omitempty"`
	PreviousValue string `gorm:"type:text" json:"previous_value,omitempty"`
	NewValue      string `gorm:"type:text" json:"new_value,omitempty"`

	// Capture context
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Region    string `json:"region,omitempty"`
}

// BeforeCreate generates UUID
func (p *PrivacyAuditLog) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate prevents modification of audit entries. Anonymization is the
// one sanctioned mutation and bypasses hooks via UpdateColumns.
func (p *PrivacyAuditLog) BeforeUpdate(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

// BeforeDelete prevents deletion of audit entries
func (p *PrivacyAuditLog) BeforeDelete(tx *gorm.DB) error {
	return ErrAuditLogImmutable
}

// TableName specifies the table name
func (PrivacyAuditLog) TableName() string {
	return "privacy_audit_logs"
}

// AllModels lists every persisted model for migration wiring.
func AllModels() []interface{} {
	return []interface{}{
		&User{},
		&Profile{},
		&Session{},
		&Post{},
		&Comment{},
		&Like{},
		&Message{},
		&Follow{},
		&GroupMember{},
		&GroupPost{},
		&EventRegistration{},
		&Job{},
		&JobApplication{},
		&SavedJob{},
		&Subscription{},
		&CourseEnrollment{},
		&MentorSession{},
		&DSARRequest{},
		&ConsentRecord{},
		&LegalHold{},
		&PrivacyAuditLog{},
	}
}
