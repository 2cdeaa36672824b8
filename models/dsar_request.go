package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DSARType represents the data subject right being exercised
type DSARType string

const (
	DSARTypeExport        DSARType = "EXPORT"        // Right of access / portability
	DSARTypeDeletion      DSARType = "DELETION"      // Right to be forgotten
	DSARTypeRectification DSARType = "RECTIFICATION" // Right to correction
	DSARTypeRestriction   DSARType = "RESTRICTION"   // Right to restrict processing
)

// DSARStatus represents the lifecycle status of a request.
// Transitions are monotonic: PENDING -> IN_PROGRESS -> COMPLETED or REJECTED.
type DSARStatus string

const (
	DSARStatusPending    DSARStatus = "PENDING"
	DSARStatusInProgress DSARStatus = "IN_PROGRESS"
	DSARStatusCompleted  DSARStatus = "COMPLETED"
	DSARStatusRejected   DSARStatus = "REJECTED"
)

// DSARDeadlineDays is the regulatory response deadline counted from creation.
const DSARDeadlineDays = 30

// DSARRequest is a single data subject rights request. Requests are themselves
// compliance records and are never deleted, not even when their subject is.
type DSARRequest struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `gorm:"index:idx_dsar_created_at" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID string     `gorm:"type:uuid;not null;index:idx_dsar_user" json:"user_id"`
	Type   DSARType   `gorm:"not null;index:idx_dsar_type" json:"type"`
	Status DSARStatus `gorm:"not null;default:PENDING;index:idx_dsar_status" json:"status"`

	RequestDetails string `gorm:"type:text" json:"request_details,omitempty"`

	// DueDate is fixed at creation time and never recomputed
	DueDate time.Time `gorm:"not null" json:"due_date"`

	// Export publication (EXPORT requests only)
	ExportToken     *string    `gorm:"index:idx_dsar_export_token" json:"-"`
	ExportURL       *string    `json:"export_url,omitempty"`
	ExportExpiresAt *time.Time `json:"export_expires_at,omitempty"`

	// Set when a request is rejected (e.g. blocked by a legal hold)
	ProcessingNotes string     `gorm:"type:text" json:"processing_notes,omitempty"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// ValidDSARType reports whether t is one of the four enumerated request kinds
func ValidDSARType(t DSARType) bool {
	switch t {
	case DSARTypeExport, DSARTypeDeletion, DSARTypeRectification, DSARTypeRestriction:
		return true
	}
	return false
}

// IsTerminal reports whether the request reached a terminal status
func (r *DSARRequest) IsTerminal() bool {
	return r.Status == DSARStatusCompleted || r.Status == DSARStatusRejected
}

// BeforeCreate generates UUID
func (r *DSARRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (DSARRequest) TableName() string {
	return "dsar_requests"
}
