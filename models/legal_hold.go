package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LegalHold blocks deletion of the named users' data while active. The
// deletion orchestrator only ever reads holds; they are placed and released
// by the compliance team.
type LegalHold struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Reason        string `gorm:"type:text;not null" json:"reason"`
	CaseReference string `json:"case_reference,omitempty"`

	// AffectedUserIDs is a JSON-encoded array of user IDs. sqlite has no
	// native array type, so membership checks happen in Go after decoding.
	AffectedUserIDs string `gorm:"type:text;not null" json:"affected_user_ids"`

	IsActive   bool       `gorm:"not null;default:true;index:idx_legal_hold_active" json:"is_active"`
	PlacedByID string     `gorm:"type:uuid;not null" json:"placed_by_id"`
	ReleasedAt *time.Time `json:"released_at,omitempty"`
}

// SetAffectedUserIDs JSON-encodes the given user IDs into the hold
func (h *LegalHold) SetAffectedUserIDs(ids []string) error {
	encoded, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	h.AffectedUserIDs = string(encoded)
	return nil
}

// AffectedUsers decodes the stored user ID list
func (h *LegalHold) AffectedUsers() []string {
	var ids []string
	if h.AffectedUserIDs != "" {
		_ = json.Unmarshal([]byte(h.AffectedUserIDs), &ids)
	}
	return ids
}

// Contains reports whether the hold names the given user
func (h *LegalHold) Contains(userID string) bool {
	for _, id := range h.AffectedUsers() {
		if id == userID {
			return true
		}
	}
	return false
}

// BeforeCreate generates UUID
func (h *LegalHold) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (LegalHold) TableName() string {
	return "legal_holds"
}
