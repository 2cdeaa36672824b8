package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ConsentType represents a category of data processing a user can consent to
type ConsentType string

const (
	ConsentTypeMarketingEmail    ConsentType = "MARKETING_EMAIL"
	ConsentTypeAnalytics         ConsentType = "ANALYTICS"
	ConsentTypeDataProcessing    ConsentType = "DATA_PROCESSING"
	ConsentTypeThirdPartySharing ConsentType = "THIRD_PARTY_SHARING"
)

// ConsentStatus is the current state of a consent record
type ConsentStatus string

const (
	ConsentStatusGranted ConsentStatus = "GRANTED"
	ConsentStatusDenied  ConsentStatus = "DENIED"
)

// CurrentConsentVersion is the version stamped on newly captured consents.
// Update this when the consent wording changes.
const CurrentConsentVersion = "1.0"

// requiredConsentTypes are consents the platform cannot operate without. The
// caller-facing path must never allow these to be withdrawn; the engine only
// exposes the set.
var requiredConsentTypes = map[ConsentType]bool{
	ConsentTypeDataProcessing: true,
}

// IsRequiredConsent reports whether the type is mandatory for platform use
func IsRequiredConsent(t ConsentType) bool {
	return requiredConsentTypes[t]
}

// ValidConsentType reports whether t is a known consent category
func ValidConsentType(t ConsentType) bool {
	switch t {
	case ConsentTypeMarketingEmail, ConsentTypeAnalytics, ConsentTypeDataProcessing, ConsentTypeThirdPartySharing:
		return true
	}
	return false
}

// ConsentRecord holds the current grant/withdrawal state for one
// (user, consent type) pair. Re-recording upserts in place; the full history
// lives in the privacy audit log, not here.
type ConsentRecord struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID      string        `gorm:"type:uuid;not null;uniqueIndex:idx_consent_user_type" json:"user_id"`
	ConsentType ConsentType   `gorm:"not null;uniqueIndex:idx_consent_user_type" json:"consent_type"`
	Status      ConsentStatus `gorm:"not null" json:"status"`
	Version     string        `gorm:"not null" json:"version"`

	GrantedAt   *time.Time `json:"granted_at,omitempty"`
	WithdrawnAt *time.Time `json:"withdrawn_at,omitempty"`

	// Capture context (for legal evidence)
	IPAddress string `json:"ip_address,omitempty"`
	UserAgent string `json:"user_agent,omitempty"`
	Region    string `json:"region,omitempty"` // Jurisdiction at capture time

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

// BeforeCreate generates UUID
func (c *ConsentRecord) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (ConsentRecord) TableName() string {
	return "consent_records"
}
