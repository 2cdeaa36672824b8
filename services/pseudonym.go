package services

import (
	"crypto/sha256"
	"encoding/hex"
)

// pseudonymSalt is mixed into every pseudonymized reference. Set once at
// startup from config; the same salt must be kept for the lifetime of the
// audit trail or anonymized entries can no longer be correlated.
var pseudonymSalt string

// SetPseudonymSalt configures the salt used for pseudonymized references
func SetPseudonymSalt(salt string) {
	pseudonymSalt = salt
}

// PseudonymizeUserID derives a deterministic one-way reference for a user id.
// This is pseudonymization, not erasure: the same id always hashes to the
// same value, which lets anonymized audit entries stay correlated without
// storing the raw id.
func PseudonymizeUserID(userID string) string {
	sum := sha256.Sum256([]byte(pseudonymSalt + ":" + userID))
	return hex.EncodeToString(sum[:])
}
