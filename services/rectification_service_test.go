package services

import (
	"testing"

	"athena_privacy_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRectificationAppliesOnlyAllowListedFields(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "rectify@example.com")

	request, err := CreateDSARRequest(testDB, user.ID, models.DSARTypeRectification, "", CaptureContext{})
	require.NoError(t, err)

	err = ProcessRectificationRequest(testDB, request.ID, map[string]interface{}{
		"bio":           "Updated biography",
		"role":          "admin",
		"is_active":     false,
		"password_hash": "hijacked",
	})
	require.NoError(t, err)

	var updated models.User
	require.NoError(t, testDB.First(&updated, "id = ?", user.ID).Error)
	assert.Equal(t, "Updated biography", updated.Bio)
	assert.Equal(t, "member", updated.Role, "privilege escalation through rectification must be impossible")
	assert.True(t, updated.IsActive)
	assert.Equal(t, user.PasswordHash, updated.PasswordHash)

	var stored models.DSARRequest
	require.NoError(t, testDB.First(&stored, "id = ?", request.ID).Error)
	assert.Equal(t, models.DSARStatusCompleted, stored.Status)
	require.NotNil(t, stored.CompletedAt)
}

func TestRectificationAuditsBeforeAndAfterValues(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "rectify-audit@example.com")

	request, err := CreateDSARRequest(testDB, user.ID, models.DSARTypeRectification, "", CaptureContext{})
	require.NoError(t, err)

	err = ProcessRectificationRequest(testDB, request.ID, map[string]interface{}{
		"city": "Cambridge",
		"role": "admin",
	})
	require.NoError(t, err)

	var entries []models.PrivacyAuditLog
	require.NoError(t, testDB.Where("action = ?", models.PrivacyActionRectificationCompleted).Find(&entries).Error)
	require.Len(t, entries, 1)

	assert.Contains(t, entries[0].PreviousValue, "London")
	assert.Contains(t, entries[0].NewValue, "Cambridge")
	// Dropped fields never reach the audit trail either
	assert.NotContains(t, entries[0].NewValue, "role")
}

func TestRectificationRejectsPayloadWithoutAllowedFields(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "rectify-empty@example.com")

	request, err := CreateDSARRequest(testDB, user.ID, models.DSARTypeRectification, "", CaptureContext{})
	require.NoError(t, err)

	err = ProcessRectificationRequest(testDB, request.ID, map[string]interface{}{"role": "admin"})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	// The request is untouched and can be processed with a valid payload later
	var stored models.DSARRequest
	require.NoError(t, testDB.First(&stored, "id = ?", request.ID).Error)
	assert.Equal(t, models.DSARStatusPending, stored.Status)
}

func TestRectificationRejectsWrongTypeAndMissingRequest(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "rectify-guard@example.com")

	export, err := CreateDSARRequest(testDB, user.ID, models.DSARTypeExport, "", CaptureContext{})
	require.NoError(t, err)

	err = ProcessRectificationRequest(testDB, export.ID, map[string]interface{}{"bio": "x"})
	var validation *ValidationError
	assert.ErrorAs(t, err, &validation)

	err = ProcessRectificationRequest(testDB, "00000000-0000-0000-0000-000000000000", map[string]interface{}{"bio": "x"})
	assert.ErrorIs(t, err, ErrRequestNotFound)
}
