package services

import (
	"testing"

	"athena_privacy_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogPrivacyActionPersistsEncodedPayloads(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "audit-write@example.com")

	err := LogPrivacyAction(testDB, PrivacyAuditEntry{
		UserID:       user.ID,
		Action:       models.PrivacyActionRequestCreated,
		ResourceType: "DSARRequest",
		ResourceID:   "req-1",
		Details:      map[string]interface{}{"type": "EXPORT"},
		IPAddress:    "192.0.2.10",
		Region:       "EU",
	})
	require.NoError(t, err)

	logs, err := GetUserPrivacyAuditLogs(testDB, user.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)

	assert.JSONEq(t, `{"type":"EXPORT"}`, logs[0].Details)
	assert.Empty(t, logs[0].PreviousValue)
	assert.Nil(t, logs[0].AdminID)
	assert.Equal(t, "EU", logs[0].Region)
}

func TestAuditEntriesAreImmutable(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "audit-immutable@example.com")

	require.NoError(t, LogPrivacyAction(testDB, PrivacyAuditEntry{
		UserID:       user.ID,
		Action:       models.PrivacyActionConsentGranted,
		ResourceType: "ConsentRecord",
	}))

	var entry models.PrivacyAuditLog
	require.NoError(t, testDB.First(&entry, "user_id = ?", user.ID).Error)

	err := testDB.Model(&entry).Update("region", "tampered").Error
	assert.ErrorIs(t, err, models.ErrAuditLogImmutable)

	err = testDB.Delete(&entry).Error
	assert.ErrorIs(t, err, models.ErrAuditLogImmutable)

	var stored models.PrivacyAuditLog
	require.NoError(t, testDB.First(&stored, "id = ?", entry.ID).Error)
	assert.NotEqual(t, "tampered", stored.Region)
}

func TestFailedAuditWriteFailsTheEnclosingOperation(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "audit-required@example.com")

	// Break the audit trail; every privacy action must now fail outright
	require.NoError(t, testDB.Migrator().DropTable(&models.PrivacyAuditLog{}))

	_, err := RecordConsent(testDB, user.ID, models.ConsentTypeAnalytics, true, CaptureContext{})
	require.Error(t, err)

	var consents int64
	require.NoError(t, testDB.Model(&models.ConsentRecord{}).Where("user_id = ?", user.ID).Count(&consents).Error)
	assert.Zero(t, consents, "an unlogged consent change must not commit")

	_, err = CreateDSARRequest(testDB, user.ID, models.DSARTypeExport, "", CaptureContext{})
	require.Error(t, err)

	var requests int64
	require.NoError(t, testDB.Model(&models.DSARRequest{}).Where("user_id = ?", user.ID).Count(&requests).Error)
	assert.Zero(t, requests, "an unlogged request creation must not commit")
}

func TestAnonymizationIsTheOnlySanctionedMutation(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "audit-anon@example.com")

	require.NoError(t, LogPrivacyAction(testDB, PrivacyAuditEntry{
		UserID:       user.ID,
		Action:       models.PrivacyActionConsentGranted,
		ResourceType: "ConsentRecord",
	}))

	ref := PseudonymizeUserID(user.ID)
	anonymizer := Registry["audit_logs"].(OwnerAnonymizer)
	require.NoError(t, anonymizer.AnonymizeByOwner(testDB, user.ID, ref))

	var entry models.PrivacyAuditLog
	require.NoError(t, testDB.First(&entry, "anonymized_ref = ?", ref).Error)
	assert.Nil(t, entry.UserID)
	assert.JSONEq(t, `{"anonymized":true}`, entry.Details)
	// The action itself survives anonymization
	assert.Equal(t, models.PrivacyActionConsentGranted, entry.Action)
}
