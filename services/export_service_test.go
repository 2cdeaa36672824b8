package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"athena_privacy_go/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// brokenBlobStore fails every publish to simulate an unreachable object store
type brokenBlobStore struct{}

func (brokenBlobStore) Put(ctx context.Context, key string, reader io.Reader, contentType string, size int64) error {
	return errors.New("object store unreachable")
}

func (brokenBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	return nil, "", errors.New("object store unreachable")
}

func (brokenBlobStore) Remove(ctx context.Context, key string) error {
	return errors.New("object store unreachable")
}

func (brokenBlobStore) IsConfigured() bool { return false }

func TestProcessExportRequestPublishesBundle(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "export@example.com")
	seedOwnedData(t, testDB, user.ID)

	request, err := CreateDSARRequest(testDB, user.ID, models.DSARTypeExport, "", CaptureContext{})
	require.NoError(t, err)

	processed, err := ProcessExportRequest(context.Background(), testDB, request.ID)
	require.NoError(t, err)

	assert.Equal(t, models.DSARStatusCompleted, processed.Status)
	require.NotNil(t, processed.CompletedAt)
	require.NotNil(t, processed.ExportToken)
	require.NotNil(t, processed.ExportURL)
	assert.True(t, strings.HasPrefix(*processed.ExportURL, ExportDownloadPathPrefix))
	require.NotNil(t, processed.ExportExpiresAt)
	assert.WithinDuration(t, time.Now().Add(ExportTTL), *processed.ExportExpiresAt, 5*time.Second)

	// The published bundle is reachable under the stable per-request key
	reader, contentType, err := Blob.Open(context.Background(), ExportObjectKey(request.ID))
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, "application/json", contentType)

	var bundle map[string]interface{}
	require.NoError(t, json.NewDecoder(reader).Decode(&bundle))

	metadata, ok := bundle["metadata"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, request.ID, metadata["request_id"])
	assert.Equal(t, ExportFormat, metadata["format"])

	var completions []models.PrivacyAuditLog
	require.NoError(t, testDB.Where("action = ? AND resource_id = ?", models.PrivacyActionExportCompleted, request.ID).Find(&completions).Error)
	assert.Len(t, completions, 1)
}

func TestExportBundleStripsCredentialMaterial(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "sanitize@example.com")
	seedOwnedData(t, testDB, user.ID)

	bundle, err := BuildExportBundle(context.Background(), testDB, user.ID)
	require.NoError(t, err)

	payload, err := json.Marshal(bundle)
	require.NoError(t, err)
	text := string(payload)

	assert.NotContains(t, text, "password_hash")
	assert.NotContains(t, text, user.PasswordHash)
	assert.NotContains(t, text, "export_token")

	// The account section still carries the subject's actual data
	profile, ok := bundle["profile"].(map[string]interface{})
	require.True(t, ok)
	account, ok := profile["account"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, user.Email, account["email"])
}

func TestExportBundleCoversEveryPlannedCollection(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "coverage@example.com")
	seedOwnedData(t, testDB, user.ID)

	bundle, err := BuildExportBundle(context.Background(), testDB, user.ID)
	require.NoError(t, err)

	for _, key := range ExportPlan {
		assert.Contains(t, bundle, key)
	}
	assert.Contains(t, bundle, "profile")

	// Social graph ships as counts only; the edges name other people
	follows, ok := bundle["follows"].(map[string]int64)
	require.True(t, ok)
	assert.EqualValues(t, 1, follows["followers"])
	assert.EqualValues(t, 1, follows["following"])
}

func TestExportBundleFailsForUnknownUser(t *testing.T) {
	testDB := setupTestDB(t)

	_, err := BuildExportBundle(context.Background(), testDB, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProcessExportRequestLeavesRetryableStateOnPublishFailure(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "publish-fail@example.com")
	seedOwnedData(t, testDB, user.ID)

	request, err := CreateDSARRequest(testDB, user.ID, models.DSARTypeExport, "", CaptureContext{})
	require.NoError(t, err)

	working := Blob
	Blob = brokenBlobStore{}
	defer func() { Blob = working }()

	_, err = ProcessExportRequest(context.Background(), testDB, request.ID)
	var publish *PublishFailure
	require.ErrorAs(t, err, &publish)

	var stored models.DSARRequest
	require.NoError(t, testDB.First(&stored, "id = ?", request.ID).Error)
	assert.Equal(t, models.DSARStatusInProgress, stored.Status)
	assert.Nil(t, stored.ExportToken)
	assert.Nil(t, stored.ExportURL)
	assert.Nil(t, stored.CompletedAt)

	// The same request id retries cleanly once the store is back
	Blob = working
	processed, err := ProcessExportRequest(context.Background(), testDB, request.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DSARStatusCompleted, processed.Status)
	require.NotNil(t, processed.ExportToken)
}

func TestProcessExportRequestRejectsWrongTypeAndTerminal(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "export-guard@example.com")

	deletion, err := CreateDSARRequest(testDB, user.ID, models.DSARTypeDeletion, "", CaptureContext{})
	require.NoError(t, err)

	_, err = ProcessExportRequest(context.Background(), testDB, deletion.ID)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)

	export, err := CreateDSARRequest(testDB, user.ID, models.DSARTypeExport, "", CaptureContext{})
	require.NoError(t, err)
	_, err = ProcessExportRequest(context.Background(), testDB, export.ID)
	require.NoError(t, err)

	_, err = ProcessExportRequest(context.Background(), testDB, export.ID)
	require.ErrorAs(t, err, &validation)
}

func TestExportTokenResolution(t *testing.T) {
	testDB := setupTestDB(t)
	user := seedUser(t, testDB, "token@example.com")

	request, err := CreateDSARRequest(testDB, user.ID, models.DSARTypeExport, "", CaptureContext{})
	require.NoError(t, err)

	processed, err := ProcessExportRequest(context.Background(), testDB, request.ID)
	require.NoError(t, err)
	require.NotNil(t, processed.ExportToken)

	resolved, err := GetRequestByExportToken(testDB, *processed.ExportToken)
	require.NoError(t, err)
	assert.Equal(t, request.ID, resolved.ID)

	_, err = GetRequestByExportToken(testDB, "no-such-token")
	assert.ErrorIs(t, err, ErrRequestNotFound)
}
