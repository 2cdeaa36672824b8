package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"athena_privacy_go/models"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const (
	// ExportTTL is the download window for a published export bundle
	ExportTTL = 72 * time.Hour
	// ExportDownloadPathPrefix is the public download route prefix
	ExportDownloadPathPrefix = "/api/gdpr/download/"
	// ExportFormat identifies the bundle serialization
	ExportFormat = "JSON"
)

// internalOnlyFields are stripped from every exported record. Export output
// is user-facing; credential material and opaque tokens never leave.
var internalOnlyFields = map[string]struct{}{
	"password_hash": {},
	"password":      {},
	"token":         {},
	"export_token":  {},
	"secret":        {},
}

// ExportMetadata describes the bundle itself
type ExportMetadata struct {
	ExportedAt    time.Time `json:"exported_at"`
	RequestID     string    `json:"request_id"`
	Format        string    `json:"format"`
	GDPRCompliant bool      `json:"gdpr_compliant"`
}

// ExportObjectKey is the blob key for a request's bundle. Keyed by request id
// so a retried export overwrites the previous attempt instead of appending a
// duplicate.
func ExportObjectKey(requestID string) string {
	return "exports/" + requestID + ".json"
}

// ProcessExportRequest gathers every owned collection for the request's user,
// sanitizes it, publishes the bundle behind a fresh random token, and
// completes the request. Any enumeration or publish failure aborts before the
// terminal transition, leaving the request IN_PROGRESS for retry; no partial
// bundle is ever published.
func ProcessExportRequest(ctx context.Context, db *gorm.DB, requestID string) (*models.DSARRequest, error) {
	request, err := GetDSARRequest(db, requestID)
	if err != nil {
		return nil, err
	}
	if request.Type != models.DSARTypeExport {
		return nil, NewValidationError("request %s is %s, not %s", request.ID, request.Type, models.DSARTypeExport)
	}
	if request.IsTerminal() {
		return nil, NewValidationError("request %s is already %s", request.ID, request.Status)
	}

	if request.Status == models.DSARStatusPending {
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := applyTransition(tx, request, models.DSARStatusInProgress, nil); err != nil {
				return err
			}
			return LogPrivacyAction(tx, PrivacyAuditEntry{
				UserID:       request.UserID,
				Action:       models.PrivacyActionProcessingStarted,
				ResourceType: "DSARRequest",
				ResourceID:   request.ID,
			})
		})
		if err != nil {
			return nil, err
		}
	}

	bundle, err := BuildExportBundle(ctx, db, request.UserID)
	if err != nil {
		return nil, err
	}
	bundle["metadata"] = ExportMetadata{
		ExportedAt:    time.Now().UTC(),
		RequestID:     request.ID,
		Format:        ExportFormat,
		GDPRCompliant: true,
	}

	payload, err := json.Marshal(bundle)
	if err != nil {
		return nil, fmt.Errorf("failed to encode export bundle: %w", err)
	}

	if Blob == nil {
		return nil, &PublishFailure{Err: errors.New("blob store not initialized")}
	}
	key := ExportObjectKey(request.ID)
	if err := Blob.Put(ctx, key, bytes.NewReader(payload), "application/json", int64(len(payload))); err != nil {
		return nil, &PublishFailure{Err: err}
	}

	token, err := newExportToken()
	if err != nil {
		return nil, &PublishFailure{Err: err}
	}
	exportURL := ExportDownloadPathPrefix + token
	expiresAt := time.Now().Add(ExportTTL)
	now := time.Now()

	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"export_token":      token,
			"export_url":        exportURL,
			"export_expires_at": expiresAt,
			"completed_at":      now,
		}
		if err := applyTransition(tx, request, models.DSARStatusCompleted, updates); err != nil {
			return err
		}
		return LogPrivacyAction(tx, PrivacyAuditEntry{
			UserID:       request.UserID,
			Action:       models.PrivacyActionExportCompleted,
			ResourceType: "DSARRequest",
			ResourceID:   request.ID,
		})
	})
	if err != nil {
		return nil, err
	}

	request.ExportToken = &token
	request.ExportURL = &exportURL
	request.ExportExpiresAt = &expiresAt
	request.CompletedAt = &now
	return request, nil
}

// BuildExportBundle fans out to every export adapter concurrently and
// assembles the sanitized result under stable collection keys. Export is
// read-only, so the per-collection reads need no cross-collection snapshot.
func BuildExportBundle(ctx context.Context, db *gorm.DB, userID string) (map[string]interface{}, error) {
	var mu sync.Mutex
	results := make(map[string]interface{})

	g, gctx := errgroup.WithContext(ctx)

	for _, key := range ExportPlan {
		adapter, ok := Registry[key]
		if !ok {
			return nil, fmt.Errorf("no adapter registered for %q", key)
		}
		g.Go(func() error {
			rows, err := adapter.EnumerateByOwner(db.WithContext(gctx), userID)
			if err != nil {
				return fmt.Errorf("failed to enumerate %s: %w", adapter.Key(), err)
			}
			sanitized, err := sanitizeForExport(rows)
			if err != nil {
				return err
			}
			mu.Lock()
			results[adapter.Key()] = sanitized
			mu.Unlock()
			return nil
		})
	}

	// Profile section: account record plus extended profile
	g.Go(func() error {
		var user models.User
		if err := db.WithContext(gctx).First(&user, "id = ?", userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("failed to load user: %w", err)
		}
		var profile models.Profile
		profileErr := db.WithContext(gctx).First(&profile, "user_id = ?", userID).Error
		if profileErr != nil && !errors.Is(profileErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load profile: %w", profileErr)
		}

		section := map[string]interface{}{"account": user}
		if profileErr == nil {
			section["profile"] = profile
		}
		sanitized, err := sanitizeForExport(section)
		if err != nil {
			return err
		}
		mu.Lock()
		results["profile"] = sanitized
		mu.Unlock()
		return nil
	})

	// Social graph is exported as counts, not edges: the other side of each
	// edge is someone else's personal data
	g.Go(func() error {
		var followers, following int64
		if err := db.WithContext(gctx).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&followers).Error; err != nil {
			return fmt.Errorf("failed to count followers: %w", err)
		}
		if err := db.WithContext(gctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&following).Error; err != nil {
			return fmt.Errorf("failed to count following: %w", err)
		}
		mu.Lock()
		results["follows"] = map[string]int64{"followers": followers, "following": following}
		mu.Unlock()
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// sanitizeForExport round-trips a value through JSON and strips internal-only
// fields from every nested object
func sanitizeForExport(v interface{}) (interface{}, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode record for export: %w", err)
	}
	var decoded interface{}
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode record for export: %w", err)
	}
	return stripInternalFields(decoded), nil
}

func stripInternalFields(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		for key, nested := range value {
			if _, internal := internalOnlyFields[key]; internal {
				delete(value, key)
				continue
			}
			value[key] = stripInternalFields(nested)
		}
		return value
	case []interface{}:
		for i, nested := range value {
			value[i] = stripInternalFields(nested)
		}
		return value
	default:
		return v
	}
}

// newExportToken generates the opaque download token
func newExportToken() (string, error) {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate export token: %w", err)
	}
	return hex.EncodeToString(raw), nil
}
