package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"athena_privacy_go/config"
	"athena_privacy_go/db"
	"athena_privacy_go/models"
	"athena_privacy_go/services"

	"github.com/labstack/echo/v4"
	"github.com/microcosm-cc/bluemonday"
)

// detailsPolicy strips all markup from free-form request details before they
// are persisted
var detailsPolicy = bluemonday.StrictPolicy()

type createDSARRequestInput struct {
	Type    models.DSARType `json:"type"`
	Details string          `json:"details"`
}

// CreateDSARRequestHandler registers a new rights request for the acting user
func CreateDSARRequestHandler(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var input createDSARRequestInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	request, err := services.CreateDSARRequest(
		db.DB,
		user.ID,
		input.Type,
		detailsPolicy.Sanitize(input.Details),
		captureFromContext(c),
	)
	if err != nil {
		return httpError(err)
	}

	return c.JSON(http.StatusCreated, request)
}

// GetDSARRequestHandler returns a single request, including its due date so
// callers can build SLA alerting
func GetDSARRequestHandler(c echo.Context) error {
	user := c.Get("user").(*models.User)

	request, err := services.GetDSARRequest(db.DB, c.Param("id"))
	if err != nil {
		return httpError(err)
	}
	if request.UserID != user.ID && !user.IsAdmin() {
		return echo.NewHTTPError(http.StatusNotFound, "Request not found")
	}

	return c.JSON(http.StatusOK, request)
}

// ListDSARRequestsHandler returns the acting user's requests, newest first
func ListDSARRequestsHandler(c echo.Context) error {
	user := c.Get("user").(*models.User)

	requests, err := services.GetUserDSARRequests(db.DB, user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, requests)
}

type processRequestInput struct {
	Corrections map[string]interface{} `json:"corrections,omitempty"`
}

// ProcessDSARRequestHandler triggers processing of a pending request. Admin
// only: the caller guarantees at most one concurrent processor per request.
func ProcessDSARRequestHandler(c echo.Context) error {
	requestID := c.Param("id")

	request, err := services.GetDSARRequest(db.DB, requestID)
	if err != nil {
		return httpError(err)
	}

	// Capture subject contact details up front; a deletion removes them
	var subject models.User
	subjectKnown := db.DB.First(&subject, "id = ?", request.UserID).Error == nil

	var input processRequestInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	cfg, _ := c.Get("config").(*config.Config)

	switch request.Type {
	case models.DSARTypeExport:
		processed, err := services.ProcessExportRequest(c.Request().Context(), db.DB, requestID)
		if err != nil {
			return httpError(err)
		}
		if cfg != nil && subjectKnown && processed.ExportURL != nil && processed.ExportExpiresAt != nil {
			email := services.BuildExportReadyEmail(subject.Email, subject.FirstName, *processed.ExportURL, *processed.ExportExpiresAt)
			if err := services.SendEmail(cfg, email); err != nil {
				log.Printf("[WARNING] Failed to send export-ready email for request %s: %v", requestID, err)
			}
		}
		return c.JSON(http.StatusOK, processed)

	case models.DSARTypeDeletion:
		if err := services.ProcessDeletionRequest(db.DB, requestID); err != nil {
			return httpError(err)
		}
		if cfg != nil && subjectKnown {
			email := services.BuildDeletionConfirmationEmail(subject.Email, requestID)
			if err := services.SendEmail(cfg, email); err != nil {
				log.Printf("[WARNING] Failed to send deletion confirmation email for request %s: %v", requestID, err)
			}
		}
		request, err := services.GetDSARRequest(db.DB, requestID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, request)

	case models.DSARTypeRectification:
		if err := services.ProcessRectificationRequest(db.DB, requestID, input.Corrections); err != nil {
			return httpError(err)
		}
		request, err := services.GetDSARRequest(db.DB, requestID)
		if err != nil {
			return httpError(err)
		}
		return c.JSON(http.StatusOK, request)

	case models.DSARTypeRestriction:
		// Restriction requests need a compliance officer's judgement; there
		// is no automatic orchestrator for them
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Restriction requests require manual review")

	default:
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Unknown request type")
	}
}

// DownloadExportHandler streams a published export bundle. The token is
// opaque and single-purpose; the link dies at its expiry timestamp.
func DownloadExportHandler(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusNotFound, "Export not found")
	}

	request, err := services.GetRequestByExportToken(db.DB, token)
	if err != nil {
		return httpError(err)
	}
	if request.ExportExpiresAt == nil || request.ExportExpiresAt.Before(time.Now()) {
		return httpError(services.ErrExportLinkExpired)
	}

	reader, contentType, err := services.Blob.Open(c.Request().Context(), services.ExportObjectKey(request.ID))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Export not found")
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="data-export.json"`)
	return c.Stream(http.StatusOK, contentType, reader)
}

// httpError maps engine errors onto HTTP status codes. Transient processing
// failures come back as 503 with the same request id reusable for retry.
func httpError(err error) error {
	if errors.Is(err, services.ErrRequestNotFound) || errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrHoldNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	if errors.Is(err, services.ErrExportLinkExpired) {
		return echo.NewHTTPError(http.StatusGone, "Export link expired")
	}

	var validation *services.ValidationError
	if errors.As(err, &validation) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, validation.Error())
	}

	var blocked *services.LegalHoldBlockedError
	if errors.As(err, &blocked) {
		return echo.NewHTTPError(http.StatusConflict, blocked.Error())
	}

	var txFailure *services.TransactionFailure
	var publishFailure *services.PublishFailure
	if errors.As(err, &txFailure) || errors.As(err, &publishFailure) {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Processing failed, request can be retried")
	}

	return echo.NewHTTPError(http.StatusInternalServerError, "Internal error")
}

// captureFromContext extracts request metadata for audit capture
func captureFromContext(c echo.Context) services.CaptureContext {
	return services.CaptureContext{
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
		Region:    c.Request().Header.Get("X-Region"),
	}
}
