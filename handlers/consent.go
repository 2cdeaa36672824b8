package handlers

import (
	"net/http"

	"athena_privacy_go/db"
	"athena_privacy_go/models"
	"athena_privacy_go/services"

	"github.com/labstack/echo/v4"
)

type recordConsentInput struct {
	Type    models.ConsentType `json:"type"`
	Granted bool               `json:"granted"`
}

// RecordConsentHandler records a grant or withdrawal for one consent type.
// Required consent types cannot be withdrawn through this path; withdrawing
// data-processing consent means deleting the account via a DSAR.
func RecordConsentHandler(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var input recordConsentInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	if !input.Granted && models.IsRequiredConsent(input.Type) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "Required consent cannot be withdrawn; submit a deletion request instead")
	}

	record, err := services.RecordConsent(db.DB, user.ID, input.Type, input.Granted, captureFromContext(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, record)
}

type bulkConsentInput struct {
	Consents []services.ConsentUpdate `json:"consents"`
}

// BulkUpdateConsentsHandler applies a set of consent changes sequentially,
// the privacy-center "save all" path
func BulkUpdateConsentsHandler(c echo.Context) error {
	user := c.Get("user").(*models.User)

	var input bulkConsentInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	for _, update := range input.Consents {
		if !update.Granted && models.IsRequiredConsent(update.Type) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, "Required consent cannot be withdrawn; submit a deletion request instead")
		}
	}

	if err := services.BulkUpdateConsents(db.DB, user.ID, input.Consents, captureFromContext(c)); err != nil {
		return httpError(err)
	}

	records, err := services.GetUserConsents(db.DB, user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}

// ListConsentsHandler returns the acting user's consent records by type
func ListConsentsHandler(c echo.Context) error {
	user := c.Get("user").(*models.User)

	records, err := services.GetUserConsents(db.DB, user.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, records)
}
