package handlers

import (
	"net/http"

	"athena_privacy_go/db"
	"athena_privacy_go/models"
	"athena_privacy_go/services"

	"github.com/labstack/echo/v4"
)

type placeLegalHoldInput struct {
	Reason          string   `json:"reason"`
	CaseReference   string   `json:"case_reference"`
	AffectedUserIDs []string `json:"affected_user_ids"`
}

// PlaceLegalHoldHandler creates an active hold blocking deletion for the
// named users. Compliance team only.
func PlaceLegalHoldHandler(c echo.Context) error {
	admin := c.Get("user").(*models.User)

	var input placeLegalHoldInput
	if err := c.Bind(&input); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	hold, err := services.PlaceLegalHold(db.DB, admin.ID, input.Reason, input.CaseReference, input.AffectedUserIDs)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusCreated, hold)
}

// ReleaseLegalHoldHandler deactivates a hold
func ReleaseLegalHoldHandler(c echo.Context) error {
	admin := c.Get("user").(*models.User)

	if err := services.ReleaseLegalHold(db.DB, admin.ID, c.Param("id")); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// ListLegalHoldsHandler lists all holds, newest first
func ListLegalHoldsHandler(c echo.Context) error {
	holds, err := services.GetLegalHolds(db.DB)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, holds)
}
