package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/conorwd/raceql/ingest"
	"github.com/conorwd/raceql/racingapi"
)

// Sync triggers one refresh section by name. Odds and per-entity refreshes
// take their identifiers from query params.
func (h *Handler) Sync(c echo.Context) error {
	if h.syncer == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "upstream sync not configured")
	}

	ctx := c.Request().Context()
	tier := racingapi.Tier(c.QueryParam("tier"))
	if tier == "" {
		tier = racingapi.TierStandard
	}

	var (
		out ingest.SyncOutcome
		err error
	)
	switch c.Param("section") {
	case "courses":
		out, err = h.syncer.SyncCourses(ctx)
	case "racecards":
		out, err = h.syncer.SyncRacecards(ctx, tier)
	case "results":
		out, err = h.syncer.SyncResults(ctx)
	case "odds":
		out, err = h.syncer.SyncOdds(ctx, c.QueryParam("race_id"), c.QueryParam("horse_id"))
	case "horse":
		out, err = h.syncer.SyncHorse(ctx, c.QueryParam("horse_id"), tier)
	case "jockey-results":
		out, err = h.syncer.SyncJockeyResults(ctx, c.QueryParam("jockey_id"))
	case "trainer-results":
		out, err = h.syncer.SyncTrainerResults(ctx, c.QueryParam("trainer_id"))
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown sync section")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, out)
}

// SyncLogs returns the newest ingestion audit rows.
func (h *Handler) SyncLogs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	rows, err := h.store.SyncLogs(c.Request().Context(), limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}
