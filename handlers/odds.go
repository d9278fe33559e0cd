package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RaceOdds returns the current quote per (horse, bookmaker) for a race.
func (h *Handler) RaceOdds(c echo.Context) error {
	raceID := c.Param("race_id")
	if raceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "race_id is required")
	}
	odds, err := h.store.CurrentOddsByRace(c.Request().Context(), raceID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, odds)
}

// RunnerOdds returns the current quotes for one runner key.
func (h *Handler) RunnerOdds(c echo.Context) error {
	runnerID := c.Param("runner_id")
	if runnerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "runner_id is required")
	}
	odds, err := h.store.CurrentOddsByRunner(c.Request().Context(), runnerID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, odds)
}

// OddsHistory returns every quote ever recorded for a runner, newest
// first. ?bookmaker= narrows to one book.
func (h *Handler) OddsHistory(c echo.Context) error {
	runnerID := c.Param("runner_id")
	if runnerID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "runner_id is required")
	}
	odds, err := h.store.OddsHistory(c.Request().Context(), runnerID, c.QueryParam("bookmaker"))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, odds)
}
