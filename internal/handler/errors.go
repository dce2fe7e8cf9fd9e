package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/inkline/studio-scheduler/internal/apperr"
	"github.com/labstack/echo/v4"
)

// toHTTPError maps a service error onto a status code by its kind.
func toHTTPError(err error) *echo.HTTPError {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, apperr.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, apperr.ErrExternalService):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		// store and driver detail stays in the log, not the response
		return echo.NewHTTPError(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError)).SetInternal(err)
	}
}

// committed reports whether a result came back alongside a failed follow-up
// delivery. Such a change is already stored, so it is answered with 200 and
// a warning instead of an error status.
func committed(result bool, err error) (warning string, ok bool) {
	if err == nil {
		return "", true
	}
	if result && errors.Is(err, apperr.ErrExternalService) {
		return err.Error(), true
	}
	return "", false
}

func parseID(c echo.Context, name, what string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+what+" id")
	}
	return uint(id), nil
}

func parseQueryID(c echo.Context, name string) (uint, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, echo.NewHTTPError(http.StatusBadRequest, name+" is required")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid "+name)
	}
	return uint(id), nil
}
