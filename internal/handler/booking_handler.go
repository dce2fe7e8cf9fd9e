package handler

import (
	"net/http"

	"github.com/inkline/studio-scheduler/internal/dto"
	"github.com/inkline/studio-scheduler/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.PipelineService
}

func NewBookingHandler(svc service.PipelineService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(g *echo.Group) {
	b := g.Group("/bookings")
	b.GET("/:id", h.GetBooking)
	b.POST("/:id/stage", h.Transition)
	b.PATCH("/:id/fields", h.UpdateField)
	b.GET("/:id/activity", h.ListActivity)
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := parseID(c, "id", "booking")
	if err != nil {
		return err
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) Transition(c echo.Context) error {
	id, err := parseID(c, "id", "booking")
	if err != nil {
		return err
	}

	var req dto.StageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	booking, err := h.svc.Transition(c.Request().Context(), id, req.Stage)
	warning, ok := committed(booking != nil, err)
	if !ok {
		return toHTTPError(err)
	}
	resp := dto.ToBookingResponse(booking)
	resp.Warning = warning
	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) UpdateField(c echo.Context) error {
	id, err := parseID(c, "id", "booking")
	if err != nil {
		return err
	}

	var req dto.FieldUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	booking, err := h.svc.UpdateField(c.Request().Context(), id, req.Field, req.Value)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListActivity(c echo.Context) error {
	id, err := parseID(c, "id", "booking")
	if err != nil {
		return err
	}

	entries, err := h.svc.ListActivity(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToActivityResponses(entries))
}
