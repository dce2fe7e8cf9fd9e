package handler

import (
	"net/http"

	"github.com/inkline/studio-scheduler/internal/dto"
	"github.com/inkline/studio-scheduler/internal/lifecycle"
	"github.com/inkline/studio-scheduler/internal/models"
	"github.com/inkline/studio-scheduler/internal/service"
	"github.com/labstack/echo/v4"
)

type WaitlistHandler struct {
	svc service.WaitlistService
}

func NewWaitlistHandler(svc service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{svc: svc}
}

func (h *WaitlistHandler) RegisterRoutes(g *echo.Group) {
	w := g.Group("/waitlist")
	w.GET("", h.List)
	w.GET("/candidates", h.Candidates)
	w.POST("/:id/offer", h.SendOffer)
	w.POST("/:id/convert", h.Convert)
	w.POST("/:id/expire", h.Expire)
}

func (h *WaitlistHandler) List(c echo.Context) error {
	var status *models.WaitlistStatus
	if s := c.QueryParam("status"); s != "" {
		st, err := lifecycle.ParseWaitlistStatus(s)
		if err != nil {
			return toHTTPError(err)
		}
		status = &st
	}

	entries, err := h.svc.List(c.Request().Context(), status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToWaitlistEntryResponses(entries))
}

func (h *WaitlistHandler) Candidates(c echo.Context) error {
	slotID, err := parseQueryID(c, "slot_id")
	if err != nil {
		return err
	}

	entries, err := h.svc.Candidates(c.Request().Context(), slotID)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToWaitlistEntryResponses(entries))
}

func (h *WaitlistHandler) SendOffer(c echo.Context) error {
	id, err := parseID(c, "id", "waitlist entry")
	if err != nil {
		return err
	}

	var req dto.OfferRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	entry, err := h.svc.SendOffer(c.Request().Context(), id, req.SlotID, req.DiscountPercent)
	return respondEntry(c, entry, err)
}

func (h *WaitlistHandler) Convert(c echo.Context) error {
	id, err := parseID(c, "id", "waitlist entry")
	if err != nil {
		return err
	}

	var req dto.ConvertRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	entry, err := h.svc.Convert(c.Request().Context(), id, req.BookingID)
	return respondEntry(c, entry, err)
}

func (h *WaitlistHandler) Expire(c echo.Context) error {
	id, err := parseID(c, "id", "waitlist entry")
	if err != nil {
		return err
	}

	entry, err := h.svc.Expire(c.Request().Context(), id)
	return respondEntry(c, entry, err)
}

func respondEntry(c echo.Context, e *models.WaitlistEntry, err error) error {
	warning, ok := committed(e != nil, err)
	if !ok {
		return toHTTPError(err)
	}
	resp := dto.ToWaitlistEntryResponse(e)
	resp.Warning = warning
	return c.JSON(http.StatusOK, resp)
}
