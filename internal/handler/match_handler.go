package handler

import (
	"net/http"

	"github.com/inkline/studio-scheduler/internal/dto"
	"github.com/inkline/studio-scheduler/internal/lifecycle"
	"github.com/inkline/studio-scheduler/internal/models"
	"github.com/inkline/studio-scheduler/internal/service"
	"github.com/labstack/echo/v4"
)

type MatchHandler struct {
	svc service.MatchService
}

func NewMatchHandler(svc service.MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

func (h *MatchHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/matching/run", h.RunAnalysis)
	g.GET("/suggestions", h.ListSuggestions)
}

func (h *MatchHandler) RunAnalysis(c echo.Context) error {
	suggestions, err := h.svc.RunAnalysis(c.Request().Context())
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.MatchRunResponse{
		Count:       len(suggestions),
		Suggestions: dto.ToSuggestionResponses(suggestions),
	})
}

func (h *MatchHandler) ListSuggestions(c echo.Context) error {
	var status *models.SuggestionStatus
	if s := c.QueryParam("status"); s != "" {
		st, err := lifecycle.ParseSuggestionStatus(s)
		if err != nil {
			return toHTTPError(err)
		}
		status = &st
	}

	suggestions, err := h.svc.ListSuggestions(c.Request().Context(), status)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSuggestionResponses(suggestions))
}
