package handler

import (
	"context"
	"net/http"

	"github.com/inkline/studio-scheduler/internal/dto"
	"github.com/inkline/studio-scheduler/internal/models"
	"github.com/inkline/studio-scheduler/internal/service"
	"github.com/labstack/echo/v4"
)

type SuggestionHandler struct {
	svc service.SuggestionService
}

func NewSuggestionHandler(svc service.SuggestionService) *SuggestionHandler {
	return &SuggestionHandler{svc: svc}
}

func (h *SuggestionHandler) RegisterRoutes(g *echo.Group) {
	s := g.Group("/suggestions")
	s.GET("/:id", h.Get)
	s.POST("/:id/send", h.Send)
	s.POST("/:id/confirm", h.Confirm)
	s.POST("/:id/decline", h.Decline)
	s.POST("/:id/accept", h.Accept)
	s.POST("/:id/dismiss", h.Dismiss)
	s.POST("/:id/reject", h.Reject)

	g.GET("/callbacks/:token", h.Callback)
}

func (h *SuggestionHandler) Get(c echo.Context) error {
	id, err := parseID(c, "id", "suggestion")
	if err != nil {
		return err
	}
	sg, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}
	return c.JSON(http.StatusOK, dto.ToSuggestionResponse(sg))
}

func (h *SuggestionHandler) Send(c echo.Context) error    { return h.act(c, h.svc.Send) }
func (h *SuggestionHandler) Confirm(c echo.Context) error { return h.act(c, h.svc.Confirm) }
func (h *SuggestionHandler) Decline(c echo.Context) error { return h.act(c, h.svc.Decline) }
func (h *SuggestionHandler) Accept(c echo.Context) error  { return h.act(c, h.svc.Accept) }
func (h *SuggestionHandler) Dismiss(c echo.Context) error { return h.act(c, h.svc.Dismiss) }
func (h *SuggestionHandler) Reject(c echo.Context) error  { return h.act(c, h.svc.Reject) }

// Callback serves the confirm and decline links mailed to clients.
func (h *SuggestionHandler) Callback(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "token is required")
	}
	sg, err := h.svc.HandleCallback(c.Request().Context(), token)
	return respondSuggestion(c, sg, err)
}

func (h *SuggestionHandler) act(c echo.Context, fn func(context.Context, uint) (*models.Suggestion, error)) error {
	id, err := parseID(c, "id", "suggestion")
	if err != nil {
		return err
	}
	sg, err := fn(c.Request().Context(), id)
	return respondSuggestion(c, sg, err)
}

func respondSuggestion(c echo.Context, sg *models.Suggestion, err error) error {
	warning, ok := committed(sg != nil, err)
	if !ok {
		return toHTTPError(err)
	}
	resp := dto.ToSuggestionResponse(sg)
	resp.Warning = warning
	return c.JSON(http.StatusOK, resp)
}
