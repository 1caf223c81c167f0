package insights

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mediguard/mediguard/internal/platform/auth"
)

// Handler provides HTTP handlers for health insights.
type Handler struct {
	svc *Service
}

// NewHandler creates a new insights handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers all insights routes. Insights are patient-facing.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	patient := auth.RequireRole(auth.RolePatient)

	api.GET("/insights", h.List, patient)
	api.POST("/insights/:id/read", h.MarkRead, patient)
	api.GET("/insights/recommendations", h.Recommendations, patient)
}

func (h *Handler) List(c echo.Context) error {
	patientID := auth.UserIDFromContext(c.Request().Context())
	items, err := h.svc.ListForPatient(c.Request().Context(), patientID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Insight{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) MarkRead(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	patientID := auth.UserIDFromContext(c.Request().Context())
	if err := h.svc.MarkRead(c.Request().Context(), patientID, id); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Recommendations(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{
		"recommendations": GeneralRecommendations(),
	})
}
