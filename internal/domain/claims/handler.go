package claims

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mediguard/mediguard/internal/platform/auth"
)

// Handler provides HTTP handlers for insurance claims.
type Handler struct {
	svc *Service
}

// NewHandler creates a new claims handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers all claims routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/claims", h.Submit, auth.RequireRole(auth.RolePatient))
	api.GET("/claims", h.List, auth.RequireRole(auth.RolePatient, auth.RoleInsurance))
	api.GET("/claims/:id", h.Get, auth.RequireRole(auth.RolePatient, auth.RoleInsurance))
	api.PATCH("/claims/:id/status", h.UpdateStatus, auth.RequireRole(auth.RoleInsurance))
	api.GET("/stats/insurance", h.Stats, auth.RequireRole(auth.RoleInsurance))
}

func (h *Handler) Submit(c echo.Context) error {
	var in SubmitInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	patientID := auth.UserIDFromContext(c.Request().Context())
	claim, err := h.svc.Submit(c.Request().Context(), patientID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, claim)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.ListFor(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	}
	if items == nil {
		items = []*Claim{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	ctx := c.Request().Context()
	claim, err := h.svc.Get(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	// Patients may only read their own claims.
	if auth.RoleFromContext(ctx) == auth.RolePatient && claim.PatientID != auth.UserIDFromContext(ctx) {
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	return c.JSON(http.StatusOK, claim)
}

func (h *Handler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in struct {
		Status      string  `json:"status"`
		ReviewNotes *string `json:"review_notes,omitempty"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	agentID := auth.UserIDFromContext(c.Request().Context())
	claim, err := h.svc.UpdateStatus(c.Request().Context(), agentID, id, in.Status, in.ReviewNotes)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, claim)
}

func (h *Handler) Stats(c echo.Context) error {
	st, err := h.svc.StatsForInsurer(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}
