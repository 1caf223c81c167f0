package prescription

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mediguard/mediguard/internal/platform/auth"
)

// Handler provides HTTP handlers for prescriptions.
type Handler struct {
	svc *Service
}

// NewHandler creates a new prescription handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers all prescription routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/prescriptions", h.Create, auth.RequireRole(auth.RoleDoctor))
	api.GET("/prescriptions", h.List)
	api.GET("/prescriptions/:id", h.Get)
	api.POST("/prescriptions/:id/dispense", h.Dispense, auth.RequireRole(auth.RolePharmacy))
	api.GET("/prescriptions/:id/verify", h.Verify, auth.RequireRole(auth.RolePharmacy, auth.RoleInsurance))
	api.GET("/stats/doctor", h.DoctorStats, auth.RequireRole(auth.RoleDoctor))
	api.GET("/stats/pharmacy", h.PharmacyStats, auth.RequireRole(auth.RolePharmacy))
}

func (h *Handler) Create(c echo.Context) error {
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	doctorID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.Create(c.Request().Context(), doctorID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) List(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.svc.ListFor(ctx, auth.UserIDFromContext(ctx), auth.RoleFromContext(ctx))
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Prescription{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	p, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Dispense(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	pharmacyID := auth.UserIDFromContext(c.Request().Context())
	p, err := h.svc.Dispense(c.Request().Context(), pharmacyID, id)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, ErrAlreadyDispensed):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) Verify(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	result, err := h.svc.Verify(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) DoctorStats(c echo.Context) error {
	doctorID := auth.UserIDFromContext(c.Request().Context())
	st, err := h.svc.StatsForDoctor(c.Request().Context(), doctorID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}

func (h *Handler) PharmacyStats(c echo.Context) error {
	pharmacyID := auth.UserIDFromContext(c.Request().Context())
	st, err := h.svc.StatsForPharmacy(c.Request().Context(), pharmacyID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, st)
}
