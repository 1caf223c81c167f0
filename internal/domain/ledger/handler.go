package ledger

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediguard/mediguard/internal/platform/auth"
	"github.com/mediguard/mediguard/pkg/pagination"
)

// Handler provides HTTP handlers for the ledger surface.
type Handler struct {
	svc *Service
}

// NewHandler creates a new ledger handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes registers ledger routes. Any authenticated user can read
// their own trail and trigger a verification.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/ledger/transactions", h.ListTransactions)
	api.GET("/ledger/verify", h.Verify)
}

// ListTransactions returns the caller's ledger entries, newest first.
func (h *Handler) ListTransactions(c echo.Context) error {
	actorID := auth.UserIDFromContext(c.Request().Context())
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListForActor(c.Request().Context(), actorID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Transaction{}
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// Verify runs the chain integrity check over the full ledger.
func (h *Handler) Verify(c echo.Context) error {
	valid, err := h.svc.VerifyIntegrity(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"valid": valid})
}
