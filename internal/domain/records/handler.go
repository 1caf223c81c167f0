package records

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/mediguard/mediguard/internal/platform/auth"
)

// Handler provides HTTP handlers for medical records and sharing.
type Handler struct {
	svc       *Service
	maxUpload int64
}

// NewHandler creates a new records handler. maxUpload caps accepted file
// sizes in bytes.
func NewHandler(svc *Service, maxUpload int64) *Handler {
	return &Handler{svc: svc, maxUpload: maxUpload}
}

// RegisterRoutes registers all records routes.
func (h *Handler) RegisterRoutes(api *echo.Group) {
	patient := auth.RequireRole(auth.RolePatient)

	api.POST("/records", h.Upload, patient)
	api.GET("/records", h.ListOwn, patient)
	api.GET("/records/accessible", h.ListAccessible)
	api.GET("/records/:id", h.GetRecord)
	api.POST("/records/:id/permissions", h.Grant, patient)
	api.GET("/records/:id/permissions", h.ListPermissions, patient)
	api.DELETE("/permissions/:id", h.Revoke, patient)
	api.GET("/stats/patient", h.Stats, patient)
}

func domainError(err error) error {
	switch {
	case errors.Is(err, ErrAccessDenied):
		return echo.NewHTTPError(http.StatusForbidden, ErrAccessDenied.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, ErrNotFound.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) Upload(c echo.Context) error {
	patientID := auth.UserIDFromContext(c.Request().Context())

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if h.maxUpload > 0 && file.Size > h.maxUpload {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	in := UploadInput{
		Title:      c.FormValue("title"),
		RecordType: c.FormValue("record_type"),
		FileName:   file.Filename,
		FileType:   file.Header.Get("Content-Type"),
		FileSize:   file.Size,
	}
	if d := c.FormValue("description"); d != "" {
		in.Description = &d
	}

	rec, err := h.svc.Upload(c.Request().Context(), patientID, in)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) ListOwn(c echo.Context) error {
	patientID := auth.UserIDFromContext(c.Request().Context())
	items, err := h.svc.ListOwn(c.Request().Context(), patientID)
	if err != nil {
		return domainError(err)
	}
	if items == nil {
		items = []*MedicalRecord{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) ListAccessible(c echo.Context) error {
	granteeID := auth.UserIDFromContext(c.Request().Context())
	items, err := h.svc.AccessibleRecords(c.Request().Context(), granteeID)
	if err != nil {
		return domainError(err)
	}
	if items == nil {
		items = []*MedicalRecord{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) GetRecord(c echo.Context) error {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	requesterID := auth.UserIDFromContext(c.Request().Context())
	rec, err := h.svc.GetRecord(c.Request().Context(), requesterID, recordID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) Grant(c echo.Context) error {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var in struct {
		GrantedToID uuid.UUID `json:"granted_to_id"`
		AccessLevel string    `json:"access_level"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if in.GrantedToID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "granted_to_id is required")
	}

	ownerID := auth.UserIDFromContext(c.Request().Context())
	perm, err := h.svc.Grant(c.Request().Context(), ownerID, recordID, in.GrantedToID, in.AccessLevel)
	if err != nil {
		if errors.Is(err, ErrAccessDenied) {
			return domainError(err)
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, perm)
}

func (h *Handler) ListPermissions(c echo.Context) error {
	recordID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	requesterID := auth.UserIDFromContext(c.Request().Context())
	items, err := h.svc.PermissionsForRecord(c.Request().Context(), requesterID, recordID)
	if err != nil {
		return domainError(err)
	}
	if items == nil {
		items = []*AccessPermission{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Revoke(c echo.Context) error {
	permissionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	requesterID := auth.UserIDFromContext(c.Request().Context())
	perm, err := h.svc.Revoke(c.Request().Context(), requesterID, permissionID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, perm)
}

func (h *Handler) Stats(c echo.Context) error {
	patientID := auth.UserIDFromContext(c.Request().Context())
	st, err := h.svc.Stats(c.Request().Context(), patientID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, st)
}
