package identity

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mediguard/mediguard/internal/platform/auth"
)

// Handler provides HTTP handlers for registration, login and the user
// directory.
type Handler struct {
	svc *Service
	jwt auth.JWTConfig
}

// NewHandler creates a new identity handler.
func NewHandler(svc *Service, jwt auth.JWTConfig) *Handler {
	return &Handler{svc: svc, jwt: jwt}
}

// RegisterRoutes registers identity routes. authGroup ("/api/auth") is
// outside the JWT middleware; api ("/api/v1") is behind it.
func (h *Handler) RegisterRoutes(authGroup, api *echo.Group) {
	authGroup.POST("/register", h.Register)
	authGroup.POST("/login", h.Login)

	api.GET("/users", h.ListUsers)
	api.GET("/me", h.Me)
}

// tokenResponse is the shape returned by register and login.
type tokenResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	token, err := auth.IssueToken(h.jwt, u.ID, u.Username, u.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not issue token")
	}
	return c.JSON(http.StatusCreated, tokenResponse{Token: token, User: u})
}

func (h *Handler) Login(c echo.Context) error {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	u, err := h.svc.Login(c.Request().Context(), in.Username, in.Password)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, ErrInvalidCredentials.Error())
	}
	token, err := auth.IssueToken(h.jwt, u.ID, u.Username, u.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "could not issue token")
	}
	return c.JSON(http.StatusOK, tokenResponse{Token: token, User: u})
}

// ListUsers returns the directory for a given role, e.g. ?role=doctor when a
// patient picks whom to share a record with.
func (h *Handler) ListUsers(c echo.Context) error {
	role := c.QueryParam("role")
	users, err := h.svc.ListByRole(c.Request().Context(), role)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if users == nil {
		users = []*User{}
	}
	return c.JSON(http.StatusOK, users)
}

// Me returns the authenticated user's profile.
func (h *Handler) Me(c echo.Context) error {
	userID := auth.UserIDFromContext(c.Request().Context())
	u, err := h.svc.GetUser(c.Request().Context(), userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, u)
}
