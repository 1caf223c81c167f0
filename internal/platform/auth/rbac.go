package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Portal roles.
const (
	RolePatient   = "patient"
	RoleDoctor    = "doctor"
	RolePharmacy  = "pharmacy"
	RoleInsurance = "insurance"
)

// ValidRole reports whether the given string is a known portal role.
func ValidRole(role string) bool {
	switch role {
	case RolePatient, RoleDoctor, RolePharmacy, RoleInsurance:
		return true
	}
	return false
}

// RequireRole returns middleware that checks if the user has one of the
// specified roles.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRole := RoleFromContext(c.Request().Context())
			for _, required := range roles {
				if userRole == required {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden,
				fmt.Sprintf("required role: %s", strings.Join(roles, " or ")))
		}
	}
}
