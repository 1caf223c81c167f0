package auth

import (
	"github.com/labstack/echo/v4"
)

// publicPaths lists URL paths that bypass authentication. These are
// infrastructure endpoints and the credential endpoints themselves.
var publicPaths = map[string]bool{
	"/health":            true,
	"/health/db":         true,
	"/api/auth/register": true,
	"/api/auth/login":    true,
}

// Skipper returns true for requests whose path should skip authentication.
// Pass this to JWTMiddleware so health checks and login/registration remain
// reachable without a bearer token.
func Skipper(c echo.Context) bool {
	return publicPaths[c.Path()]
}

// IsPublicPath reports whether the given path bypasses authentication.
func IsPublicPath(path string) bool {
	return publicPaths[path]
}
