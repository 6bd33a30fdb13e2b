package middleware

import "github.com/labstack/echo/v4"

// APIVersion is the version advertised on every response
const APIVersion = "v1"

// VersionHeader sets X-API-Version before the handler runs, so error
// responses carry it too
func VersionHeader(version string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("X-API-Version", version)
			return next(c)
		}
	}
}
