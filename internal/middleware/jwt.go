package middleware

import (
	"net/http"
	"strings"

	"partsportal/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// BearerToken requires an "Authorization: Bearer <token>" header and stores
// the token in the request context. The token is opaque to this service and
// is forwarded to the backend untouched; when it happens to be a JWT its
// subject is read, without verification, to attribute requests.
func BearerToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing bearer token")
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			token = strings.TrimSpace(token)
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				return echo.NewHTTPError(http.StatusBadRequest, "Malformed authorization header")
			}

			ctx := common.WithToken(c.Request().Context(), token, tokenSubject(token))
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// tokenSubject returns the "sub" claim of an unverified JWT, or "" for
// tokens that are not JWTs.
func tokenSubject(token string) string {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return ""
	}
	sub, err := claims.GetSubject()
	if err != nil {
		return ""
	}
	return sub
}
