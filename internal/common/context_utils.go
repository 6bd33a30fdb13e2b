package common

import (
	"context"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	TokenKey   contextKey = "bearer_token"
	SubjectKey contextKey = "subject"
)

// ErrorResponse is the error body returned by every endpoint
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// SendError writes an error response
func SendError(c echo.Context, status int, message string, details any) error {
	return c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// WithToken stores the caller's bearer token and, when known, its subject
func WithToken(ctx context.Context, token, subject string) context.Context {
	ctx = context.WithValue(ctx, TokenKey, token)
	if subject != "" {
		ctx = context.WithValue(ctx, SubjectKey, subject)
	}
	return ctx
}

// GetTokenFromContext returns the caller's bearer token
func GetTokenFromContext(ctx context.Context) (string, bool) {
	token, ok := ctx.Value(TokenKey).(string)
	return token, ok && token != ""
}

// GetSubjectFromContext returns the token subject, if the token was a JWT
func GetSubjectFromContext(ctx context.Context) (string, bool) {
	sub, ok := ctx.Value(SubjectKey).(string)
	return sub, ok && sub != ""
}
