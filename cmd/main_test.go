package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"partsportal/internal/config"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/assert"
)

func TestNewServer(t *testing.T) {
	e := newServer(config.Default())
	e.GET("/parts", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	tests := []struct {
		name   string
		path   string
		status int
	}{
		{"Exact path", "/parts", http.StatusOK},
		{"Trailing slash", "/parts/", http.StatusOK},
		{"Unknown route", "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, "v1", rec.Header().Get("X-API-Version"))
			assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
		})
	}
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, log.DEBUG, parseLevel("DEBUG"))
	assert.Equal(t, log.WARN, parseLevel("warning"))
	assert.Equal(t, log.ERROR, parseLevel(" error "))
	assert.Equal(t, log.OFF, parseLevel("off"))
	assert.Equal(t, log.INFO, parseLevel(""))
}
