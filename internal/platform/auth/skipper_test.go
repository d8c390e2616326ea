package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestAuthSkipper(t *testing.T) {
	tests := []struct {
		path string
		skip bool
	}{
		{"/health", true},
		{"/health/db", true},
		{"/api/v1/clinics", false},
		{"/api/v1/appointments/:id", false},
		{"/metrics", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetPath(tt.path)

			if got := AuthSkipper(c); got != tt.skip {
				t.Errorf("AuthSkipper(%s) = %v, want %v", tt.path, got, tt.skip)
			}
			if got := IsPublicPath(tt.path); got != tt.skip {
				t.Errorf("IsPublicPath(%s) = %v, want %v", tt.path, got, tt.skip)
			}
		})
	}
}
