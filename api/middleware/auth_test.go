package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newAuthRouter(keys []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth(keys))
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, "pong") })
	return r
}

func TestAuthHeaderStyles(t *testing.T) {
	r := newAuthRouter([]string{"k1", "k2"})

	tests := []struct {
		name   string
		header string
		value  string
		want   int
	}{
		{"x-api-key valid", "X-API-Key", "k1", http.StatusOK},
		{"bearer valid", "Authorization", "Bearer k2", http.StatusOK},
		{"x-api-key invalid", "X-API-Key", "wrong", http.StatusUnauthorized},
		{"bearer invalid", "Authorization", "Bearer wrong", http.StatusUnauthorized},
		{"missing key", "", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestAuthOpenAccessWithoutKeys(t *testing.T) {
	r := newAuthRouter(nil)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 for open access", w.Code)
	}
}
