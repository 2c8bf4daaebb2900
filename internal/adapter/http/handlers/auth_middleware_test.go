package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestBearerAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name   string
		tokens []string
		header string
		code   int
	}{
		{"missing header", []string{"tok"}, "", http.StatusUnauthorized},
		{"wrong scheme", []string{"tok"}, "Basic tok", http.StatusUnauthorized},
		{"wrong token", []string{"tok"}, "Bearer other", http.StatusUnauthorized},
		{"empty token", []string{"tok"}, "Bearer ", http.StatusUnauthorized},
		{"no tokens configured", nil, "Bearer tok", http.StatusUnauthorized},
		{"valid", []string{"a", " tok "}, "Bearer tok", http.StatusOK},
		{"scheme is case insensitive", []string{"tok"}, "bearer tok", http.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(BearerAuth(tc.tokens))
			r.GET("/v1/budgets", func(c *gin.Context) { c.Status(http.StatusOK) })

			req := httptest.NewRequest(http.MethodGet, "/v1/budgets", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, w.Code)
			}
		})
	}
}
