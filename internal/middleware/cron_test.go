package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/stretchr/testify/assert"
)

func newCronRouter(secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/api/cron", CronAuth(secret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestCronAuth(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
	}{
		{"valid bearer secret", "cron-secret", "Bearer cron-secret", http.StatusOK},
		{"wrong secret", "cron-secret", "Bearer wrong", http.StatusUnauthorized},
		{"missing header", "cron-secret", "", http.StatusUnauthorized},
		{"missing Bearer prefix", "cron-secret", "cron-secret", http.StatusUnauthorized},
		{"partial secret", "cron-secret", "Bearer cron", http.StatusUnauthorized},
		{"unset secret rejects everything", "", "Bearer anything", http.StatusUnauthorized},
		{"unset secret rejects empty token too", "", "Bearer ", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newCronRouter(tt.secret)

			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/cron", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
			}
		})
	}
}

func TestExtractBearer(t *testing.T) {
	assert.Equal(t, "tok", extractBearer("Bearer tok"))
	assert.Equal(t, "", extractBearer("Basic dXNlcg=="))
	assert.Equal(t, "", extractBearer(""))
}
