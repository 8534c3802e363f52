//go:build unit

package middleware_test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"journal-backend/internal/handler/middleware"
	"journal-backend/internal/pkg/clock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

const (
	testSecret    = "test-signing-secret"
	testTolerance = 5 * time.Minute
)

func signHex(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func newSlackRouter(clk clock.Clock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := middleware.NewSignatureMiddleware(clk, testTolerance)
	r := gin.New()
	r.POST("/hooks/slack", m.VerifySlack(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func newCMSRouter(clk clock.Clock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	m := middleware.NewSignatureMiddleware(clk, testTolerance)
	r := gin.New()
	r.POST("/hooks/cms", m.VerifyCMS(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func TestVerifySlack(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	body := `{"type":"block_actions"}`

	validRequest := func(ts time.Time, secret string) *http.Request {
		tsStr := fmt.Sprintf("%d", ts.Unix())
		req := httptest.NewRequest(http.MethodPost, "/hooks/slack", strings.NewReader(body))
		req.Header.Set("X-Slack-Request-Timestamp", tsStr)
		req.Header.Set("X-Slack-Signature", "v0="+signHex(secret, "v0:"+tsStr+":"+body))
		return req
	}

	tests := []struct {
		name       string
		request    func() *http.Request
		expectCode int
	}{
		{
			name:       "valid signature passes",
			request:    func() *http.Request { return validRequest(now, testSecret) },
			expectCode: http.StatusOK,
		},
		{
			name: "missing headers rejected with 401",
			request: func() *http.Request {
				return httptest.NewRequest(http.MethodPost, "/hooks/slack", strings.NewReader(body))
			},
			expectCode: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret rejected with 403",
			request:    func() *http.Request { return validRequest(now, "wrong-secret") },
			expectCode: http.StatusForbidden,
		},
		{
			name: "tampered body rejected with 403",
			request: func() *http.Request {
				req := validRequest(now, testSecret)
				req.Body = http.NoBody
				return req
			},
			expectCode: http.StatusForbidden,
		},
		{
			name:       "stale timestamp rejected with 403",
			request:    func() *http.Request { return validRequest(now.Add(-6*time.Minute), testSecret) },
			expectCode: http.StatusForbidden,
		},
		{
			name:       "timestamp just inside tolerance passes",
			request:    func() *http.Request { return validRequest(now.Add(-4*time.Minute), testSecret) },
			expectCode: http.StatusOK,
		},
		{
			name: "non-numeric timestamp rejected with 403",
			request: func() *http.Request {
				req := validRequest(now, testSecret)
				req.Header.Set("X-Slack-Request-Timestamp", "not-a-number")
				return req
			},
			expectCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newSlackRouter(clk)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, tt.request())
			assert.Equal(t, tt.expectCode, rec.Code)
		})
	}
}

func TestVerifyCMS(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(now)
	body := `{"event":"content.published"}`

	validHeader := func(ts time.Time, secret string) string {
		tsStr := fmt.Sprintf("%d", ts.Unix())
		return "t=" + tsStr + ",v1=" + signHex(secret, tsStr+"."+body)
	}

	tests := []struct {
		name       string
		header     string
		expectCode int
	}{
		{
			name:       "valid signature passes",
			header:     validHeader(now, testSecret),
			expectCode: http.StatusOK,
		},
		{
			name:       "missing header rejected with 401",
			header:     "",
			expectCode: http.StatusUnauthorized,
		},
		{
			name:       "malformed header rejected with 401",
			header:     "v1=deadbeef",
			expectCode: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret rejected with 403",
			header:     validHeader(now, "wrong-secret"),
			expectCode: http.StatusForbidden,
		},
		{
			name:       "stale timestamp rejected with 403",
			header:     validHeader(now.Add(-10*time.Minute), testSecret),
			expectCode: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newCMSRouter(clk)
			req := httptest.NewRequest(http.MethodPost, "/hooks/cms", strings.NewReader(body))
			if tt.header != "" {
				req.Header.Set("X-Cms-Signature", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.expectCode, rec.Code)
		})
	}
}

func TestRequireSharedKey(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/hooks/revenue", middleware.RequireSharedKey("shared-key"), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	tests := []struct {
		name       string
		auth       string
		expectCode int
	}{
		{"valid key passes", "shared-key", http.StatusOK},
		{"missing header rejected with 401", "", http.StatusUnauthorized},
		{"wrong key rejected with 403", "other-key", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/hooks/revenue", nil)
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			assert.Equal(t, tt.expectCode, rec.Code)
		})
	}
}
