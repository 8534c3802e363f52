package middleware

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"journal-backend/internal/pkg/clock"

	"github.com/gin-gonic/gin"
)

const (
	slackSignatureHeader = "X-Slack-Signature"
	slackTimestampHeader = "X-Slack-Request-Timestamp"
	cmsSignatureHeader   = "X-Cms-Signature"
	slackSchemeVersion   = "v0"
)

// SignatureMiddleware verifies HMAC-SHA256 signatures on webhook requests.
// Absent headers yield 401, mismatched signatures and stale timestamps 403.
type SignatureMiddleware struct {
	clock     clock.Clock
	tolerance time.Duration
}

func NewSignatureMiddleware(clk clock.Clock, tolerance time.Duration) *SignatureMiddleware {
	return &SignatureMiddleware{clock: clk, tolerance: tolerance}
}

// VerifySlack checks the v0={hex} signature computed over "v0:{ts}:{body}".
func (m *SignatureMiddleware) VerifySlack(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		signature := c.GetHeader(slackSignatureHeader)
		timestamp := c.GetHeader(slackTimestampHeader)
		if signature == "" || timestamp == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing signature headers"})
			return
		}

		if !m.timestampFresh(timestamp) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Request timestamp out of tolerance"})
			return
		}

		body, err := readBody(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unreadable body"})
			return
		}

		base := slackSchemeVersion + ":" + timestamp + ":" + string(body)
		expected := slackSchemeVersion + "=" + hexHMAC(secret, base)
		if !hmac.Equal([]byte(expected), []byte(signature)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Signature mismatch"})
			return
		}

		c.Next()
	}
}

// VerifyCMS checks the "t=...,v1=..." signature computed over "{t}.{body}".
func (m *SignatureMiddleware) VerifyCMS(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(cmsSignatureHeader)
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing signature header"})
			return
		}

		timestamp, signature, ok := parseCMSHeader(header)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Malformed signature header"})
			return
		}

		if !m.timestampFresh(timestamp) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Request timestamp out of tolerance"})
			return
		}

		body, err := readBody(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Unreadable body"})
			return
		}

		expected := hexHMAC(secret, timestamp+"."+string(body))
		if !hmac.Equal([]byte(expected), []byte(signature)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Signature mismatch"})
			return
		}

		c.Next()
	}
}

// RequireSharedKey checks a static shared secret in the Authorization header.
func RequireSharedKey(sharedKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("Authorization")
		if provided == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing authorization header"})
			return
		}
		if !hmac.Equal([]byte(provided), []byte(sharedKey)) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid authorization"})
			return
		}
		c.Next()
	}
}

func (m *SignatureMiddleware) timestampFresh(raw string) bool {
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return false
	}
	age := m.clock.Now().Sub(time.Unix(seconds, 0))
	if age < 0 {
		age = -age
	}
	return age <= m.tolerance
}

// readBody consumes the request body and restores it for downstream binding.
func readBody(c *gin.Context) ([]byte, error) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	return body, nil
}

func parseCMSHeader(header string) (timestamp, signature string, ok bool) {
	for _, part := range strings.Split(header, ",") {
		key, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			return "", "", false
		}
		switch key {
		case "t":
			timestamp = value
		case "v1":
			signature = value
		}
	}
	return timestamp, signature, timestamp != "" && signature != ""
}

func hexHMAC(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
