//go:build unit

package repository_test

import (
	"testing"
	"time"

	"journal-backend/internal/infra/repository"

	"github.com/stretchr/testify/assert"
)

func TestRetryDelay(t *testing.T) {
	tests := []struct {
		name     string
		attempts int32
		want     time.Duration
	}{
		{name: "first attempt waits one base interval", attempts: 1, want: 5 * time.Second},
		{name: "delay grows with each attempt", attempts: 4, want: 20 * time.Second},
		{name: "zero attempts treated as first", attempts: 0, want: 5 * time.Second},
		{name: "capped at two minutes", attempts: 100, want: 2 * time.Minute},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, repository.RetryDelay(tt.attempts))
		})
	}
}

func TestRetryDelayIsMonotonic(t *testing.T) {
	prev := time.Duration(0)
	for attempts := int32(1); attempts <= 40; attempts++ {
		delay := repository.RetryDelay(attempts)
		assert.GreaterOrEqual(t, delay, prev, "attempt %d", attempts)
		prev = delay
	}
}
