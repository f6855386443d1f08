package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	assert.Equal(t, 10, config.MaxAttempts)
	assert.Equal(t, 1*time.Second, config.InitialInterval)
	assert.Equal(t, 30*time.Second, config.MaxInterval)
	assert.Equal(t, 2.0, config.Multiplier)
	assert.True(t, config.Jitter)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{
			name:      "nil error",
			err:       nil,
			retryable: false,
		},
		{
			name:      "connection exception class",
			err:       &pq.Error{Code: "08006"},
			retryable: true,
		},
		{
			name:      "insufficient resources class",
			err:       &pq.Error{Code: "53300"},
			retryable: true,
		},
		{
			name:      "operator intervention class",
			err:       &pq.Error{Code: "57P01"},
			retryable: true,
		},
		{
			name:      "constraint violation is not retryable",
			err:       &pq.Error{Code: "23505"},
			retryable: false,
		},
		{
			name:      "data exception is not retryable",
			err:       &pq.Error{Code: "22001"},
			retryable: false,
		},
		{
			name:      "bad password is not retryable",
			err:       &pq.Error{Code: "28P01"},
			retryable: false,
		},
		{
			name:      "wrapped postgres error",
			err:       fmt.Errorf("failed to record harvest: %w", &pq.Error{Code: "08000"}),
			retryable: true,
		},
		{
			name:      "closed connection",
			err:       sql.ErrConnDone,
			retryable: true,
		},
		{
			name:      "deadline exceeded",
			err:       context.DeadlineExceeded,
			retryable: true,
		},
		{
			name:      "connection refused message",
			err:       errors.New("dial tcp 127.0.0.1:5432: connect: connection refused"),
			retryable: true,
		},
		{
			name:      "no such host message",
			err:       errors.New("dial tcp: lookup db.internal: no such host"),
			retryable: true,
		},
		{
			name:      "unknown errors default to retryable",
			err:       errors.New("something unexpected"),
			retryable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, isRetryableError(tt.err))
		})
	}
}
