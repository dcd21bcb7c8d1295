package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncError_Error(t *testing.T) {
	err := NewSyncError(KindNetwork, "world/regions.md", errors.New("connection reset"))
	assert.Equal(t, "network: world/regions.md: connection reset", err.Error())
}

func TestSyncError_ErrorWithoutPath(t *testing.T) {
	err := NewSyncError(KindRateLimit, "", ErrThrottled)
	assert.Equal(t, "rate_limit: remote store throttled request", err.Error())
}

func TestSyncError_Unwrap(t *testing.T) {
	err := NewSyncError(KindRateLimit, "bestiary.md", ErrThrottled)
	assert.True(t, errors.Is(err, ErrThrottled))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{
			name: "sync error carries its kind",
			err:  NewSyncError(KindFileSize, "maps/huge.md", ErrFileTooLarge),
			want: KindFileSize,
		},
		{
			name: "wrapped sync error still resolves",
			err:  fmt.Errorf("process file: %w", NewSyncError(KindQuota, "a.md", errors.New("quota"))),
			want: KindQuota,
		},
		{
			name: "plain error defaults to other",
			err:  errors.New("something broke"),
			want: KindOther,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestIsThrottled(t *testing.T) {
	assert.True(t, IsThrottled(fmt.Errorf("call: %w", ErrThrottled)))
	assert.False(t, IsThrottled(errors.New("other")))
}

func TestIsBudgetExceeded(t *testing.T) {
	wrapped := NewSyncError(KindOther, "x.md", ErrCallBudgetExceeded)
	assert.True(t, IsBudgetExceeded(wrapped))
	assert.False(t, IsBudgetExceeded(ErrThrottled))
}
