package dockerctl

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStatusUptime(t *testing.T) {
	now := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	started := now.Add(-90 * time.Minute)

	tests := []struct {
		name   string
		status Status
		want   time.Duration
	}{
		{name: "running", status: Status{Exists: true, Running: true, StartedAt: started}, want: 90 * time.Minute},
		{name: "stopped", status: Status{Exists: true, StartedAt: started}, want: 0},
		{name: "no start time", status: Status{Exists: true, Running: true}, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, tt.status.Uptime(now))
		})
	}
}

func TestStopOptions(t *testing.T) {
	require.Equal(t, 30, *stopOptions(30*time.Second).Timeout)
	require.Equal(t, 10, *stopOptions(0).Timeout)
	require.Equal(t, 10, *stopOptions(3*time.Second).Timeout)
}

func TestNewRequiresName(t *testing.T) {
	_, err := New("  ")
	require.EqualError(t, err, "container name is required")
}
