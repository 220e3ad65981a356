package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30, cfg.Scheduling.StudentsPerProctor)
	assert.Equal(t, 0, cfg.Scheduling.OvercapacityTolerance)
	assert.Equal(t, 120*time.Minute, cfg.Scheduling.LargeGapThreshold)
	assert.InDelta(t, 0.5, cfg.Scheduling.LowUtilizationThreshold, 0.0001)
	assert.Equal(t, "exampro:notifications", cfg.Notifications.ChannelPrefix)
}

func TestLoadSchedulingOverrides(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHED_STUDENTS_PER_PROCTOR", "25")
	t.Setenv("SCHED_LARGE_GAP_THRESHOLD", "90m")
	t.Setenv("SCHED_LOW_UTILIZATION_THRESHOLD", "0.4")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Scheduling.StudentsPerProctor)
	assert.Equal(t, 90*time.Minute, cfg.Scheduling.LargeGapThreshold)
	assert.InDelta(t, 0.4, cfg.Scheduling.LowUtilizationThreshold, 0.0001)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoadRejectsNonPositiveRatio(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SCHED_STUDENTS_PER_PROCTOR", "0")
	t.Setenv("SCHED_LARGE_GAP_THRESHOLD", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 30, cfg.Scheduling.StudentsPerProctor)
	assert.Equal(t, 120*time.Minute, cfg.Scheduling.LargeGapThreshold)
}

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
