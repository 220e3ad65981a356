package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/config"
)

func TestPolicyFromConfig(t *testing.T) {
	policy := PolicyFromConfig(config.SchedulingConfig{
		StudentsPerProctor:      25,
		OvercapacityTolerance:   2,
		LargeGapThreshold:       90 * time.Minute,
		LowUtilizationThreshold: 0.4,
	})
	assert.Equal(t, Policy{
		StudentsPerProctor:      25,
		OvercapacityTolerance:   2,
		LargeGapThreshold:       90 * time.Minute,
		LowUtilizationThreshold: 0.4,
	}, policy)

	fallback := PolicyFromConfig(config.SchedulingConfig{OvercapacityTolerance: -1})
	assert.Equal(t, 30, fallback.StudentsPerProctor)
	assert.Equal(t, 0, fallback.OvercapacityTolerance)
	assert.Equal(t, 120*time.Minute, fallback.LargeGapThreshold)
}
