package scheduling

import (
	"time"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/pkg/config"
)

// Policy holds the thresholds applied by the capacity analyzer and the advisor.
type Policy struct {
	StudentsPerProctor      int
	OvercapacityTolerance   int
	LargeGapThreshold       time.Duration
	LowUtilizationThreshold float64
}

// DefaultPolicy returns the stock thresholds.
func DefaultPolicy() Policy {
	return Policy{
		StudentsPerProctor:      30,
		OvercapacityTolerance:   0,
		LargeGapThreshold:       120 * time.Minute,
		LowUtilizationThreshold: 0.5,
	}
}

// PolicyFromConfig converts loaded configuration, falling back to defaults for unusable values.
func PolicyFromConfig(cfg config.SchedulingConfig) Policy {
	return Policy{
		StudentsPerProctor:      cfg.StudentsPerProctor,
		OvercapacityTolerance:   cfg.OvercapacityTolerance,
		LargeGapThreshold:       cfg.LargeGapThreshold,
		LowUtilizationThreshold: cfg.LowUtilizationThreshold,
	}.normalize()
}

func (p Policy) normalize() Policy {
	def := DefaultPolicy()
	if p.StudentsPerProctor <= 0 {
		p.StudentsPerProctor = def.StudentsPerProctor
	}
	if p.OvercapacityTolerance < 0 {
		p.OvercapacityTolerance = 0
	}
	if p.LargeGapThreshold <= 0 {
		p.LargeGapThreshold = def.LargeGapThreshold
	}
	if p.LowUtilizationThreshold < 0 {
		p.LowUtilizationThreshold = 0
	}
	return p
}

// RecommendedProctors returns ceil(registered / StudentsPerProctor).
func (p Policy) RecommendedProctors(registered int) int {
	if registered <= 0 {
		return 0
	}
	ratio := p.normalize().StudentsPerProctor
	return (registered + ratio - 1) / ratio
}
