package scheduling

import (
	"fmt"
	"strings"
	"time"

	"github.com/Zookegger/ExamPro-Scheduler-sub000/internal/models"
)

// SeverityFilter selects which report buckets are populated.
type SeverityFilter string

const (
	SeverityAll      SeverityFilter = "all"
	SeverityCritical SeverityFilter = SeverityFilter(models.SeverityCritical)
	SeverityWarning  SeverityFilter = SeverityFilter(models.SeverityWarning)
	SeverityInfo     SeverityFilter = SeverityFilter(models.SeverityInfo)
)

// ParseSeverityFilter accepts critical, warning, info or all. Empty means all.
func ParseSeverityFilter(raw string) (SeverityFilter, error) {
	switch f := SeverityFilter(strings.ToLower(strings.TrimSpace(raw))); f {
	case "", SeverityAll:
		return SeverityAll, nil
	case SeverityCritical, SeverityWarning, SeverityInfo:
		return f, nil
	default:
		return "", fmt.Errorf("unknown severity %q", raw)
	}
}

func (f SeverityFilter) includes(severity models.FindingSeverity) bool {
	return f == SeverityAll || f == "" || string(f) == string(severity)
}

// Analysis holds the output of every check over one snapshot.
type Analysis struct {
	RoomConflicts    []models.ScheduleFinding
	ProctorConflicts []models.ScheduleFinding
	Overcapacity     []models.ScheduleFinding
	Understaffed     []models.ScheduleFinding
	LargeGaps        []models.ScheduleFinding
	LowUtilization   []models.ScheduleFinding
	Analyzed         int
	Skipped          []string
}

// Analyze runs the conflict, capacity and advisory checks over exams. Cancelled exams and exams
// whose end does not follow their start are left out; the latter are listed in Skipped.
func Analyze(exams []models.ExamOccupancy, policy Policy) Analysis {
	policy = policy.normalize()
	snap := newSnapshot(exams)
	return Analysis{
		RoomConflicts:    detectRoomConflicts(snap),
		ProctorConflicts: detectProctorConflicts(snap),
		Overcapacity:     detectOvercapacity(snap, policy),
		Understaffed:     detectUnderstaffing(snap, policy),
		LargeGaps:        detectLargeGaps(snap, policy),
		LowUtilization:   detectLowUtilization(snap, policy),
		Analyzed:         len(snap.entries),
		Skipped:          snap.skipped,
	}
}

// Critical returns room conflicts followed by proctor conflicts.
func (a Analysis) Critical() []models.ScheduleFinding {
	return concat(a.RoomConflicts, a.ProctorConflicts)
}

// Warning returns overcapacity followed by understaffing findings.
func (a Analysis) Warning() []models.ScheduleFinding {
	return concat(a.Overcapacity, a.Understaffed)
}

// Info returns gap followed by utilization suggestions.
func (a Analysis) Info() []models.ScheduleFinding {
	return concat(a.LargeGaps, a.LowUtilization)
}

// Report assembles the severity buckets selected by filter.
func (a Analysis) Report(from, to time.Time, filter SeverityFilter, generatedAt time.Time) models.ConflictReport {
	if filter == "" {
		filter = SeverityAll
	}
	report := models.ConflictReport{
		DateFrom:    from.Format(models.DateLayout),
		DateTo:      to.Format(models.DateLayout),
		Severity:    string(filter),
		Critical:    []models.ScheduleFinding{},
		Warning:     []models.ScheduleFinding{},
		Info:        []models.ScheduleFinding{},
		GeneratedAt: generatedAt.UTC(),
	}
	if filter.includes(models.SeverityCritical) {
		report.Critical = a.Critical()
	}
	if filter.includes(models.SeverityWarning) {
		report.Warning = a.Warning()
	}
	if filter.includes(models.SeverityInfo) {
		report.Info = a.Info()
	}

	summary := models.ReportSummary{
		Critical:      len(report.Critical),
		Warning:       len(report.Warning),
		Info:          len(report.Info),
		ByType:        make(map[models.FindingType]int),
		ExamsAnalyzed: a.Analyzed,
		ExamsSkipped:  a.Skipped,
	}
	summary.Total = summary.Critical + summary.Warning + summary.Info
	for _, f := range report.Findings() {
		summary.ByType[f.Type]++
	}
	report.Summary = summary
	return report
}

func concat(lists ...[]models.ScheduleFinding) []models.ScheduleFinding {
	out := make([]models.ScheduleFinding, 0)
	for _, l := range lists {
		out = append(out, l...)
	}
	return out
}
