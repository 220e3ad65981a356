package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Title:   "Schedule conflicts",
		Notes:   []string{"Range: 2025-06-01 to 2025-06-30"},
		Headers: []string{"severity", "type", "message"},
		Rows: []map[string]string{
			{"severity": "critical", "type": "ROOM_CONFLICT", "message": "Room A101 double booked, Math Final and Physics Final"},
			{"severity": "info", "type": "SCHEDULE_GAP", "message": strings.Repeat("long message ", 40)},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "severity,type,message", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "critical,ROOM_CONFLICT,"))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	exporter := &PDFExporter{Widths: map[string]float64{"severity": 25, "type": 40}}
	out, err := exporter.Render(sampleDataset())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
	assert.Equal(t, "application/pdf", exporter.ContentType())
}
