//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/leadgen-cli/internal/model"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2026, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []model.Run{
		{
			ID:       "abc12345-6789-0000-0000-000000000000",
			Keywords: []string{"organoid", "hepatotoxicity"},
			Status:   model.RunStatusComplete,
			Summary: &model.RunSummary{
				Leads:    12,
				AvgScore: 54.3,
			},
			CreatedAt: now,
			UpdatedAt: now.Add(2 * time.Minute),
		},
		{
			ID:        "def12345-6789-0000-0000-000000000000",
			Keywords:  []string{"liver toxicity models"},
			Status:    model.RunStatusRunning,
			CreatedAt: now.Add(-1 * time.Hour),
			UpdatedAt: now.Add(-30 * time.Minute),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "KEYWORDS")
	assert.Contains(t, output, "STATUS")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "organoid (+1)")
	assert.Contains(t, output, "complete")
	assert.Contains(t, output, "12")
	assert.Contains(t, output, "54.3")
	assert.Contains(t, output, "running")
	assert.Contains(t, output, "2026-06-15 10:30")
}

func TestFormatRunsList_NoSummary(t *testing.T) {
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Keywords:  []string{"spheroid"},
			Status:    model.RunStatusFailed,
			CreatedAt: time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	// A run without a summary shows dashes for leads and average score.
	output := buf.String()
	assert.Contains(t, output, "failed")
	assert.Contains(t, output, "-")
}

func TestFormatRunsList_TruncatesLongKeyword(t *testing.T) {
	runs := []model.Run{
		{
			ID:        "abc12345-6789-0000-0000-000000000000",
			Keywords:  []string{"microphysiological systems for hepatic safety assessment"},
			Status:    model.RunStatusComplete,
			CreatedAt: time.Date(2026, 1, 2, 9, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	assert.Contains(t, buf.String(), "microphysiological systems ...")
	assert.NotContains(t, buf.String(), "safety assessment")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-0000-0000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
}
