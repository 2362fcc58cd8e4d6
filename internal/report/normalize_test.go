package report

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishavarrier/quarterdash/pkg/models"
)

func TestNormalizeKeepsOnlyQuarterFrames(t *testing.T) {
	raw := []models.Disclosure{
		quarterly("2023-04-01", 100, "CY2023Q1"),
		{End: day("2023-12-31"), Val: 400, Form: "10-K", Frame: "CY2023"}, // annual frame
		{End: day("2023-07-01"), Val: 110, Form: "10-Q", Frame: ""},      // restated, no frame
		{Val: 120, Form: "10-Q", Frame: "CY2023Q2"},                      // missing period end
		quarterly("2023-07-01", 115, "CY2023Q2"),
	}

	rows := Normalize(raw)

	require.Len(t, rows, 2)
	assert.Equal(t, "CY2023Q2", rows[0].Frame)
	assert.Equal(t, 115.0, rows[0].Value)
	assert.Equal(t, "CY2023Q1", rows[1].Frame)
}

func TestNormalizeSortsNewestFirst(t *testing.T) {
	raw := []models.Disclosure{
		quarterly("2022-04-02", 1, "CY2022Q1"),
		quarterly("2023-04-01", 3, "CY2023Q1"),
		quarterly("2022-10-01", 2, "CY2022Q3"),
	}

	rows := Normalize(raw)

	require.Len(t, rows, 3)
	for i := 1; i < len(rows); i++ {
		assert.False(t, rows[i].End.After(rows[i-1].End),
			"rows must be sorted period-end descending")
	}
	assert.Equal(t, "CY2023Q1", rows[0].Frame)
}

func TestNormalizeStableForEqualPeriodEnds(t *testing.T) {
	end := "2023-04-01"
	raw := []models.Disclosure{
		quarterly(end, 1, "CY2023Q1"),
		quarterly(end, 2, "CY2023Q1"),
	}

	rows := Normalize(raw)

	require.Len(t, rows, 2)
	assert.Equal(t, 1.0, rows[0].Value)
	assert.Equal(t, 2.0, rows[1].Value)
}

func TestNormalizeEmptyInput(t *testing.T) {
	assert.Empty(t, Normalize(nil))
	assert.Empty(t, Normalize([]models.Disclosure{
		{End: time.Time{}, Frame: "CY2023Q1"},
	}))
}
