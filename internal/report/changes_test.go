package report

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ishavarrier/quarterdash/pkg/models"
)

// changesTable builds a small three-year revenue table through the real
// pipeline so the change tests exercise the same row shapes production sees.
func changesTable(t *testing.T) *models.TidyTable {
	t.Helper()
	src := &fakeSource{series: map[string][]models.Disclosure{
		"Revenues": {
			quarterly("2023-07-01", 110, "CY2023Q2"),
			quarterly("2023-04-01", 100, "CY2023Q1"),
			quarterly("2023-01-01", 90, "CY2022Q4"),
			quarterly("2022-07-02", 80, "CY2022Q2"),
		},
		"NetIncomeLoss": {
			quarterly("2023-07-01", 20, "CY2023Q2"),
			quarterly("2023-04-01", 0, "CY2023Q1"),
			quarterly("2023-01-01", 15, "CY2022Q4"),
		},
	}}
	table := BuildTable(context.Background(), src, "0000000001", "Revenues")
	require.False(t, table.Empty())
	return table
}

func TestComputeChangesYoY(t *testing.T) {
	table := changesTable(t)

	cs, err := ComputeChanges(table, "CY2023Q2")
	require.NoError(t, err)

	assert.Equal(t, "CY2023Q2", cs.Quarter)
	assert.Equal(t, 110.0, cs.Current[models.MetricRevenue])
	// 110 vs 80 a year earlier.
	assert.InDelta(t, 0.375, cs.YoY[models.MetricRevenue], 1e-9)
	// 110 vs 100 the quarter before.
	assert.InDelta(t, 0.1, cs.QoQ[models.MetricRevenue], 1e-9)
}

func TestComputeChangesYoYAgainstSameQuarterPriorYear(t *testing.T) {
	table := &models.TidyTable{
		Columns: []string{models.MetricRevenue},
		Rows: []models.TidyRow{
			{Date: day("2023-04-01"), Quarter: "CY2023Q1", Metrics: map[string]float64{models.MetricRevenue: 100}},
			{Date: day("2022-04-02"), Quarter: "CY2022Q1", Metrics: map[string]float64{models.MetricRevenue: 80}},
		},
	}

	cs, err := ComputeChanges(table, "CY2023Q1")
	require.NoError(t, err)

	assert.InDelta(t, 0.25, cs.YoY[models.MetricRevenue], 1e-9)
}

func TestComputeChangesQ1ReferencesPriorYearQ4(t *testing.T) {
	table := changesTable(t)

	cs, err := ComputeChanges(table, "CY2023Q1")
	require.NoError(t, err)

	// QoQ for Q1 compares against Q4 of the prior year: 100 vs 90.
	assert.InDelta(t, 100.0/90.0-1, cs.QoQ[models.MetricRevenue], 1e-9)
}

func TestComputeChangesMissingReferenceQuarter(t *testing.T) {
	table := changesTable(t)

	cs, err := ComputeChanges(table, "CY2022Q4")
	require.NoError(t, err)

	// CY2022Q3 and CY2021Q4 are not in the table.
	assert.Empty(t, cs.QoQ)
	assert.Empty(t, cs.YoY)
	assert.Equal(t, 90.0, cs.Current[models.MetricRevenue])
}

func TestComputeChangesZeroReferenceValue(t *testing.T) {
	table := changesTable(t)

	cs, err := ComputeChanges(table, "CY2023Q2")
	require.NoError(t, err)

	// Net income in CY2023Q1 is zero, so the QoQ delta is undefined.
	_, ok := cs.QoQ[models.MetricNetIncome]
	assert.False(t, ok)
}

func TestComputeChangesMissingMetricInReference(t *testing.T) {
	table := changesTable(t)

	cs, err := ComputeChanges(table, "CY2023Q2")
	require.NoError(t, err)

	// CY2022Q2 has no net income value; the YoY delta is absent, not zero.
	_, ok := cs.YoY[models.MetricNetIncome]
	assert.False(t, ok)
	assert.Contains(t, cs.YoY, models.MetricRevenue)
}

func TestComputeChangesIrregularLabelYieldsNoDeltas(t *testing.T) {
	table := &models.TidyTable{
		Columns: []string{models.MetricRevenue},
		Rows: []models.TidyRow{
			{Date: day("2023-04-01"), Quarter: "FY2023", Metrics: map[string]float64{models.MetricRevenue: 100}},
		},
	}

	cs, err := ComputeChanges(table, "FY2023")
	require.NoError(t, err)

	assert.Equal(t, 100.0, cs.Current[models.MetricRevenue])
	assert.Empty(t, cs.QoQ)
	assert.Empty(t, cs.YoY)
}

func TestComputeChangesUnknownQuarter(t *testing.T) {
	table := changesTable(t)

	_, err := ComputeChanges(table, "CY2019Q1")

	var notFound *ErrQuarterNotFound
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "CY2019Q1", notFound.Quarter)
}
