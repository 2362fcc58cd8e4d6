package report

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/ishavarrier/quarterdash/pkg/models"
)

// quarterLabelRe matches the calendar-frame labels EDGAR assigns to
// quarterly facts, e.g. "CY2023Q2".
var quarterLabelRe = regexp.MustCompile(`^CY(\d{4})Q([1-4])$`)

// ErrQuarterNotFound is returned when the selected quarter label has no row
// in the table.
type ErrQuarterNotFound struct {
	Quarter string
}

func (e *ErrQuarterNotFound) Error() string {
	return fmt.Sprintf("selected quarter %q not found", e.Quarter)
}

// ComputeChanges returns the raw values for the selected quarter plus its
// quarter-over-quarter and year-over-year percentage deltas.
//
// A delta is computed per metric and per direction only when the current
// value is present, the reference row exists, the reference value is
// present, and the reference is nonzero; otherwise the metric is simply
// absent from that map. Labels outside the CY{year}Q{n} pattern (irregular
// filings produce such frames) yield no deltas at all, without error.
func ComputeChanges(table *models.TidyTable, quarter string) (*models.ChangeSet, error) {
	row, ok := table.FindQuarter(quarter)
	if !ok {
		return nil, &ErrQuarterNotFound{Quarter: quarter}
	}

	cs := &models.ChangeSet{
		Quarter: quarter,
		Current: make(map[string]float64, len(table.Columns)),
		QoQ:     make(map[string]float64),
		YoY:     make(map[string]float64),
	}
	for _, col := range table.Columns {
		if v, ok := row.Metric(col); ok {
			cs.Current[col] = v
		}
	}

	m := quarterLabelRe.FindStringSubmatch(quarter)
	if m == nil {
		return cs, nil
	}
	year, _ := strconv.Atoi(m[1])
	q, _ := strconv.Atoi(m[2])

	computeDeltas(cs.QoQ, table, row, priorQuarterLabel(year, q))
	computeDeltas(cs.YoY, table, row, fmt.Sprintf("CY%dQ%d", year-1, q))
	return cs, nil
}

// priorQuarterLabel returns the immediately preceding fiscal quarter label;
// Q1 wraps to Q4 of the prior year.
func priorQuarterLabel(year, q int) string {
	if q > 1 {
		return fmt.Sprintf("CY%dQ%d", year, q-1)
	}
	return fmt.Sprintf("CY%dQ4", year-1)
}

// computeDeltas fills dst with (current-ref)/ref per metric where both
// values exist and the reference is nonzero.
func computeDeltas(dst map[string]float64, table *models.TidyTable, row models.TidyRow, refLabel string) {
	ref, ok := table.FindQuarter(refLabel)
	if !ok {
		return
	}
	for _, col := range table.Columns {
		cur, curOK := row.Metric(col)
		refVal, refOK := ref.Metric(col)
		if curOK && refOK && refVal != 0 {
			dst[col] = (cur - refVal) / refVal
		}
	}
}
