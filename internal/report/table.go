package report

import (
	"context"
	"sort"
	"time"

	"github.com/ishavarrier/quarterdash/pkg/models"
)

const dateLayout = "2006-01-02"

// joinKey identifies one reporting period across concept series.
type joinKey struct {
	end   string
	frame string
}

// BuildTable fetches the resolved revenue concept and the fixed auxiliary
// concepts, normalizes each series, outer-joins them on (period end, frame),
// and returns the tidy quarter table sorted newest first.
//
// Revenue anchors the table: periods without a revenue value are dropped,
// and an empty revenue series yields an empty table ("no data"), not an
// error. Concepts the company never reports simply contribute no column.
func BuildTable(ctx context.Context, src ConceptSource, cik, revenueTag string) *models.TidyTable {
	concepts := make([]auxConcept, 0, 1+len(auxConcepts))
	concepts = append(concepts, auxConcept{models.MetricRevenue, revenueTag})
	concepts = append(concepts, auxConcepts...)

	var columns []string
	cells := make(map[joinKey]map[string]float64)
	dates := make(map[joinKey]time.Time)

	for _, concept := range concepts {
		raw, ok := src.FetchConcept(ctx, cik, concept.Tag)
		if !ok {
			continue
		}
		norm := Normalize(raw)
		if len(norm) == 0 {
			continue
		}
		columns = append(columns, concept.Label)

		for _, n := range norm {
			k := joinKey{end: n.End.Format(dateLayout), frame: n.Frame}
			row, ok := cells[k]
			if !ok {
				row = make(map[string]float64)
				cells[k] = row
				dates[k] = n.End
			}
			// A concept can report the same frame twice (original plus
			// restated filing); the series is newest-first, keep the first.
			if _, dup := row[concept.Label]; !dup {
				row[concept.Label] = n.Value
			}
		}
	}

	rows := make([]models.TidyRow, 0, len(cells))
	for k, metrics := range cells {
		rows = append(rows, models.TidyRow{
			Date:    dates[k],
			Quarter: k.frame,
			Metrics: metrics,
		})
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.After(rows[j].Date)
		}
		return rows[i].Quarter > rows[j].Quarter
	})

	rows = filterMetric(rows, models.MetricRevenue)

	if containsColumn(columns, models.MetricGrossProfit) {
		rows = filterMetric(rows, models.MetricGrossProfit)
		for _, r := range rows {
			rev := r.Metrics[models.MetricRevenue]
			if rev != 0 {
				r.Metrics[models.MetricGrossMargin] = r.Metrics[models.MetricGrossProfit] / rev
			}
		}
		columns = append(columns, models.MetricGrossMargin)
	}

	rows = dedupeByQuarter(rows)

	if len(rows) == 0 {
		return &models.TidyTable{}
	}
	return &models.TidyTable{Columns: columns, Rows: rows}
}

// filterMetric keeps only rows where the metric is present.
func filterMetric(rows []models.TidyRow, label string) []models.TidyRow {
	kept := rows[:0]
	for _, r := range rows {
		if _, ok := r.Metrics[label]; ok {
			kept = append(kept, r)
		}
	}
	return kept
}

// dedupeByQuarter keeps the first row per quarter label under the current
// newest-first order, discarding older duplicate filings for the same frame.
func dedupeByQuarter(rows []models.TidyRow) []models.TidyRow {
	seen := make(map[string]bool, len(rows))
	kept := rows[:0]
	for _, r := range rows {
		if seen[r.Quarter] {
			continue
		}
		seen[r.Quarter] = true
		kept = append(kept, r)
	}
	return kept
}

func containsColumn(columns []string, label string) bool {
	for _, c := range columns {
		if c == label {
			return true
		}
	}
	return false
}
