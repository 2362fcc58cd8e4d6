package report

import (
	"sort"
	"strings"

	"github.com/ishavarrier/quarterdash/pkg/models"
)

// Normalize reduces a raw concept series to its quarter-granularity entries:
// a present period end plus a non-empty frame carrying a quarter marker.
// The raw feed mixes annual, quarterly, and restated entries under one
// concept; only frame-tagged quarterly entries are comparable across
// concepts for the table join. The result is sorted period-end descending.
func Normalize(raw []models.Disclosure) []models.NormalizedRow {
	rows := make([]models.NormalizedRow, 0, len(raw))
	for _, d := range raw {
		if d.End.IsZero() || d.Frame == "" || !strings.Contains(d.Frame, "Q") {
			continue
		}
		rows = append(rows, models.NormalizedRow{
			End:   d.End,
			Frame: d.Frame,
			Value: d.Val,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].End.After(rows[j].End)
	})
	return rows
}
