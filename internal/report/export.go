package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/ishavarrier/quarterdash/pkg/models"
)

// WriteCSV renders the tidy table as CSV: a Date and Quarter column followed
// by one column per metric in table order. Absent metrics render as empty
// fields. An empty table writes only the header.
func WriteCSV(w io.Writer, table *models.TidyTable) error {
	cw := csv.NewWriter(w)

	header := append([]string{"Date", "Quarter"}, table.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range table.Rows {
		record := make([]string, 0, len(header))
		record = append(record, row.Date.Format(dateLayout), row.Quarter)
		for _, col := range table.Columns {
			if v, ok := row.Metric(col); ok {
				record = append(record, strconv.FormatFloat(v, 'f', -1, 64))
			} else {
				record = append(record, "")
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
