// Package models defines the shared data types exchanged between the
// EDGAR client, the report pipeline, the API layer, and the CLI.
package models

import "time"

// Company is one entry from the SEC company ticker registry.
type Company struct {
	Name   string `json:"name"`
	Ticker string `json:"ticker"`
	CIK    string `json:"cik"` // zero-padded to 10 digits
}

// Disclosure is one reported value for an XBRL concept, as returned by the
// data.sec.gov companyconcept API (units.USD entries).
type Disclosure struct {
	End   time.Time `json:"end"`   // period end date
	Val   float64   `json:"val"`   // reported amount, USD
	Form  string    `json:"form"`  // filing form, e.g. "10-Q"
	FY    int       `json:"fy"`    // fiscal year of the filing
	FP    string    `json:"fp"`    // fiscal period label, e.g. "Q1", "FY"
	Frame string    `json:"frame"` // calendar frame, e.g. "CY2023Q2"; may be empty
}

// NormalizedRow is a disclosure retained for quarter-granularity reporting:
// a present period end plus a frame label carrying a quarter marker.
type NormalizedRow struct {
	End   time.Time `json:"end"`
	Frame string    `json:"frame"`
	Value float64   `json:"value"`
}

// Metric labels used as tidy table column names.
const (
	MetricRevenue     = "Revenue"
	MetricGrossProfit = "Gross Profit"
	MetricNetIncome   = "Net Income"
	MetricCashFlow    = "Cash Flow"
	MetricGrossMargin = "Gross Margin"
)

// TidyRow is one quarter of the joined table. Metrics is keyed by metric
// label; an absent key means the concept reported nothing for this quarter.
// Revenue is always present (rows without it are dropped by the builder).
type TidyRow struct {
	Date    time.Time          `json:"date"`
	Quarter string             `json:"quarter"`
	Metrics map[string]float64 `json:"metrics"`
}

// Metric returns the value for a metric label and whether it is present.
func (r TidyRow) Metric(label string) (float64, bool) {
	v, ok := r.Metrics[label]
	return v, ok
}

// TidyTable is the one-row-per-quarter join output, sorted newest first.
// Columns lists the metric labels present for this company, in table order.
type TidyTable struct {
	Columns []string  `json:"columns"`
	Rows    []TidyRow `json:"rows"`
}

// Empty reports whether the table carries no reportable quarters.
func (t *TidyTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Quarters returns the quarter labels in table order.
func (t *TidyTable) Quarters() []string {
	if t == nil {
		return nil
	}
	qs := make([]string, 0, len(t.Rows))
	for _, r := range t.Rows {
		qs = append(qs, r.Quarter)
	}
	return qs
}

// FindQuarter returns the row for a quarter label, if present.
func (t *TidyTable) FindQuarter(label string) (TidyRow, bool) {
	if t == nil {
		return TidyRow{}, false
	}
	for _, r := range t.Rows {
		if r.Quarter == label {
			return r, true
		}
	}
	return TidyRow{}, false
}

// ChangeSet holds the raw values for a selected quarter and its percentage
// deltas against the prior quarter and the same quarter of the prior year.
// All three maps are keyed by metric label; an absent key in QoQ or YoY
// means that delta is not available for that metric.
type ChangeSet struct {
	Quarter string             `json:"quarter"`
	Current map[string]float64 `json:"current"`
	QoQ     map[string]float64 `json:"qoq"`
	YoY     map[string]float64 `json:"yoy"`
}

// Filing is one entry from a company's EDGAR filings feed.
type Filing struct {
	Title    string    `json:"title"`
	FormType string    `json:"form_type"`
	Filed    time.Time `json:"filed"`
	Link     string    `json:"link"` // filing index page URL
}

// FilingDocument is one document listed on a filing index page.
type FilingDocument struct {
	Seq         string `json:"seq"`
	Description string `json:"description"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	URL         string `json:"url"`
}
