// Package report builds the quarterly financial table for one company and
// computes period-over-period changes. It consumes already-deserialized
// EDGAR concept series through the ConceptSource boundary; all network
// behavior lives behind that interface.
package report

import "github.com/ishavarrier/quarterdash/pkg/models"

// Companies report revenue under inconsistent us-gaap concepts. The probe
// order is per-company preferences first, then the defaults, and the
// fallback tag is used unprobed when nothing confirms.
var (
	// RevenuePreferences maps registry company names to their preferred
	// revenue concepts, in probe order.
	RevenuePreferences = map[string][]string{
		"Intel":             {"RevenueFromContractWithCustomerExcludingAssessedTax"},
		"Texas Instruments": {"RevenueFromContractWithCustomerExcludingAssessedTax", "SalesRevenueNet"},
		"Apple":             {"SalesRevenueNet"},
		"Microsoft":         {"SalesRevenueNet"},
		"Google":            {"Revenues"},
		"Alphabet":          {"Revenues"},
		"Amazon":            {"SalesRevenueNet"},
		"Tesla":             {"SalesRevenueNet"},
		"NVIDIA":            {"RevenueFromContractWithCustomerExcludingAssessedTax"},
	}

	// DefaultRevenueTags is the global probe order after preferences.
	DefaultRevenueTags = []string{
		"RevenueFromContractWithCustomerExcludingAssessedTax",
		"SalesRevenueNet",
		"Revenues",
		"SalesRevenueGoodsNet",
		"SalesRevenueServicesNet",
	}
)

// FallbackRevenueTag is returned when no candidate concept confirms.
const FallbackRevenueTag = "SalesRevenueNet"

// auxConcept pairs a fixed metric label with its entity-independent concept.
type auxConcept struct {
	Label string
	Tag   string
}

// auxConcepts are fetched for every company alongside the resolved revenue
// concept, in table column order.
var auxConcepts = []auxConcept{
	{models.MetricGrossProfit, "GrossProfit"},
	{models.MetricNetIncome, "NetIncomeLoss"},
	{models.MetricCashFlow, "NetCashProvidedByUsedInOperatingActivities"},
}

// DefaultCompanies is the picker shortlist shown before any search.
var DefaultCompanies = []string{
	"INTEL CORP",
	"Marvell Technology, Inc.",
	"CISCO SYSTEMS, INC.",
	"AMPHENOL CORP /DE/",
	"QUALCOMM INC/DE",
	"Broadcom Inc.",
	"NVIDIA CORP",
}
