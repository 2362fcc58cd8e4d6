package report

import (
	"context"

	"github.com/ishavarrier/quarterdash/pkg/models"
)

// ConceptSource is the slice of the EDGAR boundary the pipeline needs.
// Implementations absorb upstream failures: a failed probe reports false
// and a failed fetch reports absence, never an error.
type ConceptSource interface {
	// ConceptExists reports whether a concept is available for the company.
	ConceptExists(ctx context.Context, cik, tag string) bool

	// FetchConcept returns the USD series for a concept, or ok=false when
	// the concept is unavailable.
	FetchConcept(ctx context.Context, cik, tag string) ([]models.Disclosure, bool)
}

// ResolveRevenueTag probes the candidate revenue concepts in order,
// preferences before defaults, and returns the first one confirmed for the
// company. When nothing confirms it returns FallbackRevenueTag without a
// further probe. A probe failure counts as "not available" for ordering,
// never as a hard error; the extra round-trips buy correct revenue columns
// across companies that tag revenue inconsistently.
func ResolveRevenueTag(ctx context.Context, src ConceptSource, cik string, preferences, defaults []string) string {
	candidates := make([]string, 0, len(preferences)+len(defaults))
	candidates = append(candidates, preferences...)
	candidates = append(candidates, defaults...)

	for _, tag := range candidates {
		if src.ConceptExists(ctx, cik, tag) {
			return tag
		}
	}
	return FallbackRevenueTag
}

// ResolveRevenueTagForCompany resolves using the company's configured
// preferences and the global default order.
func ResolveRevenueTagForCompany(ctx context.Context, src ConceptSource, companyName, cik string) string {
	return ResolveRevenueTag(ctx, src, cik, RevenuePreferences[companyName], DefaultRevenueTags)
}
