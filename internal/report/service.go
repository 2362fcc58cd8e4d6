package report

import (
	"context"
	"fmt"
	"time"

	"github.com/ishavarrier/quarterdash/internal/infra"
	"github.com/ishavarrier/quarterdash/pkg/models"
)

// DefaultTableTTL bounds how long a built table is served before the
// concept series are re-fetched.
const DefaultTableTTL = time.Hour

// Service ties the resolver and table builder to the EDGAR boundary and
// caches built tables. The cache is keyed by (cik, revenue tag, company
// name); concurrent requests for the same key share one build.
type Service struct {
	src   ConceptSource
	cache *infra.Cache
}

// NewService creates a report service with the given table TTL.
// A non-positive ttl falls back to DefaultTableTTL.
func NewService(src ConceptSource, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTableTTL
	}
	return &Service{
		src:   src,
		cache: infra.NewCache(ttl),
	}
}

// ResolveRevenueTag resolves the company's best revenue concept.
func (s *Service) ResolveRevenueTag(ctx context.Context, companyName, cik string) string {
	return ResolveRevenueTagForCompany(ctx, s.src, companyName, cik)
}

// Table returns the tidy quarter table for the company, building it on a
// cache miss. An empty table means the company has no reportable quarters;
// it is cached like any other result.
func (s *Service) Table(ctx context.Context, companyName, cik string) (*models.TidyTable, error) {
	tag := s.ResolveRevenueTag(ctx, companyName, cik)
	key := tableKey(cik, tag, companyName)

	v, err := s.cache.GetOrCompute(key, func() (any, error) {
		return BuildTable(ctx, s.src, cik, tag), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*models.TidyTable), nil
}

// Changes computes the change set for one quarter of the company's table.
func (s *Service) Changes(ctx context.Context, companyName, cik, quarter string) (*models.ChangeSet, error) {
	table, err := s.Table(ctx, companyName, cik)
	if err != nil {
		return nil, err
	}
	return ComputeChanges(table, quarter)
}

// InvalidateTable drops the cached table for one selection.
func (s *Service) InvalidateTable(companyName, cik, revenueTag string) {
	s.cache.Invalidate(tableKey(cik, revenueTag, companyName))
}

// tableKey builds a deterministic cache key for one table selection.
func tableKey(cik, tag, name string) string {
	return fmt.Sprintf("table:cik=%s:tag=%s:name=%s", cik, tag, name)
}
