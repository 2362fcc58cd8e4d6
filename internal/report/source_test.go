package report

import (
	"context"
	"time"

	"github.com/ishavarrier/quarterdash/pkg/models"
)

// fakeSource is an in-memory ConceptSource. Concepts listed in series are
// available; everything else probes false and fetches as absent.
type fakeSource struct {
	series  map[string][]models.Disclosure // keyed by concept tag
	probes  []string
	fetches []string
}

func (f *fakeSource) ConceptExists(_ context.Context, _, tag string) bool {
	f.probes = append(f.probes, tag)
	_, ok := f.series[tag]
	return ok
}

func (f *fakeSource) FetchConcept(_ context.Context, _, tag string) ([]models.Disclosure, bool) {
	f.fetches = append(f.fetches, tag)
	s, ok := f.series[tag]
	return s, ok
}

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func quarterly(end string, val float64, frame string) models.Disclosure {
	return models.Disclosure{End: day(end), Val: val, Form: "10-Q", Frame: frame}
}
