// Package edgar implements the SEC EDGAR data boundary for quarterdash.
// It covers the company ticker registry, XBRL company-concept series, and
// per-company filing feeds via the data.sec.gov / www.sec.gov REST APIs.
//
// No API key required. Must include a User-Agent header per SEC policy.
// Docs: https://www.sec.gov/edgar/sec-api-documentation
// Rate limit: 10 requests/second per user-agent.
package edgar

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/ishavarrier/quarterdash/internal/infra"
	"github.com/ishavarrier/quarterdash/pkg/models"
)

const (
	defaultDataURL    = "https://data.sec.gov"
	defaultTickersURL = "https://www.sec.gov/files/company_tickers.json"
	defaultBrowseURL  = "https://www.sec.gov/cgi-bin/browse-edgar"

	// SEC allows at most 10 requests per second per user-agent.
	requestsPerSecond = 10
)

// Client fetches company and concept data from SEC EDGAR. Upstream failures
// on concept probes and fetches are absorbed here and surfaced as absence;
// only registry lookups propagate errors.
type Client struct {
	// DataURL, TickersURL and BrowseURL are overridable for tests.
	DataURL    string
	TickersURL string
	BrowseURL  string

	userAgent string
	limiter   *infra.RateLimiter
	memo      *infra.Memo // company list and name→CIK lookups, process lifetime
}

// NewClient creates an EDGAR client. userAgent must identify the caller with
// a contact address per SEC policy.
func NewClient(userAgent string) *Client {
	return &Client{
		DataURL:    defaultDataURL,
		TickersURL: defaultTickersURL,
		BrowseURL:  defaultBrowseURL,
		userAgent:  userAgent,
		limiter:    infra.NewRateLimiter(requestsPerSecond, time.Second),
		memo:       infra.NewMemo(),
	}
}

// ErrCompanyNotFound is returned when a company name has no registry entry.
type ErrCompanyNotFound struct {
	Name string
}

func (e *ErrCompanyNotFound) Error() string {
	return fmt.Sprintf("company %q not found in SEC registry", e.Name)
}

func (c *Client) headers() map[string]string {
	return map[string]string{
		"User-Agent": c.userAgent,
		"Accept":     "application/json",
	}
}

// fetchJSON performs a rate-limited GET and decodes the JSON response.
func (c *Client) fetchJSON(ctx context.Context, url string, dest any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	body, _, err := infra.DoGet(ctx, url, c.headers())
	if err != nil {
		return err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return fmt.Errorf("read SEC response: %w", err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("parse SEC JSON: %w", err)
	}
	return nil
}

// CompanyList returns the full SEC company registry, sorted by name.
// The list is fetched once per process and memoized.
func (c *Client) CompanyList(ctx context.Context) ([]models.Company, error) {
	if v, ok := c.memo.Get("company_list"); ok {
		return v.([]models.Company), nil
	}

	var raw map[string]tickerEntry
	if err := c.fetchJSON(ctx, c.TickersURL, &raw); err != nil {
		return nil, fmt.Errorf("company list: %w", err)
	}

	companies := make([]models.Company, 0, len(raw))
	for _, entry := range raw {
		companies = append(companies, models.Company{
			Name:   entry.Title,
			Ticker: entry.Ticker,
			CIK:    padCIK(fmt.Sprintf("%d", entry.CIKStr)),
		})
	}
	sort.Slice(companies, func(i, j int) bool {
		return companies[i].Name < companies[j].Name
	})

	c.memo.Set("company_list", companies)
	return companies, nil
}

// ResolveCIK returns the zero-padded CIK for an exact company name.
// Resolved names are memoized for the process lifetime.
func (c *Client) ResolveCIK(ctx context.Context, name string) (string, error) {
	key := "cik:" + name
	if v, ok := c.memo.Get(key); ok {
		return v.(string), nil
	}

	companies, err := c.CompanyList(ctx)
	if err != nil {
		return "", err
	}
	for _, co := range companies {
		if co.Name == name {
			c.memo.Set(key, co.CIK)
			return co.CIK, nil
		}
	}
	return "", &ErrCompanyNotFound{Name: name}
}

// Search returns companies whose name, ticker, or CIK contains the query,
// case-insensitively, capped at limit.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]models.Company, error) {
	companies, err := c.CompanyList(ctx)
	if err != nil {
		return nil, err
	}

	queryUpper := strings.ToUpper(query)
	var results []models.Company
	for _, co := range companies {
		if strings.Contains(strings.ToUpper(co.Name), queryUpper) ||
			strings.Contains(strings.ToUpper(co.Ticker), queryUpper) ||
			strings.Contains(co.CIK, query) {
			results = append(results, co)
			if limit > 0 && len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// FindCompany returns the best registry match for a free-form query:
// an exact name or ticker match if one exists, else the first substring hit.
func (c *Client) FindCompany(ctx context.Context, query string) (models.Company, error) {
	companies, err := c.CompanyList(ctx)
	if err != nil {
		return models.Company{}, err
	}
	for _, co := range companies {
		if strings.EqualFold(co.Name, query) || strings.EqualFold(co.Ticker, query) {
			return co, nil
		}
	}
	matches, err := c.Search(ctx, query, 1)
	if err != nil {
		return models.Company{}, err
	}
	if len(matches) == 0 {
		return models.Company{}, &ErrCompanyNotFound{Name: query}
	}
	return matches[0], nil
}

func (c *Client) conceptURL(cik, tag string) string {
	return fmt.Sprintf("%s/api/xbrl/companyconcept/CIK%s/us-gaap/%s.json", c.DataURL, padCIK(cik), tag)
}

// ConceptExists probes whether a us-gaap concept is reported for the company.
// Any failure, transport or status, counts as "not available".
func (c *Client) ConceptExists(ctx context.Context, cik, tag string) bool {
	if err := c.limiter.Wait(ctx); err != nil {
		return false
	}
	body, _, err := infra.DoGet(ctx, c.conceptURL(cik, tag), c.headers())
	if err != nil {
		return false
	}
	body.Close()
	return true
}

// FetchConcept returns the USD series for a us-gaap concept. The second
// return is false when the concept is unavailable for the company or the
// fetch failed; failures never propagate as errors.
func (c *Client) FetchConcept(ctx context.Context, cik, tag string) ([]models.Disclosure, bool) {
	var resp conceptResponse
	if err := c.fetchJSON(ctx, c.conceptURL(cik, tag), &resp); err != nil {
		log.Printf("edgar: concept %s unavailable for CIK %s: %v", tag, cik, err)
		return nil, false
	}

	facts := resp.Units["USD"]
	series := make([]models.Disclosure, 0, len(facts))
	for _, f := range facts {
		end, err := time.Parse("2006-01-02", f.End)
		if err != nil {
			continue
		}
		series = append(series, models.Disclosure{
			End:   end,
			Val:   f.Val,
			Form:  f.Form,
			FY:    f.FY,
			FP:    f.FP,
			Frame: f.Frame,
		})
	}
	return series, true
}

// padCIK pads a CIK number to 10 digits with leading zeros.
func padCIK(cik string) string {
	for len(cik) < 10 {
		cik = "0" + cik
	}
	return cik
}
