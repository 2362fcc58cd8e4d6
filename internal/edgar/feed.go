package edgar

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/ishavarrier/quarterdash/internal/infra"
	"github.com/ishavarrier/quarterdash/pkg/models"
)

// LatestFilings returns the company's most recent filings from the EDGAR
// Atom feed, newest first, capped at limit.
func (c *Client) LatestFilings(ctx context.Context, cik string, limit int) ([]models.Filing, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s?action=getcompany&CIK=%s&type=&dateb=&owner=include&count=%d&output=atom",
		c.BrowseURL, padCIK(cik), max(limit, 10))
	body, _, err := infra.DoGet(ctx, u, c.headers())
	if err != nil {
		return nil, fmt.Errorf("filings feed: %w", err)
	}
	defer body.Close()

	feed, err := gofeed.NewParser().Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse filings feed: %w", err)
	}

	filings := make([]models.Filing, 0, len(feed.Items))
	for _, item := range feed.Items {
		f := models.Filing{
			Title: item.Title,
			Link:  item.Link,
		}
		if len(item.Categories) > 0 {
			f.FormType = item.Categories[0]
		}
		if item.UpdatedParsed != nil {
			f.Filed = *item.UpdatedParsed
		} else if item.PublishedParsed != nil {
			f.Filed = *item.PublishedParsed
		}
		filings = append(filings, f)
		if limit > 0 && len(filings) >= limit {
			break
		}
	}
	return filings, nil
}

// FilingDocuments lists the documents on a filing index page.
func (c *Client) FilingDocuments(ctx context.Context, indexURL string) ([]models.FilingDocument, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, _, err := infra.DoGet(ctx, indexURL, map[string]string{
		"User-Agent": c.userAgent,
		"Accept":     "text/html",
	})
	if err != nil {
		return nil, fmt.Errorf("filing index: %w", err)
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse filing index: %w", err)
	}

	base, err := url.Parse(indexURL)
	if err != nil {
		return nil, fmt.Errorf("filing index URL: %w", err)
	}

	var docs []models.FilingDocument
	doc.Find("table.tableFile tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() < 4 {
			return // header or spacer row
		}
		link := cells.Eq(2).Find("a")
		href, _ := link.Attr("href")
		d := models.FilingDocument{
			Seq:         strings.TrimSpace(cells.Eq(0).Text()),
			Description: strings.TrimSpace(cells.Eq(1).Text()),
			Name:        strings.TrimSpace(link.Text()),
			Type:        strings.TrimSpace(cells.Eq(3).Text()),
		}
		if href != "" {
			if ref, err := url.Parse(href); err == nil {
				d.URL = base.ResolveReference(ref).String()
			}
		}
		docs = append(docs, d)
	})
	return docs, nil
}
