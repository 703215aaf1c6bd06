package portal

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jonesrussell/tenderscan/internal/domain"
	"github.com/jonesrussell/tenderscan/internal/extract"
	"github.com/jonesrussell/tenderscan/internal/logger"
	"github.com/jonesrussell/tenderscan/internal/sources"
)

const (
	feedTimeout    = 60 * time.Second
	feedRetries    = 2
	maxFeedRecords = 5000

	feedUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 " +
		"(KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// CanadaBuys publishes bilingual hyphenated column names, so each logical
// field carries a candidate list checked in order. Plainer feeds match the
// later candidates.
var (
	csvIDColumns       = []string{"solicitationnumber-numerosollicitation", "referencenumber-numeroreference", "tender_id", "id"}
	csvTitleColumns    = []string{"title-titre-eng", "title", "tender_title", "name"}
	csvOrgColumns      = []string{"contractingentityname-nomentitcontractante-eng", "organization", "buyer", "agency"}
	csvClosingColumns  = []string{"tenderclosingdate-appeloffresdatecloture", "closing_date", "closingdate", "deadline"}
	csvPostedColumns   = []string{"publicationdate-datepublication", "posted_date", "publication_date", "issued"}
	csvDescColumns     = []string{"tenderdescription-descriptionappeloffres-eng", "description", "summary"}
	csvLocationColumns = []string{"regionsofdelivery-regionslivraison-eng", "location", "region"}
	csvValueColumns    = []string{"contractvalue-valeurcontrat", "value", "estimated_value", "amount"}
	csvURLColumns      = []string{"noticeurl-urlavis-eng", "tender_url", "url", "link"}
)

// FeedAdapter pulls structured open-data feeds, CSV or JSON, over HTTP.
type FeedAdapter struct {
	client *resty.Client
	logger logger.Interface
}

func NewFeedAdapter(log logger.Interface) *FeedAdapter {
	client := resty.New().
		SetTimeout(feedTimeout).
		SetRetryCount(feedRetries).
		SetHeader("User-Agent", feedUserAgent).
		SetHeader("Accept", "text/csv,application/json;q=0.9,*/*;q=0.8")

	return &FeedAdapter{
		client: client,
		logger: log.WithComponent("feed"),
	}
}

// List fetches the source's feed and maps every record to a tender. An
// empty feed is a successful scan with no results.
func (a *FeedAdapter) List(ctx context.Context, src sources.Config) ([]domain.Tender, error) {
	target := searchTarget(src)

	resp, err := a.client.R().SetContext(ctx).Get(target)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %w", ErrNavigationFailed, target, err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrNavigationFailed, target, resp.StatusCode())
	}

	body := bytes.TrimSpace(resp.Body())
	if len(body) == 0 {
		return nil, nil
	}

	var tenders []domain.Tender
	if body[0] == '[' || body[0] == '{' {
		tenders, err = a.parseJSON(src, body)
	} else {
		tenders, err = a.parseCSV(src, body)
	}
	if err != nil {
		return nil, err
	}

	a.logger.Debug("feed parsed", "source", src.ID, "records", len(tenders))

	return dedupe(tenders), nil
}

func (a *FeedAdapter) parseCSV(src sources.Config, body []byte) ([]domain.Tender, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("reading feed header for %s: %w", src.ID, err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var tenders []domain.Tender
	for len(tenders) < maxFeedRecords {
		record, readErr := r.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			// A malformed row does not poison the rest of the feed.
			a.logger.Warn("skipping malformed feed row", "source", src.ID, "error", readErr.Error())
			continue
		}

		field := func(candidates []string) string {
			for _, c := range candidates {
				if i, ok := columns[c]; ok && i < len(record) {
					if v := strings.TrimSpace(record[i]); v != "" {
						return v
					}
				}
			}
			return ""
		}

		if t := a.buildTender(src, field); t != nil {
			tenders = append(tenders, *t)
		}
	}

	return tenders, nil
}

func (a *FeedAdapter) parseJSON(src sources.Config, body []byte) ([]domain.Tender, error) {
	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decoding feed for %s: %w", src.ID, err)
	}

	items, ok := feedItems(raw)
	if !ok {
		return nil, fmt.Errorf("feed for %s has no recognizable record list", src.ID)
	}

	var tenders []domain.Tender
	for _, item := range items {
		if len(tenders) >= maxFeedRecords {
			break
		}

		obj, isObj := item.(map[string]any)
		if !isObj {
			continue
		}

		field := func(candidates []string) string {
			return jsonField(obj, candidates)
		}

		if t := a.buildTender(src, field); t != nil {
			tenders = append(tenders, *t)
		}
	}

	return tenders, nil
}

// buildTender maps one feed record to a tender via the field lookup. Records
// carrying neither a title nor an identifier are dropped.
func (a *FeedAdapter) buildTender(src sources.Config, field func([]string) string) *domain.Tender {
	title := extract.Clean(field(csvTitleColumns))
	id := field(csvIDColumns)
	if title == "" && id == "" {
		return nil
	}

	pageURL := field(csvURLColumns)
	if pageURL == "" {
		pageURL = src.BaseURL
	}
	if id == "" {
		id = domain.SynthesizeTenderID(title, pageURL)
	}

	location := field(csvLocationColumns)
	if location == "" {
		location = "Canada"
	}

	return &domain.Tender{
		Portal:       src.Name,
		TenderID:     id,
		Title:        title,
		Organization: extract.Clean(field(csvOrgColumns)),
		Value:        extract.ParseValue(field(csvValueColumns)),
		ClosingDate:  extract.ParseDate(field(csvClosingColumns)),
		PostedDate:   extract.ParseDate(field(csvPostedColumns)),
		Description:  extract.Clean(field(csvDescColumns)),
		Location:     location,
		URL:          pageURL,
		IsActive:     true,
	}
}

// feedItems finds the record list in a decoded JSON feed: either a top-level
// array or the first array under a conventional envelope key.
func feedItems(raw any) ([]any, bool) {
	if items, ok := raw.([]any); ok {
		return items, true
	}

	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, false
	}

	for _, key := range []string{"results", "data", "items", "records", "tenders"} {
		if items, found := obj[key].([]any); found {
			return items, true
		}
	}

	return nil, false
}

func jsonField(obj map[string]any, candidates []string) string {
	lowered := make(map[string]any, len(obj))
	for k, v := range obj {
		lowered[strings.ToLower(k)] = v
	}

	for _, c := range candidates {
		v, ok := lowered[c]
		if !ok || v == nil {
			continue
		}
		switch val := v.(type) {
		case string:
			if s := strings.TrimSpace(val); s != "" {
				return s
			}
		case float64:
			return fmt.Sprintf("%v", val)
		}
	}

	return ""
}
