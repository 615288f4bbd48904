package toolkit

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/sherlock/pkg/tools"
)

const searchEndpoint = "https://lite.duckduckgo.com/lite/"

// maxResultsPerQuery bounds how much of the result page is fed back to
// the model.
const maxResultsPerQuery = 10

// SearchResult is one web hit, rendered to the model as JSON.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet,omitempty"`
}

type searchArgs struct {
	Query []string `json:"query" jsonschema:"description=One or more web search queries"`
}

// NewSearchTool returns the web-search tool, scraping the DuckDuckGo
// lite HTML page. The supplied client controls the per-request timeout;
// nil gets a 15 second default.
func NewSearchTool(client *http.Client) (tools.Tool, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return tools.NewFuncTool("search",
		"Search the web. Returns titles, URLs and snippets for each query.",
		func(ctx context.Context, in searchArgs) (string, error) {
			if len(in.Query) == 0 {
				return "", errors.New("no query given")
			}
			out := make(map[string][]SearchResult, len(in.Query))
			for _, q := range in.Query {
				results, err := searchOne(ctx, client, searchEndpoint, q)
				if err != nil {
					return "", errors.Wrapf(err, "search %q", q)
				}
				out[q] = results
			}
			return tools.Coerce(out), nil
		})
}

func searchOne(ctx context.Context, client *http.Client, endpoint, query string) ([]SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query is empty")
	}

	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", browserUserAgent)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("duckduckgo http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "parse result page")
	}

	results := parseLiteResults(doc)
	log.Debug().Str("query", query).Int("results", len(results)).Msg("toolkit: search completed")
	return results, nil
}

// parseLiteResults walks the lite result table: each hit is an
// `a.result-link` anchor with the snippet in the following
// `td.result-snippet` cell.
func parseLiteResults(doc *goquery.Document) []SearchResult {
	var results []SearchResult
	doc.Find("a.result-link").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return true
		}
		result := SearchResult{
			Title: strings.TrimSpace(sel.Text()),
			URL:   cleanResultURL(href),
		}
		snippet := sel.Closest("tr").NextFiltered("tr").Find("td.result-snippet")
		result.Snippet = strings.TrimSpace(snippet.Text())
		results = append(results, result)
		return len(results) < maxResultsPerQuery
	})
	return results
}

// cleanResultURL unwraps DuckDuckGo's redirect links (//duckduckgo.com/l/?uddg=<target>).
func cleanResultURL(href string) string {
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	if u.Scheme == "" {
		u.Scheme = "https"
		return u.String()
	}
	return href
}
