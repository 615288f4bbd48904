package toolkit

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/go-go-golems/sherlock/pkg/tools"
)

const browserUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// maxPageBytes bounds extracted page text so a single visit cannot blow
// through the working token budget on its own.
const maxPageBytes = 32 * 1024

type visitArgs struct {
	URL string `json:"url" jsonschema:"description=The page URL to fetch and read"`
}

// NewVisitTool returns the page-visit tool: fetch a URL and reduce it to
// readable text.
func NewVisitTool(client *http.Client) (tools.Tool, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return tools.NewFuncTool("visit",
		"Fetch a web page and return its readable text content.",
		func(ctx context.Context, in visitArgs) (string, error) {
			return visit(ctx, client, in.URL)
		})
}

func visit(ctx context.Context, client *http.Client, pageURL string) (string, error) {
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return "", errors.New("url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", browserUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Errorf("fetch http %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", errors.Wrap(err, "parse page")
	}

	text := ExtractText(doc)
	if len(text) > maxPageBytes {
		text = text[:maxPageBytes] + "\n[TRUNCATED]"
	}
	log.Debug().Str("url", pageURL).Int("chars", len(text)).Msg("toolkit: page visited")
	return text, nil
}

// ExtractText reduces a parsed page to plain text: scripts, styles and
// navigation chrome dropped, block elements separated by newlines.
func ExtractText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, nav, header, footer, iframe").Remove()

	root := doc.Find("main")
	if root.Length() == 0 {
		root = doc.Find("body")
	}
	if root.Length() == 0 {
		root = doc.Selection
	}

	var sb strings.Builder
	root.Find("h1, h2, h3, h4, p, li, td, pre, blockquote").Each(func(_ int, sel *goquery.Selection) {
		line := strings.TrimSpace(sel.Text())
		if line == "" {
			return
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	})

	if sb.Len() == 0 {
		return strings.TrimSpace(root.Text())
	}
	return strings.TrimSpace(sb.String())
}
