package toolkit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const liteResultsPage = `<html><body><table>
<tr><td><a class="result-link" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.org%2Fswallows">Airspeed of swallows</a></td></tr>
<tr><td class="result-snippet">African or European? The airspeed varies considerably.</td></tr>
<tr><td><a class="result-link" href="https://example.org/coconuts">Coconut carrying capacity</a></td></tr>
<tr><td class="result-snippet">A five ounce bird cannot carry a one pound coconut.</td></tr>
</table></body></html>`

func mustParse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestSearchOneAgainstStubServer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "unladen swallow", r.PostForm.Get("q"))
		_, _ = w.Write([]byte(liteResultsPage))
	}))
	defer srv.Close()

	results, err := searchOne(context.Background(), srv.Client(), srv.URL, "unladen swallow")
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Airspeed of swallows", results[0].Title)
}

func TestParseLiteResults(t *testing.T) {
	t.Parallel()

	doc := mustParse(t, liteResultsPage)
	results := parseLiteResults(doc)

	require.Len(t, results, 2)
	assert.Equal(t, "Airspeed of swallows", results[0].Title)
	assert.Equal(t, "https://example.org/swallows", results[0].URL)
	assert.Contains(t, results[0].Snippet, "African or European")
	assert.Equal(t, "https://example.org/coconuts", results[1].URL)
}

func TestCleanResultURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://example.org/page",
		cleanResultURL("//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.org%2Fpage"))
	assert.Equal(t, "https://plain.example.org", cleanResultURL("https://plain.example.org"))
}

func TestVisitExtractsReadableText(t *testing.T) {
	t.Parallel()

	page := `<html><head><style>body { color: red }</style></head><body>
<nav>Home | About</nav>
<main>
<h1>Swallow aerodynamics</h1>
<p>The unladen airspeed is roughly eleven meters per second.</p>
<script>alert("junk")</script>
</main>
<footer>Copyright</footer>
</body></html>`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(page))
	}))
	defer srv.Close()

	text, err := visit(context.Background(), srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Contains(t, text, "Swallow aerodynamics")
	assert.Contains(t, text, "eleven meters per second")
	assert.NotContains(t, text, "alert")
	assert.NotContains(t, text, "Home | About")
	assert.NotContains(t, text, "Copyright")
}

func TestVisitRejectsEmptyURL(t *testing.T) {
	t.Parallel()

	_, err := visit(context.Background(), http.DefaultClient, "   ")
	assert.Error(t, err)
}

func TestVisitNonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := visit(context.Background(), srv.Client(), srv.URL)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestToolsImplementInterface(t *testing.T) {
	t.Parallel()

	search, err := NewSearchTool(nil)
	require.NoError(t, err)
	assert.Equal(t, "search", search.Name())
	require.NotNil(t, search.Schema())

	visitTool, err := NewVisitTool(nil)
	require.NoError(t, err)
	assert.Equal(t, "visit", visitTool.Name())
	require.NotNil(t, visitTool.Schema())
}
