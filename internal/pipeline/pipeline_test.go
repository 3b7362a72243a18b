package pipeline

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-web-scraper/internal/config"
	"github.com/shouni/go-web-scraper/pkg/dom"
	"github.com/shouni/go-web-scraper/pkg/extract"
	"github.com/shouni/go-web-scraper/pkg/httpclient"
	"github.com/shouni/go-web-scraper/pkg/scraper"
	"github.com/shouni/go-web-scraper/pkg/types"
)

// fakeScraper はURLごとに用意したHTMLを返します。未登録のURLは取得失敗です。
type fakeScraper struct {
	pages   map[string]string
	fetched []string
}

func (f *fakeScraper) GetPage(_ context.Context, pageURL string) *dom.Document {
	f.fetched = append(f.fetched, pageURL)
	html, ok := f.pages[pageURL]
	if !ok {
		return nil
	}
	doc, err := dom.ParseString(html)
	if err != nil {
		return nil
	}
	return doc
}

func (f *fakeScraper) ExtractTextContent(doc *dom.Document) types.TextContent {
	return extract.Text(doc)
}

// newHTTPScraper は待機なしの実クライアントで WebScraper を生成します。
func newHTTPScraper(t *testing.T) *scraper.WebScraper {
	t.Helper()
	client := httpclient.New(httpclient.Config{Timeout: 5 * time.Second})
	s, err := scraper.NewWebScraper(client)
	require.NoError(t, err)
	return s
}

// paginatedServer は lastPage まで "Next" リンクを持つページを返します。
// failPage に一致するページは 500 を返します（0 なら無効）。
func paginatedServer(t *testing.T, lastPage, failPage int, hits *int32) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil {
			http.Error(w, "bad page", http.StatusBadRequest)
			return
		}
		if page == failPage {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		next := ""
		if lastPage <= 0 || page < lastPage {
			next = fmt.Sprintf(`<a href="?page=%d">Next</a>`, page+1)
		}
		fmt.Fprintf(w, "<html><head><title>Page %d</title></head>\n<body>\n<p>content %d</p>\n%s\n</body></html>", page, page, next)
	}))
	t.Cleanup(server.Close)
	return server
}

// ======================================================================
// ページネーション
// ======================================================================

func TestPaginate_StopsWhenNoNextLink(t *testing.T) {
	var hits int32
	server := paginatedServer(t, 4, 0, &hits)

	result, err := Paginate(context.Background(), newHTTPScraper(t), server.URL+"/list", config.DefaultMaxPages)
	require.NoError(t, err)

	require.Len(t, result.Pages, 4)
	assert.Equal(t, StopNoNextLink, result.Reason)
	assert.Equal(t, int32(4), atomic.LoadInt32(&hits))
	for i, p := range result.Pages {
		assert.Equal(t, i+1, p.Page)
		assert.Equal(t, fmt.Sprintf("%s/list?page=%d", server.URL, i+1), p.URL)
		assert.Equal(t, fmt.Sprintf("Page %d", i+1), p.Title)
	}
	assert.Equal(t, "Page 4 content 4", result.Pages[3].Content)
}

func TestPaginate_StopsAtPageCap(t *testing.T) {
	var hits int32
	server := paginatedServer(t, 0, 0, &hits)

	result, err := Paginate(context.Background(), newHTTPScraper(t), server.URL, 5)
	require.NoError(t, err)

	assert.Len(t, result.Pages, 5)
	assert.Equal(t, StopPageCap, result.Reason)
	assert.Equal(t, int32(5), atomic.LoadInt32(&hits))
}

func TestPaginate_ServerErrorEndsLikeNetworkError(t *testing.T) {
	t.Run("2ページ目が500", func(t *testing.T) {
		var hits int32
		server := paginatedServer(t, 0, 2, &hits)

		result, err := Paginate(context.Background(), newHTTPScraper(t), server.URL, 5)
		require.NoError(t, err)

		assert.Len(t, result.Pages, 1)
		assert.Equal(t, StopFetchFailed, result.Reason)
	})

	t.Run("接続できない", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		deadURL := server.URL
		server.Close()

		result, err := Paginate(context.Background(), newHTTPScraper(t), deadURL, 5)
		require.NoError(t, err)

		assert.Empty(t, result.Pages)
		assert.NotNil(t, result.Pages)
		assert.Equal(t, StopFetchFailed, result.Reason)
	})
}

func TestPaginate_InvalidBaseURL(t *testing.T) {
	_, err := Paginate(context.Background(), &fakeScraper{}, "http://[::1", 5)
	assert.Error(t, err)
}

func TestWithPageParam(t *testing.T) {
	tests := []struct {
		base     string
		page     int
		expected string
	}{
		{"https://httpbin.org/html", 1, "https://httpbin.org/html?page=1"},
		{"https://example.com/list?sort=new&a=1", 3, "https://example.com/list?sort=new&a=1&page=3"},
		{"https://example.com/list?page=9&sort=new", 2, "https://example.com/list?sort=new&page=2"},
		{"https://example.com/list?q=a%20b#top", 4, "https://example.com/list?q=a%20b&page=4#top"},
	}
	for _, tt := range tests {
		base, err := url.Parse(tt.base)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, withPageParam(base, tt.page))
	}
}

func TestStopReason_String(t *testing.T) {
	assert.Equal(t, "no_next_link", StopNoNextLink.String())
	assert.Equal(t, "page_cap", StopPageCap.String())
	assert.Equal(t, "fetch_failed", StopFetchFailed.String())
	assert.Equal(t, "canceled", StopCanceled.String())
}

// ======================================================================
// 見出し・商品
// ======================================================================

func TestScrapeHeadlines(t *testing.T) {
	const pageURL = "https://news.example/"
	fs := &fakeScraper{pages: map[string]string{
		pageURL: `<html><body>
<h1>Breaking: something happened today</h1>
<h2>Short</h2>
<h2 class="headline">Markets rally on good news</h2>
<div class="subtitle">A subtitle long enough</div>
</body></html>`,
	}}

	headlines, ok := ScrapeHeadlines(context.Background(), fs, pageURL,
		[]string{"h1", "h2", ".headline", `[class*="title"]`}, config.DefaultMinHeadlineLength)

	require.True(t, ok)
	assert.Equal(t, []types.Headline{
		{Headline: "Breaking: something happened today", Selector: "h1", URL: pageURL},
		{Headline: "Markets rally on good news", Selector: "h2", URL: pageURL},
		{Headline: "Markets rally on good news", Selector: ".headline", URL: pageURL},
		{Headline: "A subtitle long enough", Selector: `[class*="title"]`, URL: pageURL},
	}, headlines)
}

func TestScrapeHeadlines_FetchFailure(t *testing.T) {
	headlines, ok := ScrapeHeadlines(context.Background(), &fakeScraper{}, "https://down.example", []string{"h1"}, 10)
	assert.False(t, ok)
	assert.NotNil(t, headlines)
	assert.Empty(t, headlines)
}

func TestScrapeProducts(t *testing.T) {
	longDesc := strings.Repeat("説", 600)
	fs := &fakeScraper{pages: map[string]string{
		"https://shop.example/1": `<html><body>
<div class="product-title">Gadget</div>
<span data-price="9">  $9.99 </span>
<p>` + longDesc + `</p>
<img src="/a.png"><img alt="no src"><img src="https://cdn.example/b.png">
</body></html>`,
		"https://shop.example/2": `<html><body><p>nothing special</p></body></html>`,
	}}
	sel := config.Default().Selectors

	products := ScrapeProducts(context.Background(), fs,
		[]string{"https://shop.example/1", "https://shop.example/missing", "https://shop.example/2"}, sel, config.DefaultDescriptionLimit)

	require.Len(t, products, 2, "取得に失敗したURLは含めない")
	assert.Len(t, fs.fetched, 3)

	p := products[0]
	assert.Equal(t, "https://shop.example/1", p.URL)
	assert.Equal(t, "Gadget", p.Title)
	assert.Equal(t, "$9.99", p.Price)
	assert.Equal(t, strings.Repeat("説", 500), p.Description)
	assert.Equal(t, []string{"/a.png", "https://cdn.example/b.png"}, p.Images)

	empty := products[1]
	assert.Equal(t, "", empty.Title)
	assert.Equal(t, "", empty.Price)
	assert.Equal(t, "nothing special", empty.Description)
	assert.Equal(t, []string{}, empty.Images)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "日本", truncate("日本語", 2))
	assert.Equal(t, "abc", truncate("abc", 0))
}

// ======================================================================
// 全ドライバー
// ======================================================================

func TestRunExamples(t *testing.T) {
	var hits int32
	server := paginatedServer(t, 2, 0, &hits)

	cfg := config.Default()
	cfg.HeadlineURL = server.URL + "/?page=1"
	cfg.ProductURLs = []string{server.URL + "/?page=1", server.URL + "/?page=x"}
	cfg.PaginationURL = server.URL

	var delays []time.Duration
	factory := func(delay time.Duration) (Scraper, error) {
		delays = append(delays, delay)
		return newHTTPScraper(t), nil
	}

	report, err := RunExamples(context.Background(), factory, cfg)
	require.NoError(t, err)

	assert.Equal(t, []time.Duration{HeadlineDelay, ProductDelay, PaginationDelay}, delays)
	assert.True(t, report.HeadlinePageOK)
	assert.Empty(t, report.Results.Headlines, "見出し候補に一致する要素なし")
	require.Len(t, report.Results.Products, 1)
	assert.Equal(t, "", report.Results.Products[0].Title, "タイトル候補に一致する要素なし")
	assert.Equal(t, "content 1", report.Results.Products[0].Description)
	assert.Len(t, report.Results.PaginatedData, 2)
	assert.Equal(t, StopNoNextLink, report.PaginationReason)
}

func TestRunExamples_FactoryError(t *testing.T) {
	factory := func(time.Duration) (Scraper, error) {
		return nil, fmt.Errorf("no client")
	}
	_, err := RunExamples(context.Background(), factory, config.Default())
	assert.ErrorContains(t, err, "no client")
}
