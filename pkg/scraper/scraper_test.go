package scraper_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/go-web-scraper/pkg/dom"
	"github.com/shouni/go-web-scraper/pkg/httpclient"
	"github.com/shouni/go-web-scraper/pkg/scraper"
	"github.com/shouni/go-web-scraper/pkg/types"
)

// ======================================================================
// モック (Mock) の定義
// ======================================================================

// MockFetcher はURLごとに用意したHTML、またはエラーを返します。
type MockFetcher struct {
	pages   map[string]string
	fetched []string
}

func (m *MockFetcher) Fetch(_ context.Context, url string) (*dom.Document, error) {
	m.fetched = append(m.fetched, url)
	html, ok := m.pages[url]
	if !ok {
		return nil, errors.New("network timeout")
	}
	return dom.ParseString(html)
}

var fixedNow = func() time.Time {
	return time.Date(2024, 5, 6, 7, 8, 9, 0, time.Local)
}

// ======================================================================
// テスト関数
// ======================================================================

func TestNewWebScraper(t *testing.T) {
	t.Run("success_with_valid_fetcher", func(t *testing.T) {
		s, err := scraper.NewWebScraper(&MockFetcher{})
		assert.NoError(t, err)
		assert.NotNil(t, s)
		assert.NotNil(t, s.Writer())
	})

	t.Run("error_with_nil_fetcher", func(t *testing.T) {
		s, err := scraper.NewWebScraper(nil)
		assert.Error(t, err)
		assert.Nil(t, s)
		assert.Contains(t, err.Error(), "Fetcher cannot be nil")
	})
}

func TestScrapeSinglePage(t *testing.T) {
	const pageURL = "https://example.com/article?id=1"
	fetcher := &MockFetcher{pages: map[string]string{
		pageURL: `<html><head><title> Article </title><script>track()</script></head><body><p>Body text</p></body></html>`,
	}}
	s, err := scraper.NewWebScraper(fetcher, scraper.WithClock(fixedNow))
	require.NoError(t, err)

	t.Run("成功時はレコードを返す", func(t *testing.T) {
		rec := s.ScrapeSinglePage(context.Background(), pageURL)
		require.NotNil(t, rec)
		assert.Equal(t, types.PageRecord{
			URL:       pageURL,
			Timestamp: "2024-05-06 07:08:09",
			Title:     "Article",
			Content:   "Article Body text",
		}, *rec)
	})

	t.Run("失敗時は nil", func(t *testing.T) {
		assert.Nil(t, s.ScrapeSinglePage(context.Background(), "https://example.com/missing"))
	})
}

func TestScrapePages_SkipsFailures(t *testing.T) {
	fetcher := &MockFetcher{pages: map[string]string{
		"https://a.example": "<title>A</title>",
		"https://c.example": "<title>C</title>",
	}}
	s, err := scraper.NewWebScraper(fetcher, scraper.WithClock(fixedNow))
	require.NoError(t, err)

	records := s.ScrapePages(context.Background(), []string{"https://a.example", "https://b.example", "https://c.example"})

	require.Len(t, records, 2)
	assert.Equal(t, "A", records[0].Title)
	assert.Equal(t, "C", records[1].Title)
	assert.Equal(t, []string{"https://a.example", "https://b.example", "https://c.example"}, fetcher.fetched, "逐次に全URLを処理するべき")
}

func TestScrapePages_StopsOnCanceledContext(t *testing.T) {
	fetcher := &MockFetcher{pages: map[string]string{"https://a.example": "<title>A</title>"}}
	s, err := scraper.NewWebScraper(fetcher)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Empty(t, s.ScrapePages(ctx, []string{"https://a.example"}))
	assert.Empty(t, fetcher.fetched)
}

func TestGetPage_ServerErrorIsAbsence(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal", http.StatusInternalServerError)
	}))
	defer server.Close()

	var slept []time.Duration
	client := httpclient.New(
		httpclient.Config{Delay: time.Second},
		httpclient.WithSleeper(func(_ context.Context, d time.Duration) { slept = append(slept, d) }),
	)
	s, err := scraper.NewWebScraper(client)
	require.NoError(t, err)

	assert.Nil(t, s.GetPage(context.Background(), server.URL))
	assert.Nil(t, s.ScrapeSinglePage(context.Background(), server.URL))
	assert.Empty(t, slept, "失敗時は待機しないべき")
}

func TestGetPage_NetworkErrorIsAbsence(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	deadURL := server.URL
	server.Close()

	client := httpclient.New(httpclient.Config{Timeout: time.Second})
	s, err := scraper.NewWebScraper(client)
	require.NoError(t, err)

	assert.Nil(t, s.GetPage(context.Background(), deadURL))
}

func TestExtractLinks(t *testing.T) {
	fetcher := &MockFetcher{pages: map[string]string{
		"https://example.com/a/": `<a href="b">b</a><a href="/c">c</a>`,
	}}
	s, err := scraper.NewWebScraper(fetcher)
	require.NoError(t, err)

	doc := s.GetPage(context.Background(), "https://example.com/a/")
	require.NotNil(t, doc)

	links, err := s.ExtractLinks(doc, "https://example.com/a/")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://example.com/a/b", "https://example.com/c"}, links)
}

func TestSave(t *testing.T) {
	s, err := scraper.NewWebScraper(&MockFetcher{})
	require.NoError(t, err)
	dir := t.TempDir()

	records := []types.PageRecord{{URL: "u", Timestamp: "t", Title: "T", Content: "C"}}
	require.NoError(t, s.SaveToJSON(filepath.Join(dir, "data.json"), records))
	require.NoError(t, s.SaveToCSV(filepath.Join(dir, "data.csv"), records))
	require.NoError(t, s.SaveToCSV(filepath.Join(dir, "empty.csv"), nil))

	_, err = os.Stat(filepath.Join(dir, "data.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "data.csv"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "empty.csv"))
	assert.True(t, os.IsNotExist(err))
}
