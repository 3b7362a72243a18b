package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/shouni/go-web-scraper/pkg/dom"
	"github.com/shouni/go-web-scraper/pkg/extract"
	"github.com/shouni/go-web-scraper/pkg/persist"
	"github.com/shouni/go-web-scraper/pkg/types"
)

// TimestampLayout は PageRecord.Timestamp の書式です。
const TimestampLayout = "2006-01-02 15:04:05"

// ----------------------------------------------------------------------
// 依存性の定義 (DIP)
// ----------------------------------------------------------------------

// Fetcher は、URLを取得してパース済みドキュメントを返す機能です。
// ログ出力と取得後の待機は Fetcher 側の責務です。
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*dom.Document, error)
}

// WebScraper は Fetcher・抽出・保存を組み合わせ、失敗を nil（不在）に変換して返します。
type WebScraper struct {
	fetcher Fetcher
	writer  *persist.Writer
	now     func() time.Time
}

// Option は WebScraper の設定を行うための関数型です。
type Option func(*WebScraper)

// WithWriter は保存先の Writer を設定します。
func WithWriter(w *persist.Writer) Option {
	return func(s *WebScraper) {
		if w != nil {
			s.writer = w
		}
	}
}

// WithClock はタイムスタンプ用の時計を差し替えます。
func WithClock(now func() time.Time) Option {
	return func(s *WebScraper) {
		if now != nil {
			s.now = now
		}
	}
}

// NewWebScraper は新しい WebScraper を生成します。
func NewWebScraper(fetcher Fetcher, opts ...Option) (*WebScraper, error) {
	if fetcher == nil {
		return nil, fmt.Errorf("scraper.NewWebScraper: Fetcher cannot be nil")
	}
	s := &WebScraper{
		fetcher: fetcher,
		writer:  persist.NewWriter(nil),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Writer は保存に使う Writer を返します。
func (s *WebScraper) Writer() *persist.Writer {
	return s.writer
}

// GetPage はページを取得します。取得に失敗した場合は nil を返します。
// ネットワークエラーとステータスエラーは区別しません。
func (s *WebScraper) GetPage(ctx context.Context, url string) *dom.Document {
	doc, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil
	}
	return doc
}

// ExtractLinks はページ内の全リンクを絶対URLで返します。
func (s *WebScraper) ExtractLinks(doc *dom.Document, baseURL string) ([]string, error) {
	return extract.Links(doc, baseURL)
}

// ExtractTextContent はタイトルと整形済み本文を返します。
func (s *WebScraper) ExtractTextContent(doc *dom.Document) types.TextContent {
	return extract.Text(doc)
}

// ScrapeSinglePage は1ページを取得して PageRecord を返します。取得失敗時は nil です。
func (s *WebScraper) ScrapeSinglePage(ctx context.Context, url string) *types.PageRecord {
	doc := s.GetPage(ctx, url)
	if doc == nil {
		return nil
	}

	text := s.ExtractTextContent(doc)
	return &types.PageRecord{
		URL:       url,
		Timestamp: s.now().Format(TimestampLayout),
		Title:     text.Title,
		Content:   text.Content,
	}
}

// ScrapePages は urls を先頭から順に1件ずつ処理し、成功したページのみを返します。
// コンテキストがキャンセルされた時点で打ち切ります。
func (s *WebScraper) ScrapePages(ctx context.Context, urls []string) []types.PageRecord {
	records := []types.PageRecord{}
	for _, u := range urls {
		if ctx.Err() != nil {
			break
		}
		if rec := s.ScrapeSinglePage(ctx, u); rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

// SaveToJSON は data をJSONファイルへ保存します。
func (s *WebScraper) SaveToJSON(path string, data any) error {
	return s.writer.SaveJSON(path, data)
}

// SaveToCSV は PageRecord の列をCSVファイルへ保存します。空の場合は何もしません。
func (s *WebScraper) SaveToCSV(path string, records []types.PageRecord) error {
	return persist.SaveCSV(s.writer, path, records)
}
