package pipeline

import (
	"context"
	"unicode/utf8"

	"github.com/shouni/go-web-scraper/pkg/extract"
	"github.com/shouni/go-web-scraper/pkg/types"
)

// ScrapeHeadlines はページ内で各セレクターに一致した要素のうち、
// テキストが minLength 文字を超えるものを見出しとして返します。
// 同じ要素が複数のセレクターに一致した場合はそれぞれ記録します。
// ページを取得できなかった場合は ok=false です。
func ScrapeHeadlines(ctx context.Context, s Scraper, url string, selectors []string, minLength int) (headlines []types.Headline, ok bool) {
	headlines = []types.Headline{}

	doc := s.GetPage(ctx, url)
	if doc == nil {
		return headlines, false
	}

	for _, selector := range selectors {
		for _, text := range extract.Texts(doc, selector) {
			if text == "" || utf8.RuneCountInString(text) <= minLength {
				continue
			}
			headlines = append(headlines, types.Headline{
				Headline: text,
				Selector: selector,
				URL:      url,
			})
		}
	}
	return headlines, true
}
