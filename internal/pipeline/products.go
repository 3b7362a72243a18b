package pipeline

import (
	"context"

	"github.com/shouni/go-web-scraper/internal/config"
	"github.com/shouni/go-web-scraper/pkg/dom"
	"github.com/shouni/go-web-scraper/pkg/extract"
	"github.com/shouni/go-web-scraper/pkg/types"
)

// ScrapeProducts は各URLから商品情報を抽出します。取得に失敗したURLは結果に含めません。
func ScrapeProducts(ctx context.Context, s Scraper, urls []string, selectors config.Selectors, descriptionLimit int) []types.ProductRecord {
	products := []types.ProductRecord{}
	for _, url := range urls {
		doc := s.GetPage(ctx, url)
		if doc == nil {
			continue
		}
		products = append(products, extractProduct(doc, url, selectors, descriptionLimit))
	}
	return products
}

// extractProduct は1ページ分の商品情報を組み立てます。一致しないフィールドは空のままです。
func extractProduct(doc *dom.Document, url string, selectors config.Selectors, descriptionLimit int) types.ProductRecord {
	product := types.NewProductRecord(url)

	if title, ok := extract.FirstMatch(doc, selectors.Title); ok {
		product.Title = title
	}
	if price, ok := extract.FirstMatch(doc, selectors.Price); ok {
		product.Price = price
	}
	if desc, ok := extract.FirstMatch(doc, selectors.Description); ok {
		product.Description = truncate(desc, descriptionLimit)
	}
	product.Images = extract.AttrValues(doc, "img", "src")

	return product
}

// truncate は先頭から limit 文字（バイトではなくルーン単位）を返します。
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
