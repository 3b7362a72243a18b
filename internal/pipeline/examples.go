package pipeline

import (
	"context"
	"fmt"

	"github.com/shouni/go-web-scraper/internal/config"
	"github.com/shouni/go-web-scraper/pkg/types"
)

// ExamplesReport は RunExamples の実行結果です。
type ExamplesReport struct {
	Results          types.ScrapeResults
	HeadlinePageOK   bool
	PaginationReason StopReason
}

// RunExamples は見出し・商品・ページネーションの各ドライバーを順に実行します。
// ドライバーごとに既定の待機時間を持つ Scraper を newScraper で生成します。
func RunExamples(ctx context.Context, newScraper ScraperFactory, cfg config.Config) (ExamplesReport, error) {
	var report ExamplesReport

	headlineScraper, err := newScraper(HeadlineDelay)
	if err != nil {
		return report, fmt.Errorf("見出し用Scraperの初期化エラー: %w", err)
	}
	report.Results.Headlines, report.HeadlinePageOK = ScrapeHeadlines(
		ctx, headlineScraper, cfg.HeadlineURL, cfg.Selectors.Headlines, cfg.MinHeadlineLength)

	productScraper, err := newScraper(ProductDelay)
	if err != nil {
		return report, fmt.Errorf("商品用Scraperの初期化エラー: %w", err)
	}
	report.Results.Products = ScrapeProducts(ctx, productScraper, cfg.ProductURLs, cfg.Selectors, cfg.DescriptionLimit)

	paginationScraper, err := newScraper(PaginationDelay)
	if err != nil {
		return report, fmt.Errorf("ページネーション用Scraperの初期化エラー: %w", err)
	}
	paginated, err := Paginate(ctx, paginationScraper, cfg.PaginationURL, cfg.MaxPages)
	if err != nil {
		return report, err
	}
	report.Results.PaginatedData = paginated.Pages
	report.PaginationReason = paginated.Reason

	return report, nil
}
