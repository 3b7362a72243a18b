package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shouni/go-web-scraper/internal/pipeline"
	"github.com/shouni/go-web-scraper/pkg/types"
)

const (
	defaultExamplesOut = "advanced_scraping_results.json"

	// 一覧表示する件数
	headlinePreviewCount = 3
	productPreviewCount  = 2
)

var (
	driverOut   string
	examplesOut string
)

var headlinesCmd = &cobra.Command{
	Use:   "headlines [URL]",
	Short: "見出しセレクターに一致する要素を抽出します",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := appConfig.HeadlineURL
		if len(args) == 1 {
			target = args[0]
		}
		pageURL, err := ensureScheme(target)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		s, err := scraperFactory(cmd)(pipeline.HeadlineDelay)
		if err != nil {
			return fmt.Errorf("Scraperの初期化エラー: %w", err)
		}

		headlines, ok := pipeline.ScrapeHeadlines(cmd.Context(), s, pageURL,
			appConfig.Selectors.Headlines, appConfig.MinHeadlineLength)
		if !ok {
			logger.Warn("見出しページの取得に失敗しました", zap.String("url", pageURL))
		}
		printHeadlines(cmd.OutOrStdout(), headlines, len(headlines))
		return saveDriverResult(headlines)
	},
}

var productsCmd = &cobra.Command{
	Use:   "products [URL...]",
	Short: "商品ページからタイトル・価格・説明・画像を抽出します",
	RunE: func(cmd *cobra.Command, args []string) error {
		targets := appConfig.ProductURLs
		if len(args) > 0 {
			targets = args
		}
		urls, err := ensureSchemes(targets)
		if err != nil {
			return err
		}

		s, err := scraperFactory(cmd)(pipeline.ProductDelay)
		if err != nil {
			return fmt.Errorf("Scraperの初期化エラー: %w", err)
		}

		products := pipeline.ScrapeProducts(cmd.Context(), s, urls, appConfig.Selectors, appConfig.DescriptionLimit)
		printProducts(cmd.OutOrStdout(), products, len(products))
		return saveDriverResult(products)
	},
}

var paginateCmd = &cobra.Command{
	Use:   "paginate [URL]",
	Short: "page クエリを増やしながら \"Next\" リンクが無くなるまでページを取得します",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target := appConfig.PaginationURL
		if len(args) == 1 {
			target = args[0]
		}
		baseURL, err := ensureScheme(target)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		s, err := scraperFactory(cmd)(pipeline.PaginationDelay)
		if err != nil {
			return fmt.Errorf("Scraperの初期化エラー: %w", err)
		}

		result, err := pipeline.Paginate(cmd.Context(), s, baseURL, appConfig.MaxPages)
		if err != nil {
			return err
		}
		printPages(cmd.OutOrStdout(), result)
		return saveDriverResult(result.Pages)
	},
}

var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "見出し・商品・ページネーションの各ドライバーを順に実行し、結果をまとめて保存します",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Running advanced scraper examples...")

		report, err := pipeline.RunExamples(cmd.Context(), scraperFactory(cmd), appConfig)
		if err != nil {
			return err
		}

		fmt.Fprintln(out, "\n1. Scraping headlines...")
		printHeadlines(out, report.Results.Headlines, headlinePreviewCount)
		fmt.Fprintln(out, "\n2. Scraping product info...")
		printProducts(out, report.Results.Products, productPreviewCount)
		fmt.Fprintln(out, "\n3. Scraping with pagination...")
		fmt.Fprintf(out, "Scraped %d pages (%s)\n", len(report.Results.PaginatedData), report.PaginationReason)

		return newWriter().SaveJSON(examplesOut, report.Results)
	},
}

func init() {
	for _, c := range []*cobra.Command{headlinesCmd, productsCmd, paginateCmd} {
		c.Flags().StringVarP(&driverOut, "out", "o", "", "結果を保存する JSON ファイル（省略時は保存しない）")
	}
	examplesCmd.Flags().StringVarP(&examplesOut, "out", "o", defaultExamplesOut, "結果を保存する JSON ファイル")
}

func saveDriverResult(data any) error {
	if driverOut == "" {
		return nil
	}
	return newWriter().SaveJSON(driverOut, data)
}

// printHeadlines は先頭 limit 件の見出しを表示します。
func printHeadlines(w io.Writer, headlines []types.Headline, limit int) {
	rows := [][]any{}
	for i, h := range headlines {
		if i >= limit {
			break
		}
		rows = append(rows, []any{h.Headline, h.Selector})
	}
	renderTable(w, []any{"Headline", "Selector"}, rows)
	fmt.Fprintf(w, "見出し: %d 件\n", len(headlines))
}

// printProducts は先頭 limit 件の商品を表示します。
func printProducts(w io.Writer, products []types.ProductRecord, limit int) {
	rows := [][]any{}
	for i, p := range products {
		if i >= limit {
			break
		}
		rows = append(rows, []any{p.Title, p.Price, len(p.Images), p.URL})
	}
	renderTable(w, []any{"Product", "Price", "Images", "URL"}, rows)
	fmt.Fprintf(w, "商品: %d 件\n", len(products))
}

func printPages(w io.Writer, result pipeline.PaginationResult) {
	rows := make([][]any, 0, len(result.Pages))
	for _, p := range result.Pages {
		rows = append(rows, []any{p.Page, p.Title, p.URL})
	}
	renderTable(w, []any{"Page", "Title", "URL"}, rows)
	fmt.Fprintf(w, "Scraped %d pages (終了理由: %s)\n", len(result.Pages), result.Reason)
}
