package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-web-scraper/internal/config"
	"github.com/shouni/go-web-scraper/pkg/types"
)

const (
	defaultPageJSON = "scraped_data.json"
	defaultPageCSV  = "scraped_data.csv"
	previewLength   = 200
)

var (
	pageJSONOut string
	pageCSVOut  string
)

var pageCmd = &cobra.Command{
	Use:   "page [URL]",
	Short: "1ページを取得してタイトルと本文を抽出し、JSON/CSVに保存します",
	Long: `指定されたURL（省略時は ` + config.DefaultExampleURL + `）を取得し、タイトルと本文のプレビューを表示します。
結果は1件のレコードとして JSON と CSV に保存されます。取得に失敗した場合は何も保存しません。`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rawURL := config.DefaultExampleURL
		if len(args) == 1 {
			rawURL = args[0]
		}
		pageURL, err := ensureScheme(rawURL)
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		s, err := newScraper(resolveDelay(cmd, defaultPageDelay))
		if err != nil {
			return fmt.Errorf("Scraperの初期化エラー: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "Scraping single page...")

		record := s.ScrapeSinglePage(cmd.Context(), pageURL)
		if record == nil {
			fmt.Fprintln(out, "Failed to scrape the page")
			return nil
		}

		fmt.Fprintf(out, "Title: %s\n", record.Title)
		fmt.Fprintf(out, "Content preview: %s...\n", preview(record.Content, previewLength))

		records := []types.PageRecord{*record}
		if err := s.SaveToJSON(pageJSONOut, records); err != nil {
			return err
		}
		return s.SaveToCSV(pageCSVOut, records)
	},
}

func init() {
	pageCmd.Flags().StringVar(&pageJSONOut, "json-out", defaultPageJSON, "JSON の保存先")
	pageCmd.Flags().StringVar(&pageCSVOut, "csv-out", defaultPageCSV, "CSV の保存先")
}
