package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shouni/go-web-scraper/internal/config"
)

var linksOut string

var linksCmd = &cobra.Command{
	Use:   "links [URL]",
	Short: "ページ内の全リンクを絶対URLで一覧表示します",
	Long:  `指定されたURL（省略時は ` + config.DefaultExampleURL + `）の href を持つ全アンカーを、ページのURLを基準に絶対URLへ解決して表示します。`,
	Args:  cobra.MaximumNArgs(1),
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

		doc := s.GetPage(cmd.Context(), pageURL)
		if doc == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "Failed to scrape the page")
			return nil
		}

		links, err := s.ExtractLinks(doc, pageURL)
		if err != nil {
			return fmt.Errorf("リンク抽出エラー: %w", err)
		}

		rows := make([][]any, 0, len(links))
		for i, link := range links {
			rows = append(rows, []any{i + 1, link})
		}
		renderTable(cmd.OutOrStdout(), []any{"#", "Link"}, rows)
		fmt.Fprintf(cmd.OutOrStdout(), "合計リンク数: %d\n", len(links))

		if linksOut == "" {
			return nil
		}
		return s.SaveToJSON(linksOut, links)
	},
}

func init() {
	linksCmd.Flags().StringVarP(&linksOut, "out", "o", "", "リンク一覧を保存する JSON ファイル（省略時は保存しない）")
}
