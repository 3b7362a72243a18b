package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shouni/go-web-scraper/pkg/feed"
	"github.com/shouni/go-web-scraper/pkg/scraper"
	"github.com/shouni/go-web-scraper/pkg/types"
)

const defaultFeedLimit = 10

var (
	feedLimit   int
	feedJSONOut string
	feedCSVOut  string
)

// runFeedPipeline はフィードの記事リンクを取得し、各記事を順に1ページずつ取得します。
func runFeedPipeline(ctx context.Context, parser *feed.Parser, s *scraper.WebScraper, feedURL string, limit int) ([]types.PageRecord, error) {
	links, err := parser.ItemLinks(ctx, feedURL, limit)
	if err != nil {
		return nil, fmt.Errorf("フィード解析パイプラインの実行エラー: %w", err)
	}
	logger.Info("フィードの記事リンクを取得しました", zap.String("feed", feedURL), zap.Int("links", len(links)))

	return s.ScrapePages(ctx, links), nil
}

var feedCmd = &cobra.Command{
	Use:   "feed URL",
	Short: "RSS/Atomフィードの記事を順に取得し、タイトルと本文を保存します",
	Long: `指定されたURLからRSSまたはAtomフィードを取得し、記事リンクを先頭から --limit 件まで1件ずつ取得します。
取得に失敗した記事は読み飛ばし、成功した記事のみを JSON（と指定があれば CSV）に保存します。`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		feedURL, err := ensureScheme(args[0])
		if err != nil {
			return fmt.Errorf("URLスキームの処理エラー: %w", err)
		}

		client := newClient(resolveDelay(cmd, defaultPageDelay))
		s, err := scraper.NewWebScraper(client, scraper.WithWriter(newWriter()))
		if err != nil {
			return fmt.Errorf("Scraperの初期化エラー: %w", err)
		}

		records, err := runFeedPipeline(cmd.Context(), feed.NewParser(client), s, feedURL, feedLimit)
		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(records))
		for i, r := range records {
			rows = append(rows, []any{i + 1, r.Title, r.URL})
		}
		renderTable(cmd.OutOrStdout(), []any{"#", "Title", "URL"}, rows)
		fmt.Fprintf(cmd.OutOrStdout(), "取得した記事: %d 件\n", len(records))

		if err := s.SaveToJSON(feedJSONOut, records); err != nil {
			return err
		}
		if feedCSVOut == "" {
			return nil
		}
		return s.SaveToCSV(feedCSVOut, records)
	},
}

func init() {
	feedCmd.Flags().IntVarP(&feedLimit, "limit", "l", defaultFeedLimit, "取得する記事の最大件数（0 以下は無制限）")
	feedCmd.Flags().StringVar(&feedJSONOut, "json-out", "feed_articles.json", "JSON の保存先")
	feedCmd.Flags().StringVar(&feedCSVOut, "csv-out", "", "CSV の保存先（省略時は保存しない）")
}
