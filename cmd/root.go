package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	clibase "github.com/shouni/go-cli-base"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shouni/go-web-scraper/internal/config"
	"github.com/shouni/go-web-scraper/internal/logging"
	"github.com/shouni/go-web-scraper/internal/pipeline"
	"github.com/shouni/go-web-scraper/pkg/httpclient"
	"github.com/shouni/go-web-scraper/pkg/persist"
	"github.com/shouni/go-web-scraper/pkg/scraper"
)

// --- グローバル定数 ---

const (
	appName           = "web-scraper"
	defaultTimeoutSec = 30 // 秒

	// page / links / feed コマンドの既定の待機時間
	defaultPageDelay = 1 * time.Second
)

// --- グローバル変数とフラグ構造体 ---

// AppFlags はこのアプリケーション固有の永続フラグを保持
// --verbose/-V と --config/-C (セレクター設定の YAML) は clibase.Flags が保持します。
type AppFlags struct {
	TimeoutSec int     // --timeout タイムアウト
	DelaySec   float64 // --delay 取得成功後の待機時間
	MaxRetries int     // --max-retries リトライ回数
	UserAgent  string  // --user-agent
	LogFile    string  // --log-file
}

var Flags AppFlags

var (
	logger    = zap.NewNop()
	appConfig = config.Default()
)

// rootCmd は clibase が生成したルートコマンドです。
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := clibase.NewRootCmd(appName, addAppPersistentFlags, initAppPreRunE)
	cmd.Short = "Webページの取得・抽出と、JSON/CSVへの保存を行うツール"
	cmd.Long = `Webページを取得してタイトル・本文・リンクを抽出し、JSON/CSVに保存します。
見出し・商品情報・ページネーションのサンプルドライバーと、RSS/Atomフィードの記事取得も実行できます。
--config (-C) にはセレクター候補と対象URLを上書きする YAML ファイルを指定します。`
	cmd.SilenceUsage = true
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	}
	cmd.AddCommand(pageCmd, linksCmd, headlinesCmd, productsCmd, paginateCmd, examplesCmd, feedCmd)
	return cmd
}

// addAppPersistentFlags は、アプリケーション固有の永続フラグをルートコマンドに追加します。
func addAppPersistentFlags(rootCmd *cobra.Command) {
	pf := rootCmd.PersistentFlags()
	pf.IntVar(&Flags.TimeoutSec, "timeout", defaultTimeoutSec, "HTTPリクエストのタイムアウト時間（秒）")
	pf.Float64Var(&Flags.DelaySec, "delay", defaultPageDelay.Seconds(),
		"取得成功後の待機時間（秒）。未指定の場合はコマンドごとの既定値")
	pf.IntVar(&Flags.MaxRetries, "max-retries", int(httpclient.DefaultConfig().MaxRetries),
		"HTTPリクエストのリトライ最大回数（0 は1回のみ試行）")
	pf.StringVar(&Flags.UserAgent, "user-agent", httpclient.DefaultUserAgent, "User-Agent ヘッダー")
	pf.StringVar(&Flags.LogFile, "log-file", "", "ログを JSON 形式で追記するファイル（ローテーションあり）")
}

// initAppPreRunE はロガーと設定を初期化します。
// clibase の共通処理の後に実行されるため、clibase.Flags は設定済みです。
func initAppPreRunE(cmd *cobra.Command, args []string) error {
	if Flags.TimeoutSec < 0 {
		return fmt.Errorf("--timeout は0以上である必要があります: %d", Flags.TimeoutSec)
	}
	if Flags.MaxRetries < 0 {
		return fmt.Errorf("--max-retries は0以上である必要があります: %d", Flags.MaxRetries)
	}

	logger = logging.New(logging.Options{Verbose: clibase.Flags.Verbose, File: Flags.LogFile})

	cfg, err := config.Load(clibase.Flags.ConfigFile)
	if err != nil {
		return err
	}
	appConfig = cfg

	logger.Debug("設定を読み込みました",
		zap.Int("timeout_sec", Flags.TimeoutSec),
		zap.Int("max_retries", Flags.MaxRetries),
		zap.String("config", clibase.Flags.ConfigFile),
	)
	return nil
}

// resolveDelay は --delay が明示された場合はその値を、そうでなければ defaultDelay を返します。
func resolveDelay(cmd *cobra.Command, defaultDelay time.Duration) time.Duration {
	if cmd.Flags().Changed("delay") {
		return time.Duration(Flags.DelaySec * float64(time.Second))
	}
	return defaultDelay
}

// newClient はフラグから HTTP クライアントを生成します。
func newClient(delay time.Duration) *httpclient.Client {
	return httpclient.New(httpclient.Config{
		Timeout:    time.Duration(Flags.TimeoutSec) * time.Second,
		Delay:      delay,
		UserAgent:  Flags.UserAgent,
		MaxRetries: uint64(Flags.MaxRetries),
	}, httpclient.WithLogger(logger))
}

// newScraper は指定した待機時間を持つ WebScraper を生成します。
func newScraper(delay time.Duration) (*scraper.WebScraper, error) {
	return scraper.NewWebScraper(newClient(delay), scraper.WithWriter(newWriter()))
}

func newWriter() *persist.Writer {
	return persist.NewWriter(logger)
}

// scraperFactory は、--delay の指定がなければドライバーごとの既定値を使う ScraperFactory を返します。
func scraperFactory(cmd *cobra.Command) pipeline.ScraperFactory {
	return func(delay time.Duration) (pipeline.Scraper, error) {
		return newScraper(resolveDelay(cmd, delay))
	}
}

// --- エントリポイント ---

// Execute は rootCmd を実行します。エラー時は終了コード 1 で終了します。
// Ctrl+C で実行中の取得を中断します。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
