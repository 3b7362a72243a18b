package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
	"go.uber.org/zap"

	"github.com/shouni/go-web-scraper/pkg/dom"
	"github.com/shouni/go-web-scraper/pkg/retry"
)

const (
	// HTTPクライアント関連の定数
	DefaultHTTPTimeout = 30 * time.Second
	DefaultDelay       = 1 * time.Second
	MaxBodySize        = int64(10 * 1024 * 1024) // 10MB: レスポンスボディの最大読み込みサイズ

	// エラーメッセージに含めるボディの最大長
	maxErrorBodyLength = 1024

	// サイトからのブロックを避けるためのUser-Agent
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
)

// Doer は、標準の *http.Client.Do()と互換性のあるHTTPクライアントのインターフェースを定義します。
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Sleeper は、取得成功後の待機を行う関数です。
type Sleeper func(ctx context.Context, d time.Duration)

// Config はフェッチャーの設定です。
type Config struct {
	Timeout    time.Duration // 1リクエストあたりのタイムアウト
	Delay      time.Duration // 取得成功後に毎回待機する時間
	UserAgent  string
	MaxRetries uint64 // 0 の場合はリトライしない
}

// DefaultConfig は既定の設定を返します。
func DefaultConfig() Config {
	return Config{
		Timeout:    DefaultHTTPTimeout,
		Delay:      DefaultDelay,
		UserAgent:  DefaultUserAgent,
		MaxRetries: retry.DefaultMaxRetries,
	}
}

// WithDefaults は、ゼロ値のフィールドに既定値を適用したコピーを返します。
// Delay の 0 は「待機なし」として尊重し、負の値のみ 0 に丸めます。
func (c Config) WithDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = DefaultHTTPTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Delay < 0 {
		c.Delay = 0
	}
	return c
}

// HTTPStatusError は2xx以外のステータスコードを示すエラーです。
type HTTPStatusError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPStatusError) Error() string {
	if len(e.Body) == 0 {
		return fmt.Sprintf("HTTPステータスコードエラー: %d, ボディなし", e.StatusCode)
	}
	body := strings.TrimSpace(string(e.Body))
	if len(body) > maxErrorBodyLength {
		body = body[:maxErrorBodyLength] + "..."
	}
	return fmt.Sprintf("HTTPステータスコードエラー: %d, ボディ: %s", e.StatusCode, body)
}

// IsStatusError は、err が HTTPStatusError を含むかを判断します。
func IsStatusError(err error) bool {
	var statusErr *HTTPStatusError
	return errors.As(err, &statusErr)
}

// Client は、共通ヘッダー付きのGETと取得後の固定待機を管理します。
// 逐次呼び出しを前提としており、コネクションプールのみを呼び出し間で共有します。
type Client struct {
	httpClient  Doer
	cfg         Config
	retryConfig retry.Config
	logger      *zap.Logger
	sleep       Sleeper
}

// Option はClientの設定を行うための関数型です。
type Option func(*Client)

// WithHTTPClient はカスタムのDoerを設定します。
func WithHTTPClient(doer Doer) Option {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithLogger はロガーを設定します。
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithSleeper は待機関数を差し替えます。
func WithSleeper(sleep Sleeper) Option {
	return func(c *Client) {
		if sleep != nil {
			c.sleep = sleep
		}
	}
}

// New は、新しいClientを生成します。
// ゼロ値のフィールドには WithDefaults が適用されますが、Delay の 0 は「待機なし」のままです。
// 既定の1秒待機を使う場合は DefaultConfig() を起点に設定してください。
func New(cfg Config, options ...Option) *Client {
	cfg = cfg.WithDefaults()

	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = cfg.MaxRetries

	transport := http.DefaultTransport.(*http.Transport).Clone()

	c := &Client{
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
		cfg:         cfg,
		retryConfig: retryCfg,
		logger:      zap.NewNop(),
		sleep:       contextSleep,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Config は、既定値適用後の設定を返します。
func (c *Client) Config() Config {
	return c.cfg
}

// Fetch はURLからHTMLを取得し、パース済みドキュメントを返します。
func (c *Client) Fetch(ctx context.Context, url string) (*dom.Document, error) {
	body, err := c.FetchBytes(ctx, url)
	if err != nil {
		return nil, err
	}
	return dom.ParseBytes(body)
}

// FetchBytes はURLのレスポンスボディを取得します。
// 成功時は設定された待機時間だけブロックしてから戻ります。最後の1件でも省略しません。
func (c *Client) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	var (
		body   []byte
		status int
	)
	start := time.Now()

	op := func() error {
		var fetchErr error
		body, status, fetchErr = c.doGet(ctx, url)
		return fetchErr
	}

	err := retry.Do(ctx, c.retryConfig, fmt.Sprintf("URL(%s)の取得", url), op, isRetryableError)
	if err != nil {
		c.logger.Error("ページの取得に失敗しました", zap.String("url", url), zap.Error(err))
		return nil, err
	}

	c.logger.Info("ページを取得しました",
		zap.String("url", url),
		zap.Int("status", status),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)),
	)

	c.sleep(ctx, c.cfg.Delay)
	return body, nil
}

// doGet は一度のHTTP GETリクエストを実行します。
func (c *Client) doGet(ctx context.Context, url string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("GETリクエスト作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTPリクエストに失敗しました (ネットワーク/接続エラー): %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		errBody, _ := httpkit.HandleLimitedResponse(resp, maxErrorBodyLength+1)
		return nil, resp.StatusCode, &HTTPStatusError{StatusCode: resp.StatusCode, Body: errBody}
	}

	// MaxBodySize + 1 バイトまで読み、超過を検出する
	body, err := httpkit.HandleLimitedResponse(resp, MaxBodySize+1)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if int64(len(body)) > MaxBodySize {
		return nil, resp.StatusCode, fmt.Errorf("レスポンスボディが最大サイズ (%dバイト) を超えました", MaxBodySize)
	}
	return body, resp.StatusCode, nil
}

// isRetryableError はエラーがリトライ対象かどうかを判定します。
// 5xx と 429、およびネットワークエラーが対象で、その他の4xxは対象外です。
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500 || statusErr.StatusCode == http.StatusTooManyRequests
	}
	return true
}

func contextSleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}
