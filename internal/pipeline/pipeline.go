// Package pipeline は、取得・抽出を逐次に繰り返すサンプルドライバーです。
// 各ドライバーは失敗したページを読み飛ばし、得られた結果だけを蓄積します。
package pipeline

import (
	"context"
	"time"

	"github.com/shouni/go-web-scraper/pkg/dom"
	"github.com/shouni/go-web-scraper/pkg/types"
)

// ドライバーごとの既定の待機時間
const (
	HeadlineDelay   = 2 * time.Second
	ProductDelay    = 1 * time.Second
	PaginationDelay = 2 * time.Second
)

// Scraper は、ドライバーが必要とする取得と本文抽出の機能です。
// GetPage は失敗時に nil を返します。
type Scraper interface {
	GetPage(ctx context.Context, url string) *dom.Document
	ExtractTextContent(doc *dom.Document) types.TextContent
}

// ScraperFactory は、指定した待機時間を持つ Scraper を生成します。
type ScraperFactory func(delay time.Duration) (Scraper, error)
