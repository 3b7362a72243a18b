package feed

import (
	"bytes"
	"context"
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// Fetcher は、フィードの生バイト列を取得する機能です。
type Fetcher = httpkit.Fetcher

// Parser はフィードを取得してパースします。
type Parser struct {
	client Fetcher
}

// NewParser は新しい Parser を生成します。
func NewParser(client Fetcher) *Parser {
	return &Parser{client: client}
}

// FetchAndParse は指定されたURLからフィード (RSS/Atom/JSON Feed) を取得し、パースします。
func (p *Parser) FetchAndParse(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	body, err := p.client.FetchBytes(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("フィードの取得失敗 (URL: %s): %w", feedURL, err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("RSSフィードのパース失敗 (URL: %s): %w", feedURL, err)
	}
	return feed, nil
}

// ItemLinks はフィードを取得し、記事リンクを出現順で返します。最大 limit 件（0 以下は無制限）。
func (p *Parser) ItemLinks(ctx context.Context, feedURL string, limit int) ([]string, error) {
	feed, err := p.FetchAndParse(ctx, feedURL)
	if err != nil {
		return nil, err
	}

	links := GetAllLinks(NewFeedAdapter(feed))
	if limit > 0 && len(links) > limit {
		links = links[:limit]
	}
	return links, nil
}
