package feed

import (
	"strings"

	"github.com/mmcdole/gofeed"
)

// LinkSource は、巡回対象URLの列を提供できる型です。
type LinkSource interface {
	GetLinks() []string
}

// FeedAdapter は gofeed.Feed を LinkSource に適合させます。
type FeedAdapter struct {
	*gofeed.Feed
}

// NewFeedAdapter は gofeed.Feed から新しいアダプターを作成します。
func NewFeedAdapter(feed *gofeed.Feed) *FeedAdapter {
	return &FeedAdapter{Feed: feed}
}

// GetLinks は記事リンクを出現順で返します。空のリンクは除外します。
func (a *FeedAdapter) GetLinks() []string {
	if a.Feed == nil || len(a.Items) == 0 {
		return []string{}
	}

	urls := make([]string, 0, len(a.Items))
	for _, item := range a.Items {
		if item == nil {
			continue
		}
		if link := strings.TrimSpace(item.Link); link != "" {
			urls = append(urls, link)
		}
	}
	return urls
}

// GetAllLinks は LinkSource からリンクを取り出します。source が nil なら空です。
func GetAllLinks(source LinkSource) []string {
	if source == nil {
		return []string{}
	}
	return source.GetLinks()
}
