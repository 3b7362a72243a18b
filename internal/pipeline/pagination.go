package pipeline

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shouni/go-web-scraper/pkg/extract"
	"github.com/shouni/go-web-scraper/pkg/types"
)

const (
	// NextLinkText は次ページへのリンクとみなすアンカーのテキストです。
	NextLinkText = "Next"

	pageParam = "page"
)

// StopReason はページネーションが終了した理由です。
type StopReason int

const (
	// StopFetchFailed はページの取得に失敗したことを示します。
	StopFetchFailed StopReason = iota
	// StopNoNextLink は "Next" リンクが見つからなかったことを示します。
	StopNoNextLink
	// StopPageCap は安全上限に到達したことを示します。
	StopPageCap
	// StopCanceled はコンテキストがキャンセルされたことを示します。
	StopCanceled
)

func (r StopReason) String() string {
	switch r {
	case StopFetchFailed:
		return "fetch_failed"
	case StopNoNextLink:
		return "no_next_link"
	case StopPageCap:
		return "page_cap"
	case StopCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// PaginationResult は走査結果です。Pages は最初の取得に失敗した場合は空です。
type PaginationResult struct {
	Pages  []types.PaginatedPage
	Reason StopReason
}

// Paginate は baseURL に page クエリを付与して1ページ目から順に取得します。
// 取得失敗、"Next" リンクの不在、maxPages 超過のいずれかで終了します。
func Paginate(ctx context.Context, s Scraper, baseURL string, maxPages int) (PaginationResult, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return PaginationResult{}, fmt.Errorf("ページネーションの基準URLの解析に失敗しました (%s): %w", baseURL, err)
	}

	result := PaginationResult{Pages: []types.PaginatedPage{}}
	for page := 1; ; page++ {
		if page > maxPages {
			result.Reason = StopPageCap
			return result, nil
		}
		if ctx.Err() != nil {
			result.Reason = StopCanceled
			return result, nil
		}

		pageURL := withPageParam(base, page)
		doc := s.GetPage(ctx, pageURL)
		if doc == nil {
			result.Reason = StopFetchFailed
			return result, nil
		}

		text := s.ExtractTextContent(doc)
		result.Pages = append(result.Pages, types.PaginatedPage{
			Title:   text.Title,
			Content: text.Content,
			Page:    page,
			URL:     pageURL,
		})

		if !extract.HasLinkText(doc, NextLinkText) {
			result.Reason = StopNoNextLink
			return result, nil
		}
	}
}

// withPageParam は base のクエリ末尾に page=N を追加したURLを返します。
// 既存のクエリは順序を保ち、既存の page パラメーターのみ取り除きます。
func withPageParam(base *url.URL, page int) string {
	u := *base
	params := make([]string, 0, 4)
	if u.RawQuery != "" {
		for _, pair := range strings.Split(u.RawQuery, "&") {
			key, _, _ := strings.Cut(pair, "=")
			if pair == "" || key == pageParam {
				continue
			}
			params = append(params, pair)
		}
	}
	params = append(params, pageParam+"="+strconv.Itoa(page))
	u.RawQuery = strings.Join(params, "&")
	return u.String()
}
