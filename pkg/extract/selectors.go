package extract

import (
	"fmt"
	"strings"

	"github.com/shouni/go-web-scraper/pkg/dom"
)

// BaseURLError は、リンク解決の基準URLが解析できないことを示します。
type BaseURLError struct {
	BaseURL string
	Err     error
}

func (e *BaseURLError) Error() string {
	return fmt.Sprintf("基準URLの解析に失敗しました (%s): %v", e.BaseURL, e.Err)
}

func (e *BaseURLError) Unwrap() error {
	return e.Err
}

// FirstMatch は候補セレクターを順に評価し、最初に要素が見つかった時点で
// その要素のトリム済みテキストを返します。以降のセレクターは評価しません。
// 要素のテキストが空でも、要素が見つかればそこで確定します。
func FirstMatch(q dom.Queryer, selectors []string) (string, bool) {
	for _, selector := range selectors {
		if el := q.QueryOne(selector); el != nil {
			return strings.TrimSpace(el.Text()), true
		}
	}
	return "", false
}

// Texts はセレクターに一致した全要素のトリム済みテキストを返します。
func Texts(q dom.Queryer, selector string) []string {
	elements := q.QueryAll(selector)
	texts := make([]string, 0, len(elements))
	for _, el := range elements {
		texts = append(texts, strings.TrimSpace(el.Text()))
	}
	return texts
}

// AttrValues はセレクターに一致した要素のうち、属性値が空でないものを返します。
func AttrValues(q dom.Queryer, selector, attr string) []string {
	values := []string{}
	for _, el := range q.QueryAll(selector) {
		if v, ok := el.Attr(attr); ok && v != "" {
			values = append(values, v)
		}
	}
	return values
}

// HasLinkText は、トリム済みテキストが text と一致するアンカーが存在するかを返します。
func HasLinkText(q dom.Queryer, text string) bool {
	for _, a := range q.QueryAll("a") {
		if strings.TrimSpace(a.Text()) == text {
			return true
		}
	}
	return false
}
