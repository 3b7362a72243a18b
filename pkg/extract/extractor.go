package extract

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/shouni/go-web-scraper/pkg/dom"
	"github.com/shouni/go-web-scraper/pkg/types"
)

// ----------------------------------------------------------------------
// 定数定義
// ----------------------------------------------------------------------
const (
	// DefaultTitle は <title> 要素が存在しない場合のタイトルです。
	DefaultTitle = "No title"

	linkSelector   = "a[href]"
	phraseBoundary = "  "
)

// ----------------------------------------------------------------------
// リンク抽出
// ----------------------------------------------------------------------

// Links は href を持つ全アンカーを baseURL で絶対URLに解決し、ドキュメント順で返します。
// 重複やフラグメント、mailto:、javascript: などのスキームは除外しません。
// href の前後の空白と途中のタブ・改行は解決前に取り除きます。
// それでも解析できない href はそのまま含めます。
func Links(q dom.Queryer, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, &BaseURLError{BaseURL: baseURL, Err: err}
	}

	anchors := q.QueryAll(linkSelector)
	links := make([]string, 0, len(anchors))
	for _, a := range anchors {
		href, _ := a.Attr("href")
		links = append(links, resolve(base, href))
	}
	return links, nil
}

func resolve(base *url.URL, href string) string {
	href = cleanHref(href)
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// cleanHref は前後の空白・制御文字 (U+0000〜U+0020) を除き、
// 途中のタブと改行を取り除きます。ブラウザのURL解析と同じ前処理です。
func cleanHref(href string) string {
	href = strings.TrimFunc(href, func(r rune) bool { return r <= ' ' })
	return hrefNewlineRemover.Replace(href)
}

var hrefNewlineRemover = strings.NewReplacer("\t", "", "\r", "", "\n", "")

// ----------------------------------------------------------------------
// テキスト抽出
// ----------------------------------------------------------------------

// Text はタイトルと、script/style を除いた本文テキストを抽出します。
// ツリーは変更せず、走査時に script/style の部分木を読み飛ばします。
func Text(doc *dom.Document) types.TextContent {
	title := DefaultTitle
	if el := doc.QueryOne("title"); el != nil {
		title = strings.TrimSpace(el.Text())
	}

	var sb strings.Builder
	collectText(doc.Root(), &sb)

	return types.TextContent{
		Title:   title,
		Content: CleanText(sb.String()),
	}
}

// collectText はテキストノードをドキュメント順で連結します。
func collectText(n *html.Node, sb *strings.Builder) {
	if n == nil {
		return
	}
	switch n.Type {
	case html.TextNode:
		sb.WriteString(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		if n.DataAtom == atom.Script || n.DataAtom == atom.Style {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, sb)
	}
}

// CleanText は、行ごとにトリムし、連続する2つの空白で句に分割して再度トリムし、
// 空の断片を除いて単一の空白で連結します。
func CleanText(text string) string {
	var chunks []string
	for _, line := range strings.FieldsFunc(text, isLineBreak) {
		for _, phrase := range strings.Split(strings.TrimSpace(line), phraseBoundary) {
			if p := strings.TrimSpace(phrase); p != "" {
				chunks = append(chunks, p)
			}
		}
	}
	return strings.Join(chunks, " ")
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
