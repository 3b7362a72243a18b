// Package dom は、パース済みHTMLを CSS セレクターで問い合わせるための薄い型を提供します。
package dom

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Queryer は、セレクター文字列で要素を検索する機能を定義します。
// セレクターは解釈せずにそのまま CSS セレクターエンジンへ渡されます。
// 不正なセレクターはエラーではなく「一致なし」として扱われます。
type Queryer interface {
	QueryAll(selector string) []*Element
	QueryOne(selector string) *Element
}

// Element は、ドキュメント内の1要素です。
type Element struct {
	sel *goquery.Selection
}

// Text は、要素配下のテキストノードを連結した文字列を返します（トリムしません）。
func (e *Element) Text() string {
	return e.sel.Text()
}

// Attr は、属性値と存在有無を返します。
func (e *Element) Attr(name string) (string, bool) {
	return e.sel.Attr(name)
}

// Node は、下層の *html.Node を返します。
func (e *Element) Node() *html.Node {
	return e.sel.Get(0)
}

// Document は、1回の取得結果をパースしたツリーです。
// 抽出処理はツリーを書き換えません。
type Document struct {
	doc *goquery.Document
}

var _ Queryer = (*Document)(nil)

// Parse は、HTMLを寛容なパーサーで読み込みます。壊れたマークアップでも失敗しません。
func Parse(r io.Reader) (*Document, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("HTML解析に失敗しました: %w", err)
	}
	return &Document{doc: doc}, nil
}

// ParseBytes は Parse のバイト列版です。
func ParseBytes(b []byte) (*Document, error) {
	return Parse(bytes.NewReader(b))
}

// ParseString は Parse の文字列版です。
func ParseString(s string) (*Document, error) {
	return Parse(strings.NewReader(s))
}

// QueryAll は、セレクターに一致する全要素をドキュメント順で返します。
func (d *Document) QueryAll(selector string) []*Element {
	found := d.doc.Find(selector)
	elements := make([]*Element, 0, found.Length())
	found.Each(func(_ int, s *goquery.Selection) {
		elements = append(elements, &Element{sel: s})
	})
	return elements
}

// QueryOne は、最初に一致した要素を返します。一致しない場合は nil です。
func (d *Document) QueryOne(selector string) *Element {
	found := d.doc.Find(selector).First()
	if found.Length() == 0 {
		return nil
	}
	return &Element{sel: found}
}

// Root は、ドキュメントのルートノードを返します。
func (d *Document) Root() *html.Node {
	return d.doc.Get(0)
}
