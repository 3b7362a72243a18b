package types

import (
	"strconv"
	"strings"
)

// listSeparator は、CSV出力時にリスト型フィールドを1セルへ結合する際の区切り文字です。
const listSeparator = "; "

// TextContent は、ドキュメントから抽出したタイトルと整形済み本文です。
type TextContent struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// PageRecord は、1回の取得に成功したページの記録です。
// URL は取得時に渡された文字列そのもの（正規化しない）を保持します。
type PageRecord struct {
	URL       string `json:"url"`
	Timestamp string `json:"timestamp"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

// CSVHeader は、CSVのヘッダー行を返します。
func (r PageRecord) CSVHeader() []string {
	return []string{"url", "timestamp", "title", "content"}
}

// CSVRecord は、CSVの1行分を返します。
func (r PageRecord) CSVRecord() []string {
	return []string{r.URL, r.Timestamp, r.Title, r.Content}
}

// PaginatedPage は、ページネーション走査で得た1ページ分の記録です。
type PaginatedPage struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Page    int    `json:"page"`
	URL     string `json:"url"`
}

func (p PaginatedPage) CSVHeader() []string {
	return []string{"title", "content", "page", "url"}
}

func (p PaginatedPage) CSVRecord() []string {
	return []string{p.Title, p.Content, strconv.Itoa(p.Page), p.URL}
}

// ProductRecord は、商品ページから抽出した情報です。
// 該当するセレクターが無いフィールドは空文字列・空スライスのまま残ります。
type ProductRecord struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Price       string   `json:"price"`
	Description string   `json:"description"`
	Images      []string `json:"images"`
}

// NewProductRecord は、全フィールドを既定値で初期化した ProductRecord を返します。
func NewProductRecord(url string) ProductRecord {
	return ProductRecord{
		URL:    url,
		Images: []string{},
	}
}

func (p ProductRecord) CSVHeader() []string {
	return []string{"url", "title", "price", "description", "images"}
}

func (p ProductRecord) CSVRecord() []string {
	return []string{p.URL, p.Title, p.Price, p.Description, strings.Join(p.Images, listSeparator)}
}

// Headline は、見出しセレクターに一致した要素のテキストです。
type Headline struct {
	Headline string `json:"headline"`
	Selector string `json:"selector"`
	URL      string `json:"url"`
}

func (h Headline) CSVHeader() []string {
	return []string{"headline", "selector", "url"}
}

func (h Headline) CSVRecord() []string {
	return []string{h.Headline, h.Selector, h.URL}
}

// ScrapeResults は、サンプルドライバー全体の実行結果をまとめたものです。
type ScrapeResults struct {
	Headlines     []Headline      `json:"headlines"`
	Products      []ProductRecord `json:"products"`
	PaginatedData []PaginatedPage `json:"paginated_data"`
}
