// Package config は、サンプルドライバーが使う対象URLとセレクター候補を管理します。
package config

import (
	"errors"
	"fmt"

	"github.com/shouni/go-utils/iohandler"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultExampleURL は安全に取得できるテスト用ページです。
	DefaultExampleURL = "https://httpbin.org/html"
	// DefaultMaxPages はページネーションの安全上限です。
	DefaultMaxPages = 5
	// DefaultMinHeadlineLength を超える長さの見出しのみ採用します。
	DefaultMinHeadlineLength = 10
	// DefaultDescriptionLimit は商品説明の最大文字数です。
	DefaultDescriptionLimit = 500
)

// Selectors は、フィールドごとのセレクター候補です。先頭から順に評価されます。
type Selectors struct {
	Headlines   []string `yaml:"headlines"`
	Title       []string `yaml:"title"`
	Price       []string `yaml:"price"`
	Description []string `yaml:"description"`
}

// Config はサンプルドライバーの入力設定です。
type Config struct {
	HeadlineURL       string    `yaml:"headline_url"`
	ProductURLs       []string  `yaml:"product_urls"`
	PaginationURL     string    `yaml:"pagination_url"`
	MaxPages          int       `yaml:"max_pages"`
	MinHeadlineLength int       `yaml:"min_headline_length"`
	DescriptionLimit  int       `yaml:"description_limit"`
	Selectors         Selectors `yaml:"selectors"`
}

// Default は既定の設定を返します。
func Default() Config {
	return Config{
		HeadlineURL:       DefaultExampleURL,
		ProductURLs:       []string{DefaultExampleURL},
		PaginationURL:     DefaultExampleURL,
		MaxPages:          DefaultMaxPages,
		MinHeadlineLength: DefaultMinHeadlineLength,
		DescriptionLimit:  DefaultDescriptionLimit,
		Selectors: Selectors{
			Headlines: []string{
				"h1", "h2", "h3",
				".headline", ".title",
				`[class*="headline"]`, `[class*="title"]`,
			},
			Title:       []string{"h1", ".product-title", `[class*="title"]`},
			Price:       []string{".price", `[class*="price"]`, "[data-price]"},
			Description: []string{".description", `[class*="description"]`, "p"},
		},
	}
}

// Load は YAML ファイルを読み込み、既定値に上書きします。
// path が空の場合は既定値をそのまま返します。記載のないキーは既定値のままです。
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	raw, err := iohandler.ReadInput(path)
	if err != nil {
		return Config{}, fmt.Errorf("設定ファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("設定ファイルの解析に失敗しました (%s): %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("設定ファイルの検証に失敗しました (%s): %w", path, err)
	}
	return cfg, nil
}

// Validate は設定値の整合性を確認します。
func (c Config) Validate() error {
	var errs []error
	if c.MaxPages <= 0 {
		errs = append(errs, fmt.Errorf("max_pages は1以上である必要があります: %d", c.MaxPages))
	}
	if c.MinHeadlineLength < 0 {
		errs = append(errs, fmt.Errorf("min_headline_length は0以上である必要があります: %d", c.MinHeadlineLength))
	}
	if c.DescriptionLimit <= 0 {
		errs = append(errs, fmt.Errorf("description_limit は1以上である必要があります: %d", c.DescriptionLimit))
	}
	return errors.Join(errs...)
}
