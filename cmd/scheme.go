package cmd

import (
	"fmt"
	"net/url"
)

// ensureScheme は、URLのスキームが存在しない場合に https:// を補完します。
// スキームが既に存在する場合は、それが http または https であるかをチェックします。
func ensureScheme(rawURL string) (string, error) {
	if rawURL == "" {
		return "", fmt.Errorf("URLが指定されていません")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("URLのパースエラー: %w", err)
	}

	if parsedURL.Scheme != "" {
		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return "", fmt.Errorf("無効なURLスキームです。httpまたはhttpsを指定してください: %s", rawURL)
		}
		return rawURL, nil
	}

	return "https://" + rawURL, nil
}

// ensureSchemes は urls の各要素に ensureScheme を適用します。
func ensureSchemes(urls []string) ([]string, error) {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		fixed, err := ensureScheme(u)
		if err != nil {
			return nil, fmt.Errorf("URLスキームの処理エラー: %w", err)
		}
		out = append(out, fixed)
	}
	return out, nil
}
