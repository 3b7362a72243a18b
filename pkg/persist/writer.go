package persist

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/shouni/go-utils/iohandler"
	"go.uber.org/zap"
)

// Row は、CSVの1行として書き出せるレコードです。
// ヘッダーは先頭行の CSVHeader から決まります。
type Row interface {
	CSVHeader() []string
	CSVRecord() []string
}

// Writer は、抽出結果をファイルへ保存します。
type Writer struct {
	logger *zap.Logger
}

// NewWriter は新しい Writer を生成します。logger が nil の場合はログを出力しません。
func NewWriter(logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{logger: logger}
}

// SaveJSON は data を2スペースでインデントしたJSONとして path に上書き保存します。
// 非ASCII文字 (U+2028/U+2029 を含む) や <, >, & はエスケープせずそのまま出力します。
// path が空の場合は標準出力へ書き出します。
func (w *Writer) SaveJSON(path string, data any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("JSONのシリアライズに失敗しました: %w", err)
	}

	if err := iohandler.WriteOutput(path, unescapeLineSeparators(buf.Bytes())); err != nil {
		return fmt.Errorf("JSONファイルの書き込みに失敗しました (%s): %w", path, err)
	}
	w.logger.Info("データを保存しました", zap.String("path", path), zap.String("format", "json"))
	return nil
}

// SaveCSV は rows をヘッダー付きCSVとして path に上書き保存します。
// rows が空の場合は何もしません（ファイルを作成しません）。path が空の場合は標準出力へ書き出します。
func SaveCSV[T Row](w *Writer, path string, rows []T) error {
	if len(rows) == 0 {
		return nil
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if err := cw.Write(rows[0].CSVHeader()); err != nil {
		return fmt.Errorf("CSVヘッダーの書き込みに失敗しました: %w", err)
	}
	for _, row := range rows {
		if err := cw.Write(row.CSVRecord()); err != nil {
			return fmt.Errorf("CSV行の書き込みに失敗しました: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("CSVのフラッシュに失敗しました: %w", err)
	}

	if err := iohandler.WriteOutput(path, buf.Bytes()); err != nil {
		return fmt.Errorf("CSVファイルの書き込みに失敗しました (%s): %w", path, err)
	}
	w.logger.Info("データを保存しました", zap.String("path", path), zap.String("format", "csv"), zap.Int("rows", len(rows)))
	return nil
}

// unescapeLineSeparators は encoding/json が常にエスケープする \u2028 と \u2029 を元の文字に戻します。
// 文字列中のリテラルな "\\u2028" (エスケープされたバックスラッシュ + u2028) は対象外です。
func unescapeLineSeparators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}
		if i+6 <= len(b) && b[i+1] == 'u' && string(b[i+2:i+5]) == "202" && (b[i+5] == '8' || b[i+5] == '9') {
			if b[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		// その他のエスケープは2バイト単位でそのまま写す
		out = append(out, b[i], b[i+1])
		i++
	}
	return out
}
