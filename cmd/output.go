package cmd

import (
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
)

// renderTable は header と rows を罫線付きの表として w に出力します。
func renderTable(w io.Writer, header []any, rows [][]any) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row(header))
	for _, row := range rows {
		t.AppendRow(table.Row(row))
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

// preview は s の先頭 limit 文字を返します。
func preview(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
