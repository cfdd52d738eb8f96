package utils

import "strings"

// CsvEscape quotes a value only when it contains a quote, delimiter or
// line break. The exports use ';' as delimiter so spreadsheet tools in
// es-CO locales open them without an import wizard.
func CsvEscape(v string) string {
	if strings.ContainsAny(v, "\",\n\r;") {
		return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
	}
	return v
}

// ToCsv renders a semicolon-delimited CSV with a header row.
func ToCsv(columns []string, rows [][]string) string {
	var b strings.Builder
	b.WriteString(strings.Join(columns, ";"))
	for _, row := range rows {
		b.WriteString("\n")
		for i, v := range row {
			if i > 0 {
				b.WriteString(";")
			}
			b.WriteString(CsvEscape(v))
		}
	}
	return b.String()
}
