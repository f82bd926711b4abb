package extraction

import (
	"strconv"
	"strings"
)

// monthNames is the fixed period-month table used by the utility notice
// layouts. Matching is case-insensitive.
var monthNames = []string{
	"ЯНВАРЬ", "ФЕВРАЛЬ", "МАРТ", "АПРЕЛЬ", "МАЙ", "ИЮНЬ",
	"ИЮЛЬ", "АВГУСТ", "СЕНТЯБРЬ", "ОКТЯБРЬ", "НОЯБРЬ", "ДЕКАБРЬ",
}

// monthNumber returns the 1-based month for a Cyrillic month name, or 0
// when the name is not in the table.
func monthNumber(name string) int {
	upper := strings.ToUpper(name)
	for i, m := range monthNames {
		if m == upper {
			return i + 1
		}
	}
	return 0
}

// collapseLines removes every line ending from the text, joining it into a
// single line. Interior spaces are kept as-is.
func collapseLines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "")
	text = strings.ReplaceAll(text, "\n", "")
	return strings.ReplaceAll(text, "\r", "")
}

// splitLines splits page text into lines regardless of line-ending style.
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}

// parseAmount parses a decimal amount, tolerating thousands separators.
func parseAmount(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
