package telegram

import (
	"fmt"
	"strings"

	"github.com/go-telegram/bot"

	"github.com/ivang/receipt-archive/internal/receipt"
)

// renderRecord formats a record as MarkdownV2. The layout is stable
// because mergeTags re-parses it when tags are edited: header line, amount
// line, a blank-line separated run of italic details, then the tag line.
func renderRecord(record receipt.Record) string {
	var sb strings.Builder

	sb.WriteString(`\(` + bot.EscapeMarkdown(record.Type) + `\) `)
	sb.WriteString(bot.EscapeMarkdown(record.Title))
	sb.WriteString(" ")
	sb.WriteString(bot.EscapeMarkdown(record.Timestamp.Format("2006-01-02 15:04:05")))
	sb.WriteString("\n")
	sb.WriteString(bot.EscapeMarkdown(fmt.Sprintf("%.2f %s", record.Amount, record.Currency)))
	sb.WriteString("\n")

	for _, detail := range record.Details {
		sb.WriteString("\n_" + bot.EscapeMarkdown(detail.Name+": "+detail.Value) + "_")
	}

	if len(record.Tags) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(renderTagLine(record.Tags))
	}
	return sb.String()
}

func renderTagLine(tags []string) string {
	parts := make([]string, len(tags))
	for i, tag := range tags {
		parts[i] = bot.EscapeMarkdown("#" + tag)
	}
	return strings.Join(parts, ", ")
}

// parseTags extracts tag names from a free-form reply. Separators are
// whitespace, line breaks and commas; a leading '#' is optional.
// Duplicates are dropped, first occurrence wins.
func parseTags(text string) []string {
	text = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ", ",", " ").Replace(text)

	seen := make(map[string]bool)
	var tags []string
	for _, field := range strings.Fields(text) {
		tag := strings.TrimPrefix(field, "#")
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

// mergeTags rebuilds a rendered record message with extra tags appended.
// The incoming text is the plain form of a renderRecord message (Telegram
// strips the markup), so the structure is re-escaped line by line.
func mergeTags(rendered string, newTags []string) string {
	lines := strings.Split(rendered, "\n")

	hasTagLine := len(lines) > 2 && strings.HasPrefix(lines[len(lines)-1], "#")
	body := len(lines)
	if hasTagLine {
		body--
	}

	var sb strings.Builder
	for i := 0; i < body && i < 2; i++ {
		sb.WriteString(bot.EscapeMarkdown(lines[i]))
		sb.WriteString("\n")
	}
	for i := 2; i < body; i++ {
		if lines[i] == "" {
			sb.WriteString("\n")
			continue
		}
		sb.WriteString("_" + bot.EscapeMarkdown(lines[i]) + "_\n")
	}

	tagLine := renderTagLine(newTags)
	if hasTagLine {
		existing := bot.EscapeMarkdown(lines[len(lines)-1])
		if tagLine == "" {
			tagLine = existing
		} else {
			tagLine = existing + ", " + tagLine
		}
	}
	sb.WriteString(tagLine)
	return sb.String()
}
