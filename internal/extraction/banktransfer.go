package extraction

import (
	"regexp"
	"strings"
	"time"

	"github.com/ivang/receipt-archive/internal/receipt"
)

// The bank statements come out of PDF text extraction with doubled spaces
// inside the anchor labels; the patterns match that text verbatim.
var (
	bankStatusPattern = regexp.MustCompile(`Статус  операции: (\p{L}+)`)
	bankAmountPattern = regexp.MustCompile(`Сумма  операции: (?P<amount>[\d.,]+) (?P<ccy>\w+)`)
	bankDatePattern   = regexp.MustCompile(`Дата  и  время  проведения  операции: (.+)`)
)

const (
	bankTransferType      = "MTB"
	bankTimestampLayout   = "02.01.2006 15:04:05"
	bankDetailingSentinel = "N операции в ЕРИП:"
)

// BankTransfer extracts single-page bank transfer receipts. The layout is a
// fixed-order header (title, status, amount, date), a repeat of the header
// block, then name: value lines terminated by the ЕРИП sentinel.
type BankTransfer struct{}

// TryExtract implements Extractor.
func (BankTransfer) TryExtract(pages []string) (receipt.Record, bool) {
	if len(pages) != 1 {
		return receipt.Record{}, false
	}

	lines := splitLines(pages[0])
	if len(lines) < 4 {
		return receipt.Record{}, false
	}

	title := lines[0]

	// The status value itself is not surfaced; its presence validates the
	// layout.
	if !bankStatusPattern.MatchString(lines[1]) {
		return receipt.Record{}, false
	}

	amountMatch := bankAmountPattern.FindStringSubmatch(lines[2])
	dateMatch := bankDatePattern.FindStringSubmatch(lines[3])
	if amountMatch == nil || dateMatch == nil {
		return receipt.Record{}, false
	}

	amount, ok := parseAmount(amountMatch[1])
	if !ok {
		return receipt.Record{}, false
	}

	timestamp, err := time.Parse(bankTimestampLayout, dateMatch[1])
	if err != nil {
		return receipt.Record{}, false
	}

	// The document repeats the header block once; the detail lines start
	// after the second occurrence of the title.
	i := 4
	for i < len(lines) && lines[i] != title {
		i++
	}

	var details []receipt.Detail
	for i++; i < len(lines) && !strings.HasPrefix(lines[i], bankDetailingSentinel); i++ {
		name, value, found := strings.Cut(lines[i], ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}
		details = append(details, receipt.Detail{Name: name, Value: value})
	}

	return receipt.Record{
		Title:     title,
		Type:      bankTransferType,
		Currency:  amountMatch[2],
		Amount:    amount,
		Timestamp: timestamp,
		Details:   details,
	}, true
}
