package extraction

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/ivang/receipt-archive/internal/receipt"
)

var (
	noticeAddressPattern   = regexp.MustCompile(`(?s)Адрес помещения : (?P<address>.+)Лицевой`)
	noticeAccountPattern   = regexp.MustCompile(`Лицевой счет : (?P<account>\d+)`)
	noticeTimestampPattern = regexp.MustCompile(`от (?P<timestamp>\d\d\.\d\d\.\d\d\d\d \d\d:\d\d:\d\d)`)
	noticeTotalPattern     = regexp.MustCompile(`Всего начислено (?P<amount>[\d.]+)`)
	noticePeriodPattern    = regexp.MustCompile(`ИЗВЕЩЕНИЕ за (?P<month>\p{L}+) (?P<year>\d{4})`)
)

const (
	utilityType        = "ЖКХ"
	utilityTitle       = "Извещение"
	utilityCurrency    = "BYN"
	noticeTotalPrefix  = "Всего начислено"
	detailAddressName  = "Адрес помещения"
	detailAccountName  = "Лицевой счет"
	detailPeriodName   = "Период"
	detailAmountName   = "Сумма"
	detailPayerName    = "Плательщик"
	noticeDateLayout   = "02.01.2006 15:04:05"
)

// UtilityNotice extracts single-page utility notices, form 1. Lines are
// accumulated into a title block until the first line containing a colon,
// then into a properties block, stopping at the "total charged" line whose
// numeric suffix is the amount.
type UtilityNotice struct{}

// TryExtract implements Extractor.
func (UtilityNotice) TryExtract(pages []string) (receipt.Record, bool) {
	if len(pages) != 1 {
		return receipt.Record{}, false
	}

	var titleBuilder, propertiesBuilder strings.Builder
	var totalLine string
	isTitle := true
	for _, line := range splitLines(pages[0]) {
		if strings.HasPrefix(line, noticeTotalPrefix) {
			totalLine = line
			break
		}
		if strings.Contains(line, ":") {
			isTitle = false
		}
		if isTitle {
			titleBuilder.WriteString(line)
			titleBuilder.WriteString("\n")
		} else {
			propertiesBuilder.WriteString(line)
			propertiesBuilder.WriteString("\n")
		}
	}

	if strings.TrimSpace(totalLine) == "" {
		return receipt.Record{}, false
	}

	properties := propertiesBuilder.String()

	addressMatch := noticeAddressPattern.FindStringSubmatch(properties)
	if addressMatch == nil {
		return receipt.Record{}, false
	}
	// The captured address drags along punctuation fragments from the
	// payment footer; strip them the way the source documents require.
	address := addressMatch[1]
	address = strings.ReplaceAll(address, "» оплат", " ")
	address = strings.ReplaceAll(address, "района", "")
	address = collapseLines(address)

	// The account is informative only: an absent match leaves it empty.
	var account string
	if m := noticeAccountPattern.FindStringSubmatch(properties); m != nil {
		account = m[1]
	}

	timestampMatch := noticeTimestampPattern.FindStringSubmatch(properties)
	if timestampMatch == nil {
		return receipt.Record{}, false
	}
	timestamp, err := time.Parse(noticeDateLayout, timestampMatch[1])
	if err != nil {
		return receipt.Record{}, false
	}

	// Example: "Всего начислено 212.73 0.00 0.00 212.73"
	totalMatch := noticeTotalPattern.FindStringSubmatch(totalLine)
	if totalMatch == nil {
		return receipt.Record{}, false
	}
	amount, ok := parseAmount(totalMatch[1])
	if !ok {
		return receipt.Record{}, false
	}

	title := collapseLines(titleBuilder.String())
	if strings.TrimSpace(title) == "" {
		return receipt.Record{}, false
	}

	// Example: "ИЗВЕЩЕНИЕ за апрель 2024 года"
	periodMatch := noticePeriodPattern.FindStringSubmatch(title)
	if periodMatch == nil {
		return receipt.Record{}, false
	}
	month := monthNumber(periodMatch[1])
	if month <= 0 {
		return receipt.Record{}, false
	}
	period := fmt.Sprintf("%02d.%s", month, periodMatch[2])

	return receipt.Record{
		Title:     utilityTitle,
		Type:      utilityType,
		Currency:  utilityCurrency,
		Amount:    amount,
		Timestamp: timestamp,
		Details: []receipt.Detail{
			{Name: detailAddressName, Value: address},
			{Name: detailAccountName, Value: account},
			{Name: detailPeriodName, Value: period},
			{Name: detailAmountName, Value: totalMatch[1] + " " + utilityCurrency},
		},
	}, true
}
