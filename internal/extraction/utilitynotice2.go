package extraction

import (
	"fmt"
	"regexp"
	"time"

	"github.com/ivang/receipt-archive/internal/receipt"
)

var (
	notice2PayerPattern   = regexp.MustCompile(`Плательщик (?P<name>[\p{L}\d_\s]+)Лицевой`)
	notice2AccountPattern = regexp.MustCompile(`Лицевой счет  (?P<account>\d+)`)
	notice2AddressPattern = regexp.MustCompile(`Адрес помещения: (?P<address>.+)`)
	notice2PeriodPattern  = regexp.MustCompile(`Отчетный месяц (?P<month>\p{L}+) (?P<year>\d{4})`)
	notice2AmountPattern  = regexp.MustCompile(`К ОПЛАТЕ на \(\d\d\.\d\d\.\d\d\d\d\) (?P<amount>[\d.]+)`)
)

// UtilityNotice2 extracts single-page utility notices, form 2: a single
// pass of independent regexes with no line-by-line state. All five fields
// are required.
//
// This layout states no document date, so the record timestamp is the
// extraction time. That is inconsistent with the other layouts and kept
// deliberately; correlation rules key on the Период detail instead.
type UtilityNotice2 struct {
	now func() time.Time
}

// NewUtilityNotice2 creates the extractor. now may be nil for time.Now.
func NewUtilityNotice2(now func() time.Time) UtilityNotice2 {
	if now == nil {
		now = time.Now
	}
	return UtilityNotice2{now: now}
}

// TryExtract implements Extractor.
func (u UtilityNotice2) TryExtract(pages []string) (receipt.Record, bool) {
	if len(pages) != 1 {
		return receipt.Record{}, false
	}
	text := pages[0]

	payerMatch := notice2PayerPattern.FindStringSubmatch(text)
	accountMatch := notice2AccountPattern.FindStringSubmatch(text)
	addressMatch := notice2AddressPattern.FindStringSubmatch(text)
	periodMatch := notice2PeriodPattern.FindStringSubmatch(text)
	amountMatch := notice2AmountPattern.FindStringSubmatch(text)

	if payerMatch == nil ||
		accountMatch == nil ||
		addressMatch == nil ||
		periodMatch == nil ||
		amountMatch == nil {
		return receipt.Record{}, false
	}

	month := monthNumber(periodMatch[1])
	if month <= 0 {
		return receipt.Record{}, false
	}

	amount, ok := parseAmount(amountMatch[1])
	if !ok {
		return receipt.Record{}, false
	}

	return receipt.Record{
		Title:     utilityTitle,
		Type:      utilityType,
		Currency:  utilityCurrency,
		Amount:    amount,
		Timestamp: u.now(),
		Details: []receipt.Detail{
			{Name: detailAddressName, Value: collapseLines(addressMatch[1])},
			{Name: detailAccountName, Value: collapseLines(accountMatch[1])},
			{Name: detailPayerName, Value: collapseLines(payerMatch[1])},
			{Name: detailPeriodName, Value: fmt.Sprintf("%02d.%s", month, periodMatch[2])},
			{Name: detailAmountName, Value: amountMatch[1] + " " + utilityCurrency},
		},
	}, true
}
