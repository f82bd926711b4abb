package extraction

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ivang/receipt-archive/internal/receipt"
)

const utilityNotice2Page = `Извещение о размере платы
Плательщик Иван Иванов Лицевой счет  110011223
Адрес помещения: Минский р-н, Тестовый с/с, Тест, ул.Тестовая, д.777
Отчетный месяц май 2024
Услуга Начислено
К ОПЛАТЕ на (10.06.2024) 148.32`

var _ = Describe("UtilityNotice2", func() {
	var (
		pages     []string
		extractor UtilityNotice2
		clock     time.Time
		record    receipt.Record
		ok        bool
	)

	BeforeEach(func() {
		pages = []string{utilityNotice2Page}
		clock = time.Date(2024, 6, 12, 9, 30, 0, 0, time.UTC)
		extractor = NewUtilityNotice2(func() time.Time { return clock })
	})

	JustBeforeEach(func() {
		record, ok = extractor.TryExtract(pages)
	})

	When("the page is a form 2 notice", func() {
		It("should match", func() {
			Expect(ok).To(BeTrue())
		})

		It("should use the fixed title and type", func() {
			Expect(record.Title).To(Equal("Извещение"))
			Expect(record.Type).To(Equal("ЖКХ"))
		})

		It("should take the amount from the payable line", func() {
			Expect(record.Amount).To(Equal(148.32))
			Expect(record.Currency).To(Equal("BYN"))
		})

		It("should stamp the record with the extraction time", func() {
			Expect(record.Timestamp).To(Equal(clock))
		})

		It("should expose address, account, payer, period and amount details", func() {
			Expect(record.Details).To(Equal([]receipt.Detail{
				{Name: "Адрес помещения", Value: "Минский р-н, Тестовый с/с, Тест, ул.Тестовая, д.777"},
				{Name: "Лицевой счет", Value: "110011223"},
				{Name: "Плательщик", Value: "Иван Иванов "},
				{Name: "Период", Value: "05.2024"},
				{Name: "Сумма", Value: "148.32 BYN"},
			}))
		})
	})

	When("the payer spans a line break", func() {
		BeforeEach(func() {
			pages = []string{strings.Replace(utilityNotice2Page,
				"Плательщик Иван Иванов Лицевой счет  110011223",
				"Плательщик Иван\n Иванов Лицевой счет  110011223",
				1)}
		})

		It("should join the payer into one line", func() {
			Expect(ok).To(BeTrue())
			Expect(record.Details[2].Value).To(Equal("Иван Иванов "))
		})
	})

	When("the payable line is missing", func() {
		BeforeEach(func() {
			pages = []string{strings.Replace(utilityNotice2Page, "К ОПЛАТЕ на", "К оплате до", 1)}
		})

		It("should not match", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the account is separated by a single space", func() {
		BeforeEach(func() {
			pages = []string{strings.Replace(utilityNotice2Page, "Лицевой счет  110011223", "Лицевой счет 110011223", 1)}
		})

		It("should not match", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the document has more than one page", func() {
		BeforeEach(func() {
			pages = []string{utilityNotice2Page, "вторая страница"}
		})

		It("should not match", func() {
			Expect(ok).To(BeFalse())
		})
	})
})
