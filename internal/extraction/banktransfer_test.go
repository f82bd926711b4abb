package extraction

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ivang/receipt-archive/internal/receipt"
)

// bankTransferPage mirrors the text a real statement produces after PDF
// conversion, including the doubled spaces inside the labels.
const bankTransferPage = `Коммунальные платежи
Статус  операции: Успешно
Сумма  операции: 212.73 BYN
Дата  и  время  проведения  операции: 18.05.2024 17:29:01
Карточка: 1*** **** **** 1111
Коммунальные платежи
Период: 04.2024
Лицевой счет: 110011223
Адрес: г. Минск, ул. Тестовая, д. 777
Без двоеточия эта строка пропускается
N операции в ЕРИП: 1234567890
Чек сформирован автоматически`

var _ = Describe("BankTransfer", func() {
	var (
		pages  []string
		record receipt.Record
		ok     bool
	)

	BeforeEach(func() {
		pages = []string{bankTransferPage}
	})

	JustBeforeEach(func() {
		record, ok = BankTransfer{}.TryExtract(pages)
	})

	When("the page is a bank transfer statement", func() {
		It("should match", func() {
			Expect(ok).To(BeTrue())
		})

		It("should take the title from the first line", func() {
			Expect(record.Title).To(Equal("Коммунальные платежи"))
		})

		It("should classify the record as a bank transfer", func() {
			Expect(record.Type).To(Equal("MTB"))
		})

		It("should parse the amount and currency", func() {
			Expect(record.Amount).To(Equal(212.73))
			Expect(record.Currency).To(Equal("BYN"))
		})

		It("should parse the operation timestamp", func() {
			Expect(record.Timestamp).To(Equal(time.Date(2024, 5, 18, 17, 29, 1, 0, time.UTC)))
		})

		It("should collect name: value details after the repeated title", func() {
			Expect(record.Details).To(Equal([]receipt.Detail{
				{Name: "Период", Value: "04.2024"},
				{Name: "Лицевой счет", Value: "110011223"},
				{Name: "Адрес", Value: "г. Минск, ул. Тестовая, д. 777"},
			}))
		})
	})

	When("the document has more than one page", func() {
		BeforeEach(func() {
			pages = []string{bankTransferPage, "вторая страница"}
		})

		It("should not match", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the status line is missing", func() {
		BeforeEach(func() {
			pages = []string{strings.Replace(bankTransferPage, "Статус  операции", "Состояние", 1)}
		})

		It("should not match", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the timestamp is malformed", func() {
		BeforeEach(func() {
			pages = []string{strings.Replace(bankTransferPage, "18.05.2024 17:29:01", "18 мая 2024", 1)}
		})

		It("should not match", func() {
			Expect(ok).To(BeFalse())
		})
	})

	When("the detailing block never repeats the title", func() {
		BeforeEach(func() {
			pages = []string{`Оплата услуг
Статус  операции: Успешно
Сумма  операции: 10.00 BYN
Дата  и  время  проведения  операции: 01.01.2024 00:00:01
N операции в ЕРИП: 1`}
		})

		It("should still match, with no details", func() {
			Expect(ok).To(BeTrue())
			Expect(record.Details).To(BeEmpty())
		})
	})
})
