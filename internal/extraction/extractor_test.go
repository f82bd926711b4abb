package extraction

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ivang/receipt-archive/internal/receipt"
)

// fakeExtractor is a scriptable Extractor that records whether it ran.
type fakeExtractor struct {
	record receipt.Record
	ok     bool
	panics bool
	called bool
}

func (f *fakeExtractor) TryExtract(pages []string) (receipt.Record, bool) {
	f.called = true
	if f.panics {
		panic("boom")
	}
	return f.record, f.ok
}

func completeRecord(title string) receipt.Record {
	return receipt.Record{
		Title:     title,
		Type:      "TEST",
		Amount:    1,
		Currency:  "BYN",
		Timestamp: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

var _ = Describe("Registry", func() {
	var (
		first, second *fakeExtractor
		record        receipt.Record
		ok            bool
	)

	BeforeEach(func() {
		first = &fakeExtractor{record: completeRecord("first"), ok: true}
		second = &fakeExtractor{record: completeRecord("second"), ok: true}
	})

	JustBeforeEach(func() {
		record, ok = NewRegistryWith(first, second).TryExtract([]string{"page"})
	})

	When("the first extractor matches", func() {
		It("should return its record without trying the rest", func() {
			Expect(ok).To(BeTrue())
			Expect(record.Title).To(Equal("first"))
			Expect(second.called).To(BeFalse())
		})
	})

	When("the first extractor does not match", func() {
		BeforeEach(func() {
			first.ok = false
		})

		It("should fall through to the second", func() {
			Expect(ok).To(BeTrue())
			Expect(record.Title).To(Equal("second"))
		})
	})

	When("the first extractor returns an incomplete record", func() {
		BeforeEach(func() {
			first.record.Amount = 0
		})

		It("should treat it as no match and fall through", func() {
			Expect(ok).To(BeTrue())
			Expect(record.Title).To(Equal("second"))
		})
	})

	When("the first extractor panics", func() {
		BeforeEach(func() {
			first.panics = true
		})

		It("should recover and fall through", func() {
			Expect(ok).To(BeTrue())
			Expect(record.Title).To(Equal("second"))
		})
	})

	When("no extractor matches", func() {
		BeforeEach(func() {
			first.ok = false
			second.ok = false
		})

		It("should report no match", func() {
			Expect(ok).To(BeFalse())
		})
	})
})

var _ = Describe("monthNumber", func() {
	It("should map Cyrillic month names to 1-based numbers", func() {
		Expect(monthNumber("январь")).To(Equal(1))
		Expect(monthNumber("МАЙ")).To(Equal(5))
		Expect(monthNumber("Декабрь")).To(Equal(12))
	})

	It("should return 0 for an unknown name", func() {
		Expect(monthNumber("May")).To(Equal(0))
	})
})

var _ = Describe("parseAmount", func() {
	It("should parse plain decimals", func() {
		v, ok := parseAmount("212.73")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(212.73))
	})

	It("should tolerate thousands separators", func() {
		v, ok := parseAmount("1,212.73")
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal(1212.73))
	})

	It("should reject non-numeric input", func() {
		_, ok := parseAmount("двести")
		Expect(ok).To(BeFalse())
	})
})
