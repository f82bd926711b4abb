package tags

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ivang/receipt-archive/internal/receipt"
)

var _ = Describe("Resolver", func() {
	var (
		rules    []Rule
		record   receipt.Record
		resolved []string
	)

	mustCompile := func(rules []Rule) []CompiledRule {
		compiled := make([]CompiledRule, len(rules))
		for i, rule := range rules {
			var err error
			compiled[i], err = Compile("Rule", rule)
			Expect(err).NotTo(HaveOccurred())
		}
		return compiled
	}

	BeforeEach(func() {
		record = receipt.Record{
			Title: "Test Title",
			Type:  "MTB",
			Details: []receipt.Detail{
				{Name: "Период", Value: "04.2024"},
				{Name: "Лицевой счет", Value: "110011223"},
			},
		}
	})

	JustBeforeEach(func() {
		resolver := NewResolver(func() []CompiledRule { return mustCompile(rules) })
		resolved = resolver.Resolve(record)
	})

	When("a $propertyvalue rule matches the title field", func() {
		BeforeEach(func() {
			rules = []Rule{{
				Tag:          "$propertyvalue",
				PropertyName: &Match{Equals: "Title"},
			}}
		})

		It("should emit the normalized title as the only tag", func() {
			Expect(resolved).To(Equal([]string{"Test_Title"}))
		})
	})

	When("a $propertyname rule matches several fields", func() {
		BeforeEach(func() {
			rules = []Rule{{
				Tag:           "$propertyname",
				PropertyValue: &Match{Pattern: `\d`},
			}}
		})

		It("should emit one tag per matched field name, sorted", func() {
			Expect(resolved).To(Equal([]string{"Лицевой_счет", "Период"}))
		})
	})

	When("a literal rule matches", func() {
		BeforeEach(func() {
			// No matchers at all: every field matches.
			rules = []Rule{{Tag: "communal"}}
		})

		It("should emit the literal tag once despite multiple field matches", func() {
			Expect(resolved).To(Equal([]string{"communal"}))
		})
	})

	When("no rule matches", func() {
		BeforeEach(func() {
			rules = []Rule{{
				Tag:          "never",
				PropertyName: &Match{Equals: "Absent"},
			}}
		})

		It("should return an empty set", func() {
			Expect(resolved).To(BeEmpty())
		})
	})

	When("rules emit case variants of the same tag", func() {
		BeforeEach(func() {
			rules = []Rule{
				{Tag: "Communal", PropertyName: &Match{Equals: "Type"}},
				{Tag: "communal", PropertyName: &Match{Equals: "Title"}},
			}
		})

		It("should keep a single occurrence", func() {
			Expect(resolved).To(HaveLen(1))
		})
	})

	When("the provider is re-read between resolutions", func() {
		It("should pick up the new rule set without a new resolver", func() {
			current := mustCompile([]Rule{{Tag: "before", PropertyName: &Match{Equals: "Type"}}})
			resolver := NewResolver(func() []CompiledRule { return current })

			Expect(resolver.Resolve(record)).To(Equal([]string{"before"}))

			current = mustCompile([]Rule{{Tag: "after", PropertyName: &Match{Equals: "Type"}}})
			Expect(resolver.Resolve(record)).To(Equal([]string{"after"}))
		})
	})
})
