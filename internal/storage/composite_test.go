package storage

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ivang/receipt-archive/internal/links"
	"github.com/ivang/receipt-archive/internal/receipt"
)

// mockStore is a scriptable Store that records its calls.
type mockStore struct {
	saveErr    error
	saveCalls  int
	content    *receipt.Content
	contentErr error
	record     *receipt.Record
	findErr    error
}

func (m *mockStore) Save(ctx context.Context, content receipt.Content, record receipt.Record, user receipt.User) error {
	m.saveCalls++
	return m.saveErr
}

func (m *mockStore) ContentByExternalID(ctx context.Context, externalID int64) (*receipt.Content, error) {
	return m.content, m.contentErr
}

func (m *mockStore) FindByDetails(ctx context.Context, predicate links.Predicate) (*receipt.Record, error) {
	return m.record, m.findErr
}

var _ = Describe("CompositeStore", func() {
	var (
		db    *mockStore
		files *mockStore
		store *CompositeStore
	)

	BeforeEach(func() {
		db = &mockStore{}
		files = &mockStore{}
		store = NewCompositeStore(db, files)
	})

	Describe("Save", func() {
		var err error

		JustBeforeEach(func() {
			content := receipt.NewContent("notice.pdf", []byte("%PDF-1.4"))
			err = store.Save(context.Background(), content, receipt.Record{}, receipt.User{})
		})

		When("both members succeed", func() {
			It("should save to both and succeed", func() {
				Expect(err).NotTo(HaveOccurred())
				Expect(db.saveCalls).To(Equal(1))
				Expect(files.saveCalls).To(Equal(1))
			})
		})

		When("the database member fails", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("disk full")
			})

			It("should still save to the file archive", func() {
				Expect(files.saveCalls).To(Equal(1))
			})

			It("should surface the failure", func() {
				Expect(err).To(MatchError(ContainSubstring("disk full")))
			})
		})

		When("both members fail", func() {
			BeforeEach(func() {
				db.saveErr = errors.New("disk full")
				files.saveErr = errors.New("permission denied")
			})

			It("should surface both failures", func() {
				Expect(err).To(MatchError(ContainSubstring("disk full")))
				Expect(err).To(MatchError(ContainSubstring("permission denied")))
			})
		})
	})

	Describe("queries", func() {
		It("should delegate content lookups to the database member", func() {
			want := receipt.NewContent("notice.pdf", nil)
			db.content = &want

			content, err := store.ContentByExternalID(context.Background(), 42)
			Expect(err).NotTo(HaveOccurred())
			Expect(content).To(Equal(&want))
		})

		It("should delegate detail lookups to the database member", func() {
			db.record = &receipt.Record{Title: "Извещение"}

			record, err := store.FindByDetails(context.Background(), nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(record.Title).To(Equal("Извещение"))
		})
	})
})
