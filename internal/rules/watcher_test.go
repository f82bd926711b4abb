package rules

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Watcher", func() {
	var (
		rulesPath string
		watcher   *Watcher
		cancel    context.CancelFunc
	)

	writeRules := func(document string) {
		// Write-then-rename, the way editors replace config files.
		tmp := rulesPath + ".tmp"
		Expect(os.WriteFile(tmp, []byte(document), 0o644)).To(Succeed())
		Expect(os.Rename(tmp, rulesPath)).To(Succeed())
	}

	BeforeEach(func() {
		rulesPath = filepath.Join(GinkgoT().TempDir(), "rules.json")
		writeRules(`{"tags": {"First": {"tag": "first"}}}`)

		var err error
		watcher, err = NewWatcher(rulesPath)
		Expect(err).NotTo(HaveOccurred())

		var ctx context.Context
		ctx, cancel = context.WithCancel(context.Background())
		go watcher.Run(ctx)
	})

	AfterEach(func() {
		cancel()
		watcher.Close()
	})

	It("should serve the initial snapshot", func() {
		rules := watcher.TagRules()
		Expect(rules).To(HaveLen(1))
		Expect(rules[0].Name()).To(Equal("First"))
	})

	It("should swap the snapshot when the file changes", func() {
		writeRules(`{"tags": {"Second": {"tag": "second"}}}`)

		Eventually(func() []string {
			return ruleNames(watcher)
		}).Should(Equal([]string{"Second"}))
	})

	It("should keep the previous snapshot when the new file is broken", func() {
		writeRules(`{"tags": {"Broken": {"tag": ""}}}`)

		Consistently(func() []string {
			return ruleNames(watcher)
		}).Should(Equal([]string{"First"}))
	})

	It("should ignore unrelated files in the watched directory", func() {
		other := filepath.Join(filepath.Dir(rulesPath), "other.json")
		Expect(os.WriteFile(other, []byte("{}"), 0o644)).To(Succeed())

		Consistently(func() []string {
			return ruleNames(watcher)
		}).Should(Equal([]string{"First"}))
	})
})

func ruleNames(w *Watcher) []string {
	names := []string{}
	for _, rule := range w.TagRules() {
		names = append(names, rule.Name())
	}
	return names
}
