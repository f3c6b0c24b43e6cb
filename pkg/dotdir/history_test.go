package dotdir_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/chatproxy/pkg/dotdir"
	"github.com/papercomputeco/chatproxy/pkg/llm"
)

var _ = Describe("dotdir.Manager history", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-history-test-*")
		Expect(err).NotTo(HaveOccurred())
		m = dotdir.NewManager()
	})

	AfterEach(func() {
		os.RemoveAll(tmpDir)
	})

	Describe("LoadHistory", func() {
		It("returns an empty history when nothing was saved", func() {
			history, err := m.LoadHistory(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(history.Messages).To(BeEmpty())
		})

		writeHistory := func(lastUpdated string) {
			data := `{"messages":[{"role":"user","content":"hello"},{"role":"assistant","content":"hi there"}]` +
				lastUpdated + `}`
			Expect(os.WriteFile(filepath.Join(tmpDir, "history.json"), []byte(data), 0o600)).To(Succeed())
		}

		It("loads a saved history file", func() {
			writeHistory(`,"last_updated":"` + time.Now().Add(-time.Hour).UTC().Format(time.RFC3339) + `"`)

			history, err := m.LoadHistory(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(history.Messages).To(Equal([]llm.Message{
				llm.NewUserMessage("hello"),
				llm.NewAssistantMessage("hi there"),
			}))
		})

		It("discards a history older than HistoryTTL", func() {
			writeHistory(`,"last_updated":"` + time.Now().Add(-dotdir.HistoryTTL - time.Minute).UTC().Format(time.RFC3339) + `"`)

			history, err := m.LoadHistory(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(history.Messages).To(BeEmpty())
			Expect(filepath.Join(tmpDir, "history.json")).NotTo(BeAnExistingFile())
		})

		It("discards a history without a timestamp", func() {
			writeHistory("")

			history, err := m.LoadHistory(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(history.Messages).To(BeEmpty())
		})

		It("returns error for invalid JSON", func() {
			Expect(os.WriteFile(filepath.Join(tmpDir, "history.json"), []byte("not json"), 0o600)).To(Succeed())

			history, err := m.LoadHistory(tmpDir)
			Expect(err).To(MatchError(ContainSubstring("parsing chat history")))
			Expect(history).To(BeNil())
		})
	})

	Describe("SaveHistory", func() {
		It("round-trips through LoadHistory", func() {
			saved := &dotdir.History{Messages: []llm.Message{
				llm.NewUserMessage("what is 2+2?"),
				llm.NewAssistantMessage("4"),
			}}
			Expect(m.SaveHistory(saved, tmpDir)).To(Succeed())

			loaded, err := m.LoadHistory(tmpDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded.Messages).To(Equal(saved.Messages))
			Expect(loaded.LastUpdated).To(BeTemporally("~", time.Now(), time.Minute))
		})

		It("stamps the save time", func() {
			history := &dotdir.History{Messages: []llm.Message{llm.NewUserMessage("x")}}
			Expect(m.SaveHistory(history, tmpDir)).To(Succeed())
			Expect(history.LastUpdated).To(BeTemporally("~", time.Now(), time.Minute))
		})

		It("rejects a nil history", func() {
			Expect(m.SaveHistory(nil, tmpDir)).To(HaveOccurred())
		})
	})

	Describe("ClearHistory", func() {
		It("removes the saved history", func() {
			Expect(m.SaveHistory(&dotdir.History{Messages: []llm.Message{llm.NewUserMessage("x")}}, tmpDir)).To(Succeed())
			Expect(m.ClearHistory(tmpDir)).To(Succeed())
			Expect(filepath.Join(tmpDir, "history.json")).NotTo(BeAnExistingFile())
		})

		It("is a no-op when nothing was saved", func() {
			Expect(m.ClearHistory(tmpDir)).To(Succeed())
		})
	})
})

var _ = Describe("History.Expired", func() {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)

	DescribeTable("compares the last save against HistoryTTL",
		func(lastUpdated time.Time, want bool) {
			h := &dotdir.History{LastUpdated: lastUpdated}
			Expect(h.Expired(now)).To(Equal(want))
		},
		Entry("never saved", time.Time{}, true),
		Entry("just saved", now, false),
		Entry("exactly at the limit", now.Add(-dotdir.HistoryTTL), false),
		Entry("past the limit", now.Add(-dotdir.HistoryTTL-time.Second), true),
	)
})
