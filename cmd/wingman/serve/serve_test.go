package servecmder

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/wingman/pkg/config"
)

var _ = Describe("NewServeCmd", func() {
	It("registers the serve flags with their config defaults", func() {
		cmd := NewServeCmd()
		Expect(cmd.Use).To(Equal("serve"))

		for _, name := range []string{"listen", "provider", "upstream", "model", "llm-timeout", "sqlite", "postgres", "allow-origins", "keep-alive", "mcp"} {
			Expect(cmd.Flags().Lookup(name)).NotTo(BeNil(), name)
		}
		Expect(cmd.Flags().Lookup("listen").DefValue).To(Equal(":8000"))
		Expect(cmd.Flags().Lookup("model").DefValue).To(Equal("llama3.2:1b"))
	})

	It("registers the log file flag", func() {
		cmd := NewServeCmd()
		Expect(cmd.Flags().Lookup("log-file")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("log-file").DefValue).To(BeEmpty())
	})

	It("rejects arguments", func() {
		cmd := NewServeCmd()
		Expect(cmd.Args(cmd, []string{"extra"})).To(HaveOccurred())
	})
})

var _ = Describe("newLogger", func() {
	It("logs to the console only without a log file", func() {
		var console bytes.Buffer
		log, closeLog, err := newLogger(&console, "", false)
		Expect(err).NotTo(HaveOccurred())
		Expect(closeLog()).To(Succeed())

		log.Info("starting wingman")
		Expect(console.String()).To(ContainSubstring("starting wingman"))
	})

	It("copies every record to the log file as JSON", func() {
		var console bytes.Buffer
		path := filepath.Join(GinkgoT().TempDir(), "logs", "server.log")

		log, closeLog, err := newLogger(&console, path, false)
		Expect(err).NotTo(HaveOccurred())
		log.Info("starting wingman", "provider", "fake")
		Expect(closeLog()).To(Succeed())

		Expect(console.String()).To(ContainSubstring("starting wingman"))

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		var record map[string]any
		Expect(json.Unmarshal(bytes.TrimSpace(data), &record)).To(Succeed())
		Expect(record).To(HaveKeyWithValue("msg", "starting wingman"))
		Expect(record).To(HaveKeyWithValue("provider", "fake"))
	})

	It("appends to an existing log file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "server.log")
		for _, msg := range []string{"first", "second"} {
			log, closeLog, err := newLogger(io.Discard, path, false)
			Expect(err).NotTo(HaveOccurred())
			log.Info(msg)
			Expect(closeLog()).To(Succeed())
		}

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(strings.Split(strings.TrimSpace(string(data)), "\n")).To(HaveLen(2))
	})
})

var _ = Describe("newGenerator", func() {
	It("builds the ollama generator by default", func() {
		gen, err := newGenerator(config.NewDefaultConfig().LLM)
		Expect(err).NotTo(HaveOccurred())
		Expect(gen.Name()).To(Equal("ollama"))
	})

	It("builds the fake generator", func() {
		gen, err := newGenerator(config.LLMConfig{Provider: config.ProviderFake})
		Expect(err).NotTo(HaveOccurred())
		Expect(gen.Name()).To(Equal("fake"))
	})

	It("rejects unknown providers and bad timeouts", func() {
		_, err := newGenerator(config.LLMConfig{Provider: "openai"})
		Expect(err).To(MatchError(ContainSubstring("unknown llm provider")))

		_, err = newGenerator(config.LLMConfig{Provider: config.ProviderOllama, Timeout: "soon"})
		Expect(err).To(MatchError(ContainSubstring("llm.timeout")))
	})
})
