package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Epistemic-Technology/syllabus-notes-mcp/internal/config"
)

var managedEnv = []string{
	"NOTES_GATEWAY_API_KEY", "LOVABLE_API_KEY", "OPENAI_API_KEY",
	"NOTES_GATEWAY_URL", "NOTES_MODEL", "NOTES_MAX_RETRIES",
	"YOUTUBE_API_KEY", "SYLLABUS_NOTES_DB_PATH", "NOTES_OWNER",
}

func setEnv(key, value string) {
	Expect(os.Setenv(key, value)).To(Succeed())
}

var _ = Describe("Config", func() {
	var testDir string

	BeforeEach(func() {
		var err error
		testDir, err = os.MkdirTemp("", "config-test-*")
		Expect(err).NotTo(HaveOccurred())

		for _, key := range managedEnv {
			if old, ok := os.LookupEnv(key); ok {
				DeferCleanup(os.Setenv, key, old)
			} else {
				DeferCleanup(os.Unsetenv, key)
			}
			Expect(os.Unsetenv(key)).To(Succeed())
		}
		setEnv("SYLLABUS_NOTES_DB_PATH", filepath.Join(testDir, "notes.db"))
	})

	AfterEach(func() {
		os.RemoveAll(testDir)
	})

	Context("when no config file is given", func() {
		It("should fill defaults", func() {
			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.Gateway.BaseURL).To(Equal(config.DefaultGatewayURL))
			Expect(cfg.Gateway.Model).To(Equal(config.DefaultModel))
			Expect(cfg.Gateway.Timeout).To(Equal(120 * time.Second))
			Expect(cfg.Gateway.MaxRetries).To(Equal(2))
			Expect(cfg.Gateway.APIKey).To(BeEmpty())
			Expect(cfg.Prompt.Version).To(Equal("v2"))
			Expect(cfg.Prompt.MaxSourceChars).To(Equal(24000))
			Expect(cfg.Videos.MaxResults).To(Equal(8))
			Expect(cfg.Videos.RegionCode).To(Equal("IN"))
			Expect(cfg.Videos.PerChapter).To(Equal(3))
			Expect(cfg.Summaries.BaseURL).To(Equal(config.DefaultSummariesURL))
			Expect(cfg.Summaries.Concurrency).To(Equal(4))
			Expect(cfg.Owner).To(Equal("local"))
			Expect(cfg.MaxPDFPages).To(Equal(10))
		})
	})

	Context("when a YAML file is given", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(testDir, "notes.yaml")
			content := `
gateway:
  base_url: http://localhost:9999/v1
  model: test-model
  timeout: 30s
  max_retries: 3
  structured_output: true
prompt:
  version: v1
  detail: exhaustive
  language: Hindi
videos:
  max_results: 4
  per_chapter: 5
  concurrency: 2
summaries:
  base_url: http://localhost:9998/api
  concurrency: 1
owner: alice
`
			Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		})

		It("should read every section", func() {
			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())

			Expect(cfg.Gateway.BaseURL).To(Equal("http://localhost:9999/v1"))
			Expect(cfg.Gateway.Model).To(Equal("test-model"))
			Expect(cfg.Gateway.Timeout).To(Equal(30 * time.Second))
			Expect(cfg.Gateway.MaxRetries).To(Equal(3))
			Expect(cfg.Gateway.StructuredOutput).To(BeTrue())
			Expect(cfg.Prompt.Version).To(Equal("v1"))
			Expect(cfg.Prompt.Detail).To(Equal("exhaustive"))
			Expect(cfg.Prompt.Language).To(Equal("Hindi"))
			Expect(cfg.Videos.MaxResults).To(Equal(4))
			Expect(cfg.Videos.PerChapter).To(Equal(5))
			Expect(cfg.Videos.Concurrency).To(Equal(2))
			Expect(cfg.Summaries.BaseURL).To(Equal("http://localhost:9998/api"))
			Expect(cfg.Summaries.Concurrency).To(Equal(1))
			Expect(cfg.Owner).To(Equal("alice"))
		})

		It("should let the environment override the file", func() {
			setEnv("NOTES_MODEL", "env-model")
			setEnv("NOTES_OWNER", "bob")

			cfg, err := config.Load(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Gateway.Model).To(Equal("env-model"))
			Expect(cfg.Owner).To(Equal("bob"))
		})
	})

	Context("when resolving the gateway credential", func() {
		It("should prefer NOTES_GATEWAY_API_KEY over the fallbacks", func() {
			setEnv("OPENAI_API_KEY", "openai-key")
			setEnv("LOVABLE_API_KEY", "lovable-key")
			setEnv("NOTES_GATEWAY_API_KEY", "gateway-key")

			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Gateway.APIKey).To(Equal("gateway-key"))
		})

		It("should fall back to LOVABLE_API_KEY", func() {
			setEnv("OPENAI_API_KEY", "openai-key")
			setEnv("LOVABLE_API_KEY", "lovable-key")

			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Gateway.APIKey).To(Equal("lovable-key"))
		})

		It("should read the YouTube key from the environment only", func() {
			setEnv("YOUTUBE_API_KEY", " yt-key ")

			cfg, err := config.Load("")
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Videos.APIKey).To(Equal("yt-key"))
		})
	})

	Context("when the config file is broken", func() {
		It("should return an error for a missing file", func() {
			_, err := config.Load(filepath.Join(testDir, "missing.yaml"))
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to read config file"))
		})

		It("should return an error for invalid YAML", func() {
			path := filepath.Join(testDir, "bad.yaml")
			Expect(os.WriteFile(path, []byte("gateway: [unclosed"), 0644)).To(Succeed())

			_, err := config.Load(path)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("failed to parse config file"))
		})
	})
})
