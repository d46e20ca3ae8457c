package servecmder

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/logger"
	"github.com/papercomputeco/trickle/relay"
)

var _ = Describe("serveCommander", func() {
	var (
		c   *serveCommander
		dir string
	)

	BeforeEach(func() {
		c = &serveCommander{logger: logger.Nop()}
		dir = GinkgoT().TempDir()
	})

	Describe("newGenerator", func() {
		It("replays the built-in script by default", func() {
			g, closer, err := c.newGenerator(context.Background())
			Expect(err).NotTo(HaveOccurred())
			defer closer()

			script, ok := g.(*relay.ScriptGenerator)
			Expect(ok).To(BeTrue())
			Expect(script.Tokens()).To(Equal(relay.Tokenize(relay.DefaultScript)))
		})

		It("loads a script file", func() {
			path := filepath.Join(dir, "story.txt")
			Expect(os.WriteFile(path, []byte("Once upon a time."), 0o644)).To(Succeed())
			c.script = path

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			g, closer, err := c.newGenerator(ctx)
			Expect(err).NotTo(HaveOccurred())
			defer closer()
			Expect(g.(*relay.ScriptGenerator).Tokens()).To(Equal(relay.Tokenize("Once upon a time.")))
		})

		It("fails on a missing script file", func() {
			c.script = filepath.Join(dir, "missing.txt")
			_, _, err := c.newGenerator(context.Background())
			Expect(err).To(HaveOccurred())
		})

		It("relays an upstream and opens the dump file", func() {
			c.upstream = "http://localhost:11434"
			c.dump = filepath.Join(dir, "dump.sse")

			g, closer, err := c.newGenerator(context.Background())
			Expect(err).NotTo(HaveOccurred())
			defer closer()

			Expect(g).To(BeAssignableToTypeOf(&relay.UpstreamGenerator{}))
			Expect(c.dump).To(BeAnExistingFile())
		})

		It("fails when the dump file cannot be opened", func() {
			c.upstream = "http://localhost:11434"
			c.dump = filepath.Join(dir, "no", "such", "dir", "dump.sse")

			_, _, err := c.newGenerator(context.Background())
			Expect(err).To(MatchError(ContainSubstring("opening dump file")))
		})
	})

	Describe("setupLogger", func() {
		It("appends JSON records to the log file", func() {
			c.logFile = filepath.Join(dir, "relay.log")

			closer, err := c.setupLogger()
			Expect(err).NotTo(HaveOccurred())
			c.logger.Info("relay ready", "listen", ":8080")
			closer()

			data, err := os.ReadFile(c.logFile)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(data)).To(ContainSubstring(`"msg":"relay ready"`))
			Expect(string(data)).To(ContainSubstring(`"listen":":8080"`))
		})

		It("builds a stdout logger in the configured format without a file", func() {
			c.logFormat = "json"
			closer, err := c.setupLogger()
			Expect(err).NotTo(HaveOccurred())
			defer closer()
			Expect(c.logger).NotTo(BeNil())
		})

		It("rejects an unknown log format", func() {
			c.logFormat = "xml"
			_, err := c.setupLogger()
			Expect(err).To(MatchError(ContainSubstring("unknown log format")))
		})
	})

	It("names the memory store when no driver is set", func() {
		Expect(c.storeName()).To(Equal("memory"))
		c.storageDriver = "sqlite"
		Expect(c.storeName()).To(Equal("sqlite"))
	})
})
