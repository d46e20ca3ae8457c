package relay_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/relay"
)

func collect(g relay.Generator) ([]string, error) {
	var tokens []string
	err := g.Generate(context.Background(), nil, nil, func(tok string) error {
		tokens = append(tokens, tok)
		return nil
	})
	return tokens, err
}

var _ = Describe("Tokenize", func() {
	It("splits words into short pieces keeping their leading space", func() {
		Expect(relay.Tokenize("Hi there, friend.")).To(Equal([]string{
			"Hi", " ther", "e", ",", " frie", "nd", ".",
		}))
	})

	It("keeps newlines as their own tokens", func() {
		Expect(relay.Tokenize("a\nb")).To(Equal([]string{"a", "\n", "b"}))
	})

	It("joins back to the input", func() {
		Expect(strings.Join(relay.Tokenize(relay.DefaultScript), "")).To(Equal(relay.DefaultScript))
	})

	It("handles non-ASCII letters", func() {
		Expect(relay.Tokenize("Мусала")).To(Equal([]string{"Муса", "ла"}))
	})
})

var _ = Describe("ScriptGenerator", func() {
	It("emits every token in order", func() {
		tokens, err := collect(relay.NewScriptGenerator("one two", 0))
		Expect(err).NotTo(HaveOccurred())
		Expect(tokens).To(Equal([]string{"one", " two"}))
	})

	It("stops when emit fails", func() {
		g := relay.NewScriptGenerator("one two three", 0)
		calls := 0
		err := g.Generate(context.Background(), nil, nil, func(string) error {
			calls++
			return context.Canceled
		})
		Expect(err).To(MatchError(context.Canceled))
		Expect(calls).To(Equal(1))
	})

	It("stops when the context is cancelled between tokens", func() {
		g := relay.NewScriptGenerator("one two three", time.Hour)
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() {
			done <- g.Generate(ctx, nil, nil, func(string) error { return nil })
		}()
		cancel()

		Eventually(done).Should(Receive(MatchError(context.Canceled)))
	})

	Context("loaded from a file", func() {
		var path string

		BeforeEach(func() {
			path = filepath.Join(GinkgoT().TempDir(), "script.txt")
			Expect(os.WriteFile(path, []byte("first"), 0o600)).To(Succeed())
		})

		It("reads the file", func() {
			g, err := relay.LoadScriptGenerator(path, 0, nil)
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.Join(g.Tokens(), "")).To(Equal("first"))
		})

		It("rejects a missing file", func() {
			_, err := relay.LoadScriptGenerator(path+".missing", 0, nil)
			Expect(err).To(HaveOccurred())
		})

		It("rejects an empty file", func() {
			Expect(os.WriteFile(path, nil, 0o600)).To(Succeed())
			_, err := relay.LoadScriptGenerator(path, 0, nil)
			Expect(err).To(MatchError(ContainSubstring("empty")))
		})

		It("reloads when the file changes", func() {
			g, err := relay.LoadScriptGenerator(path, 0, nil)
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			DeferCleanup(cancel)
			go func() {
				defer GinkgoRecover()
				Expect(g.Watch(ctx)).To(Succeed())
			}()

			Eventually(func() string {
				_ = os.WriteFile(path, []byte("second take"), 0o600)
				return strings.Join(g.Tokens(), "")
			}, 2*time.Second, 50*time.Millisecond).Should(Equal("second take"))
		})
	})

	It("does not watch when built from text", func() {
		g := relay.NewScriptGenerator("x", 0)
		Expect(g.Watch(context.Background())).To(Succeed())
	})
})
