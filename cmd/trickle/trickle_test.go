package tricklecmder_test

import (
	"bytes"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	tricklecmder "github.com/papercomputeco/trickle/cmd/trickle"
	"github.com/papercomputeco/trickle/pkg/holidays/inmemory"
	"github.com/papercomputeco/trickle/relay"
)

var _ = Describe("NewTrickleCmd", func() {
	var (
		configDir string
		out       *bytes.Buffer
	)

	run := func(args ...string) error {
		cmd := tricklecmder.NewTrickleCmd()
		cmd.SetOut(out)
		cmd.SetErr(out)
		cmd.SetArgs(append(args, "--config-dir", configDir))
		return cmd.Execute()
	}

	BeforeEach(func() {
		configDir = GinkgoT().TempDir()
		out = &bytes.Buffer{}
	})

	It("registers every subcommand", func() {
		cmd := tricklecmder.NewTrickleCmd()
		names := []string{}
		for _, sub := range cmd.Commands() {
			names = append(names, sub.Name())
		}
		Expect(names).To(ContainElements("stream", "tui", "serve", "holidays", "config", "version"))
	})

	It("prints the version", func() {
		Expect(run("version")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("Version:"))
	})

	Describe("stream", func() {
		var upstream *httptest.Server

		serve := func(status int, chunks ...string) {
			upstream = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.Copy(io.Discard, r.Body)
				w.Header().Set("Content-Type", "text/event-stream")
				w.WriteHeader(status)
				for _, c := range chunks {
					_, _ = io.WriteString(w, c)
					w.(http.Flusher).Flush()
				}
			}))
			DeferCleanup(upstream.Close)
		}

		It("prints the streamed text", func() {
			serve(http.StatusOK, "data:Hello there,\n\n", "data:friend.\n\n", "data:[DONE]\n\n")

			Expect(run("stream", "-e", upstream.URL, "--pace", "0", "-q", "hi")).To(Succeed())
			Expect(out.String()).To(Equal("Hello there,friend.\n"))
		})

		It("prints the stats line unless quiet", func() {
			serve(http.StatusOK, "data:done\n\n", "data:[DONE]\n\n")

			Expect(run("stream", "-e", upstream.URL, "--pace", "0", "hi")).To(Succeed())
			Expect(out.String()).To(HavePrefix("done\n"))
			Expect(out.String()).To(ContainSubstring("chunks"))
		})

		It("fails when the endpoint rejects the request", func() {
			serve(http.StatusServiceUnavailable)

			Expect(run("stream", "-e", upstream.URL, "--pace", "0", "-q", "hi")).NotTo(Succeed())
		})

		It("rejects an unknown flush strategy", func() {
			serve(http.StatusOK, "data:[DONE]\n\n")

			err := run("stream", "-e", upstream.URL, "--strategy", "lazy", "hi")
			Expect(err).To(HaveOccurred())
		})

		It("requires a prompt", func() {
			Expect(run("stream")).NotTo(Succeed())
		})

		It("streams from a relay", func() {
			srv, err := relay.New(relay.Config{
				Sentinel:  true,
				Generator: relay.NewScriptGenerator("Hi there, friend.", 0),
			}, nil)
			Expect(err).NotTo(HaveOccurred())
			listener, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			go func() {
				_ = srv.RunWithListener(listener)
			}()
			DeferCleanup(srv.Close)

			endpoint := "http://" + listener.Addr().String() + "/chat/stream/flux"
			Expect(run("stream", "-e", endpoint, "--pace", "0", "-q", "hi")).To(Succeed())
			Expect(out.String()).To(Equal("Hi there,friend.\n"))
		})
	})

	Describe("holidays", func() {
		var endpoint string

		BeforeEach(func() {
			srv, err := relay.New(relay.Config{
				Generator: relay.NewScriptGenerator("unused", 0),
				Holidays:  inmemory.NewStore(),
			}, nil)
			Expect(err).NotTo(HaveOccurred())
			listener, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())
			go func() {
				_ = srv.RunWithListener(listener)
			}()
			DeferCleanup(srv.Close)

			endpoint = "http://" + listener.Addr().String() + "/holidays"
		})

		holidays := func(args ...string) error {
			return run(append([]string{"holidays", "--holidays-endpoint", endpoint}, args...)...)
		}

		It("adds, lists, updates and deletes a holiday", func() {
			Expect(holidays("add", "--title", "Liberation Day", "--date", "2025-03-03")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Liberation Day"))

			out.Reset()
			Expect(holidays("list", "--year", "2025")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("2025-03-03"))
			Expect(out.String()).To(ContainSubstring("Liberation Day"))

			out.Reset()
			Expect(holidays("update", "1", "--title", "Unification Day", "--date", "2025-09-06")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("Unification Day"))

			out.Reset()
			Expect(holidays("list", "--year", "0")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("2025-09-06"))
			Expect(out.String()).NotTo(ContainSubstring("Liberation Day"))

			Expect(holidays("delete", "1")).To(Succeed())

			out.Reset()
			Expect(holidays("list", "--year", "2025")).To(Succeed())
			Expect(out.String()).To(ContainSubstring("No holidays in 2025."))
		})

		It("rejects a malformed date before calling the relay", func() {
			err := holidays("add", "--title", "Liberation Day", "--date", "03/03/2025")
			Expect(err).To(MatchError(ContainSubstring("invalid date")))
		})

		It("requires a title", func() {
			Expect(holidays("add", "--date", "2025-03-03")).NotTo(Succeed())
		})

		It("reports a missing holiday", func() {
			Expect(holidays("delete", fmt.Sprint(42))).NotTo(Succeed())
		})

		It("rejects a non-numeric id", func() {
			Expect(holidays("delete", "abc")).NotTo(Succeed())
		})
	})
})
