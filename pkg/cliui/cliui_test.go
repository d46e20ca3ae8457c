package cliui_test

import (
	"bytes"
	"errors"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/cliui"
	"github.com/papercomputeco/trickle/pkg/session"
)

var _ = Describe("cliui", func() {
	Describe("FormatDuration", func() {
		It("uses milliseconds under a second", func() {
			Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
		})

		It("uses tenths of seconds above", func() {
			Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
		})
	})

	Describe("Mark", func() {
		It("differs for success and failure", func() {
			Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
			Expect(cliui.Mark(errors.New("x"))).To(Equal(cliui.FailMark))
		})
	})

	Describe("Step", func() {
		It("reports the result of fn", func() {
			var buf bytes.Buffer
			err := cliui.Step(&buf, "opening store", func() error { return nil })
			Expect(err).NotTo(HaveOccurred())
			Expect(buf.String()).To(ContainSubstring("opening store"))

			boom := errors.New("boom")
			Expect(cliui.Step(&buf, "again", func() error { return boom })).To(MatchError(boom))
		})
	})

	Describe("Stats", func() {
		started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

		It("summarises a completed session", func() {
			line := cliui.Stats(session.Snapshot{
				State:      session.Completed,
				ChunkCount: 3,
				TotalChars: 42,
				FrameCount: 7,
				StartedAt:  started,
				EndedAt:    started.Add(1500 * time.Millisecond),
			})
			Expect(line).To(ContainSubstring("completed"))
			Expect(line).To(ContainSubstring("3 chunks · 42 chars · 7 frames (1.5s)"))
			Expect(line).To(ContainSubstring(cliui.SuccessMark))
		})

		It("shows the error of a failed session", func() {
			line := cliui.Stats(session.Snapshot{
				State:     session.Failed,
				LastError: errors.New("connection refused"),
			})
			Expect(line).To(ContainSubstring("failed"))
			Expect(line).To(ContainSubstring("connection refused"))
			Expect(line).To(ContainSubstring(cliui.FailMark))
		})

		It("marks an aborted session without an error line", func() {
			line := cliui.Stats(session.Snapshot{State: session.Aborted})
			Expect(line).To(ContainSubstring("aborted"))
			Expect(line).NotTo(ContainSubstring("\n"))
		})
	})
})
