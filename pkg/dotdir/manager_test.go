package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/trickle/pkg/dotdir"
)

var _ = Describe("Manager", func() {
	var (
		tmpDir string
		m      *dotdir.Manager
	)

	// enter switches the working directory and HOME to dir for one spec.
	enter := func(dir string) {
		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(dir)).To(Succeed())
		DeferCleanup(func() { _ = os.Chdir(origDir) })

		origHome := os.Getenv("HOME")
		Expect(os.Setenv("HOME", dir)).To(Succeed())
		DeferCleanup(func() { _ = os.Setenv("HOME", origHome) })
	}

	BeforeEach(func() {
		var err error
		tmpDir, err = os.MkdirTemp("", "dotdir-test-*")
		Expect(err).NotTo(HaveOccurred())

		// filepath.Abs results must match on systems where /tmp is a symlink.
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(func() { _ = os.RemoveAll(tmpDir) })

		m = dotdir.NewManager()
	})

	Describe("Target", func() {
		It("creates and returns an override directory", func() {
			dir := filepath.Join(tmpDir, "custom")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))
			Expect(dir).To(BeADirectory())
		})

		It("prefers the override over a local directory", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, ".trickle"), 0o755)).To(Succeed())
			enter(tmpDir)

			override := filepath.Join(tmpDir, "override")
			Expect(m.Target(override)).To(Equal(override))
		})

		It("finds a local .trickle directory", func() {
			work := filepath.Join(tmpDir, "work")
			Expect(os.MkdirAll(filepath.Join(work, ".trickle"), 0o755)).To(Succeed())
			enter(work)

			Expect(m.Target("")).To(Equal(filepath.Join(work, ".trickle")))
		})

		It("falls back to the home directory", func() {
			home := filepath.Join(tmpDir, "home")
			Expect(os.MkdirAll(filepath.Join(home, ".trickle"), 0o755)).To(Succeed())
			empty := filepath.Join(tmpDir, "empty")
			Expect(os.Mkdir(empty, 0o755)).To(Succeed())

			enter(empty)
			Expect(os.Setenv("HOME", home)).To(Succeed())

			Expect(m.Target("")).To(Equal(filepath.Join(home, ".trickle")))
		})

		It("returns empty when nothing exists", func() {
			enter(tmpDir)
			Expect(m.Target("")).To(BeEmpty())
		})
	})

	Describe("Ensure", func() {
		It("creates the home directory when nothing exists", func() {
			enter(tmpDir)

			dir, err := m.Ensure("")
			Expect(err).NotTo(HaveOccurred())
			Expect(dir).To(Equal(filepath.Join(tmpDir, ".trickle")))
			Expect(dir).To(BeADirectory())
		})
	})
})
