package spec_test

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/specwalk/internal/config"
	"github.com/fjglira/specwalk/internal/records"
	"github.com/fjglira/specwalk/spec"
)

func currentLine() int {
	_, _, line, _ := runtime.Caller(1)
	return line
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

var _ = Describe("Runner", func() {
	var runner *spec.Runner

	BeforeEach(func() {
		runner = spec.NewRunner(nil, quietLogger())
	})

	It("should turn a failed gomega assertion into a located block failure", func() {
		var line int
		recs, err := runner.Explore(spec.Entry{Name: "TestMath", Body: func(s *spec.S) {
			s.Run("adds", func(s *spec.S) {
				s.Expect(1 + 1).To(Equal(2))
			})
			s.Run("subtracts", func(s *spec.S) {
				line = currentLine() + 1
				s.Expect(3 - 1).To(Equal(1))
			})
		}})
		Expect(err).ToNot(HaveOccurred())
		Expect(recs).To(HaveLen(2))
		Expect(recs[0].Outcome.Failed).To(BeFalse())
		Expect(recs[1].Outcome.Failed).To(BeTrue())
		Expect(recs[1].Outcome.Cause.Error()).To(ContainSubstring("Expected"))
		Expect(recs[1].Outcome.Precise).ToNot(BeNil())
		Expect(recs[1].Outcome.Precise.Line).To(Equal(line))
	})

	It("should identify blocks by the user's call site, not the DSL's", func() {
		recs, err := runner.Explore(spec.Entry{Name: "TestWhere", Body: func(s *spec.S) {
			s.Run("here", func(s *spec.S) {})
		}})
		Expect(err).ToNot(HaveOccurred())
		Expect(recs[0].Identity().File).To(HaveSuffix("spec_test.go"))
	})

	It("should report a diff from AssertEqual", func() {
		recs, _ := runner.Explore(spec.Entry{Name: "TestEqual", Body: func(s *spec.S) {
			s.Run("slices", func(s *spec.S) {
				s.AssertEqual([]int{1, 2, 3}, []int{1, 2, 4})
			})
			s.Run("strings", func(s *spec.S) {
				s.AssertEqual("same", "same")
			})
		}})
		Expect(recs).To(HaveLen(2))
		Expect(recs[0].Outcome.Failed).To(BeTrue())
		Expect(recs[0].Outcome.Cause.Error()).To(ContainSubstring("-expected +actual"))
		Expect(recs[1].Outcome.Failed).To(BeFalse())
	})

	It("should support helpers that declare blocks", func() {
		itBehavesLikeAList := func(s *spec.S, name string) {
			s.Helper()
			s.Run(name, func(s *spec.S) {})
		}
		recs, err := runner.Explore(spec.Entry{Name: "TestShared", Body: func(s *spec.S) {
			itBehavesLikeAList(s, "slice")
			itBehavesLikeAList(s, "linked list")
		}})
		Expect(err).ToNot(HaveOccurred())
		Expect(recs).To(HaveLen(2))
		Expect(recs[0].Names()).To(Equal([]string{"slice"}))
		Expect(recs[1].Names()).To(Equal([]string{"linked list"}))
	})

	It("should expose names and paths to bodies", func() {
		var path []string
		_, err := runner.Explore(spec.Entry{Name: "TestNames", Body: func(s *spec.S) {
			s.Run("a", func(s *spec.S) {
				s.Run("b", func(s *spec.S) {
					Expect(s.Name()).To(Equal("b"))
					path = s.Path()
				})
			})
		}})
		Expect(err).ToNot(HaveOccurred())
		Expect(path).To(Equal([]string{"a", "b"}))
	})

	Describe("Suite", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "specwalk-spec-*")
			Expect(err).ToNot(HaveOccurred())
		})

		AfterEach(func() {
			os.RemoveAll(dir)
		})

		entries := func(calls *int32) []spec.Entry {
			return []spec.Entry{
				{Name: "TestPush", Body: func(s *spec.S) {
					atomic.AddInt32(calls, 1)
					s.Run("grows", func(s *spec.S) {})
					s.Run("fails", func(s *spec.S) { s.Failf("got %d", 2) })
				}},
				{Name: "TestEmpty", Body: func(s *spec.S) {
					atomic.AddInt32(calls, 1)
				}},
			}
		}

		It("should aggregate every entry point in declaration order", func() {
			var calls int32
			root, err := runner.Suite("Stack", entries(&calls)...)
			Expect(err).ToNot(HaveOccurred())
			Expect(root.Name).To(Equal("Stack"))
			Expect(root.Children()).To(HaveLen(2))
			Expect(root.Children()[0].Name).To(Equal("TestPush"))
			Expect(root.Find("TestPush", "fails").Failed()).To(BeTrue())
			Expect(root.Find("TestEmpty").Outcome).To(BeNil())
			Expect(root.Stats().Cases).To(Equal(3))
			// TestPush: two blocks plus the confirming pass; TestEmpty: one pass
			Expect(atomic.LoadInt32(&calls)).To(Equal(int32(4)))
		})

		It("should explore sequentially when parallel is off and export records", func() {
			cfg := config.DefaultConfig()
			parallel := false
			cfg.Explore.Parallel = &parallel
			cfg.Report.RecordsDir = dir
			runner = spec.NewRunner(cfg, quietLogger())

			var calls int32
			_, err := runner.Suite("Stack", entries(&calls)...)
			Expect(err).ToNot(HaveOccurred())

			f, err := records.Read(filepath.Join(dir, "stack.records.yaml"))
			Expect(err).ToNot(HaveOccurred())
			Expect(f.Entries).To(HaveLen(2))
			Expect(f.Entries[0].Records).To(HaveLen(2))
			Expect(f.Entries[0].Records[1].Failed).To(BeTrue())
			Expect(f.Entries[0].Records[1].Cause).To(Equal("got 2"))
			Expect(f.Entries[1].Records).To(BeEmpty())
		})

		It("should log a summary for every entry at info level", func() {
			var logs bytes.Buffer
			log := logrus.New()
			log.SetOutput(&logs)
			log.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})
			runner = spec.NewRunner(nil, log)

			var calls int32
			_, err := runner.Suite("Stack", entries(&calls)...)
			Expect(err).ToNot(HaveOccurred())
			Expect(logs.String()).To(ContainSubstring(`level=info msg="entry explored" cases=2 entry=TestPush failed=1`))
			Expect(logs.String()).To(ContainSubstring(`level=info msg="entry explored" cases=1 entry=TestEmpty failed=0`))
		})

		It("should surface a pass limit error", func() {
			cfg := config.DefaultConfig()
			cfg.Explore.MaxPasses = 1
			runner = spec.NewRunner(cfg, quietLogger())

			var calls int32
			_, err := runner.Suite("Stack", entries(&calls)...)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("did not settle"))
		})
	})

	Describe("Aggregate", func() {
		It("should synthesize a passing case for an entry without blocks", func() {
			recs, err := runner.Explore(spec.Entry{Name: "TestNothing", Body: func(s *spec.S) {}})
			Expect(err).ToNot(HaveOccurred())
			root := spec.Aggregate("TestNothing", recs)
			Expect(root.Children()).To(BeEmpty())
			Expect(root.Failed()).To(BeFalse())
		})
	})
})
