package report_test

import (
	"fmt"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/fjglira/specwalk/internal/domain"
	"github.com/fjglira/specwalk/internal/report"
)

func seg(name string, line int) domain.Segment {
	return domain.Segment{Name: name, Identity: domain.Identity{File: "x_test.go", Line: line}}
}

func passed(path ...domain.Segment) domain.PathRecord {
	return domain.PathRecord{Path: path}
}

func failed(cause string, path ...domain.Segment) domain.PathRecord {
	return domain.PathRecord{Path: path, Outcome: domain.Failed(errors.New(cause), nil)}
}

// trace renders events as "kind:name" for compact comparison.
func trace(events []domain.Event) []string {
	var out []string
	for _, ev := range events {
		out = append(out, fmt.Sprintf("%s:%s", ev.Kind, ev.Description.Name))
	}
	return out
}

var _ = Describe("Report", func() {
	var (
		outer  = seg("outer", 10)
		inner1 = seg("inner1", 11)
		inner2 = seg("inner2", 12)
	)

	Describe("Aggregate", func() {
		It("should rebuild the hierarchy from path records", func() {
			root := report.Aggregate("TestNested", []domain.PathRecord{
				passed(outer, inner1),
				failed("inner2 broke", outer, inner2),
				passed(outer),
			})

			Expect(root.Kind).To(Equal(domain.KindSuite))
			Expect(root.Children()).To(HaveLen(1))

			o := root.Find("outer")
			Expect(o).ToNot(BeNil())
			Expect(o.Kind).To(Equal(domain.KindSuite))
			Expect(o.Outcome).To(BeNil())
			Expect(o.Children()).To(HaveLen(2))

			Expect(root.Find("outer", "inner1").Kind).To(Equal(domain.KindCase))
			Expect(root.Find("outer", "inner1").Failed()).To(BeFalse())
			Expect(root.Find("outer", "inner2").Failed()).To(BeTrue())
			Expect(root.Find("outer", "inner2").Outcome.Cause).To(MatchError("inner2 broke"))
		})

		It("should synthesize a passing case for an entry without records", func() {
			root := report.Aggregate("TestEmpty", nil)
			Expect(root.Kind).To(Equal(domain.KindCase))
			Expect(root.Outcome).To(BeNil())
			Expect(trace(report.Events(root))).To(Equal([]string{"start:TestEmpty", "end:TestEmpty"}))
		})

		It("should keep a failure of a suite whose children passed", func() {
			root := report.Aggregate("T", []domain.PathRecord{
				passed(outer, inner1),
				failed("teardown", outer),
			})
			Expect(root.Find("outer").Kind).To(Equal(domain.KindSuite))
			Expect(root.Find("outer").Failed()).To(BeTrue())
		})

		It("should never overwrite an outcome", func() {
			root := report.Aggregate("T", []domain.PathRecord{
				failed("first", inner1),
				passed(inner1),
			})
			Expect(root.Find("inner1").Outcome.Cause).To(MatchError("first"))
		})

		It("should keep same-named blocks at different positions apart", func() {
			root := report.Aggregate("T", []domain.PathRecord{
				passed(seg("same", 1)),
				failed("boom", seg("same", 2)),
			})
			Expect(root.Children()).To(HaveLen(2))
			Expect(root.Children()[0].Failed()).To(BeFalse())
			Expect(root.Children()[1].Failed()).To(BeTrue())
		})

		It("should record an entry failure on the root", func() {
			root := report.Aggregate("T", []domain.PathRecord{
				passed(inner1),
				{Outcome: domain.Failed(errors.New("setup"), nil)},
			})
			Expect(root.Failed()).To(BeTrue())
			Expect(root.Find("inner1")).ToNot(BeNil())
		})
	})

	Describe("Events", func() {
		It("should emit children contiguously inside their suite in source order", func() {
			root := report.Aggregate("TestNested", []domain.PathRecord{
				passed(outer, inner1),
				failed("boom", outer, inner2),
				passed(outer),
			})
			Expect(trace(report.Events(root))).To(Equal([]string{
				"start:TestNested",
				"start:outer",
				"start:inner1",
				"end:inner1",
				"start:inner2",
				"failure:inner2",
				"end:outer",
				"end:TestNested",
			}))
		})

		It("should describe nodes with full names and depths", func() {
			root := report.Aggregate("T", []domain.PathRecord{passed(outer, inner1)})
			events := report.Events(root)
			Expect(events[2].Description.FullName).To(Equal("T/outer/inner1"))
			Expect(events[2].Description.Depth).To(Equal(2))
			Expect(events[2].Description.Identity).To(Equal(inner1.Identity))
		})

		It("should carry the cause and precise location on failures", func() {
			at := &domain.Identity{File: "x_test.go", Line: 13}
			root := report.Aggregate("T", []domain.PathRecord{
				{Path: []domain.Segment{inner2}, Outcome: domain.Failed(errors.New("boom"), at)},
			})
			rec := report.NewRecorder()
			report.Report(root, rec)
			events := rec.Events()
			Expect(events).To(HaveLen(4))
			Expect(events[2].Kind).To(Equal(domain.EventFailure))
			Expect(events[2].Cause).To(MatchError("boom"))
			Expect(events[2].Precise).To(Equal(at))
			Expect(rec.Failures()).To(Equal([]string{"T/inner2"}))
		})
	})

	Describe("Tree", func() {
		It("should represent every entry point", func() {
			tree := report.NewTree("Suite")
			tree.AddEntry("TestA", []domain.PathRecord{passed(inner1)})
			tree.AddEntry("TestB", nil)

			root := tree.Root()
			Expect(root.Children()).To(HaveLen(2))
			Expect(root.Find("TestA").Kind).To(Equal(domain.KindSuite))
			Expect(root.Find("TestB").Kind).To(Equal(domain.KindCase))
			Expect(root.Stats()).To(Equal(report.Stats{Cases: 2, Failed: 0}))
		})

		It("should nest suites", func() {
			tree := report.NewTree("all")
			tree.Root().Suite("pkg").AddEntry("TestA", []domain.PathRecord{failed("x", inner1)})
			Expect(tree.Root().Find("pkg", "TestA", "inner1").Failed()).To(BeTrue())
			Expect(tree.Root().Stats().Failed).To(Equal(1))
			Expect(tree.Root().String()).To(ContainSubstring("inner1 (case, FAIL)"))
		})
	})
})
