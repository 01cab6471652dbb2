// Package spec is a behaviour-specification DSL that needs no explicit tree.
//
// Blocks are declared with S.Run and nest arbitrarily:
//
//	func TestStack(t *testing.T) {
//	    spec.Run(t, func(s *spec.S) {
//	        stack := NewStack() // fresh for every path
//
//	        s.Run("when empty", func(s *spec.S) {
//	            s.Run("has length 0", func(s *spec.S) {
//	                s.Expect(stack.Len()).To(Equal(0))
//	            })
//	            s.Run("pop fails", func(s *spec.S) {
//	                _, err := stack.Pop()
//	                s.Expect(err).To(HaveOccurred())
//	            })
//	        })
//	    })
//	}
//
// The entry body is executed once per block, from the top, so code outside
// any block runs again for every path and acts as per-path setup. Each block
// body runs exactly once. Bodies must behave the same way on every pass.
package spec

import (
	"github.com/google/go-cmp/cmp"
	"github.com/onsi/gomega"
	"github.com/onsi/gomega/types"
	"github.com/pkg/errors"

	"github.com/fjglira/specwalk/internal/domain"
	"github.com/fjglira/specwalk/internal/explore"
	"github.com/fjglira/specwalk/internal/identity"
	"github.com/fjglira/specwalk/internal/report"
)

type (
	// Identity is the source position identifying a block.
	Identity = domain.Identity
	// PathRecord is the outcome of one finished block with its enclosing path.
	PathRecord = domain.PathRecord
	// Node is a suite or case of an aggregated report.
	Node = report.Node
)

var thisPackage = identity.PackageOf(newS)

// S is the context passed to every block body.
type S struct {
	t *explore.T
	g gomega.Gomega
}

func newS(t *explore.T) *S {
	return &S{t: t, g: gomega.NewGomega(fail)}
}

// fail is the gomega fail handler: a failed assertion fails the enclosing
// block with a cause that records where it happened.
func fail(message string, _ ...int) {
	panic(errors.New(message))
}

// Run declares a nested block. On the pass that finishes it (or one of its
// descendants) Run does not return.
func (s *S) Run(name string, body func(s *S)) {
	s.t.Run(name, func(t *explore.T) {
		body(newS(t))
	})
}

// Helper marks the calling function as a helper: blocks it declares are
// identified by the position of the helper's call instead.
func (s *S) Helper() {
	s.t.MarkHelper(1)
}

// Name returns the name of the current block.
func (s *S) Name() string {
	return s.t.Name()
}

// Path returns the names of the enclosing blocks including the current one.
func (s *S) Path() []string {
	return s.t.Path()
}

// Expect starts a gomega assertion. A failing assertion fails the block.
func (s *S) Expect(actual any, extra ...any) types.Assertion {
	return s.g.Expect(actual, extra...)
}

// Fail fails the current block with msg.
func (s *S) Fail(msg string) {
	s.t.Fail(msg)
}

// Failf fails the current block with a formatted message.
func (s *S) Failf(format string, args ...any) {
	s.t.Failf(format, args...)
}

// AssertEqual fails the current block with a diff when actual and expected
// differ.
func (s *S) AssertEqual(actual, expected any, opts ...cmp.Option) {
	if diff := cmp.Diff(expected, actual, opts...); diff != "" {
		panic(errors.Errorf("values differ (-expected +actual):\n%s", diff))
	}
}
