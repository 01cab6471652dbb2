package identity_test

import (
	"fmt"
	"runtime"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/fjglira/specwalk/internal/domain"
	"github.com/fjglira/specwalk/internal/identity"
)

// errSentinel carries the stack of package initialization, not of the
// block that raises it.
var errSentinel = errors.New("sentinel")

// declare stands in for an engine entry point: its frames belong to a
// registered package only when the resolver is told so.
func declare(r *identity.Resolver) domain.Identity {
	id, err := r.Caller()
	Expect(err).ToNot(HaveOccurred())
	return id
}

// stackPackages lists the package of every frame on the caller's stack.
func stackPackages() []string {
	var pcs [128]uintptr
	n := runtime.Callers(1, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	var pkgs []string
	for {
		frame, more := frames.Next()
		fn := frame.Function
		slash := strings.LastIndex(fn, "/")
		if dot := strings.Index(fn[slash+1:], "."); dot >= 0 {
			pkgs = append(pkgs, fn[:slash+1+dot])
		}
		if !more {
			return pkgs
		}
	}
}

func here() (string, int) {
	_, file, line, _ := runtime.Caller(1)
	return file, line
}

var _ = Describe("Resolver", func() {
	Describe("Caller", func() {
		It("should resolve to the calling line", func() {
			r := identity.NewResolver()
			file, line := here()
			id, err := r.Caller()
			Expect(err).ToNot(HaveOccurred())
			Expect(id).To(Equal(domain.Identity{File: file, Line: line + 1}))
		})

		It("should give distinct calls distinct identities", func() {
			r := identity.NewResolver()
			a, _ := r.Caller()
			b, _ := r.Caller()
			Expect(a.File).To(Equal(b.File))
			Expect(a.Line).ToNot(Equal(b.Line))
		})

		It("should return the same identity for the same call site", func() {
			r := identity.NewResolver()
			var ids []domain.Identity
			for i := 0; i < 3; i++ {
				id, err := r.Caller()
				Expect(err).ToNot(HaveOccurred())
				ids = append(ids, id)
			}
			Expect(ids[0]).To(Equal(ids[1]))
			Expect(ids[1]).To(Equal(ids[2]))
		})

		It("should skip helpers", func() {
			r := identity.NewResolver()
			helper := func() domain.Identity {
				r.MarkHelper(0)
				id, _ := r.Caller()
				return id
			}
			_, line := here()
			id := helper()
			Expect(id.Line).To(Equal(line + 1))
		})

		It("should skip frames of registered packages", func() {
			r := identity.NewResolver(identity.PackageOf(declare))
			id, err := r.Caller()
			Expect(err).ToNot(HaveOccurred())
			Expect(id.File).ToNot(HaveSuffix("identity_test.go"))
		})

		It("should fail when every frame belongs to a registered package", func() {
			r := identity.NewResolver(stackPackages()...)
			id, err := r.Caller()
			Expect(err).To(MatchError(ContainSubstring("[explore]")))
			Expect(err).To(MatchError(ContainSubstring("no user frame")))
			Expect(id.IsZero()).To(BeTrue())
			phase, ok := domain.PhaseOf(err)
			Expect(ok).To(BeTrue())
			Expect(phase).To(Equal(domain.PhaseExplore))
		})
	})

	Describe("PackageOf", func() {
		It("should return the declaring package path", func() {
			Expect(identity.PackageOf(identity.NewResolver)).To(Equal("github.com/fjglira/specwalk/internal/identity"))
			Expect(identity.PackageOf(declare)).To(Equal("github.com/fjglira/specwalk/internal/identity_test"))
		})

		It("should return empty for non-functions", func() {
			Expect(identity.PackageOf(42)).To(BeEmpty())
		})
	})

	Describe("CauseLocation", func() {
		var r *identity.Resolver

		BeforeEach(func() {
			r = identity.NewResolver()
		})

		It("should use the stack recorded by pkg/errors", func() {
			block, _ := r.Caller()
			_, line := here()
			err := errors.Wrap(errors.New("inner"), "outer")
			at := r.CauseLocation(err, block, nil)
			Expect(at).ToNot(BeNil())
			Expect(*at).To(Equal(domain.Identity{File: block.File, Line: line + 1}))
		})

		It("should fall back to the given stack", func() {
			block, _ := r.Caller()
			var pcs [16]uintptr
			_, line := here()
			n := runtime.Callers(1, pcs[:])
			at := r.CauseLocation(fmt.Errorf("no stack"), block, pcs[:n])
			Expect(at).ToNot(BeNil())
			Expect(at.Line).To(Equal(line + 1))
		})

		It("should fall back to the given stack when the recorded trace is elsewhere", func() {
			block, _ := r.Caller()
			var pcs [16]uintptr
			_, line := here()
			n := runtime.Callers(1, pcs[:])
			at := r.CauseLocation(errSentinel, block, pcs[:n])
			Expect(at).ToNot(BeNil())
			Expect(*at).To(Equal(domain.Identity{File: block.File, Line: line + 1}))
		})

		It("should not match frames before the block", func() {
			file, line := here()
			err := errors.New("before")
			block := domain.Identity{File: file, Line: line + 100}
			Expect(r.CauseLocation(err, block, nil)).To(BeNil())
		})

		It("should return nil for the entry point", func() {
			Expect(r.CauseLocation(errors.New("x"), domain.Identity{}, nil)).To(BeNil())
		})
	})
})
