// Package identity derives stable block identities from the call stack.
//
// A block is identified by the source position of the call that declares it.
// Frames belonging to the engine (registered by package) and to functions
// marked as helpers are skipped, so the identity always points at user code.
package identity

import (
	"runtime"
	"strings"

	"github.com/pkg/errors"

	"github.com/fjglira/specwalk/internal/domain"
)

const maxDepth = 64

// Resolver resolves identities for one exploration. It is not safe for
// concurrent use; each explore call owns its own Resolver.
type Resolver struct {
	internal map[string]bool // package paths whose frames are skipped
	helpers  map[string]bool // fully qualified function names marked as helpers
}

// NewResolver creates a Resolver that skips frames from the given packages in
// addition to this package. Use PackageOf to obtain a package path.
func NewResolver(packages ...string) *Resolver {
	r := &Resolver{
		internal: map[string]bool{thisPackage: true},
		helpers:  make(map[string]bool),
	}
	for _, p := range packages {
		r.internal[p] = true
	}
	return r
}

var thisPackage = PackageOf(packageName)

// PackageOf returns the import path of the package that declares fn.
func PackageOf(fn any) string {
	pc := funcPC(fn)
	f := runtime.FuncForPC(pc)
	if f == nil {
		return ""
	}
	return packageName(f.Name())
}

// Caller returns the identity of the nearest frame that belongs neither to a
// registered package nor to a helper. It fails when no such frame exists,
// which means a block was declared from outside any user code.
func (r *Resolver) Caller() (domain.Identity, error) {
	var pcs [maxDepth]uintptr
	n := runtime.Callers(2, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if frame.Function != "" && !r.skipped(frame.Function) && !isRuntime(frame.Function) {
			return domain.Identity{File: frame.File, Line: frame.Line}, nil
		}
		if !more {
			break
		}
	}
	return domain.Identity{}, domain.NewError(domain.PhaseExplore, "", 0, "no user frame found while resolving block identity", nil)
}

// MarkHelper marks the function skip frames above the caller as a helper.
// Blocks declared from a helper take their identity from the helper's caller.
func (r *Resolver) MarkHelper(skip int) {
	var pcs [1]uintptr
	if runtime.Callers(skip+2, pcs[:]) == 0 {
		return
	}
	frame, _ := runtime.CallersFrames(pcs[:]).Next()
	if frame.Function != "" {
		r.helpers[frame.Function] = true
	}
}

// CauseLocation finds the frame inside the failing body where cause
// originated. Frames are taken first from the deepest pkg/errors stack trace
// in the cause chain, then from stack (usually captured while recovering a
// panic); a trace recorded away from the body, such as that of a package-level
// sentinel error, does not hide the recovery stack. A frame matches when it is
// in the block's file at or after the block's line; the innermost match wins.
// Nil means no frame matched.
func (r *Resolver) CauseLocation(cause error, block domain.Identity, stack []uintptr) *domain.Identity {
	if block.IsZero() {
		return nil
	}
	if st := deepestStack(cause); st != nil {
		pcs := make([]uintptr, len(st))
		for i, f := range st {
			pcs[i] = uintptr(f)
		}
		if id := r.match(pcs, block); id != nil {
			return id
		}
	}
	return r.match(stack, block)
}

func (r *Resolver) match(pcs []uintptr, block domain.Identity) *domain.Identity {
	if len(pcs) == 0 {
		return nil
	}
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		if frame.File == block.File && frame.Line >= block.Line && !r.skipped(frame.Function) {
			return &domain.Identity{File: frame.File, Line: frame.Line}
		}
		if !more {
			return nil
		}
	}
}

type stackTracer interface {
	StackTrace() errors.StackTrace
}

// deepestStack walks the cause chain and returns the stack trace recorded
// closest to the origin of the error.
func deepestStack(err error) errors.StackTrace {
	var st errors.StackTrace
	for err != nil {
		if t, ok := err.(stackTracer); ok {
			st = t.StackTrace()
		}
		err = errors.Unwrap(err)
	}
	return st
}

func (r *Resolver) skipped(function string) bool {
	return r.helpers[function] || r.internal[packageName(function)]
}

func isRuntime(function string) bool {
	return strings.HasPrefix(function, "runtime.") || strings.HasPrefix(function, "testing.")
}

// packageName extracts the package path from a fully qualified function name
// such as "example.com/mod/pkg.(*T).Run.func1".
func packageName(function string) string {
	slash := strings.LastIndex(function, "/")
	dot := strings.Index(function[slash+1:], ".")
	if dot < 0 {
		return function
	}
	return function[:slash+1+dot]
}
