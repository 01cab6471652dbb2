// Package explore discovers and runs a tree of nested blocks that exists only
// as executable code.
//
// The entry point body is re-executed from the top on every pass. A block
// whose identity was already visited is skipped without running its body.
// The first unvisited block that finishes aborts the pass, is recorded, and
// exploration restarts. A pass that finishes nothing ends exploration.
//
// Block bodies must be deterministic given the same set of visited blocks.
// Code outside any block runs again on every pass, which gives every path a
// fresh setup. Bodies must not recover panics they did not raise themselves.
package explore

import (
	"fmt"
	"runtime"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/specwalk/internal/domain"
	"github.com/fjglira/specwalk/internal/identity"
)

// ErrPassLimit is the cause of the error returned when an exploration
// exceeds its configured pass limit.
var ErrPassLimit = errors.New("pass limit exceeded")

const maxStack = 64

// T is the context passed to every block body. It is only valid during the
// pass in which it was handed out.
type T struct {
	ex   *explorer
	path []domain.Segment
	key  string
	seen map[domain.Identity]int
}

type explorer struct {
	entry    string
	visited  map[string]domain.Outcome
	records  []domain.PathRecord
	resolver *identity.Resolver
	opts     options
	log      *logrus.Entry
}

var thisPackage = identity.PackageOf(causeOf)

// Explore runs body until every reachable block has executed exactly once and
// returns one PathRecord per finished block, in the order they finished.
//
// Failures inside blocks are recorded, never returned. A failure of body
// outside any block is recorded with an empty path and ends exploration.
// The returned error is non-nil only when the pass limit is exceeded.
func Explore(entry string, body func(t *T), opts ...Option) ([]domain.PathRecord, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	e := &explorer{
		entry:    entry,
		visited:  make(map[string]domain.Outcome),
		resolver: identity.NewResolver(append([]string{thisPackage}, o.packages...)...),
		opts:     o,
		log:      o.log.WithField("entry", entry),
	}

	for pass := 1; ; pass++ {
		if o.maxPasses > 0 && pass > o.maxPasses {
			return e.records, domain.NewError(domain.PhaseExplore, "", 0,
				fmt.Sprintf("%s did not settle after %d passes; block bodies must be deterministic", entry, o.maxPasses),
				ErrPassLimit)
		}

		e.log.WithField("pass", pass).Debug("starting pass")
		sig := e.pass(body)
		if sig == nil {
			e.log.WithFields(logrus.Fields{"passes": pass, "blocks": len(e.records)}).Debug("exploration complete")
			return e.records, nil
		}

		e.visited[sig.key] = sig.record.Outcome
		e.records = append(e.records, sig.record)
		e.log.WithFields(logrus.Fields{
			"pass":   pass,
			"block":  sig.record.String(),
			"failed": sig.record.Outcome.Failed,
		}).Debug("block finished")

		if sig.entry {
			return e.records, nil
		}
	}
}

// pass runs the entry body once from scratch.
func (e *explorer) pass(body func(*T)) (sig *signal) {
	root := &T{ex: e, seen: make(map[domain.Identity]int)}
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		switch v := r.(type) {
		case *signal:
			sig = v
			return
		case usageError:
			panic(v.error)
		}
		sig = &signal{
			entry:  true,
			record: domain.PathRecord{Outcome: domain.Failed(causeOf(r), nil)},
		}
	}()
	body(root)
	return nil
}

// Run declares a block named name. The block's identity is the source
// position of the call, skipping engine frames and helpers.
//
// When the block was already visited Run returns immediately. Otherwise body
// runs and the pass is aborted once this block or one of its descendants
// finishes, so Run does not return in that case.
func (t *T) Run(name string, body func(t *T)) {
	id, err := t.ex.resolver.Caller()
	if err != nil {
		panic(usageError{err})
	}
	t.run(name, id, body)
}

// RunAt is like Run with an explicit identity.
func (t *T) RunAt(id domain.Identity, name string, body func(t *T)) {
	t.run(name, id, body)
}

func (t *T) run(name string, id domain.Identity, body func(*T)) {
	occurrence := t.seen[id]
	t.seen[id] = occurrence + 1

	key := t.key + "/" + id.String() + "#" + strconv.Itoa(occurrence)
	if _, done := t.ex.visited[key]; done {
		return
	}

	path := make([]domain.Segment, len(t.path), len(t.path)+1)
	copy(path, t.path)
	path = append(path, domain.Segment{Name: name, Identity: id, Occurrence: occurrence})

	child := &T{
		ex:   t.ex,
		path: path,
		key:  key,
		seen: make(map[domain.Identity]int),
	}
	panic(t.ex.call(child, body))
}

// call runs body and converts its termination into a signal: completion
// finishes the block itself, a nested signal passes through unchanged and any
// other panic fails the block.
func (e *explorer) call(t *T, body func(*T)) (sig *signal) {
	completed := false
	defer func() {
		if completed {
			sig = e.finish(t, domain.Passed())
			return
		}
		r := recover()
		switch v := r.(type) {
		case *signal:
			sig = v
			return
		case usageError:
			panic(v)
		}
		if r == nil {
			r = errors.New("block body exited without returning")
		}
		var pcs [maxStack]uintptr
		n := runtime.Callers(2, pcs[:])
		cause := causeOf(r)
		sig = e.finish(t, domain.Failed(cause, e.resolver.CauseLocation(cause, t.Identity(), pcs[:n])))
	}()
	body(t)
	completed = true
	return nil
}

func (e *explorer) finish(t *T, outcome domain.Outcome) *signal {
	path := t.path
	if e.opts.flat {
		path = path[len(path)-1:]
	}
	return &signal{key: t.key, record: domain.PathRecord{Path: path, Outcome: outcome}}
}

// Name returns the name of the current block, or the entry name at the root.
func (t *T) Name() string {
	if len(t.path) == 0 {
		return t.ex.entry
	}
	return t.path[len(t.path)-1].Name
}

// Path returns the names of the enclosing blocks including the current one.
func (t *T) Path() []string {
	names := make([]string, len(t.path))
	for i, seg := range t.path {
		names[i] = seg.Name
	}
	return names
}

// Identity returns the identity of the current block. It is zero at the root.
func (t *T) Identity() domain.Identity {
	if len(t.path) == 0 {
		return domain.Identity{}
	}
	return t.path[len(t.path)-1].Identity
}

// MarkHelper marks the function skip frames above the caller as a helper, so
// blocks it declares take their identity from its caller. Skip 0 marks the
// function calling MarkHelper.
func (t *T) MarkHelper(skip int) {
	t.ex.resolver.MarkHelper(skip + 1)
}

// Fail fails the current block with msg.
func (t *T) Fail(msg string) {
	panic(errors.New(msg))
}

// Failf fails the current block with a formatted message.
func (t *T) Failf(format string, args ...any) {
	panic(errors.Errorf(format, args...))
}
