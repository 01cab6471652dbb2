package domain

import (
	"fmt"
	"strings"
)

// Identity is the stable identity of one textual block: the source position
// of the call that declares it.
type Identity struct {
	File string
	Line int
}

// IsZero reports whether the identity is unset (the entry point itself).
func (id Identity) IsZero() bool {
	return id.File == "" && id.Line == 0
}

func (id Identity) String() string {
	if id.IsZero() {
		return "<entry>"
	}
	return fmt.Sprintf("%s:%d", id.File, id.Line)
}

// Segment is one step of a path: the display name of a block and its identity.
// Occurrence counts earlier encounters of the same identity within the same
// parent during a pass, so blocks declared in a loop stay distinct.
type Segment struct {
	Name       string
	Identity   Identity
	Occurrence int
}

// Outcome is the recorded result of a finished block.
type Outcome struct {
	Failed  bool
	Cause   error
	Precise *Identity // frame inside the body where the failure originated, if known
}

// Passed returns a successful outcome.
func Passed() Outcome {
	return Outcome{}
}

// Failed returns a failure outcome for cause.
func Failed(cause error, precise *Identity) Outcome {
	return Outcome{Failed: true, Cause: cause, Precise: precise}
}

// PathRecord is the result of one aborted pass: the chain of enclosing blocks
// from the entry point down to the block that finished, plus its outcome.
// An empty Path denotes the entry point itself.
type PathRecord struct {
	Path    []Segment
	Outcome Outcome
}

// Identity returns the identity of the finished block.
func (r PathRecord) Identity() Identity {
	if len(r.Path) == 0 {
		return Identity{}
	}
	return r.Path[len(r.Path)-1].Identity
}

// Names returns the display names along the path.
func (r PathRecord) Names() []string {
	names := make([]string, len(r.Path))
	for i, seg := range r.Path {
		names[i] = seg.Name
	}
	return names
}

func (r PathRecord) String() string {
	status := "ok"
	if r.Outcome.Failed {
		status = "FAIL"
	}
	return fmt.Sprintf("%s [%s]", strings.Join(r.Names(), " / "), status)
}

// NodeKind distinguishes intermediate report nodes from leaves.
type NodeKind int

const (
	KindSuite NodeKind = iota
	KindCase
)

func (k NodeKind) String() string {
	if k == KindCase {
		return "case"
	}
	return "suite"
}

// EventKind is the closed set of report events.
type EventKind int

const (
	EventStart EventKind = iota
	EventEnd
	EventFailure
)

func (k EventKind) String() string {
	switch k {
	case EventStart:
		return "start"
	case EventEnd:
		return "end"
	case EventFailure:
		return "failure"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Description identifies a report node to a sink.
type Description struct {
	Name     string
	FullName string // names from the root joined with "/"
	Kind     NodeKind
	Depth    int
	Identity Identity
}

// Event is one entry of the flat ordered event sequence over a report tree.
type Event struct {
	Kind        EventKind
	Description Description
	Cause       error     // set for EventFailure
	Precise     *Identity // optional precise cause location for EventFailure
}
