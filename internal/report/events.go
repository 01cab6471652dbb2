package report

import (
	"strings"

	"github.com/fjglira/specwalk/internal/domain"
)

// Sink receives report events. Implementations decide how to render them.
type Sink interface {
	Start(desc domain.Description)
	End(desc domain.Description)
	Failure(desc domain.Description, cause error, precise *domain.Identity)
}

// Events flattens the tree rooted at n into its ordered event sequence: a
// Start for every node, then the events of its children contiguously in
// first-seen order, then End, or Failure when the node carries a failure.
func Events(n *Node) []domain.Event {
	var events []domain.Event
	emit(n, nil, 0, &events)
	return events
}

func emit(n *Node, parents []string, depth int, events *[]domain.Event) {
	names := append(parents[:len(parents):len(parents)], n.Name)
	desc := domain.Description{
		Name:     n.Name,
		FullName: strings.Join(names, "/"),
		Kind:     n.Kind,
		Depth:    depth,
		Identity: n.Identity,
	}

	*events = append(*events, domain.Event{Kind: domain.EventStart, Description: desc})
	for _, c := range n.children {
		emit(c, names, depth+1, events)
	}

	if n.Failed() {
		*events = append(*events, domain.Event{
			Kind:        domain.EventFailure,
			Description: desc,
			Cause:       n.Outcome.Cause,
			Precise:     n.Outcome.Precise,
		})
		return
	}
	*events = append(*events, domain.Event{Kind: domain.EventEnd, Description: desc})
}

// Replay delivers events to sink in order.
func Replay(events []domain.Event, sink Sink) {
	for _, ev := range events {
		switch ev.Kind {
		case domain.EventStart:
			sink.Start(ev.Description)
		case domain.EventEnd:
			sink.End(ev.Description)
		case domain.EventFailure:
			sink.Failure(ev.Description, ev.Cause, ev.Precise)
		}
	}
}

// Report emits the events of the tree rooted at n to every sink.
func Report(n *Node, sinks ...Sink) {
	events := Events(n)
	for _, s := range sinks {
		Replay(events, s)
	}
}
