package report

import (
	"sync"

	"github.com/fjglira/specwalk/internal/domain"
)

// Recorder is a Sink that keeps every event in memory.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Start(desc domain.Description) {
	r.add(domain.Event{Kind: domain.EventStart, Description: desc})
}

func (r *Recorder) End(desc domain.Description) {
	r.add(domain.Event{Kind: domain.EventEnd, Description: desc})
}

func (r *Recorder) Failure(desc domain.Description, cause error, precise *domain.Identity) {
	r.add(domain.Event{Kind: domain.EventFailure, Description: desc, Cause: cause, Precise: precise})
}

func (r *Recorder) add(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Failures returns the full names of nodes that reported a failure.
func (r *Recorder) Failures() []string {
	var names []string
	for _, ev := range r.Events() {
		if ev.Kind == domain.EventFailure {
			names = append(names, ev.Description.FullName)
		}
	}
	return names
}
