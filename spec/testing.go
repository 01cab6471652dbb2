package spec

import (
	"sync"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/specwalk/internal/config"
	"github.com/fjglira/specwalk/internal/records"
	"github.com/fjglira/specwalk/internal/report"
	"github.com/fjglira/specwalk/internal/reporter"
)

var (
	defaultOnce   sync.Once
	defaultRunner *Runner
	defaultErr    error
)

// DefaultRunner returns the Runner configured from SPECWALK_CONFIG, or from
// the defaults when the variable is unset.
func DefaultRunner() (*Runner, error) {
	defaultOnce.Do(func() {
		cfg, err := config.FromEnv()
		if err != nil {
			defaultErr = err
			return
		}
		log, _, err := config.NewLogger(cfg.Logging, false)
		if err != nil {
			defaultErr = err
			return
		}
		defaultRunner = NewRunner(cfg, log)
	})
	return defaultRunner, defaultErr
}

// Run explores body as an entry point named after t and reports every block
// as a subtest of t.
func Run(t *testing.T, body func(s *S)) {
	t.Helper()
	r, err := DefaultRunner()
	if err != nil {
		t.Fatalf("specwalk: %v", err)
	}
	r.Run(t, body)
}

// RunSuite explores several entry points and reports each as a subtest of t.
func RunSuite(t *testing.T, entries ...Entry) {
	t.Helper()
	r, err := DefaultRunner()
	if err != nil {
		t.Fatalf("specwalk: %v", err)
	}
	r.RunSuite(t, entries...)
}

// Run is like the package-level Run with this Runner's configuration.
func (r *Runner) Run(t *testing.T, body func(s *S)) {
	t.Helper()
	recs, err := r.Explore(Entry{Name: t.Name(), Body: body})
	if err != nil {
		t.Fatalf("specwalk: %v", err)
	}
	err = r.export(&records.File{
		Suite:   t.Name(),
		Entries: []records.Entry{records.NewEntry(t.Name(), recs)},
	})
	if err != nil {
		t.Fatalf("specwalk: %v", err)
	}
	root := report.Aggregate(t.Name(), recs)
	r.logEntry(root)
	r.report(root)
	replay(t, root)
}

// RunSuite is like the package-level RunSuite with this Runner's
// configuration.
func (r *Runner) RunSuite(t *testing.T, entries ...Entry) {
	t.Helper()
	root, err := r.Suite(t.Name(), entries...)
	if err != nil {
		t.Fatalf("specwalk: %v", err)
	}
	r.report(root)
	replay(t, root)
}

func (r *Runner) report(root *Node) {
	if r.log.IsLevelEnabled(logrus.DebugLevel) {
		report.Report(root, reporter.NewLogSink(r.log))
	}
}

// replay mirrors the report tree as nested subtests in event order.
func replay(t *testing.T, n *Node) {
	t.Helper()
	for _, c := range n.Children() {
		t.Run(c.Name, func(t *testing.T) {
			replay(t, c)
		})
	}
	if n.Failed() {
		if p := n.Outcome.Precise; p != nil {
			t.Errorf("%v\n    at %s", n.Outcome.Cause, p)
		} else {
			t.Errorf("%v\n    in %s", n.Outcome.Cause, n.Identity)
		}
	}
}
