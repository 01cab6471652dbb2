package spec

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/fjglira/specwalk/internal/config"
	"github.com/fjglira/specwalk/internal/explore"
	"github.com/fjglira/specwalk/internal/records"
	"github.com/fjglira/specwalk/internal/report"
)

// Entry is a named entry point.
type Entry struct {
	Name string
	Body func(s *S)
}

// Runner explores entry points according to a configuration.
type Runner struct {
	cfg *config.Config
	log *logrus.Logger
}

// NewRunner creates a Runner. A nil cfg means the defaults.
func NewRunner(cfg *config.Config, log *logrus.Logger) *Runner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Runner{cfg: cfg, log: log}
}

// Explore runs one entry point to completion and returns its records.
func (r *Runner) Explore(e Entry) ([]PathRecord, error) {
	return explore.Explore(e.Name, func(t *explore.T) {
		e.Body(newS(t))
	},
		explore.WithMaxPasses(r.cfg.Explore.MaxPasses),
		explore.WithFlatPaths(r.cfg.Explore.FlatPaths),
		explore.WithLogger(r.log),
		explore.WithInternalPackages(thisPackage),
	)
}

// Suite explores every entry point and aggregates them under a root named
// suite. Entry points are independent and run in parallel unless
// explore.parallel is false; the report keeps the declaration order.
func (r *Runner) Suite(suite string, entries ...Entry) (*Node, error) {
	results := make([][]PathRecord, len(entries))

	var g errgroup.Group
	if p := r.cfg.Explore.Parallel; p != nil && !*p {
		g.SetLimit(1)
	}
	for i, e := range entries {
		g.Go(func() error {
			recs, err := r.Explore(e)
			results[i] = recs
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tree := report.NewTree(suite)
	file := &records.File{Suite: suite}
	for i, e := range entries {
		node := tree.AddEntry(e.Name, results[i])
		file.Entries = append(file.Entries, records.NewEntry(e.Name, results[i]))
		r.logEntry(node)
	}
	if err := r.export(file); err != nil {
		return nil, err
	}
	return tree.Root(), nil
}

// export writes file below report.records_dir. It does nothing when no
// directory is configured.
func (r *Runner) export(file *records.File) error {
	dir := r.cfg.Report.RecordsDir
	if dir == "" {
		return nil
	}
	path, err := records.Write(dir, file)
	if err != nil {
		return err
	}
	r.log.WithField("path", path).Debug("records written")
	return nil
}

func (r *Runner) logEntry(n *Node) {
	stats := n.Stats()
	r.log.WithFields(logrus.Fields{
		"entry":  n.Name,
		"cases":  stats.Cases,
		"failed": stats.Failed,
	}).Info("entry explored")
}

// Aggregate folds the records of a single entry point into a report tree
// rooted at label.
func Aggregate(label string, recs []PathRecord) *Node {
	return report.Aggregate(label, recs)
}
