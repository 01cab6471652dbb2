package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/fjglira/specwalk/internal/domain"
	"github.com/fjglira/specwalk/internal/report"
)

// TextSink prints an indented outline of the events it receives.
type TextSink struct {
	w         io.Writer
	locations bool
	passed    int
	failed    int
}

// NewTextSink creates a TextSink writing to w. With locations set, every
// line carries the block's source position.
func NewTextSink(w io.Writer, locations bool) *TextSink {
	return &TextSink{w: w, locations: locations}
}

func (s *TextSink) Start(desc domain.Description) {
	if desc.Kind == domain.KindSuite {
		fmt.Fprintf(s.w, "%s%s%s\n", indent(desc.Depth), desc.Name, s.location(desc.Identity))
	}
}

func (s *TextSink) End(desc domain.Description) {
	if desc.Kind == domain.KindCase {
		s.passed++
		fmt.Fprintf(s.w, "%s[PASS] %s%s\n", indent(desc.Depth), desc.Name, s.location(desc.Identity))
	}
}

func (s *TextSink) Failure(desc domain.Description, cause error, precise *domain.Identity) {
	s.failed++
	fmt.Fprintf(s.w, "%s[FAIL] %s%s\n", indent(desc.Depth), desc.Name, s.location(desc.Identity))
	if cause != nil {
		for _, line := range strings.Split(cause.Error(), "\n") {
			fmt.Fprintf(s.w, "%s  %s\n", indent(desc.Depth), line)
		}
	}
	if precise != nil {
		fmt.Fprintf(s.w, "%s  at %s\n", indent(desc.Depth), precise)
	}
}

// Summary writes the pass/fail totals.
func (s *TextSink) Summary() {
	fmt.Fprintf(s.w, "\n%d passed, %d failed\n", s.passed, s.failed)
}

func (s *TextSink) location(id domain.Identity) string {
	if !s.locations || id.IsZero() {
		return ""
	}
	return fmt.Sprintf(" (%s)", id)
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}

// TextRenderer renders the outline produced by TextSink.
type TextRenderer struct {
	locations bool
}

// NewTextRenderer creates a TextRenderer.
func NewTextRenderer(locations bool) *TextRenderer {
	return &TextRenderer{locations: locations}
}

func (r *TextRenderer) Format() string {
	return "text"
}

func (r *TextRenderer) Render(w io.Writer, root *report.Node) error {
	sink := NewTextSink(w, r.locations)
	report.Report(root, sink)
	sink.Summary()
	return nil
}

// LogSink logs every event through logrus: starts at debug, passes at info
// and failures at error level.
type LogSink struct {
	log *logrus.Logger
}

// NewLogSink creates a LogSink.
func NewLogSink(log *logrus.Logger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) fields(desc domain.Description) *logrus.Entry {
	return s.log.WithFields(logrus.Fields{
		"name": desc.FullName,
		"kind": desc.Kind.String(),
	})
}

func (s *LogSink) Start(desc domain.Description) {
	s.fields(desc).Debug("start")
}

func (s *LogSink) End(desc domain.Description) {
	if desc.Kind == domain.KindCase {
		s.fields(desc).Info("passed")
		return
	}
	s.fields(desc).Debug("end")
}

func (s *LogSink) Failure(desc domain.Description, cause error, precise *domain.Identity) {
	entry := s.fields(desc).WithField("location", desc.Identity.String())
	if precise != nil {
		entry = entry.WithField("at", precise.String())
	}
	entry.WithError(cause).Error("failed")
}
