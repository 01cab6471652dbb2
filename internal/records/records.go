// Package records stores the PathRecords of explored entry points as YAML so
// they can be aggregated and rendered later.
package records

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/fjglira/specwalk/internal/domain"
)

// Suffix is the file name suffix of records files.
const Suffix = ".records.yaml"

// File is the on-disk form of one suite's explored entry points.
type File struct {
	Suite   string  `yaml:"suite"`
	Entries []Entry `yaml:"entries"`
}

// Entry holds the records of one entry point.
type Entry struct {
	Name    string   `yaml:"name"`
	Records []Record `yaml:"records"`
}

// Record is the on-disk form of a domain.PathRecord.
type Record struct {
	Path   []Step `yaml:"path"`
	Failed bool   `yaml:"failed,omitempty"`
	Cause  string `yaml:"cause,omitempty"`
	AtFile string `yaml:"at_file,omitempty"`
	AtLine int    `yaml:"at_line,omitempty"`
}

// Step is one segment of a record's path.
type Step struct {
	Name       string `yaml:"name"`
	File       string `yaml:"file,omitempty"`
	Line       int    `yaml:"line,omitempty"`
	Occurrence int    `yaml:"occurrence,omitempty"`
}

// NewEntry converts domain records into an Entry.
func NewEntry(name string, recs []domain.PathRecord) Entry {
	entry := Entry{Name: name, Records: make([]Record, 0, len(recs))}
	for _, rec := range recs {
		r := Record{Failed: rec.Outcome.Failed}
		for _, seg := range rec.Path {
			r.Path = append(r.Path, Step{
				Name:       seg.Name,
				File:       seg.Identity.File,
				Line:       seg.Identity.Line,
				Occurrence: seg.Occurrence,
			})
		}
		if rec.Outcome.Cause != nil {
			r.Cause = rec.Outcome.Cause.Error()
		}
		if rec.Outcome.Precise != nil {
			r.AtFile = rec.Outcome.Precise.File
			r.AtLine = rec.Outcome.Precise.Line
		}
		entry.Records = append(entry.Records, r)
	}
	return entry
}

// PathRecords converts the entry back into domain records. Causes are
// restored as plain errors carrying the recorded message.
func (e Entry) PathRecords() []domain.PathRecord {
	out := make([]domain.PathRecord, 0, len(e.Records))
	for _, r := range e.Records {
		rec := domain.PathRecord{}
		for _, st := range r.Path {
			rec.Path = append(rec.Path, domain.Segment{
				Name:       st.Name,
				Identity:   domain.Identity{File: st.File, Line: st.Line},
				Occurrence: st.Occurrence,
			})
		}
		if r.Failed {
			var precise *domain.Identity
			if r.AtFile != "" {
				precise = &domain.Identity{File: r.AtFile, Line: r.AtLine}
			}
			cause := errors.New(r.Cause)
			if r.Cause == "" {
				cause = errors.New("failed")
			}
			rec.Outcome = domain.Failed(cause, precise)
		}
		out = append(out, rec)
	}
	return out
}

// Read loads a records file.
func Read(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError(domain.PhaseRecords, path, 0, "failed to read records file", err)
	}
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, domain.NewError(domain.PhaseRecords, path, 0, "failed to parse records file", err)
	}
	if f.Suite == "" {
		f.Suite = strings.TrimSuffix(filepath.Base(path), Suffix)
	}
	return &f, nil
}

// Write stores f in dir under a name derived from the suite and returns the
// path written.
func Write(dir string, f *File) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", domain.NewError(domain.PhaseRecords, dir, 0, "failed to create records directory", err)
	}
	data, err := yaml.Marshal(f)
	if err != nil {
		return "", domain.NewError(domain.PhaseRecords, dir, 0, "failed to encode records", err)
	}
	path := filepath.Join(dir, FileName(f.Suite))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", domain.NewError(domain.PhaseRecords, path, 0, "failed to write records file", err)
	}
	return path, nil
}

// FileName converts a suite name into a records file name.
// e.g. "Stack Behaviour" → "stack_behaviour.records.yaml"
func FileName(suite string) string {
	name := strings.ToLower(suite)
	name = strings.ReplaceAll(name, " ", "_")
	var b strings.Builder
	for _, c := range name {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') || c == '_' || c == '-' {
			b.WriteRune(c)
		}
	}
	result := b.String()
	for strings.Contains(result, "__") {
		result = strings.ReplaceAll(result, "__", "_")
	}
	result = strings.Trim(result, "_")
	if result == "" {
		result = "suite"
	}
	return result + Suffix
}
