// Package reporter renders report trees in the supported output formats.
package reporter

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"

	"github.com/fjglira/specwalk/internal/report"
)

// Renderer writes a report tree to w.
type Renderer interface {
	Render(w io.Writer, root *report.Node) error
	Format() string
}

// Registry maps format names to renderers.
type Registry interface {
	Register(r Renderer)
	RendererFor(format string) (Renderer, error)
	Formats() []string
}

// DefaultRegistry is a thread-safe renderer registry.
type DefaultRegistry struct {
	mu        sync.RWMutex
	renderers map[string]Renderer
}

// NewRegistry creates a DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		renderers: make(map[string]Renderer),
	}
}

// NewDefaultRegistry creates a registry holding the text, yaml and html
// renderers.
func NewDefaultRegistry() *DefaultRegistry {
	r := NewRegistry()
	r.Register(NewTextRenderer(false))
	r.Register(NewYAMLRenderer())
	r.Register(NewHTMLRenderer())
	return r
}

// Register adds a renderer under its format name.
func (r *DefaultRegistry) Register(rd Renderer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renderers[strings.ToLower(rd.Format())] = rd
}

// RendererFor returns the renderer registered for format.
func (r *DefaultRegistry) RendererFor(format string) (Renderer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if rd, ok := r.renderers[strings.ToLower(format)]; ok {
		return rd, nil
	}
	return nil, fmt.Errorf("no renderer registered for format %q", format)
}

// Formats returns the registered format names, sorted.
func (r *DefaultRegistry) Formats() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.renderers))
	for name := range r.renderers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
