package reporter

import (
	"io"

	"gopkg.in/yaml.v3"

	"github.com/fjglira/specwalk/internal/domain"
	"github.com/fjglira/specwalk/internal/report"
)

// yamlNode is the serialized form of a report node.
type yamlNode struct {
	Name     string      `yaml:"name"`
	Kind     string      `yaml:"kind"`
	Status   string      `yaml:"status"`
	Location string      `yaml:"location,omitempty"`
	Cause    string      `yaml:"cause,omitempty"`
	At       string      `yaml:"at,omitempty"`
	Children []*yamlNode `yaml:"children,omitempty"`
}

// YAMLRenderer writes the report tree as a YAML document.
type YAMLRenderer struct{}

// NewYAMLRenderer creates a YAMLRenderer.
func NewYAMLRenderer() *YAMLRenderer {
	return &YAMLRenderer{}
}

func (r *YAMLRenderer) Format() string {
	return "yaml"
}

func (r *YAMLRenderer) Render(w io.Writer, root *report.Node) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(toYAML(root)); err != nil {
		return domain.NewError(domain.PhaseReport, "", 0, "failed to encode yaml report", err)
	}
	return enc.Close()
}

func toYAML(n *report.Node) *yamlNode {
	out := &yamlNode{
		Name:   n.Name,
		Kind:   n.Kind.String(),
		Status: "passed",
	}
	if !n.Identity.IsZero() {
		out.Location = n.Identity.String()
	}
	if n.Failed() {
		out.Status = "failed"
		if n.Outcome.Cause != nil {
			out.Cause = n.Outcome.Cause.Error()
		}
		if n.Outcome.Precise != nil {
			out.At = n.Outcome.Precise.String()
		}
	}
	for _, c := range n.Children() {
		out.Children = append(out.Children, toYAML(c))
	}
	return out
}
