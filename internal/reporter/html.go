package reporter

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/fjglira/specwalk/internal/domain"
	"github.com/fjglira/specwalk/internal/report"
)

// HTMLRenderer renders a Markdown outline of the report and converts it to
// HTML with goldmark.
type HTMLRenderer struct {
	md goldmark.Markdown
}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{md: goldmark.New()}
}

func (r *HTMLRenderer) Format() string {
	return "html"
}

func (r *HTMLRenderer) Render(w io.Writer, root *report.Node) error {
	src := Markdown(root)
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return domain.NewError(domain.PhaseReport, "", 0, "failed to convert report to html", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Markdown returns the report tree as a Markdown document: a heading with the
// totals followed by a nested list of nodes.
func Markdown(root *report.Node) string {
	var b strings.Builder
	stats := root.Stats()
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(root.Name))
	fmt.Fprintf(&b, "%d cases, %d failed\n\n", stats.Cases, stats.Failed)
	for _, c := range root.Children() {
		writeItem(&b, c, 0)
	}
	if len(root.Children()) == 0 {
		writeItem(&b, root, 0)
	}
	return b.String()
}

func writeItem(b *strings.Builder, n *report.Node, depth int) {
	pad := strings.Repeat("  ", depth)
	mark := "PASS"
	if n.Failed() {
		mark = "FAIL"
	}
	if n.Kind == domain.KindSuite && !n.Failed() {
		fmt.Fprintf(b, "%s- **%s**\n", pad, escapeMarkdown(n.Name))
	} else {
		fmt.Fprintf(b, "%s- %s **%s**", pad, mark, escapeMarkdown(n.Name))
		if !n.Identity.IsZero() {
			fmt.Fprintf(b, " `%s`", n.Identity)
		}
		b.WriteString("\n")
	}
	if n.Failed() && n.Outcome.Cause != nil {
		fmt.Fprintf(b, "%s  - `%s`\n", pad, strings.ReplaceAll(firstLine(n.Outcome.Cause.Error()), "`", "'"))
	}
	for _, c := range n.Children() {
		writeItem(b, c, depth+1)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "[", `\[`, "]", `\]`, "<", "&lt;", ">", "&gt;",
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
