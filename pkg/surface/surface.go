// Package surface defines output rendering for calculator results.
// Implementations handle different output targets: terminal, Markdown, JSON.
package surface

import (
	"fmt"
	"io"

	"github.com/rotisserie/eris"

	"github.com/rentscore/rentscore/pkg/scoring"
)

// Renderer produces formatted output from a Report.
type Renderer interface {
	// Render writes the formatted report to the writer.
	Render(w io.Writer, report *Report) error
}

// Tone drives coloring of the headline label.
type Tone int

const (
	ToneNeutral Tone = iota
	ToneGood
	ToneWarn
	ToneBad
)

// Detail is one labelled value shown under the headline.
type Detail struct {
	Label string
	Value string
}

// Section is a titled list of lines, e.g. talking points.
type Section struct {
	Title string
	Items []string
}

// Report is the presentation view of any calculator result.
type Report struct {
	Calculator string
	Title      string
	Score      float64
	Scale      string // printed after the score, e.g. "/100"
	Whole      bool   // print the score without decimals
	Label      string
	Tone       Tone
	Factors    []scoring.Factor
	Details    []Detail
	Sections   []Section
	// Raw is the original result, emitted verbatim by the JSON renderer.
	Raw any
}

// ScoreText formats the headline score with its scale.
func (r *Report) ScoreText() string {
	if r.Whole {
		return fmt.Sprintf("%.0f%s", r.Score, r.Scale)
	}
	return fmt.Sprintf("%.1f%s", r.Score, r.Scale)
}

func (r *Report) detail(label, format string, args ...any) {
	r.Details = append(r.Details, Detail{Label: label, Value: fmt.Sprintf(format, args...)})
}

func (r *Report) section(title string, items ...string) {
	var kept []string
	for _, it := range items {
		if it != "" {
			kept = append(kept, it)
		}
	}
	if len(kept) > 0 {
		r.Sections = append(r.Sections, Section{Title: title, Items: kept})
	}
}

// Formats accepted by For.
const (
	FormatText     = "text"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// For returns the renderer for a format name.
func For(format string) (Renderer, error) {
	switch format {
	case "", FormatText:
		return &TerminalRenderer{}, nil
	case FormatJSON:
		return &JSONRenderer{}, nil
	case FormatMarkdown, "md":
		return &MarkdownRenderer{}, nil
	default:
		return nil, eris.Errorf("unknown output format %q (want text, json or markdown)", format)
	}
}
