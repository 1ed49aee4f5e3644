package surface

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownRenderer produces a Markdown summary suitable for tickets or
// chat messages.
type MarkdownRenderer struct{}

func (r *MarkdownRenderer) Render(w io.Writer, report *Report) error {
	_, err := io.WriteString(w, buildMarkdown(report))
	return err
}

func toneIcon(t Tone) string {
	switch t {
	case ToneGood:
		return ":green_circle:"
	case ToneWarn:
		return ":orange_circle:"
	case ToneBad:
		return ":red_circle:"
	default:
		return ":blue_circle:"
	}
}

func buildMarkdown(report *Report) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "## %s %s: %s", toneIcon(report.Tone), report.Title, report.ScoreText())
	if report.Label != "" {
		fmt.Fprintf(&sb, " (%s)", report.Label)
	}
	sb.WriteString("\n\n")

	if len(report.Details) > 0 {
		sb.WriteString("| | |\n|---|---|\n")
		for _, d := range report.Details {
			fmt.Fprintf(&sb, "| %s | %s |\n", d.Label, escapeCell(d.Value))
		}
		sb.WriteString("\n")
	}

	if len(report.Factors) > 0 {
		sb.WriteString("### Factors\n\n")
		sb.WriteString("| Factor | Value | Weight | Contribution |\n|--------|-------|--------|--------------|\n")
		for _, f := range report.Factors {
			fmt.Fprintf(&sb, "| %s | %.1f | %.0f%% | %.1f |\n", f.Name, f.Value, f.Weight*100, f.Contribution)
		}
		sb.WriteString("\n")
	}

	for _, s := range report.Sections {
		fmt.Fprintf(&sb, "### %s\n\n", s.Title)
		if len(s.Items) == 1 {
			sb.WriteString(s.Items[0] + "\n\n")
			continue
		}
		for _, item := range s.Items {
			fmt.Fprintf(&sb, "- %s\n", item)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
