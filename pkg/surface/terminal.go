package surface

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// TerminalRenderer renders a Report as colored terminal output.
type TerminalRenderer struct{}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
)

func toneColor(t Tone) string {
	if noColor() {
		return ""
	}
	switch t {
	case ToneGood:
		return colorGreen
	case ToneWarn:
		return colorYellow
	case ToneBad:
		return colorRed
	default:
		return ""
	}
}

func noColor() bool {
	_, ok := os.LookupEnv("NO_COLOR")
	return ok
}

func bold(s string) string {
	if noColor() {
		return s
	}
	return colorBold + s + colorReset
}

func dim(s string) string {
	if noColor() {
		return s
	}
	return colorDim + s + colorReset
}

func colored(s, color string) string {
	if noColor() || color == "" {
		return s
	}
	return color + s + colorReset
}

func (r *TerminalRenderer) Render(w io.Writer, report *Report) error {
	// Header
	header := report.Title + ": " + report.ScoreText()
	if report.Label != "" {
		header += " " + colored("["+report.Label+"]", toneColor(report.Tone))
	}
	fmt.Fprintf(w, "%s\n\n", bold(header))

	if len(report.Details) > 0 {
		width := 0
		for _, d := range report.Details {
			width = max(width, len(d.Label))
		}
		for _, d := range report.Details {
			fmt.Fprintf(w, "  %-*s  %s\n", width+1, d.Label+":", d.Value)
		}
		fmt.Fprintln(w)
	}

	if len(report.Factors) > 0 {
		fmt.Fprintln(w, "Factors:")
		for _, f := range report.Factors {
			fmt.Fprintf(w, "  %5.1f x %.2f = %5.1f  %s\n", f.Value, f.Weight, f.Contribution, bold(f.Name))
			if f.Description != "" {
				fmt.Fprintf(w, "                        %s\n", dim(f.Description))
			}
		}
		fmt.Fprintln(w)
	}

	for _, s := range report.Sections {
		fmt.Fprintf(w, "%s:\n", s.Title)
		for _, item := range s.Items {
			lines := wrapText(item, 70)
			for i, line := range lines {
				prefix := "    "
				if i == 0 {
					prefix = "  • "
				}
				fmt.Fprintf(w, "%s%s\n", prefix, line)
			}
		}
		fmt.Fprintln(w)
	}

	return nil
}

// wrapText wraps a string at the given width, returning lines.
func wrapText(s string, width int) []string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return nil
	}

	var lines []string
	current := words[0]

	for _, word := range words[1:] {
		if len(current)+1+len(word) > width {
			lines = append(lines, current)
			current = word
		} else {
			current += " " + word
		}
	}
	lines = append(lines, current)
	return lines
}
