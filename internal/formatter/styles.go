package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/tunebridge/tmx/internal/matching"
	"github.com/tunebridge/tmx/internal/shared"
)

var styles = NewPalette("#7D56F4", "#04B575", "#FF0000", "#FFA500", "#626262")

// struct Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	title lipgloss.Style
	ok    lipgloss.Style
	err   lipgloss.Style
	warn  lipgloss.Style
	help  lipgloss.Style
}

func NewPalette(t, s, e, w, h string) *Palette {
	return &Palette{
		title: NewBold(t).MarginBottom(1),
		ok:    NewBold(s),
		err:   NewBold(e),
		warn:  NewStyle(w),
		help:  NewEm(h),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}

// stateStyle picks the style matching a classification.
func stateStyle(state matching.State) lipgloss.Style {
	switch state {
	case matching.StateMatched:
		return styles.ok
	case matching.StateAmbiguous:
		return styles.warn
	default:
		return styles.err
	}
}

// RenderResult renders one match result as a styled terminal report: the
// classification, the best candidate when present, and every scored
// alternative with its breakdown.
func RenderResult(result matching.Result) string {
	var b strings.Builder

	source := result.Source()
	b.WriteString(styles.title.Render(fmt.Sprintf("%s — %s", strings.Join(source.Artists, ", "), source.Title)))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("State: %s\n", stateStyle(result.State()).Render(string(result.State()))))

	if best, ok := result.Best(); ok {
		b.WriteString(fmt.Sprintf("Best:  %s (%s:%s) score %.2f\n",
			best.Track.Title, best.Track.Service, best.Track.ServiceID, best.Score))
		if len(best.Reasons) > 0 {
			parts := make([]string, len(best.Reasons))
			for i, r := range best.Reasons {
				parts[i] = string(r)
			}
			b.WriteString(styles.help.Render("Reasons: " + strings.Join(parts, ", ")))
			b.WriteString("\n")
		}
	}

	alternatives := result.Alternatives()
	if len(alternatives) == 0 {
		b.WriteString(styles.help.Render("No candidates scored."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString("\nAlternatives:\n")
	for i, alt := range alternatives {
		b.WriteString(fmt.Sprintf("  %d. %.2f  %s — %s [%s]\n",
			i+1, alt.Score, strings.Join(alt.Track.Artists, ", "), alt.Track.Title,
			shared.FormatDurationMs(alt.Track.DurationMs)))
		bd := alt.Breakdown
		b.WriteString(styles.help.Render(fmt.Sprintf(
			"     title %.2f  artist %.2f  album %.2f  duration %.2f  explicit %.2f  version %.2f",
			bd.Title, bd.Artist, bd.Album, bd.Duration, bd.Explicit, bd.Version)))
		b.WriteString("\n")
	}

	return b.String()
}
