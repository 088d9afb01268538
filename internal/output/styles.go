package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Styles holds the lipgloss styles used for message prefixes
type Styles struct {
	Success lipgloss.Style
	Warn    lipgloss.Style
	Error   lipgloss.Style
	Tip     lipgloss.Style
	Hash    lipgloss.Style
}

// NewStyles returns styles rendered for w.
// Colour is dropped when w is not a terminal or NO_COLOR is set.
func NewStyles(w io.Writer) Styles {
	renderer := lipgloss.NewRenderer(w)
	if !ColorEnabled(w) {
		renderer.SetColorProfile(termenv.Ascii)
	}

	return Styles{
		Success: renderer.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		Warn:    renderer.NewStyle().Foreground(lipgloss.Color("3")).Bold(true),
		Error:   renderer.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Tip:     renderer.NewStyle().Foreground(lipgloss.Color("6")),
		Hash:    renderer.NewStyle().Foreground(lipgloss.Color("#f5c800")),
	}
}

// ColorEnabled reports whether coloured output should be written to w
func ColorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// ShortHash renders the abbreviated form of a commit hash
func (s Styles) ShortHash(hash string) string {
	if len(hash) > 7 {
		hash = hash[:7]
	}
	return s.Hash.Render(hash)
}
