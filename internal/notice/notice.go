// Package notice renders the "update available" message.
package notice

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RuleWidth is the width of the horizontal rule around the notice. It does
// not depend on the package name.
const RuleWidth = 60

// DefaultInstallHint is used when Formatter.InstallHint is empty.
// "{name}" is replaced by the package name.
const DefaultInstallHint = "cargo install {name}"

// DefaultRegistryURL is the human-facing registry site.
const DefaultRegistryURL = "https://crates.io"

var (
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("1"))
	latestStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("2"))
	hintStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("4"))
	urlStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
)

// Formatter builds notices. The zero value produces plain text against
// crates.io with a cargo install hint.
type Formatter struct {
	RegistryURL string
	InstallHint string
	Styled      bool
}

// Format returns the notice for name moving from current to latest.
func (f Formatter) Format(name, current, latest string) string {
	registryURL := strings.TrimRight(f.RegistryURL, "/")
	if registryURL == "" {
		registryURL = DefaultRegistryURL
	}
	hint := f.InstallHint
	if hint == "" {
		hint = DefaultInstallHint
	}
	hint = strings.ReplaceAll(hint, "{name}", name)

	paint := func(s lipgloss.Style, text string) string {
		if !f.Styled {
			return text
		}
		return s.Render(text)
	}

	line1 := fmt.Sprintf("A new version of %s is available! %s → %s",
		paint(nameStyle, name), paint(currentStyle, current), paint(latestStyle, latest))
	line2 := fmt.Sprintf("Use `%s` to install version %s",
		paint(hintStyle, hint), paint(latestStyle, latest))
	line3 := fmt.Sprintf("Check %s for more details",
		paint(urlStyle, registryURL+"/crates/"+name))

	rule := strings.Repeat("─", RuleWidth)

	var b strings.Builder
	b.WriteString("\n" + rule + "\n\n")
	for _, line := range []string{line1, line2, line3, ""} {
		b.WriteString("    " + line + "\n")
	}
	b.WriteString(rule + "\n")
	return b.String()
}

// Print writes the notice to w.
func (f Formatter) Print(w io.Writer, name, current, latest string) error {
	_, err := io.WriteString(w, f.Format(name, current, latest))
	return err
}
