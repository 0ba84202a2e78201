package cmd

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/jrsteele09/go-enrollment-client/redirect"
)

var toastStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Amber).
	Padding(0, 1)

var (
	navStyle   = lipgloss.NewStyle().Foreground(Gray)
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(Blue)
)

// terminal is the CLI's stand-in for a UI shell. Navigating prints where the
// user would be taken; toasts are drawn as a bordered box.
type terminal struct {
	mu  sync.Mutex
	out io.Writer
}

var (
	_ redirect.Navigator = (*terminal)(nil)
	_ redirect.Toaster   = (*terminal)(nil)
)

func newTerminal(out io.Writer) *terminal {
	return &terminal{out: out}
}

func (t *terminal) GoTo(path string, _ redirect.NavigateOptions) {
	t.println(navStyle.Render("→ " + path))
}

func (t *terminal) Toast(message string) {
	t.println(toastStyle.Render(message))
}

func (t *terminal) println(s string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, _ = fmt.Fprintln(t.out, s)
}
