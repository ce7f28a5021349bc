package utils

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var Success = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
var Fail = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
var Warning = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff9300")) // yellow
var Info = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))         // blue
var Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))       // gray
var Gray = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))          // gray
var Cyan = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
var Default = lipgloss.NewStyle()

var WarningWithBackground = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#000000")). // black text for contrast
	Background(lipgloss.Color("#ff9300")).
	Padding(0, 1)

var ErrorWithBackground = lipgloss.NewStyle().
	Foreground(lipgloss.Color("#000000")). // black text for contrast
	Background(lipgloss.Color("196")).
	Padding(0, 1)

var (
	progressMu  sync.Mutex
	progressOut io.Writer = os.Stderr
)

// SetProgressOutput redirects LogWithColor. It returns the previous writer.
func SetProgressOutput(w io.Writer) io.Writer {
	progressMu.Lock()
	defer progressMu.Unlock()
	prev := progressOut
	progressOut = w
	return prev
}

// LogWithColor prints a progress line such as "✓ Bundling completed in 1s".
func LogWithColor(color lipgloss.Style, text string) {
	progressMu.Lock()
	defer progressMu.Unlock()
	fmt.Fprintln(progressOut, color.Render(text))
}
