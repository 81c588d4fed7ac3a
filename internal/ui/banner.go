package ui

import (
	"fmt"

	"github.com/fatih/color"
)

// PrintBanner displays the startup banner for a host program.
func PrintBanner(title, version string) {
	cyan := color.New(color.FgCyan, color.Bold)
	magenta := color.New(color.FgMagenta, color.Bold)
	dim := color.New(color.FgHiBlack)

	line := fmt.Sprintf(" %s  │  %s ", title, version)
	border := make([]rune, 0, len(line)+2)
	for range []rune(line) {
		border = append(border, '═')
	}

	fmt.Fprintln(Output)
	cyan.Fprintf(Output, "╔%s╗\n", string(border))
	cyan.Fprint(Output, "║")
	magenta.Fprintf(Output, " %s ", title)
	dim.Fprint(Output, " │ ")
	fmt.Fprintf(Output, " %s ", version)
	cyan.Fprintln(Output, "║")
	cyan.Fprintf(Output, "╚%s╝\n", string(border))
	fmt.Fprintln(Output)
}
