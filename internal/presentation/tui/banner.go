package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Totem ASCII banner followed by an optional subtitle.
func PrintBanner(w io.Writer, subtitle string) {
	out := termenv.NewOutput(w)
	lines := []struct {
		text  string
		color string
	}{
		{"  _____ ___ _____ ___ __  __ ", "#f59e0b"},
		{" |_   _/ _ \\_   _| __|  \\/  |", "#f97316"},
		{"   | || (_) || | | _|| |\\/| |", "#ef4444"},
		{"   |_| \\___/ |_| |___|_|  |_|", "#db2777"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, out.String(l.text).Foreground(out.Color(l.color)))
	}
	if subtitle != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, out.String("  "+subtitle).Bold())
	}
	fmt.Fprintln(w)
}
