package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/moffa90/go-funkboot/host"
)

// renderBar draws percentage as width cells followed by the value.
func renderBar(width int, percentage float64) string {
	filled := int(float64(width) * percentage / 100.0)
	filled = max(0, min(filled, width))
	return fmt.Sprintf("[%s%s] %.1f%%",
		strings.Repeat("█", filled),
		strings.Repeat("░", width-filled),
		percentage,
	)
}

// progressPrinter returns a host.ProgressCallback that redraws one line
// per update, with a bar of width cells, and starts a new line when the
// phase changes.
func progressPrinter(w io.Writer, width int) host.ProgressCallback {
	var lastPhase string
	return func(p host.Progress) {
		if p.Phase != lastPhase {
			if lastPhase != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "phase: %s\n", strings.ToUpper(p.Phase))
			lastPhase = p.Phase
		}

		// Clear line and move cursor to beginning
		fmt.Fprint(w, "\r\033[K")
		fmt.Fprintf(w, "%s | Page %d/%d | %d bytes | %d retransmissions | %s",
			renderBar(width, p.Percentage),
			p.CurrentPage,
			p.TotalPages,
			p.BytesWritten,
			p.Retransmissions,
			p.ElapsedTime.Round(time.Millisecond),
		)
		if p.Phase == host.PhaseComplete {
			fmt.Fprintln(w)
		}
	}
}
