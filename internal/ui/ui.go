package ui

import (
	"fmt"
	"io"
	"strings"
)

func ShowHeader(w io.Writer, title string) {
	fmt.Fprintf(w, " %s\n", strings.Repeat("─", len(title)+2))
	fmt.Fprintf(w, " %s\n", title)
	fmt.Fprintf(w, " %s\n", strings.Repeat("─", len(title)+2))
}

func ShowField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-14s %s\n", label+":", value)
}

func ShowError(w io.Writer, msg string, err error) {
	if err != nil {
		fmt.Fprintf(w, " ✗ %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(w, " ✗ %s\n", msg)
	}
}

func ShowWarning(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, " ! %s\n", fmt.Sprintf(format, args...))
}

func ShowInfo(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintf(w, " ℹ %s\n", fmt.Sprintf(format, args...))
}
