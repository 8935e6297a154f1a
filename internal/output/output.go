package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"updatenotifier/internal/ui"
)

// JSONMode controls whether output is JSON or human-readable
var JSONMode bool

// Result represents a generic result for JSON output
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Print outputs data to w. In JSON mode, marshals to JSON. Otherwise calls the textFn.
func Print(w io.Writer, data interface{}, textFn func()) error {
	if JSONMode {
		out, err := json.MarshalIndent(Result{Success: true, Data: data}, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(out))
		return err
	}
	textFn()
	return nil
}

// PrintError outputs an error and exits. In JSON mode, marshals error to JSON on stdout.
func PrintError(err error) {
	if JSONMode {
		out, _ := json.MarshalIndent(Result{Success: false, Error: err.Error()}, "", "  ")
		fmt.Println(string(out))
		os.Exit(1)
	}
	ui.ShowError(os.Stderr, "Error", err)
	os.Exit(1)
}
