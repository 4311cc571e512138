package shared

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/term"
)

// IsInteractive reports whether f is attached to a terminal.
func IsInteractive(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// PromptFilename asks for an output filename until a non-blank line is read.
//
// Returns [ErrMissingArgument] when the input ends before a name is entered.
func PromptFilename(in io.Reader, out io.Writer) (string, error) {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "Enter a file name (e.g. playlists.txt): ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return "", fmt.Errorf("failed to read filename: %w", err)
			}
			return "", fmt.Errorf("%w: output file", ErrMissingArgument)
		}
		if name := strings.TrimSpace(scanner.Text()); name != "" {
			return name, nil
		}
	}
}

// FormatFromPath returns the lower-cased file extension without its dot, or "" when there is none.
func FormatFromPath(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
