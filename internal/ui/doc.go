// Package ui renders terminal status lines with lipgloss.
//
// [Palette] prefixes outcome lines with ✓, ⚠ or ✗ and colors them. [FormatProgress] turns a
// [tasks.ProgressUpdate] into a line for the backup command and [FormatRun] renders a history entry.
// Colors degrade to plain text when the output is not a terminal.
package ui
