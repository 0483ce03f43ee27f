// Package render presents grid views as text, markdown, CSV, HTML or JSON,
// in dense (table) or card layouts.
package render

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownFormat is returned for output formats or layouts that do not
// exist.
var ErrUnknownFormat = errors.New("unknown output format")

// Mode is an output format.
type Mode string

// Output modes. ModeAuto picks text on a terminal and markdown otherwise.
const (
	ModeAuto     Mode = "auto"
	ModeText     Mode = "text"
	ModeMarkdown Mode = "markdown"
	ModeJSON     Mode = "json"
	ModeCSV      Mode = "csv"
	ModeHTML     Mode = "html"
)

// ParseMode accepts a mode name or one of its aliases. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return ModeAuto, nil
	case "text", "table":
		return ModeText, nil
	case "markdown", "md":
		return ModeMarkdown, nil
	case "json":
		return ModeJSON, nil
	case "csv":
		return ModeCSV, nil
	case "html":
		return ModeHTML, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Layout chooses between one row per line and one card per row.
type Layout string

// Layouts.
const (
	LayoutDense Layout = "dense"
	LayoutCards Layout = "cards"
)

// ParseLayout accepts "dense" (or "table") and "cards" (or "stacked").
// Empty means dense.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "dense", "table":
		return LayoutDense, nil
	case "cards", "card", "stacked":
		return LayoutCards, nil
	}
	return "", fmt.Errorf("%w: layout %q", ErrUnknownFormat, s)
}
