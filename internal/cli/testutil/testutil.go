// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/leapgrid/internal/cli/config"
	"github.com/leapstack-labs/leapgrid/internal/render"
	logtest "github.com/leapstack-labs/leapgrid/internal/testutil"
)

// MembersCSV is a small members dataset.
const MembersCSV = `id,name,role,score
1,Ada Lovelace,admin,0.91
2,Grace Hopper,member,0.87
3,Linus Torvalds,member,0.62
4,Barbara Liskov,viewer,0.78
5,Ken Thompson,viewer,0.55
`

// WriteSource writes content to name inside a fresh temporary directory
// and returns its path.
func WriteSource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// WriteMembersCSV writes MembersCSV to a temporary file.
func WriteMembersCSV(t *testing.T) string {
	t.Helper()
	return WriteSource(t, "members.csv", MembersCSV)
}

// Context returns a context carrying cfg and a test logger, the way the
// root command prepares it.
func Context(t *testing.T, cfg *config.Config) context.Context {
	t.Helper()
	ctx := config.WithConfig(context.Background(), cfg)
	return config.WithLogger(ctx, logtest.NewTestLogger(t))
}

// DefaultConfig returns the configuration LoadConfig yields without a file,
// env vars or flags, pointed at source.
func DefaultConfig(source string) *config.Config {
	return &config.Config{
		Source:     source,
		PageSize:   config.DefaultPageSize,
		DebounceMS: 0,
		Output:     "markdown",
		View:       config.DefaultView,
		UI:         config.UIConfig{Port: config.DefaultPort, Watch: true},
	}
}

// TestRenderer wraps a Renderer for testing with captured output buffers.
type TestRenderer struct {
	*render.Renderer
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
}

// NewTestRenderer creates a new test renderer with the specified mode and TTY state.
// Output is captured in buffers for inspection.
func NewTestRenderer(mode render.Mode, isTTY bool) *TestRenderer {
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	return &TestRenderer{
		Renderer: render.NewRendererWithTTY(out, errOut, mode, isTTY),
		Out:      out,
		ErrOut:   errOut,
	}
}

// NewTestRendererMarkdown creates a new test renderer in markdown mode.
func NewTestRendererMarkdown() *TestRenderer {
	return NewTestRenderer(render.ModeMarkdown, false)
}

// Output returns the stdout output as a string.
func (tr *TestRenderer) Output() string {
	return tr.Out.String()
}

// ErrorOutput returns the stderr output as a string.
func (tr *TestRenderer) ErrorOutput() string {
	return tr.ErrOut.String()
}

// Reset clears both output buffers.
func (tr *TestRenderer) Reset() {
	tr.Out.Reset()
	tr.ErrOut.Reset()
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
