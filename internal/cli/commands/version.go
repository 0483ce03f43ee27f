package commands

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/leapgrid/internal/source"
)

// BuildInfo identifies a build. Empty or "unknown" fields are filled from
// the module build info when the binary carries it.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// VersionOptions holds options for the version command.
type VersionOptions struct {
	Short bool
}

// NewVersionCommand creates the version command.
func NewVersionCommand(build BuildInfo) *cobra.Command {
	opts := &VersionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long: `Display the leapgrid version, the commit and Go release it was built
from, and the source formats this build reads.

Every front end (view, repl, render and serve) drives the same search,
sort, paging and selection pipeline over those sources.`,
		Example: `  leapgrid version
  leapgrid version --short`,
		Args: cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			writeVersion(cmd.OutOrStdout(), withModuleInfo(build), opts.Short)
		},
	}

	cmd.Flags().BoolVar(&opts.Short, "short", false, "Print only the version number")
	return cmd
}

func writeVersion(w io.Writer, build BuildInfo, short bool) {
	if short {
		_, _ = fmt.Fprintln(w, build.Version)
		return
	}

	formats := source.Formats()
	names := make([]string, len(formats))
	for i, f := range formats {
		names[i] = string(f)
	}

	_, _ = fmt.Fprintf(w, "leapgrid v%s\n", build.Version)
	_, _ = fmt.Fprintln(w, "Searchable, sortable, paginated grids for the terminal and the browser")
	_, _ = fmt.Fprintf(w, "  commit:  %s\n", build.Commit)
	_, _ = fmt.Fprintf(w, "  built:   %s\n", build.Date)
	_, _ = fmt.Fprintf(w, "  sources: %s\n", strings.Join(names, ", "))
}

// withModuleInfo fills unknown fields from the vcs stamps Go records in
// binaries built inside a repository.
func withModuleInfo(build BuildInfo) BuildInfo {
	if known(build.Commit) && known(build.Date) {
		return build
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return fillUnknown(build)
	}

	var modified bool
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			if !known(build.Commit) {
				build.Commit = s.Value[:min(12, len(s.Value))]
			}
		case "vcs.time":
			if !known(build.Date) {
				build.Date = s.Value
			}
		case "vcs.modified":
			modified = s.Value == "true"
		}
	}
	if modified && known(build.Commit) {
		build.Commit += " (modified)"
	}
	return fillUnknown(build)
}

func known(s string) bool { return s != "" && s != "unknown" }

func fillUnknown(build BuildInfo) BuildInfo {
	if !known(build.Commit) {
		build.Commit = "unknown"
	}
	if !known(build.Date) {
		build.Date = "unknown"
	}
	return build
}
