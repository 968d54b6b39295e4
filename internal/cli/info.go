package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/simverse/rewind/internal/playback"
	"github.com/simverse/rewind/internal/tlog"
)

// InfoOptions holds flags for the info command.
type InfoOptions struct {
	*RootOptions
}

// InfoResult holds the recording summary.
type InfoResult struct {
	Path      string           `json:"path"`
	StartSecs float64          `json:"start_seconds"`
	EndSecs   float64          `json:"end_seconds"`
	Messages  int64            `json:"messages"`
	ByType    map[string]int64 `json:"by_type"`
}

// String renders the summary for text output.
func (r InfoResult) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", r.Path)
	fmt.Fprintf(&b, "  start:    %.3fs\n", r.StartSecs)
	fmt.Fprintf(&b, "  end:      %.3fs\n", r.EndSecs)
	fmt.Fprintf(&b, "  messages: %d", r.Messages)

	types := make([]string, 0, len(r.ByType))
	for t := range r.ByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&b, "\n    %-32s %d", t, r.ByType[t])
	}
	return b.String()
}

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &InfoOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "info <recording>",
		Short: "Show a recording's time bounds and message counts",
		Long: `Inspect a recording without playing it. The argument is a recording
directory (containing state.tlog) or a .tlog file directly.

Examples:
  rewind info ./recordings/run1
  rewind info ./recordings/run1/state.tlog --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(opts, cmd, args[0])
		},
	}

	return cmd
}

func runInfo(opts *InfoOptions, cmd *cobra.Command, path string) error {
	logPath := path
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		logPath = filepath.Join(path, playback.StateLogName)
	}

	store, err := tlog.Open(logPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open state log", err)
	}
	defer store.Close()

	stats, err := store.Stats(cmd.Context())
	if err != nil {
		return WrapExitError(ExitFailure, "failed to read log statistics", err)
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(InfoResult{
		Path:      logPath,
		StartSecs: stats.Start.Seconds(),
		EndSecs:   stats.End.Seconds(),
		Messages:  stats.Messages,
		ByType:    stats.ByType,
	})
}
