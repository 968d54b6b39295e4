package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/simverse/rewind/internal/config"
	"github.com/simverse/rewind/internal/playback"
	"github.com/simverse/rewind/internal/world"
)

// PlayOptions holds flags for the play command.
type PlayOptions struct {
	*RootOptions
	ConfigPath  string
	TickMillis  int
	Rate        float64
	SeekSeconds float64
}

// PlayResult summarizes a finished playback run.
type PlayResult struct {
	LogDir    string  `json:"log_dir"`
	Ticks     int     `json:"ticks"`
	FinalTime float64 `json:"final_time_seconds"`
	Entities  int     `json:"entities"`
	Digest    string  `json:"digest"`
}

// String renders the result for text output.
func (r PlayResult) String() string {
	return fmt.Sprintf("played %s: %d ticks to t=%.3fs, %d entities, digest %s",
		r.LogDir, r.Ticks, r.FinalTime, r.Entities, r.Digest)
}

// NewPlayCommand creates the play command.
func NewPlayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PlayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "play <recording>",
		Short: "Replay a recording tick by tick until the end of its log",
		Long: `Play back a recorded simulation. The recording is either a directory
containing state.tlog and its resource tree, or a zip archive of one
(extracted to a scratch directory for the duration of the run).

Examples:
  rewind play ./recordings/run1
  rewind play ./recordings/run1.zip --tick 50
  rewind play ./recordings/run1 --seek 2.5`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(opts, cmd, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "playback config file (YAML)")
	cmd.Flags().IntVar(&opts.TickMillis, "tick", 0, "simulation time per tick in milliseconds (overrides config)")
	cmd.Flags().Float64Var(&opts.Rate, "rate", 0, "playback rate multiplier (overrides config)")
	cmd.Flags().Float64Var(&opts.SeekSeconds, "seek", -1, "jump to this simulation time after start, then continue")

	return cmd
}

func runPlay(opts *PlayOptions, cmd *cobra.Command, path string) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if cmd.Flags().Changed("tick") {
		cfg.TickMillis = opts.TickMillis
	}
	if cmd.Flags().Changed("rate") {
		cfg.Rate = opts.Rate
	}
	seek, haveSeek := cfg.Seek()
	if cmd.Flags().Changed("seek") {
		seek = time.Duration(opts.SeekSeconds * float64(time.Second))
		haveSeek = true
	}

	ctx := cmd.Context()
	session := playback.NewSession(playback.NewSlot())
	defer session.Close()

	if err := session.Configure(path); err != nil {
		return WrapExitError(ExitCommandError, "failed to configure recording", err)
	}

	w := world.New()
	done := make(chan struct{})
	session.Events().OnPause(func(paused bool) {
		if paused {
			close(done)
		}
	})

	if err := session.Start(ctx, w); err != nil {
		return WrapExitError(ExitFailure, "failed to start playback", err)
	}
	player := session.Player()

	tick := cfg.Tick()
	interval := time.Duration(float64(tick) / cfg.Rate)

	var sim time.Duration
	if haveSeek {
		player.Step(ctx, playback.TickInfo{Sim: seek, Dt: seek - sim})
		sim = seek
	}

	ticks := 0
	for {
		select {
		case <-ctx.Done():
			return writePlayResult(opts, cmd, session, w, ticks, sim)
		case <-done:
			return writePlayResult(opts, cmd, session, w, ticks, sim)
		case <-time.After(interval):
		}

		sim += tick
		player.Step(ctx, playback.TickInfo{Sim: sim, Dt: tick})
		ticks++
	}
}

func writePlayResult(opts *PlayOptions, cmd *cobra.Command, session *playback.Session, w *world.World, ticks int, sim time.Duration) error {
	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return formatter.Success(PlayResult{
		LogDir:    session.LogDir(),
		Ticks:     ticks,
		FinalTime: sim.Seconds(),
		Entities:  w.Len(),
		Digest:    world.Digest(w),
	})
}
