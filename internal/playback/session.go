package playback

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/simverse/rewind/internal/archive"
	"github.com/simverse/rewind/internal/tlog"
	"github.com/simverse/rewind/internal/world"
)

// StateLogName is the file a recording directory must contain.
const StateLogName = "state.tlog"

// Slot is the single active-session latch. The orchestrator creates
// one Slot and hands it to every session it constructs; whichever
// session starts first holds it until its Close. This keeps "one
// playback at a time" an explicitly-owned handle instead of a
// package-level global.
type Slot struct {
	active atomic.Bool
}

// NewSlot creates a free slot.
func NewSlot() *Slot {
	return &Slot{}
}

// Active reports whether a session currently holds the slot.
func (s *Slot) Active() bool {
	return s.active.Load()
}

func (s *Slot) acquire() bool {
	return s.active.CompareAndSwap(false, true)
}

func (s *Slot) release() {
	s.active.Store(false)
}

// Session owns one playback of one recording: the resolved log
// directory, the scratch extraction directory if the source was an
// archive, the open log store, and the per-session resolver state.
type Session struct {
	slot  *Slot
	token string

	logDir     string
	scratchDir string

	store    *tlog.Store
	resolver *Resolver
	player   *Player
	events   *Emitter

	// started marks that this instance is the one holding the slot.
	started bool
}

// NewSession creates an idle session bound to the given slot.
func NewSession(slot *Slot) *Session {
	return &Session{
		slot:   slot,
		token:  uuid.Must(uuid.NewV7()).String(),
		events: NewEmitter(),
	}
}

// Token returns the session's correlation token.
func (s *Session) Token() string { return s.token }

// LogDir returns the resolved recording directory. Empty until
// Configure succeeds.
func (s *Session) LogDir() string { return s.logDir }

// Events returns the session's event emitter. Subscribe before Start
// to observe the pause event.
func (s *Session) Events() *Emitter { return s.events }

// Player returns the replay engine. Nil until Start succeeds.
func (s *Session) Player() *Player { return s.player }

// Configure resolves the recording path. A directory is used as-is;
// a file must be a zip archive and is extracted into a fresh scratch
// directory next to it, with the log directory becoming the archive's
// base name inside the extraction.
func (s *Session) Configure(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return &ConfigError{
			Code:    ErrCodeExtractionFailed,
			Path:    path,
			Message: "cannot resolve recording path",
			Err:     err,
		}
	}

	info, err := os.Stat(abs)
	if err != nil {
		// Leave the path as a directory candidate; Start will report
		// the missing state log.
		s.logDir = abs
		return nil
	}

	if info.IsDir() {
		s.logDir = abs
		return nil
	}

	ext := filepath.Ext(abs)
	if !strings.EqualFold(ext, ".zip") {
		return &ConfigError{
			Code:    ErrCodeUnsupportedArchive,
			Path:    abs,
			Message: "recording file must be a zip archive",
		}
	}

	base := strings.TrimSuffix(abs, ext)
	dest := archive.UniqueDir(base + "_extracted")
	if err := archive.Extract(abs, dest); err != nil {
		return &ConfigError{
			Code:    ErrCodeExtractionFailed,
			Path:    abs,
			Message: "cannot extract recording",
			Err:     err,
		}
	}

	slog.Info("extracted recording",
		"session", s.token,
		"dest", dest)

	s.scratchDir = dest
	s.logDir = filepath.Join(dest, filepath.Base(base))
	return nil
}

// Start opens the state log, seeds the world from the first recorded
// delta, publishes the recording's time bounds, and takes the active
// slot. If another session already holds the slot this is a logged
// no-op that leaves the world untouched.
func (s *Session) Start(ctx context.Context, w *world.World) error {
	if !s.slot.acquire() {
		slog.Warn("a playback session is already active, not starting another",
			"session", s.token)
		return nil
	}
	// The slot must come free again on every failing path below.
	defer func() {
		if !s.started {
			s.slot.release()
		}
	}()

	statePath := filepath.Join(s.logDir, StateLogName)
	slog.Info("loading state log",
		"session", s.token,
		"path", statePath)

	if _, err := os.Stat(statePath); err != nil {
		return &StartError{
			Code:    ErrCodeMissingLogFile,
			Path:    statePath,
			Message: "state log does not exist, nothing to play",
			Err:     err,
		}
	}

	store, err := tlog.Open(statePath)
	if err != nil {
		// Degrade to an empty log: statistics read as zero and every
		// tick plays an empty window.
		slog.Error("failed to open state log, continuing with empty log",
			"session", s.token,
			"path", statePath,
			"error", err)
		store = nil
	}
	s.store = store

	s.seed(ctx, w)

	startTime, err := s.store.StartTime(ctx)
	if err != nil {
		slog.Warn("cannot read log start time", "error", err)
	}
	endTime, err := s.store.EndTime(ctx)
	if err != nil {
		slog.Warn("cannot read log end time", "error", err)
	}

	w.SetPlaybackStats(world.PlaybackStats{
		StartSec:  int64(startTime / time.Second),
		StartNsec: int32(startTime % time.Second),
		EndSec:    int64(endTime / time.Second),
		EndNsec:   int32(endTime % time.Second),
	})

	s.resolver = NewResolver(s.logDir)
	s.resolver.Apply(w)

	s.player = newPlayer(s.store, w, s.resolver, s.events, endTime)
	s.started = true

	slog.Info("playback started",
		"session", s.token,
		"start", startTime,
		"end", endTime)
	return nil
}

// seed applies the first delta record in the log to set the initial
// world state. Messages before it are initialization noise and are
// skipped; messages after it are left for the tick loop.
func (s *Session) seed(ctx context.Context, w *world.World) {
	msgs, err := s.store.QueryAll(ctx)
	if err != nil {
		slog.Warn("cannot read log for initial state", "error", err)
		return
	}
	if len(msgs) == 0 {
		slog.Warn("no messages found in state log", "session", s.token)
		return
	}

	for _, msg := range msgs {
		if !world.IsDeltaType(msg.Type) {
			continue
		}
		d, err := world.DecodeDelta(msg.Type, msg.Data)
		if err != nil {
			slog.Warn("skipping malformed initial delta record",
				"seq", msg.Seq,
				"error", err)
			continue
		}
		w.Apply(d)
		return
	}
}

// Close releases everything the session owns: the log store, the
// scratch extraction directory, and the active slot if this instance
// took it.
func (s *Session) Close() error {
	var firstErr error
	if err := s.store.Close(); err != nil {
		firstErr = err
	}

	if s.scratchDir != "" {
		if err := os.RemoveAll(s.scratchDir); err != nil && firstErr == nil {
			firstErr = err
		}
		s.scratchDir = ""
	}

	if s.started {
		s.slot.release()
		s.started = false
	}
	return firstErr
}
