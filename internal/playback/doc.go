// Package playback reconstructs world state from a recorded log of
// delta records and drives it forward or backward in time.
//
// A Session owns one recording: it resolves the log directory
// (extracting a zip archive if needed), opens the state.tlog store,
// seeds the world from the first recorded delta, and publishes the
// recording's time bounds. At most one session may hold the active
// Slot at a time; a second Start is a logged no-op.
//
// The Player applies time-windowed batches of delta records on every
// tick. Records are relative changes, not snapshots, so a backward
// jump replays the whole log from the origin while tracking which
// currently-live entities are never re-confirmed; those are removed
// at the end of the jump.
//
// The Resolver rewrites mesh and material file references to point
// into the recording's resource bundle, and permanently disables
// itself the first time a rewritten path turns out not to exist
// (recordings made before resources were bundled).
package playback
