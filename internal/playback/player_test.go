package playback

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/simverse/rewind/internal/testutil"
	"github.com/simverse/rewind/internal/tlog"
	"github.com/simverse/rewind/internal/world"
)

// scenarioDeltas is the reference recording: a log from 0s to 10s.
//
//	t=0  entity 7 created with a mesh geometry, entity 8 created
//	t=4  entity 9 created
//	t=5  entity 7 removed
//	t=10 entity 8 pose update (also pins the log end time)
func scenarioDeltas() []testutil.TimedDelta {
	return []testutil.TimedDelta{
		{Time: 0, Delta: testutil.MapDelta(
			testutil.WithMesh(testutil.Created(7, "cart"), "file:///abs/mesh.dae"),
			testutil.Created(8, "ground"),
		)},
		{Time: 4 * time.Second, Delta: testutil.MapDelta(
			testutil.Created(9, "latecomer"),
		)},
		{Time: 5 * time.Second, Delta: testutil.MapDelta(
			testutil.Removed(7),
		)},
		{Time: 10 * time.Second, Delta: testutil.MapDelta(
			testutil.WithPose(testutil.Created(8, "ground"), 0, 0, 1),
		)},
	}
}

// startSession builds a recording from deltas and starts a fresh
// session over it.
func startSession(t *testing.T, deltas []testutil.TimedDelta) (*Session, *world.World) {
	t.Helper()
	ctx := context.Background()

	dir := filepath.Join(t.TempDir(), "recording")
	require.NoError(t, testutil.WriteRecordingDir(ctx, dir, deltas))

	session := NewSession(NewSlot())
	t.Cleanup(func() { session.Close() })
	require.NoError(t, session.Configure(dir))

	w := world.New()
	require.NoError(t, session.Start(ctx, w))
	require.NotNil(t, session.Player())
	return session, w
}

func TestStep_ZeroDtIsNoOp(t *testing.T) {
	session, w := startSession(t, scenarioDeltas())
	before := world.Digest(w)

	session.Player().Step(context.Background(), TickInfo{Sim: 3 * time.Second, Dt: 0})
	assert.Equal(t, before, world.Digest(w))
}

func TestStep_ForwardPlay(t *testing.T) {
	ctx := context.Background()
	session, w := startSession(t, scenarioDeltas())
	player := session.Player()

	// Seed state: first delta applied during Start.
	assert.True(t, w.Has(7))
	assert.True(t, w.Has(8))
	assert.False(t, w.Has(9))

	tick := time.Second
	for sim := tick; sim <= 10*time.Second; sim += tick {
		player.Step(ctx, TickInfo{Sim: sim, Dt: tick})

		switch {
		case sim < 4*time.Second:
			assert.True(t, w.Has(7), "entity 7 present before t=5 (sim=%v)", sim)
			assert.False(t, w.Has(9))
		case sim < 5*time.Second:
			assert.True(t, w.Has(9), "entity 9 present after t=4 (sim=%v)", sim)
		default:
			assert.False(t, w.Has(7), "entity 7 absent after t=5 (sim=%v)", sim)
		}
	}

	assert.True(t, w.Has(8))
	assert.True(t, w.Has(9))
	p, _ := w.Pose(8)
	assert.Equal(t, 1.0, p.Z)
}

func TestStep_TickSplitMatchesSingleWindow(t *testing.T) {
	ctx := context.Background()

	ticked, tw := startSession(t, scenarioDeltas())
	player := ticked.Player()
	for sim := time.Second; sim <= 10*time.Second; sim += time.Second {
		player.Step(ctx, TickInfo{Sim: sim, Dt: time.Second})
	}

	whole, ww := startSession(t, scenarioDeltas())
	whole.Player().Step(ctx, TickInfo{Sim: 10 * time.Second, Dt: 10 * time.Second})

	assert.Equal(t, world.Digest(ww), world.Digest(tw),
		"tick-by-tick replay and one whole-range window reach the same state")
}

func TestStep_BackwardJump(t *testing.T) {
	ctx := context.Background()
	session, w := startSession(t, scenarioDeltas())
	player := session.Player()

	// Play to the end: 7 removed, 8 and 9 alive.
	player.Step(ctx, TickInfo{Sim: 10 * time.Second, Dt: 10 * time.Second})
	require.False(t, w.Has(7))
	require.True(t, w.Has(9))

	// Jump back to t=2: entity 7 must come back, entity 9 (created at
	// t=4) must disappear.
	player.Step(ctx, TickInfo{Sim: 2 * time.Second, Dt: 2*time.Second - 10*time.Second})
	assert.True(t, w.Has(7), "removed entity is re-created by replay from origin")
	assert.True(t, w.Has(8))
	assert.False(t, w.Has(9), "entity not yet created at jump target is removed")
}

func TestStep_BackwardJumpMatchesForwardReplay(t *testing.T) {
	ctx := context.Background()

	jumped, jw := startSession(t, scenarioDeltas())
	jumped.Player().Step(ctx, TickInfo{Sim: 10 * time.Second, Dt: 10 * time.Second})
	jumped.Player().Step(ctx, TickInfo{Sim: 6 * time.Second, Dt: -4 * time.Second})

	forward, fw := startSession(t, scenarioDeltas())
	forward.Player().Step(ctx, TickInfo{Sim: 6 * time.Second, Dt: 6 * time.Second})

	assert.Equal(t, world.Digest(fw), world.Digest(jw),
		"state after a backward jump equals forward replay to the same time")
}

func TestStep_EndOfLogPauseLatch(t *testing.T) {
	ctx := context.Background()
	session, _ := startSession(t, scenarioDeltas())
	player := session.Player()

	var pauses int
	session.Events().OnPause(func(paused bool) {
		if paused {
			pauses++
		}
	})

	player.Step(ctx, TickInfo{Sim: 10 * time.Second, Dt: 10 * time.Second})
	assert.Equal(t, 1, pauses, "pause fires on reaching the end")

	player.Step(ctx, TickInfo{Sim: 11 * time.Second, Dt: time.Second})
	player.Step(ctx, TickInfo{Sim: 12 * time.Second, Dt: time.Second})
	assert.Equal(t, 1, pauses, "pause does not repeat while past the end")

	// Jump below the end and cross again.
	player.Step(ctx, TickInfo{Sim: 2 * time.Second, Dt: -10 * time.Second})
	player.Step(ctx, TickInfo{Sim: 10 * time.Second, Dt: 8 * time.Second})
	assert.Equal(t, 2, pauses, "pause fires once per crossing")
}

func TestStep_SkipsNoiseAndMalformedRecords(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "recording")

	// Hand-build a log with a description message, an unknown type,
	// a malformed delta, and one good delta.
	require.NoError(t, testutil.WriteRecordingDir(ctx, dir, nil))
	store, err := tlog.Open(filepath.Join(dir, "state.tlog"))
	require.NoError(t, err)
	w := tlog.NewWriter(store)
	require.NoError(t, w.Append(ctx, "/stats", "rewind.msgs.Clock", time.Second, []byte("tick")))
	require.NoError(t, w.Append(ctx, testutil.StateTopic, world.MsgDeltaMap, 2*time.Second, []byte("{broken")))
	goodType, good, err := world.EncodeDelta(testutil.MapDelta(testutil.Created(1, "survivor")))
	require.NoError(t, err)
	require.NoError(t, w.Append(ctx, testutil.StateTopic, goodType, 3*time.Second, good))
	require.NoError(t, store.Close())

	session := NewSession(NewSlot())
	defer session.Close()
	require.NoError(t, session.Configure(dir))

	ww := world.New()
	require.NoError(t, session.Start(ctx, ww))

	session.Player().Step(ctx, TickInfo{Sim: 3 * time.Second, Dt: 3 * time.Second})
	assert.True(t, ww.Has(1), "good record applies despite noise and a malformed record before it")
}

func TestStep_NilStorePlaysEmptyWindows(t *testing.T) {
	w := world.New()
	w.SetName(1, "pre-existing")

	player := newPlayer(nil, w, NewResolver(t.TempDir()), NewEmitter(), 0)
	player.Step(context.Background(), TickInfo{Sim: time.Second, Dt: time.Second})

	assert.True(t, w.Has(1), "empty log leaves the world alone")
}
