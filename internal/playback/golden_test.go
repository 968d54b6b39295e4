package playback

import (
	"bytes"
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// TestReplayTimeline_Golden drives the reference recording through a
// scripted sequence of ticks, including a backward jump, and compares
// the observable timeline against a golden file.
//
// To regenerate: go test ./internal/playback -run Golden -update
func TestReplayTimeline_Golden(t *testing.T) {
	ctx := context.Background()
	session, w := startSession(t, scenarioDeltas())
	player := session.Player()

	paused := false
	session.Events().OnPause(func(p bool) { paused = p })

	var buf bytes.Buffer
	record := func(sim time.Duration) {
		fmt.Fprintf(&buf, "t=%.3f entities=[", sim.Seconds())
		for i, e := range w.Entities() {
			if i > 0 {
				buf.WriteByte(' ')
			}
			name, _ := w.Name(e)
			fmt.Fprintf(&buf, "%d:%s", e, name)
		}
		buf.WriteByte(']')
		if paused {
			buf.WriteString(" pause")
		}
		buf.WriteByte('\n')
	}

	tick := time.Second
	var sim time.Duration
	for sim = tick; sim <= 10*time.Second; sim += tick {
		player.Step(ctx, TickInfo{Sim: sim, Dt: tick})
		record(sim)
	}

	// Backward jump to t=2.
	prev := sim - tick
	paused = false
	player.Step(ctx, TickInfo{Sim: 2 * time.Second, Dt: 2*time.Second - prev})
	record(2 * time.Second)

	require.NotZero(t, buf.Len())
	g := goldie.New(t)
	g.Assert(t, "replay_timeline", buf.Bytes())
}
