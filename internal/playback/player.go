package playback

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/simverse/rewind/internal/tlog"
	"github.com/simverse/rewind/internal/world"
)

// TickInfo describes one simulation step.
type TickInfo struct {
	// Sim is the current simulation time.
	Sim time.Duration

	// Dt is the time elapsed since the previous tick. Zero means a
	// paused tick; negative means the host clock jumped backward.
	Dt time.Duration
}

// Player applies time-windowed batches of recorded delta records to
// the world on every tick.
type Player struct {
	store     *tlog.Store
	world     *world.World
	resolver  *Resolver
	debouncer *Debouncer
	events    *Emitter

	endTime time.Duration

	// endAnnounced latches the end-of-log pause event so it fires
	// once per crossing, not once per tick past the end.
	endAnnounced bool
}

func newPlayer(store *tlog.Store, w *world.World, r *Resolver, events *Emitter, endTime time.Duration) *Player {
	return &Player{
		store:     store,
		world:     w,
		resolver:  r,
		debouncer: NewDebouncer(),
		events:    events,
		endTime:   endTime,
	}
}

// EndTime returns the recording's end timestamp.
func (p *Player) EndTime() time.Duration { return p.endTime }

// Step advances (or rewinds) world state to info.Sim.
//
// Forward play applies every record in [Sim-Dt, Sim] in recorded
// order. A backward jump replays the whole log from the origin:
// records only encode relative changes, so the set of entities that
// should not exist at the target time can only be learned by watching
// every creation and removal net out.
//
// Failures are local: an unreadable batch plays as an empty window, a
// malformed record is skipped, and the tick always runs to
// completion.
func (p *Player) Step(ctx context.Context, info TickInfo) {
	if info.Dt == 0 {
		return
	}

	startTime := info.Sim - info.Dt
	endTime := info.Sim

	rewind := false
	var pendingRemoval map[world.Entity]struct{}
	if info.Dt < 0 {
		// Jumping back in time. Snapshot every live entity before any
		// record applies; replay below erases entities from the set
		// as records re-confirm them.
		rewind = true
		pendingRemoval = make(map[world.Entity]struct{})
		for _, e := range p.world.Entities() {
			pendingRemoval[e] = struct{}{}
		}
		startTime = 0
	}

	msgs, err := p.store.QueryRange(ctx, startTime, endTime)
	if err != nil {
		slog.Warn("log query failed, playing empty window",
			"start", startTime,
			"end", endTime,
			"error", err)
		msgs = nil
	}

	for _, msg := range msgs {
		switch {
		case world.IsDeltaType(msg.Type):
			d, err := world.DecodeDelta(msg.Type, msg.Data)
			if err != nil {
				slog.Warn("skipping malformed delta record",
					"seq", msg.Seq,
					"time", msg.Time,
					"error", err)
				continue
			}

			if rewind {
				for _, entry := range d.Entries {
					if entry.Removed {
						pendingRemoval[entry.ID] = struct{}{}
					} else {
						delete(pendingRemoval, entry.ID)
					}
				}
			}

			p.world.Apply(d)

		case msg.Type == world.MsgWorldDescription:
			// Expected noise: the recorded world description.

		default:
			slog.Warn("trying to play back unsupported message type",
				"type", msg.Type,
				"topic", msg.Topic)
		}

		// Rewriting must track every record: a record can replace a
		// geometry or material mid-tick and its URI would otherwise
		// stay unresolved until the next tick.
		p.resolver.Apply(p.world)
	}

	p.debouncer.Tick(p.world)

	if rewind {
		ids := make([]world.Entity, 0, len(pendingRemoval))
		for e := range pendingRemoval {
			ids = append(ids, e)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		for _, e := range ids {
			p.world.Remove(e)
		}
	}

	if info.Sim >= p.endTime {
		if !p.endAnnounced {
			slog.Info("end of log reached",
				"time", p.endTime.Seconds())
			p.events.EmitPause(true)
			p.endAnnounced = true
		}
	} else {
		p.endAnnounced = false
	}
}
