package playback

import "github.com/simverse/rewind/internal/world"

// Debouncer suppresses repeated emitter command values.
//
// Recorded deltas can carry the same commanded value in several
// records inside one window; downstream consumers only want to hear
// about transitions. The table keeps the last value observed per
// entity; entries for entities later removed from the world are never
// pruned, which is harmless growth bounded by the distinct entities
// ever seen.
type Debouncer struct {
	last map[world.Entity]bool
}

// NewDebouncer creates an empty debounce table.
func NewDebouncer() *Debouncer {
	return &Debouncer{last: make(map[world.Entity]bool)}
}

// Tick inspects every emitter command in the world. First observation
// of an entity only records its value. A changed value records the
// new one and marks the component with a one-time change signal.
func (d *Debouncer) Tick(w *world.World) {
	for _, e := range w.EmitterCmds() {
		cmd, _ := w.EmitterCmd(e)

		prev, seen := d.last[e]
		if !seen {
			d.last[e] = cmd.Emitting
			continue
		}
		if prev == cmd.Emitting {
			continue
		}

		d.last[e] = cmd.Emitting
		w.MarkOneTime(e, world.CompEmitterCmd)
	}
}
