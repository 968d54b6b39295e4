package world

import "sort"

// World is the live entity/component store.
//
// Not safe for concurrent use: playback is single-threaded and every
// mutation happens inside one tick call.
type World struct {
	present     map[Entity]struct{}
	names       map[Entity]string
	poses       map[Entity]Pose
	geometries  map[Entity]Geometry
	materials   map[Entity]Material
	emitterCmds map[Entity]EmitterCmd

	stats *PlaybackStats

	// oneTime holds edge-triggered change marks, consumed by whoever
	// drains them at the end of a tick.
	oneTime map[Entity]map[ComponentType]bool
}

// New creates an empty world.
func New() *World {
	return &World{
		present:     make(map[Entity]struct{}),
		names:       make(map[Entity]string),
		poses:       make(map[Entity]Pose),
		geometries:  make(map[Entity]Geometry),
		materials:   make(map[Entity]Material),
		emitterCmds: make(map[Entity]EmitterCmd),
		oneTime:     make(map[Entity]map[ComponentType]bool),
	}
}

// Has reports whether the entity exists.
func (w *World) Has(e Entity) bool {
	_, ok := w.present[e]
	return ok
}

// Len returns the number of live entities.
func (w *World) Len() int {
	return len(w.present)
}

// Entities returns a snapshot of all live entity ids in ascending
// order. The slice is independent of later mutations.
func (w *World) Entities() []Entity {
	out := make([]Entity, 0, len(w.present))
	for e := range w.present {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Create ensures the entity exists, without attaching components.
func (w *World) Create(e Entity) {
	w.present[e] = struct{}{}
}

// Remove deletes the entity and all of its components. Change marks
// for the entity are dropped too.
func (w *World) Remove(e Entity) {
	delete(w.present, e)
	delete(w.names, e)
	delete(w.poses, e)
	delete(w.geometries, e)
	delete(w.materials, e)
	delete(w.emitterCmds, e)
	delete(w.oneTime, e)
}

// Name returns the entity's name component.
func (w *World) Name(e Entity) (string, bool) {
	n, ok := w.names[e]
	return n, ok
}

// SetName attaches or replaces the entity's name.
func (w *World) SetName(e Entity, name string) {
	w.Create(e)
	w.names[e] = name
}

// Pose returns the entity's pose component.
func (w *World) Pose(e Entity) (Pose, bool) {
	p, ok := w.poses[e]
	return p, ok
}

// SetPose attaches or replaces the entity's pose.
func (w *World) SetPose(e Entity, p Pose) {
	w.Create(e)
	w.poses[e] = p
}

// Geometry returns the entity's geometry component.
func (w *World) Geometry(e Entity) (Geometry, bool) {
	g, ok := w.geometries[e]
	return g, ok
}

// SetGeometry attaches or replaces the entity's geometry.
func (w *World) SetGeometry(e Entity, g Geometry) {
	w.Create(e)
	w.geometries[e] = g
}

// SetGeometryIf writes the geometry only when eq reports the current
// and new values differ. Returns true when a write happened. Used by
// the resource resolver so an unchanged rewrite is a no-op.
func (w *World) SetGeometryIf(e Entity, g Geometry, eq func(a, b Geometry) bool) bool {
	cur, ok := w.geometries[e]
	if ok && eq(cur, g) {
		return false
	}
	w.SetGeometry(e, g)
	return true
}

// Material returns the entity's material component.
func (w *World) Material(e Entity) (Material, bool) {
	m, ok := w.materials[e]
	return m, ok
}

// SetMaterial attaches or replaces the entity's material.
func (w *World) SetMaterial(e Entity, m Material) {
	w.Create(e)
	w.materials[e] = m
}

// SetMaterialIf writes the material only when eq reports the current
// and new values differ. Returns true when a write happened.
func (w *World) SetMaterialIf(e Entity, m Material, eq func(a, b Material) bool) bool {
	cur, ok := w.materials[e]
	if ok && eq(cur, m) {
		return false
	}
	w.SetMaterial(e, m)
	return true
}

// EmitterCmd returns the entity's emitter command component.
func (w *World) EmitterCmd(e Entity) (EmitterCmd, bool) {
	c, ok := w.emitterCmds[e]
	return c, ok
}

// SetEmitterCmd attaches or replaces the entity's emitter command.
func (w *World) SetEmitterCmd(e Entity, c EmitterCmd) {
	w.Create(e)
	w.emitterCmds[e] = c
}

// Geometries returns the ids of all entities carrying a geometry
// component, in ascending order.
func (w *World) Geometries() []Entity {
	return sortedKeys(w.geometries)
}

// Materials returns the ids of all entities carrying a material
// component, in ascending order.
func (w *World) Materials() []Entity {
	return sortedKeys(w.materials)
}

// EmitterCmds returns the ids of all entities carrying an emitter
// command component, in ascending order.
func (w *World) EmitterCmds() []Entity {
	return sortedKeys(w.emitterCmds)
}

// PlaybackStats returns the world-scoped playback statistics record.
func (w *World) PlaybackStats() (PlaybackStats, bool) {
	if w.stats == nil {
		return PlaybackStats{}, false
	}
	return *w.stats, true
}

// SetPlaybackStats creates or overwrites the statistics record.
func (w *World) SetPlaybackStats(s PlaybackStats) {
	w.stats = &s
}

// MarkOneTime flags a component as having undergone a one-time change
// this tick. The flag persists until drained by TakeOneTime.
func (w *World) MarkOneTime(e Entity, t ComponentType) {
	marks, ok := w.oneTime[e]
	if !ok {
		marks = make(map[ComponentType]bool)
		w.oneTime[e] = marks
	}
	marks[t] = true
}

// HasOneTime reports whether the component currently carries a
// one-time change mark.
func (w *World) HasOneTime(e Entity, t ComponentType) bool {
	return w.oneTime[e][t]
}

// TakeOneTime drains and returns all pending one-time change marks.
func (w *World) TakeOneTime() map[Entity][]ComponentType {
	if len(w.oneTime) == 0 {
		return nil
	}
	out := make(map[Entity][]ComponentType, len(w.oneTime))
	for e, marks := range w.oneTime {
		types := make([]ComponentType, 0, len(marks))
		for t := range marks {
			types = append(types, t)
		}
		sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
		out[e] = types
	}
	w.oneTime = make(map[Entity]map[ComponentType]bool)
	return out
}

func sortedKeys[V any](m map[Entity]V) []Entity {
	out := make([]Entity, 0, len(m))
	for e := range m {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
