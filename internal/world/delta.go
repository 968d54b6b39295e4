package world

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
)

// Message type names carried in a recording. A recording produces
// exactly one of the two delta shapes; playback supports both.
const (
	// MsgDeltaMap is a sparse entity-keyed diff: a JSON object of
	// entity id -> entry.
	MsgDeltaMap = "rewind.msgs.StateDeltaMap"

	// MsgDeltaList is a sequential diff: a JSON array of entries in
	// recorded order.
	MsgDeltaList = "rewind.msgs.StateDeltaList"

	// MsgWorldDescription carries the plain-text world description.
	// Playback skips it as expected noise.
	MsgWorldDescription = "rewind.msgs.WorldDescription"
)

// DeltaShape tags which payload shape a delta record came from.
type DeltaShape int

const (
	ShapeMap DeltaShape = iota
	ShapeList
)

// String returns the shape name.
func (s DeltaShape) String() string {
	if s == ShapeMap {
		return "map"
	}
	return "list"
}

// Entry is one entity's portion of a delta record. Nil component
// pointers mean "unchanged"; Removed wins over any diff.
type Entry struct {
	ID         Entity      `json:"id"`
	Removed    bool        `json:"removed,omitempty"`
	Name       *string     `json:"name,omitempty"`
	Pose       *Pose       `json:"pose,omitempty"`
	Geometry   *Geometry   `json:"geometry,omitempty"`
	Material   *Material   `json:"material,omitempty"`
	EmitterCmd *EmitterCmd `json:"emitter_cmd,omitempty"`
}

// Delta is one decoded delta record: a tagged variant over the two
// payload shapes, normalized to an ordered entry slice so the
// pending-removal bookkeeping during backward jumps can walk touched
// entities the same way for both.
type Delta struct {
	Shape   DeltaShape
	Entries []Entry
}

type mapPayload struct {
	Entities map[string]Entry `json:"entities"`
}

type listPayload struct {
	Entities []Entry `json:"entities"`
}

// IsDeltaType reports whether msgType names one of the delta shapes.
func IsDeltaType(msgType string) bool {
	return msgType == MsgDeltaMap || msgType == MsgDeltaList
}

// DecodeDelta parses a delta record payload of the given message
// type. Map-shaped payloads are normalized to ascending-id entry
// order; list-shaped payloads keep their recorded order.
func DecodeDelta(msgType string, data []byte) (Delta, error) {
	switch msgType {
	case MsgDeltaMap:
		var p mapPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return Delta{}, fmt.Errorf("decode map delta: %w", err)
		}

		ids := make([]string, 0, len(p.Entities))
		for id := range p.Entities {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool {
			a, _ := strconv.ParseInt(ids[i], 10, 64)
			b, _ := strconv.ParseInt(ids[j], 10, 64)
			return a < b
		})

		d := Delta{Shape: ShapeMap, Entries: make([]Entry, 0, len(ids))}
		for _, id := range ids {
			entry := p.Entities[id]
			n, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return Delta{}, fmt.Errorf("decode map delta: entity key %q: %w", id, err)
			}
			entry.ID = Entity(n)
			d.Entries = append(d.Entries, entry)
		}
		return d, nil

	case MsgDeltaList:
		var p listPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return Delta{}, fmt.Errorf("decode list delta: %w", err)
		}
		return Delta{Shape: ShapeList, Entries: p.Entities}, nil

	default:
		return Delta{}, fmt.Errorf("decode delta: unsupported message type %q", msgType)
	}
}

// EncodeDelta serializes a delta back into its payload shape. Used by
// the fixture writer; playback only decodes.
func EncodeDelta(d Delta) (msgType string, data []byte, err error) {
	switch d.Shape {
	case ShapeMap:
		p := mapPayload{Entities: make(map[string]Entry, len(d.Entries))}
		for _, e := range d.Entries {
			p.Entities[strconv.FormatInt(int64(e.ID), 10)] = e
		}
		data, err = json.Marshal(p)
		return MsgDeltaMap, data, err
	case ShapeList:
		data, err = json.Marshal(listPayload{Entities: d.Entries})
		return MsgDeltaList, data, err
	default:
		return "", nil, fmt.Errorf("encode delta: unknown shape %d", d.Shape)
	}
}

// Apply mutates the world according to the delta, entry by entry in
// order. Component diffs are last-write-wins; a removal discards the
// entity along with all its components.
func (w *World) Apply(d Delta) {
	for _, entry := range d.Entries {
		if entry.Removed {
			w.Remove(entry.ID)
			continue
		}

		w.Create(entry.ID)
		if entry.Name != nil {
			w.SetName(entry.ID, *entry.Name)
		}
		if entry.Pose != nil {
			w.SetPose(entry.ID, *entry.Pose)
		}
		if entry.Geometry != nil {
			w.SetGeometry(entry.ID, *entry.Geometry)
		}
		if entry.Material != nil {
			w.SetMaterial(entry.ID, *entry.Material)
		}
		if entry.EmitterCmd != nil {
			w.SetEmitterCmd(entry.ID, *entry.EmitterCmd)
		}
	}
}
