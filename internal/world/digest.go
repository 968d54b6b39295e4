package world

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"golang.org/x/text/unicode/norm"
)

// Digest returns a hex SHA-256 over a canonical serialization of the
// full world state. Two worlds holding the same entities and
// component values produce the same digest regardless of the order
// the state was built in, which is what the replay determinism tests
// compare.
func Digest(w *World) string {
	entities := make([]any, 0, w.Len())
	for _, e := range w.Entities() {
		entities = append(entities, entitySnapshot(w, e))
	}

	state := map[string]any{"entities": entities}
	if stats, ok := w.PlaybackStats(); ok {
		state["playback_stats"] = map[string]any{
			"start_sec":  stats.StartSec,
			"start_nsec": int64(stats.StartNsec),
			"end_sec":    stats.EndSec,
			"end_nsec":   int64(stats.EndNsec),
		}
	}

	var buf bytes.Buffer
	// marshalCanonical cannot fail on the shapes built above.
	if err := marshalCanonical(&buf, state); err != nil {
		panic(fmt.Sprintf("world digest: %v", err))
	}

	sum := sha256.Sum256(buf.Bytes())
	return hex.EncodeToString(sum[:])
}

func entitySnapshot(w *World, e Entity) map[string]any {
	snap := map[string]any{"id": int64(e)}
	if n, ok := w.Name(e); ok {
		snap["name"] = n
	}
	if p, ok := w.Pose(e); ok {
		snap["pose"] = map[string]any{
			"x": p.X, "y": p.Y, "z": p.Z,
			"roll": p.Roll, "pitch": p.Pitch, "yaw": p.Yaw,
		}
	}
	if g, ok := w.Geometry(e); ok {
		geo := map[string]any{"kind": string(g.Kind)}
		if g.Size != 0 {
			geo["size"] = g.Size
		}
		if g.MeshURI != "" {
			geo["mesh_uri"] = g.MeshURI
		}
		snap["geometry"] = geo
	}
	if m, ok := w.Material(e); ok {
		snap["material"] = map[string]any{"script_uri": m.ScriptURI}
	}
	if c, ok := w.EmitterCmd(e); ok {
		snap["emitter_cmd"] = map[string]any{"emitting": c.Emitting}
	}
	return snap
}

// marshalCanonical writes a deterministic JSON form: object keys
// sorted, strings NFC normalized with HTML escaping disabled, floats
// in shortest round-trip notation.
func marshalCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical state")
	case string:
		return marshalCanonicalString(buf, val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case int:
		buf.WriteString(strconv.FormatInt(int64(val), 10))
		return nil
	case int64:
		buf.WriteString(strconv.FormatInt(val, 10))
		return nil
	case float64:
		if val == float64(int64(val)) {
			buf.WriteString(strconv.FormatInt(int64(val), 10))
		} else {
			buf.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
		}
		return nil
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		buf.WriteByte('{')
		for i, k := range keys {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonicalString(buf, k); err != nil {
				return fmt.Errorf("object key %q: %w", k, err)
			}
			buf.WriteByte(':')
			if err := marshalCanonical(buf, val[k]); err != nil {
				return fmt.Errorf("object[%q]: %w", k, err)
			}
		}
		buf.WriteByte('}')
		return nil
	default:
		return fmt.Errorf("unsupported type for canonical state: %T", v)
	}
}

func marshalCanonicalString(buf *bytes.Buffer, s string) error {
	normalized := norm.NFC.String(s)

	var tmp bytes.Buffer
	enc := json.NewEncoder(&tmp)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(normalized); err != nil {
		return err
	}

	out := tmp.Bytes()
	// json.Encoder appends a newline.
	if n := len(out); n > 0 && out[n-1] == '\n' {
		out = out[:n-1]
	}
	buf.Write(out)
	return nil
}
