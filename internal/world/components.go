package world

// Entity identifies one simulated object.
type Entity int64

// ComponentType discriminates component kinds for change tracking.
type ComponentType int

const (
	CompName ComponentType = iota
	CompPose
	CompGeometry
	CompMaterial
	CompEmitterCmd
)

// String returns the component type name.
func (t ComponentType) String() string {
	switch t {
	case CompName:
		return "name"
	case CompPose:
		return "pose"
	case CompGeometry:
		return "geometry"
	case CompMaterial:
		return "material"
	case CompEmitterCmd:
		return "emitter_cmd"
	default:
		return "unknown"
	}
}

// Pose is an entity's position and orientation.
type Pose struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Z     float64 `json:"z"`
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// GeometryKind enumerates supported geometry shapes.
type GeometryKind string

const (
	GeometryBox    GeometryKind = "box"
	GeometrySphere GeometryKind = "sphere"
	GeometryMesh   GeometryKind = "mesh"
)

// Geometry describes an entity's shape. MeshURI is only meaningful
// for mesh geometries and may reference a file in the recording's
// resource bundle.
type Geometry struct {
	Kind    GeometryKind `json:"kind"`
	Size    float64      `json:"size,omitempty"`
	MeshURI string       `json:"mesh_uri,omitempty"`
}

// Material describes an entity's surface material. ScriptURI, when
// non-empty, references a material script file.
type Material struct {
	ScriptURI string `json:"script_uri,omitempty"`
}

// EmitterCmd is the commanded on/off state of an entity's particle
// emitter. Recorded deltas may repeat the same value many times; the
// playback debouncer turns repeats into single change signals.
type EmitterCmd struct {
	Emitting bool `json:"emitting"`
}

// PlaybackStats is the world-scoped record of the recording's time
// bounds, published once when a playback session starts.
type PlaybackStats struct {
	StartSec  int64 `json:"start_sec"`
	StartNsec int32 `json:"start_nsec"`
	EndSec    int64 `json:"end_sec"`
	EndNsec   int32 `json:"end_nsec"`
}
