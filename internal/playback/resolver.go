package playback

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/simverse/rewind/internal/world"
)

const filePrefix = "file://"

// Resolver rewrites recorded resource references so they resolve
// inside the recording's own resource bundle.
//
// Recordings made before resources were bundled contain references
// that don't exist under the log directory. The first probe miss
// permanently disables rewriting for the rest of the session; from
// then on every input passes through unchanged.
type Resolver struct {
	logDir  string
	enabled bool
}

// NewResolver creates a resolver rooted at the recording's log
// directory.
func NewResolver(logDir string) *Resolver {
	return &Resolver{logDir: logDir, enabled: true}
}

// Enabled reports whether rewriting is still active.
func (r *Resolver) Enabled() bool { return r.enabled }

// Resolve rewrites a single URI. Non-filesystem references (built-in
// resource names) and already-rewritten paths pass through unchanged.
// Resolve is idempotent: feeding its output back in returns the same
// value.
func (r *Resolver) Resolve(uri string) string {
	if !r.enabled {
		return uri
	}

	hasPrefix := strings.HasPrefix(uri, filePrefix)
	if !hasPrefix && !strings.HasPrefix(uri, "/") {
		return uri
	}

	// Already pointing into the log directory; don't prepend twice.
	if hasPrefix && strings.HasPrefix(uri[len(filePrefix):], r.logDir) {
		return uri
	}

	pathNoPrefix := uri
	if hasPrefix {
		pathNoPrefix = uri[len(filePrefix):]
	}

	joined := filepath.Join(r.logDir, pathNoPrefix)
	if _, err := os.Stat(joined); err != nil {
		// The bundle doesn't carry this file: the recording predates
		// bundled resources. Stop rewriting for the whole session.
		r.enabled = false
		slog.Info("recorded resource not found in log directory, disabling path rewriting",
			"uri", uri,
			"probed", joined)
		return uri
	}

	return filePrefix + joined
}

// Apply rewrites every mesh geometry URI and every non-empty material
// script URI in the world. Write-back goes through the guarded
// setters so an unchanged URI doesn't dirty the component.
func (r *Resolver) Apply(w *world.World) {
	if !r.enabled {
		return
	}

	for _, e := range w.Geometries() {
		g, _ := w.Geometry(e)
		if g.Kind != world.GeometryMesh || g.MeshURI == "" {
			continue
		}
		next := g
		next.MeshURI = r.Resolve(g.MeshURI)
		w.SetGeometryIf(e, next, geometryURIEqual)
	}

	for _, e := range w.Materials() {
		m, _ := w.Material(e)
		if m.ScriptURI == "" {
			continue
		}
		next := m
		next.ScriptURI = r.Resolve(m.ScriptURI)
		w.SetMaterialIf(e, next, materialURIEqual)
	}
}

func geometryURIEqual(a, b world.Geometry) bool {
	if a.Kind == world.GeometryMesh && b.Kind == world.GeometryMesh {
		return a.MeshURI == b.MeshURI
	}
	return false
}

func materialURIEqual(a, b world.Material) bool {
	return a.ScriptURI == b.ScriptURI
}
