// Package testutil builds fixture recordings for tests.
package testutil

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/simverse/rewind/internal/tlog"
	"github.com/simverse/rewind/internal/world"
)

// Topics used by fixture recordings.
const (
	StateTopic       = "/world/default/state"
	DescriptionTopic = "/world/default/description"
)

// TimedDelta is one scripted delta record with its recording time.
type TimedDelta struct {
	Time  time.Duration
	Delta world.Delta
}

// WriteStateLog creates a state.tlog at path containing a world
// description message at t=0 followed by the scripted deltas in
// order.
func WriteStateLog(ctx context.Context, path string, deltas []TimedDelta) error {
	store, err := tlog.Create(path)
	if err != nil {
		return err
	}
	defer store.Close()

	w := tlog.NewWriter(store)
	if err := w.Append(ctx, DescriptionTopic, world.MsgWorldDescription, 0, []byte("<world/>")); err != nil {
		return err
	}

	for i, td := range deltas {
		msgType, data, err := world.EncodeDelta(td.Delta)
		if err != nil {
			return fmt.Errorf("encode fixture delta %d: %w", i, err)
		}
		if err := w.Append(ctx, StateTopic, msgType, td.Time, data); err != nil {
			return err
		}
	}
	return nil
}

// WriteRecordingDir creates a recording directory with a state.tlog
// holding the scripted deltas, and returns the directory path.
func WriteRecordingDir(ctx context.Context, dir string, deltas []TimedDelta) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	return WriteStateLog(ctx, filepath.Join(dir, "state.tlog"), deltas)
}

// ZipRecording packs a recording directory into a zip archive at
// zipPath, with all entries under the directory's base name. This
// matches the layout playback expects when extracting: the log
// directory is <extraction>/<archive-base-name>.
func ZipRecording(dir, zipPath string) error {
	out, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	base := filepath.Base(dir)
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		f, err := zw.Create(filepath.ToSlash(filepath.Join(base, rel)))
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()

		_, err = io.Copy(f, in)
		return err
	})
}

// Helpers for building delta entries in tests.

// Created returns an entry creating or updating an entity with a name.
func Created(id world.Entity, name string) world.Entry {
	return world.Entry{ID: id, Name: &name}
}

// Removed returns an entry marking an entity removed.
func Removed(id world.Entity) world.Entry {
	return world.Entry{ID: id, Removed: true}
}

// WithMesh attaches a mesh geometry to an entry.
func WithMesh(e world.Entry, uri string) world.Entry {
	e.Geometry = &world.Geometry{Kind: world.GeometryMesh, MeshURI: uri}
	return e
}

// WithMaterial attaches a material script to an entry.
func WithMaterial(e world.Entry, uri string) world.Entry {
	e.Material = &world.Material{ScriptURI: uri}
	return e
}

// WithEmitter attaches an emitter command to an entry.
func WithEmitter(e world.Entry, emitting bool) world.Entry {
	e.EmitterCmd = &world.EmitterCmd{Emitting: emitting}
	return e
}

// WithPose attaches a pose to an entry.
func WithPose(e world.Entry, x, y, z float64) world.Entry {
	e.Pose = &world.Pose{X: x, Y: y, Z: z}
	return e
}

// MapDelta builds a map-shaped delta from entries.
func MapDelta(entries ...world.Entry) world.Delta {
	return world.Delta{Shape: world.ShapeMap, Entries: entries}
}

// ListDelta builds a list-shaped delta from entries.
func ListDelta(entries ...world.Entry) world.Delta {
	return world.Delta{Shape: world.ShapeList, Entries: entries}
}
