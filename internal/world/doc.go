// Package world holds the mutable entity/component state that playback
// reconstructs, plus the delta-record model that mutates it.
//
// The store is deliberately small: typed component maps keyed by
// entity id, an apply primitive for delta records, and guarded
// write-back setters so a rewrite that produces an identical value
// does not mark the component as changed.
//
// Ordering matters everywhere. Delta records are relative changes,
// not snapshots, so Apply preserves entry order within a record and
// callers must preserve record order across a batch. Enumeration
// helpers return entities in ascending id order so repeated runs over
// the same state behave identically.
package world
