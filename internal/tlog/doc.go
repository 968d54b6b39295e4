// Package tlog reads and writes state.tlog recordings.
//
// A .tlog file is a SQLite database holding a time-ordered stream of
// typed messages. Each message belongs to a topic, carries a message
// type name, a receive timestamp in nanoseconds of simulation time,
// and an opaque payload. Playback only ever reads; the Writer exists
// for producing fixture recordings.
//
// Query results are ordered by (time_recv, id) so that replaying a
// range always applies records in the order they were recorded, even
// when several messages share a timestamp.
//
// Database configuration follows the usual SQLite setup:
//   - WAL mode for concurrent reads
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
package tlog
