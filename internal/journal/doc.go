// Package journal records playback sessions in SQLite for later inspection.
//
// A journal holds sessions; a session holds the ordered entries of one run
// of the playback controller. Every controller event becomes one entry with
// the render snapshot it carried.
//
// Ordering uses a per-session logical sequence, never timestamps. The
// elapsed time of each entry is stored for display only.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait up to 5s for locks
//   - foreign_keys=ON: Entries reference their session
//
// The journal is opt-in. Playback never depends on it; a write failure is
// logged by the caller and playback continues.
package journal
