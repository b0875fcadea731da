// Package history records summaries of validation and change-analysis
// runs.
//
// A Record carries the run's operation, the document's name and kind,
// a valid flag, finding counts and a one-line summary. Document bodies
// are never stored.
//
// The Recorder enqueues records on a buffered channel and a background
// worker writes them to a Store, so recording never adds latency to
// the run itself. When the buffer is full, records are dropped and the
// drop is counted.
//
// Two Store implementations are provided: SQLiteStore persists records
// in a single-writer SQLite database and MemoryStore keeps them in
// process memory. The Pruner deletes records older than the configured
// retention period, either on demand or on a cron schedule.
package history
