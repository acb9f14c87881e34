// Package checkpoint persists and verifies the collection pipeline state.
//
// A checkpoint is a directory holding exactly three artifacts: the graph
// topology (node-link JSON), the sample metadata cache (SQLite, one JSON
// record per sample), and a small canonical-JSON manifest carrying counts,
// timestamps, and the pagination cursor. The manifest's node and edge counts
// must always match the topology; CheckConsistency detects the mismatch that
// partial or unserialized concurrent writes leave behind.
//
// Verify is the cheap read-only precondition gate CI jobs run before
// trusting a checkpoint. It never repairs anything; repair belongs to the
// integrity package and runs as a separate, explicit phase.
package checkpoint
